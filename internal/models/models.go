package models

import "time"

// MediaFile references an object stored in the remote media storage service.
type MediaFile struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// User represents an account within the TweetTube platform.
// Password and RefreshToken never serialize into API responses.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName"`
	Avatar       MediaFile  `json:"avatar"`
	CoverImage   *MediaFile `json:"coverImage"`
	Password     string     `json:"-"`
	RefreshToken *string    `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Video represents an uploaded video. New videos start unpublished.
type Video struct {
	ID          string    `json:"id"`
	VideoFile   MediaFile `json:"videoFile"`
	Thumbnail   MediaFile `json:"thumbnail"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    int       `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Like records a user liking exactly one of a video, comment, or tweet.
// Exactly one of VideoID, CommentID, TweetID is non-nil.
type Like struct {
	ID        string    `json:"id"`
	VideoID   *string   `json:"videoId"`
	CommentID *string   `json:"commentId"`
	TweetID   *string   `json:"tweetId"`
	LikedByID string    `json:"likedById"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Subscription links a subscriber to the channel (user) they follow.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Playlist groups videos curated by its owner.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistVideo is the junction entity realizing the Playlist-Video
// many-to-many relation. Position orders videos within a playlist.
type PlaylistVideo struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlistId"`
	VideoID    string    `json:"videoId"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WatchHistoryEntry is the junction entity recording that a user watched a
// video. CreatedAt doubles as the watched-at timestamp.
type WatchHistoryEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
