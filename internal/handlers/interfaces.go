package handlers

import (
	"context"

	"github.com/tweettube/backend/internal/auth"
	"github.com/tweettube/backend/internal/models"
	"github.com/tweettube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) error
	UpdateAvatar(ctx context.Context, id string, avatar models.MediaFile) error
	UpdateCoverImage(ctx context.Context, id string, coverImage models.MediaFile) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	ClearRefreshToken(ctx context.Context, id string) error
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListPublic(ctx context.Context, params repositories.ListVideosParams) ([]repositories.VideoWithOwner, int64, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	Update(ctx context.Context, id, title, description string, thumbnail models.MediaFile) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, ownerID string) (repositories.ChannelStats, error)
	ListByOwner(ctx context.Context, ownerID string) ([]repositories.ChannelVideo, error)
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	ListForVideo(ctx context.Context, videoID, viewerID string, page, limit int) ([]repositories.CommentWithOwner, int64, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
	DeleteForVideo(ctx context.Context, videoID string) error
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListForOwner(ctx context.Context, ownerID, viewerID string) ([]repositories.TweetWithOwner, error)
	Update(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// LikeStore captures persistence for like toggles and aggregates.
type LikeStore interface {
	ToggleVideo(ctx context.Context, videoID, userID string) (bool, error)
	ToggleComment(ctx context.Context, commentID, userID string) (bool, error)
	ToggleTweet(ctx context.Context, tweetID, userID string) (bool, error)
	CountForVideo(ctx context.Context, videoID string) (int64, error)
	IsVideoLiked(ctx context.Context, videoID, userID string) (bool, error)
	ListLikedVideos(ctx context.Context, userID string) ([]repositories.LikedVideo, error)
	DeleteForVideo(ctx context.Context, videoID string) error
	DeleteForComment(ctx context.Context, commentID string) error
	DeleteForTweet(ctx context.Context, tweetID string) error
}

// SubscriptionStore captures persistence for subscription workflows.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	CountSubscribers(ctx context.Context, channelID string) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]repositories.Subscriber, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]repositories.SubscribedChannel, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	FindWithOwner(ctx context.Context, id string) (repositories.PlaylistWithOwner, error)
	Update(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
	ClearVideos(ctx context.Context, playlistID string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
	ListVideos(ctx context.Context, playlistID string, publishedOnly bool) ([]models.Video, error)
	ListForOwner(ctx context.Context, ownerID string) ([]repositories.PlaylistSummary, error)
}

// WatchHistoryStore captures persistence for the watch-history junction.
type WatchHistoryStore interface {
	Record(ctx context.Context, userID, videoID string) error
	ListForUser(ctx context.Context, userID string) ([]repositories.WatchedVideo, error)
	DeleteForVideo(ctx context.Context, videoID string) error
}

// TokenService issues and validates access/refresh token pairs.
type TokenService interface {
	Issue(ctx context.Context, user models.User) (auth.TokenPair, error)
	ParseAccessToken(tokenString string) (auth.AccessClaims, error)
	ParseRefreshToken(tokenString string) (auth.RefreshClaims, error)
}

// MediaStorage uploads local files to the remote media store and deletes
// stored objects by their public id.
type MediaStorage interface {
	Upload(ctx context.Context, localPath string) (models.MediaFile, error)
	Delete(ctx context.Context, publicID string) error
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	WatchHistory  WatchHistoryStore
	Tokens        TokenService
	Media         MediaStorage

	// CredentialLimiter guards login, registration, and token refresh.
	// A nil limiter disables the guard.
	CredentialLimiter RateLimiter

	AllowSelfSubscribe bool
}
