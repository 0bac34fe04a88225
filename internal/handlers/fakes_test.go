package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tweettube/backend/internal/auth"
	"github.com/tweettube/backend/internal/models"
	"github.com/tweettube/backend/internal/repositories"
)

// The fakes below back every handler test in this package. They implement
// the store interfaces with maps and deliberately mirror the uniqueness
// rules the real repositories enforce.

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) add(username, email string) models.User {
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  "Test " + username,
		Avatar:    models.MediaFile{PublicID: "avatar-" + username, URL: "https://cdn.test/" + username},
		Password:  mustHash("password123"),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.users[user.ID] = user
	return user
}

func (s *fakeUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	for _, user := range s.users {
		if (username != "" && user.Username == username) || (email != "" && user.Email == email) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *fakeUserStore) UpdateDetails(_ context.Context, id, fullName, email string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID != id && existing.Email == email {
			return repositories.ErrConflict
		}
	}
	user.FullName = fullName
	user.Email = email
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, id string, avatar models.MediaFile) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Avatar = avatar
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdateCoverImage(_ context.Context, id string, coverImage models.MediaFile) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.CoverImage = &coverImage
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) ClearRefreshToken(_ context.Context, id string) error {
	user, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = nil
	s.users[id] = user
	return nil
}

func (s *fakeUserStore) storeRefreshToken(id, token string) {
	user, ok := s.users[id]
	if !ok {
		return
	}
	user.RefreshToken = &token
	s.users[id] = user
}

func (s *fakeUserStore) summary(id string) models.OwnerSummary {
	user := s.users[id]
	return models.OwnerSummary{ID: user.ID, Username: user.Username, FullName: user.FullName, Avatar: user.Avatar}
}

type fakeTokens struct {
	users   *fakeUserStore
	counter int
	access  map[string]auth.AccessClaims
	refresh map[string]auth.RefreshClaims
}

func newFakeTokens(users *fakeUserStore) *fakeTokens {
	return &fakeTokens{
		users:   users,
		access:  make(map[string]auth.AccessClaims),
		refresh: make(map[string]auth.RefreshClaims),
	}
}

func (t *fakeTokens) Issue(_ context.Context, user models.User) (auth.TokenPair, error) {
	t.counter++
	pair := auth.TokenPair{
		AccessToken:  fmt.Sprintf("access-%s-%d", user.ID, t.counter),
		RefreshToken: fmt.Sprintf("refresh-%s-%d", user.ID, t.counter),
	}
	t.access[pair.AccessToken] = auth.AccessClaims{ID: user.ID, Email: user.Email, Username: user.Username, FullName: user.FullName}
	t.refresh[pair.RefreshToken] = auth.RefreshClaims{ID: user.ID}
	t.users.storeRefreshToken(user.ID, pair.RefreshToken)
	return pair, nil
}

func (t *fakeTokens) ParseAccessToken(tokenString string) (auth.AccessClaims, error) {
	claims, ok := t.access[tokenString]
	if !ok {
		return auth.AccessClaims{}, auth.ErrInvalidToken
	}
	return claims, nil
}

func (t *fakeTokens) ParseRefreshToken(tokenString string) (auth.RefreshClaims, error) {
	claims, ok := t.refresh[tokenString]
	if !ok {
		return auth.RefreshClaims{}, auth.ErrInvalidToken
	}
	return claims, nil
}

type fakeMedia struct {
	uploads int
	deleted []string
}

func (m *fakeMedia) Upload(_ context.Context, localPath string) (models.MediaFile, error) {
	m.uploads++
	key := fmt.Sprintf("media-%d", m.uploads)
	return models.MediaFile{PublicID: key, URL: "https://cdn.test/" + key}, nil
}

func (m *fakeMedia) Delete(_ context.Context, publicID string) error {
	m.deleted = append(m.deleted, publicID)
	return nil
}

type fakeVideoStore struct {
	videos map[string]models.Video
	users  *fakeUserStore
	likes  *fakeLikeStore
}

func newFakeVideoStore(users *fakeUserStore) *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video), users: users}
}

func (s *fakeVideoStore) add(ownerID, title string, published bool) models.Video {
	video := models.Video{
		ID:          uuid.NewString(),
		VideoFile:   models.MediaFile{PublicID: "file-" + title, URL: "https://cdn.test/file-" + title},
		Thumbnail:   models.MediaFile{PublicID: "thumb-" + title, URL: "https://cdn.test/thumb-" + title},
		OwnerID:     ownerID,
		Title:       title,
		Description: "about " + title,
		Duration:    120,
		IsPublished: published,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	s.videos[video.ID] = video
	return video
}

func (s *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *fakeVideoStore) ListPublic(_ context.Context, params repositories.ListVideosParams) ([]repositories.VideoWithOwner, int64, error) {
	var matched []models.Video
	for _, video := range s.videos {
		if !video.IsPublished {
			continue
		}
		if params.OwnerID != "" && video.OwnerID != params.OwnerID {
			continue
		}
		matched = append(matched, video)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (params.Page - 1) * params.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}

	var out []repositories.VideoWithOwner
	for _, video := range matched[start:end] {
		out = append(out, repositories.VideoWithOwner{Video: video, Owner: s.users.summary(video.OwnerID)})
	}
	return out, total, nil
}

func (s *fakeVideoStore) IncrementViews(_ context.Context, id string) (int64, error) {
	video, ok := s.videos[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return video.Views, nil
}

func (s *fakeVideoStore) Update(_ context.Context, id, title, description string, thumbnail models.MediaFile) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Title = title
	video.Description = description
	video.Thumbnail = thumbnail
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	video, ok := s.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.IsPublished = published
	s.videos[id] = video
	return nil
}

func (s *fakeVideoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.videos, id)
	return nil
}

func (s *fakeVideoStore) Stats(_ context.Context, ownerID string) (repositories.ChannelStats, error) {
	var stats repositories.ChannelStats
	for _, video := range s.videos {
		if video.OwnerID != ownerID {
			continue
		}
		stats.TotalVideos++
		stats.TotalViews += video.Views
		if s.likes != nil {
			stats.TotalLikes += int64(len(s.likes.videoLikes[video.ID]))
		}
	}
	return stats, nil
}

func (s *fakeVideoStore) ListByOwner(_ context.Context, ownerID string) ([]repositories.ChannelVideo, error) {
	var out []repositories.ChannelVideo
	for _, video := range s.videos {
		if video.OwnerID != ownerID {
			continue
		}
		row := repositories.ChannelVideo{Video: video}
		if s.likes != nil {
			row.LikesCount = int64(len(s.likes.videoLikes[video.ID]))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeLikeStore struct {
	videoLikes   map[string]map[string]bool
	commentLikes map[string]map[string]bool
	tweetLikes   map[string]map[string]bool
	videos       *fakeVideoStore
	users        *fakeUserStore
}

func newFakeLikeStore(videos *fakeVideoStore, users *fakeUserStore) *fakeLikeStore {
	return &fakeLikeStore{
		videoLikes:   make(map[string]map[string]bool),
		commentLikes: make(map[string]map[string]bool),
		tweetLikes:   make(map[string]map[string]bool),
		videos:       videos,
		users:        users,
	}
}

func toggleSet(sets map[string]map[string]bool, targetID, userID string) bool {
	set, ok := sets[targetID]
	if !ok {
		set = make(map[string]bool)
		sets[targetID] = set
	}
	if set[userID] {
		delete(set, userID)
		return false
	}
	set[userID] = true
	return true
}

func (s *fakeLikeStore) ToggleVideo(_ context.Context, videoID, userID string) (bool, error) {
	return toggleSet(s.videoLikes, videoID, userID), nil
}

func (s *fakeLikeStore) ToggleComment(_ context.Context, commentID, userID string) (bool, error) {
	return toggleSet(s.commentLikes, commentID, userID), nil
}

func (s *fakeLikeStore) ToggleTweet(_ context.Context, tweetID, userID string) (bool, error) {
	return toggleSet(s.tweetLikes, tweetID, userID), nil
}

func (s *fakeLikeStore) CountForVideo(_ context.Context, videoID string) (int64, error) {
	return int64(len(s.videoLikes[videoID])), nil
}

func (s *fakeLikeStore) IsVideoLiked(_ context.Context, videoID, userID string) (bool, error) {
	return s.videoLikes[videoID][userID], nil
}

func (s *fakeLikeStore) ListLikedVideos(_ context.Context, userID string) ([]repositories.LikedVideo, error) {
	var out []repositories.LikedVideo
	for videoID, set := range s.videoLikes {
		if !set[userID] {
			continue
		}
		video, ok := s.videos.videos[videoID]
		if !ok || !video.IsPublished {
			continue
		}
		out = append(out, repositories.LikedVideo{Video: video, Owner: s.users.summary(video.OwnerID)})
	}
	return out, nil
}

func (s *fakeLikeStore) DeleteForVideo(_ context.Context, videoID string) error {
	delete(s.videoLikes, videoID)
	return nil
}

func (s *fakeLikeStore) DeleteForComment(_ context.Context, commentID string) error {
	delete(s.commentLikes, commentID)
	return nil
}

func (s *fakeLikeStore) DeleteForTweet(_ context.Context, tweetID string) error {
	delete(s.tweetLikes, tweetID)
	return nil
}

type fakeCommentStore struct {
	comments map[string]models.Comment
	users    *fakeUserStore
	likes    *fakeLikeStore
}

func newFakeCommentStore(users *fakeUserStore, likes *fakeLikeStore) *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment), users: users, likes: likes}
}

func (s *fakeCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *fakeCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *fakeCommentStore) ListForVideo(_ context.Context, videoID, viewerID string, page, limit int) ([]repositories.CommentWithOwner, int64, error) {
	var matched []models.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	var out []repositories.CommentWithOwner
	for _, comment := range matched[start:end] {
		row := repositories.CommentWithOwner{Comment: comment, Owner: s.users.summary(comment.OwnerID)}
		if s.likes != nil {
			row.LikesCount = int64(len(s.likes.commentLikes[comment.ID]))
			row.IsLiked = s.likes.commentLikes[comment.ID][viewerID]
		}
		out = append(out, row)
	}
	return out, total, nil
}

func (s *fakeCommentStore) Update(_ context.Context, id, content string) error {
	comment, ok := s.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	comment.Content = content
	s.comments[id] = comment
	return nil
}

func (s *fakeCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *fakeCommentStore) DeleteForVideo(_ context.Context, videoID string) error {
	for id, comment := range s.comments {
		if comment.VideoID == videoID {
			delete(s.comments, id)
		}
	}
	return nil
}

type fakeTweetStore struct {
	tweets map[string]models.Tweet
	users  *fakeUserStore
	likes  *fakeLikeStore
}

func newFakeTweetStore(users *fakeUserStore, likes *fakeLikeStore) *fakeTweetStore {
	return &fakeTweetStore{tweets: make(map[string]models.Tweet), users: users, likes: likes}
}

func (s *fakeTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *fakeTweetStore) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *fakeTweetStore) ListForOwner(_ context.Context, ownerID, viewerID string) ([]repositories.TweetWithOwner, error) {
	var out []repositories.TweetWithOwner
	for _, tweet := range s.tweets {
		if tweet.OwnerID != ownerID {
			continue
		}
		row := repositories.TweetWithOwner{Tweet: tweet, Owner: s.users.summary(tweet.OwnerID)}
		if s.likes != nil {
			row.LikesCount = int64(len(s.likes.tweetLikes[tweet.ID]))
			row.IsLiked = s.likes.tweetLikes[tweet.ID][viewerID]
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeTweetStore) Update(_ context.Context, id, content string) error {
	tweet, ok := s.tweets[id]
	if !ok {
		return repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return nil
}

func (s *fakeTweetStore) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

type fakeSubscriptionStore struct {
	subs  map[string]map[string]bool // subscriber -> channels
	users *fakeUserStore
}

func newFakeSubscriptionStore(users *fakeUserStore) *fakeSubscriptionStore {
	return &fakeSubscriptionStore{subs: make(map[string]map[string]bool), users: users}
}

func (s *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	return toggleSet(s.subs, subscriberID, channelID), nil
}

func (s *fakeSubscriptionStore) CountSubscribers(_ context.Context, channelID string) (int64, error) {
	var count int64
	for _, channels := range s.subs {
		if channels[channelID] {
			count++
		}
	}
	return count, nil
}

func (s *fakeSubscriptionStore) CountSubscribedTo(_ context.Context, subscriberID string) (int64, error) {
	return int64(len(s.subs[subscriberID])), nil
}

func (s *fakeSubscriptionStore) IsSubscribed(_ context.Context, subscriberID, channelID string) (bool, error) {
	return s.subs[subscriberID][channelID], nil
}

func (s *fakeSubscriptionStore) ListSubscribers(_ context.Context, channelID string) ([]repositories.Subscriber, error) {
	var out []repositories.Subscriber
	for subscriberID, channels := range s.subs {
		if !channels[channelID] {
			continue
		}
		subscribers, _ := s.CountSubscribers(context.Background(), subscriberID)
		out = append(out, repositories.Subscriber{
			OwnerSummary:           s.users.summary(subscriberID),
			SubscribersCount:       subscribers,
			SubscribedToSubscriber: s.subs[channelID][subscriberID],
		})
	}
	return out, nil
}

func (s *fakeSubscriptionStore) ListSubscribedChannels(_ context.Context, subscriberID string) ([]repositories.SubscribedChannel, error) {
	var out []repositories.SubscribedChannel
	for channelID := range s.subs[subscriberID] {
		out = append(out, repositories.SubscribedChannel{OwnerSummary: s.users.summary(channelID)})
	}
	return out, nil
}

type fakePlaylistStore struct {
	playlists  map[string]models.Playlist
	membership map[string][]string // playlist -> ordered video ids
	users      *fakeUserStore
	videos     *fakeVideoStore
}

func newFakePlaylistStore(users *fakeUserStore, videos *fakeVideoStore) *fakePlaylistStore {
	return &fakePlaylistStore{
		playlists:  make(map[string]models.Playlist),
		membership: make(map[string][]string),
		users:      users,
		videos:     videos,
	}
}

func (s *fakePlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *fakePlaylistStore) FindByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, repositories.ErrNotFound
	}
	return playlist, nil
}

func (s *fakePlaylistStore) FindWithOwner(_ context.Context, id string) (repositories.PlaylistWithOwner, error) {
	playlist, ok := s.playlists[id]
	if !ok {
		return repositories.PlaylistWithOwner{}, repositories.ErrNotFound
	}
	return repositories.PlaylistWithOwner{Playlist: playlist, Owner: s.users.summary(playlist.OwnerID)}, nil
}

func (s *fakePlaylistStore) Update(_ context.Context, id, name, description string) error {
	playlist, ok := s.playlists[id]
	if !ok {
		return repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return nil
}

func (s *fakePlaylistStore) Delete(_ context.Context, id string) error {
	if _, ok := s.playlists[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	return nil
}

func (s *fakePlaylistStore) ClearVideos(_ context.Context, playlistID string) error {
	delete(s.membership, playlistID)
	return nil
}

func (s *fakePlaylistStore) AddVideo(_ context.Context, playlistID, videoID string) error {
	for _, existing := range s.membership[playlistID] {
		if existing == videoID {
			return nil
		}
	}
	s.membership[playlistID] = append(s.membership[playlistID], videoID)
	return nil
}

func (s *fakePlaylistStore) RemoveVideo(_ context.Context, playlistID, videoID string) error {
	members := s.membership[playlistID]
	for i, existing := range members {
		if existing == videoID {
			s.membership[playlistID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakePlaylistStore) ListVideos(_ context.Context, playlistID string, publishedOnly bool) ([]models.Video, error) {
	var out []models.Video
	for _, videoID := range s.membership[playlistID] {
		video, ok := s.videos.videos[videoID]
		if !ok {
			continue
		}
		if publishedOnly && !video.IsPublished {
			continue
		}
		out = append(out, video)
	}
	return out, nil
}

func (s *fakePlaylistStore) ListForOwner(_ context.Context, ownerID string) ([]repositories.PlaylistSummary, error) {
	var out []repositories.PlaylistSummary
	for _, playlist := range s.playlists {
		if playlist.OwnerID != ownerID {
			continue
		}
		summary := repositories.PlaylistSummary{Playlist: playlist}
		for _, videoID := range s.membership[playlist.ID] {
			summary.TotalVideos++
			if video, ok := s.videos.videos[videoID]; ok {
				summary.TotalViews += video.Views
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

type fakeWatchHistoryStore struct {
	entries map[string]map[string]time.Time // user -> video -> watched at
	users   *fakeUserStore
	videos  *fakeVideoStore
}

func newFakeWatchHistoryStore(users *fakeUserStore, videos *fakeVideoStore) *fakeWatchHistoryStore {
	return &fakeWatchHistoryStore{entries: make(map[string]map[string]time.Time), users: users, videos: videos}
}

func (s *fakeWatchHistoryStore) Record(_ context.Context, userID, videoID string) error {
	watched, ok := s.entries[userID]
	if !ok {
		watched = make(map[string]time.Time)
		s.entries[userID] = watched
	}
	if _, ok := watched[videoID]; !ok {
		watched[videoID] = time.Now().UTC()
	}
	return nil
}

func (s *fakeWatchHistoryStore) ListForUser(_ context.Context, userID string) ([]repositories.WatchedVideo, error) {
	var out []repositories.WatchedVideo
	for videoID, watchedAt := range s.entries[userID] {
		video, ok := s.videos.videos[videoID]
		if !ok {
			continue
		}
		out = append(out, repositories.WatchedVideo{
			Video:     video,
			Owner:     s.users.summary(video.OwnerID),
			WatchedAt: watchedAt,
		})
	}
	return out, nil
}

func (s *fakeWatchHistoryStore) DeleteForVideo(_ context.Context, videoID string) error {
	for _, watched := range s.entries {
		delete(watched, videoID)
	}
	return nil
}

// testEnv bundles the fakes behind a ready-to-use Dependencies value.
type testEnv struct {
	users         *fakeUserStore
	videos        *fakeVideoStore
	comments      *fakeCommentStore
	tweets        *fakeTweetStore
	likes         *fakeLikeStore
	subscriptions *fakeSubscriptionStore
	playlists     *fakePlaylistStore
	watchHistory  *fakeWatchHistoryStore
	tokens        *fakeTokens
	media         *fakeMedia

	deps Dependencies
}

func newTestEnv() *testEnv {
	users := newFakeUserStore()
	videos := newFakeVideoStore(users)
	likes := newFakeLikeStore(videos, users)
	videos.likes = likes

	env := &testEnv{
		users:         users,
		videos:        videos,
		comments:      newFakeCommentStore(users, likes),
		tweets:        newFakeTweetStore(users, likes),
		likes:         likes,
		subscriptions: newFakeSubscriptionStore(users),
		playlists:     newFakePlaylistStore(users, videos),
		watchHistory:  newFakeWatchHistoryStore(users, videos),
		tokens:        newFakeTokens(users),
		media:         &fakeMedia{},
	}

	env.deps = Dependencies{
		Users:              env.users,
		Videos:             env.videos,
		Comments:           env.comments,
		Tweets:             env.tweets,
		Likes:              env.likes,
		Subscriptions:      env.subscriptions,
		Playlists:          env.playlists,
		WatchHistory:       env.watchHistory,
		Tokens:             env.tokens,
		Media:              env.media,
		AllowSelfSubscribe: true,
	}

	return env
}

// withUser attaches an authenticated user the way requireAuth would.
func withUser(r *http.Request, user models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, user))
}

// responseEnvelope mirrors the wire envelope with raw data for per-test
// decoding.
type responseEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var env responseEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func mustHash(password string) string {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}
