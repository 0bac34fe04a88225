package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tweettube/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_CreateConflictAndLookups(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "ada")

	dup := user
	dup.ID = uuid.NewString()
	dup.Email = "other@example.com"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate username, got %v", err)
	}

	dup.Username = "other"
	dup.Email = user.Email
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate email, got %v", err)
	}

	fetched, err := repo.FindByUsernameOrEmail(ctx, user.Username, "nobody@example.com")
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if fetched.ID != user.ID || fetched.Password != user.Password {
		t.Fatalf("unexpected user fetched: %+v", fetched)
	}

	if _, err := repo.FindByUsernameOrEmail(ctx, "nobody", "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown identifiers, got %v", err)
	}

	if err := repo.UpdateDetails(ctx, user.ID, "Ada L.", "ada.l@example.com"); err != nil {
		t.Fatalf("update details: %v", err)
	}
	fetched, err = repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.FullName != "Ada L." || fetched.Email != "ada.l@example.com" {
		t.Fatalf("expected updated details, got %+v", fetched)
	}

	if err := repo.UpdateDetails(ctx, uuid.NewString(), "x", "x@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing user, got %v", err)
	}
}

func TestPostgresUserRepository_RefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, repo, "ada")

	first := uuid.NewString()
	if err := repo.StoreRefreshToken(ctx, user.ID, first); err != nil {
		t.Fatalf("store refresh token: %v", err)
	}

	found, err := repo.FindByRefreshToken(ctx, first)
	if err != nil {
		t.Fatalf("find by refresh token: %v", err)
	}
	if found.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, found.ID)
	}

	// Rotation replaces the stored token; the old one stops resolving.
	second := uuid.NewString()
	if err := repo.StoreRefreshToken(ctx, user.ID, second); err != nil {
		t.Fatalf("rotate refresh token: %v", err)
	}
	if _, err := repo.FindByRefreshToken(ctx, first); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old token invalidated, got %v", err)
	}

	if err := repo.ClearRefreshToken(ctx, user.ID); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	if _, err := repo.FindByRefreshToken(ctx, second); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cleared token invalidated, got %v", err)
	}
}

func TestPostgresVideoRepository_ListPublicAndViews(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)

	creator := createTestUser(t, userRepo, "creator")
	other := createTestUser(t, userRepo, "other")

	goCooking := createTestVideo(t, videoRepo, creator.ID, "Cooking with Go", true)
	createTestVideo(t, videoRepo, creator.ID, "Draft reel", false)
	createTestVideo(t, videoRepo, other.ID, "Go routines explained", true)
	createTestVideo(t, videoRepo, other.ID, "Gardening basics", true)

	videos, total, err := videoRepo.ListPublic(ctx, ListVideosParams{Query: "go", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list with query: %v", err)
	}
	if total != 2 || len(videos) != 2 {
		t.Fatalf("expected 2 matches for %q, got total=%d len=%d", "go", total, len(videos))
	}
	for _, v := range videos {
		if v.Owner.Username == "" {
			t.Fatalf("expected owner summary populated, got %+v", v.Owner)
		}
	}

	videos, total, err = videoRepo.ListPublic(ctx, ListVideosParams{OwnerID: creator.ID, Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list with owner filter: %v", err)
	}
	if total != 1 || len(videos) != 1 || videos[0].ID != goCooking.ID {
		t.Fatalf("expected only the creator's published video, got %+v", videos)
	}

	videos, total, err = videoRepo.ListPublic(ctx, ListVideosParams{SortBy: "title", SortAsc: true, Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list with sort and pagination: %v", err)
	}
	if total != 3 || len(videos) != 2 {
		t.Fatalf("expected page of 2 over 3 published, got total=%d len=%d", total, len(videos))
	}
	if videos[0].Title != "Cooking with Go" || videos[1].Title != "Gardening basics" {
		t.Fatalf("unexpected sort order: %q, %q", videos[0].Title, videos[1].Title)
	}

	views, err := videoRepo.IncrementViews(ctx, goCooking.ID)
	if err != nil {
		t.Fatalf("increment views: %v", err)
	}
	if views != 1 {
		t.Fatalf("expected 1 view, got %d", views)
	}
	views, err = videoRepo.IncrementViews(ctx, goCooking.ID)
	if err != nil {
		t.Fatalf("increment views again: %v", err)
	}
	if views != 2 {
		t.Fatalf("expected 2 views, got %d", views)
	}

	if _, err := videoRepo.IncrementViews(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown video, got %v", err)
	}
}

func TestPostgresVideoRepository_StatsAndOwnerListing(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	likeRepo := NewPostgresLikeRepository(testPool)

	creator := createTestUser(t, userRepo, "creator")
	fan := createTestUser(t, userRepo, "fan")

	published := createTestVideo(t, videoRepo, creator.ID, "published", true)
	draft := createTestVideo(t, videoRepo, creator.ID, "draft", false)

	if _, err := videoRepo.IncrementViews(ctx, published.ID); err != nil {
		t.Fatalf("bump views: %v", err)
	}
	if _, err := likeRepo.ToggleVideo(ctx, published.ID, fan.ID); err != nil {
		t.Fatalf("like video: %v", err)
	}

	stats, err := videoRepo.Stats(ctx, creator.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalVideos != 2 || stats.TotalViews != 1 || stats.TotalLikes != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	rows, err := videoRepo.ListByOwner(ctx, creator.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected both videos including the draft, got %d", len(rows))
	}
	for _, row := range rows {
		switch row.ID {
		case published.ID:
			if row.LikesCount != 1 {
				t.Fatalf("expected 1 like on published video, got %d", row.LikesCount)
			}
		case draft.ID:
			if row.LikesCount != 0 {
				t.Fatalf("expected no likes on draft, got %d", row.LikesCount)
			}
		default:
			t.Fatalf("unexpected video %s in listing", row.ID)
		}
	}
}

func TestPostgresLikeRepository_ToggleAndCascade(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	commentRepo := NewPostgresCommentRepository(testPool)
	likeRepo := NewPostgresLikeRepository(testPool)

	creator := createTestUser(t, userRepo, "creator")
	fan := createTestUser(t, userRepo, "fan")

	video := createTestVideo(t, videoRepo, creator.ID, "likeable", true)
	draft := createTestVideo(t, videoRepo, creator.ID, "hidden", false)

	liked, err := likeRepo.ToggleVideo(ctx, video.ID, fan.ID)
	if err != nil {
		t.Fatalf("toggle video like: %v", err)
	}
	if !liked {
		t.Fatalf("expected first toggle to like")
	}
	liked, err = likeRepo.ToggleVideo(ctx, video.ID, fan.ID)
	if err != nil {
		t.Fatalf("toggle video like again: %v", err)
	}
	if liked {
		t.Fatalf("expected second toggle to unlike")
	}

	if _, err := likeRepo.ToggleVideo(ctx, video.ID, fan.ID); err != nil {
		t.Fatalf("re-like video: %v", err)
	}
	if _, err := likeRepo.ToggleVideo(ctx, draft.ID, fan.ID); err != nil {
		t.Fatalf("like draft: %v", err)
	}

	count, err := likeRepo.CountForVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("count video likes: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 like, got %d", count)
	}

	isLiked, err := likeRepo.IsVideoLiked(ctx, video.ID, fan.ID)
	if err != nil {
		t.Fatalf("check like: %v", err)
	}
	if !isLiked {
		t.Fatalf("expected video liked by fan")
	}

	likedVideos, err := likeRepo.ListLikedVideos(ctx, fan.ID)
	if err != nil {
		t.Fatalf("list liked videos: %v", err)
	}
	if len(likedVideos) != 1 || likedVideos[0].ID != video.ID {
		t.Fatalf("expected only the published liked video, got %+v", likedVideos)
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   "nice",
		VideoID:   video.ID,
		OwnerID:   fan.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := commentRepo.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if _, err := likeRepo.ToggleComment(ctx, comment.ID, creator.ID); err != nil {
		t.Fatalf("like comment: %v", err)
	}

	// Removing the video's likes also clears likes on its comments, so the
	// comment rows can be deleted afterwards.
	if err := likeRepo.DeleteForVideo(ctx, video.ID); err != nil {
		t.Fatalf("delete likes for video: %v", err)
	}
	if err := commentRepo.DeleteForVideo(ctx, video.ID); err != nil {
		t.Fatalf("delete comments for video: %v", err)
	}
	if err := videoRepo.Delete(ctx, video.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	count, err = likeRepo.CountForVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("count after cascade: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no likes left, got %d", count)
	}
}

func TestPostgresCommentRepository_ListPaginated(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	commentRepo := NewPostgresCommentRepository(testPool)
	likeRepo := NewPostgresLikeRepository(testPool)

	creator := createTestUser(t, userRepo, "creator")
	fan := createTestUser(t, userRepo, "fan")
	video := createTestVideo(t, videoRepo, creator.ID, "discussed", true)

	base := time.Now().UTC().Add(-time.Hour)
	var newest string
	for i := 0; i < 3; i++ {
		comment := models.Comment{
			ID:        uuid.NewString(),
			Content:   fmt.Sprintf("comment %d", i),
			VideoID:   video.ID,
			OwnerID:   fan.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := commentRepo.Create(ctx, comment); err != nil {
			t.Fatalf("create comment %d: %v", i, err)
		}
		newest = comment.ID
	}

	if _, err := likeRepo.ToggleComment(ctx, newest, creator.ID); err != nil {
		t.Fatalf("like comment: %v", err)
	}

	comments, total, err := commentRepo.ListForVideo(ctx, video.ID, creator.ID, 1, 2)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if total != 3 || len(comments) != 2 {
		t.Fatalf("expected page of 2 over 3, got total=%d len=%d", total, len(comments))
	}
	if comments[0].ID != newest {
		t.Fatalf("expected newest comment first, got %s", comments[0].ID)
	}
	if comments[0].LikesCount != 1 || !comments[0].IsLiked {
		t.Fatalf("unexpected like aggregates: %+v", comments[0])
	}
	if comments[0].Owner.Username != fan.Username {
		t.Fatalf("expected owner summary, got %+v", comments[0].Owner)
	}

	if err := commentRepo.Update(ctx, newest, "edited"); err != nil {
		t.Fatalf("update comment: %v", err)
	}
	updated, err := commentRepo.FindByID(ctx, newest)
	if err != nil {
		t.Fatalf("find updated comment: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("expected edited content, got %q", updated.Content)
	}

	if err := commentRepo.Update(ctx, uuid.NewString(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating missing comment, got %v", err)
	}
}

func TestPostgresTweetRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	tweetRepo := NewPostgresTweetRepository(testPool)
	likeRepo := NewPostgresLikeRepository(testPool)

	poster := createTestUser(t, userRepo, "poster")
	viewer := createTestUser(t, userRepo, "viewer")

	now := time.Now().UTC()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		Content:   "hello",
		OwnerID:   poster.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tweetRepo.Create(ctx, tweet); err != nil {
		t.Fatalf("create tweet: %v", err)
	}
	if _, err := likeRepo.ToggleTweet(ctx, tweet.ID, viewer.ID); err != nil {
		t.Fatalf("like tweet: %v", err)
	}

	rows, err := tweetRepo.ListForOwner(ctx, poster.ID, viewer.ID)
	if err != nil {
		t.Fatalf("list tweets: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 tweet, got %d", len(rows))
	}
	if rows[0].LikesCount != 1 || !rows[0].IsLiked || rows[0].Owner.Username != poster.Username {
		t.Fatalf("unexpected tweet row: %+v", rows[0])
	}

	if err := tweetRepo.Update(ctx, tweet.ID, "edited"); err != nil {
		t.Fatalf("update tweet: %v", err)
	}
	fetched, err := tweetRepo.FindByID(ctx, tweet.ID)
	if err != nil {
		t.Fatalf("find tweet: %v", err)
	}
	if fetched.Content != "edited" {
		t.Fatalf("expected edited content, got %q", fetched.Content)
	}

	if err := likeRepo.DeleteForTweet(ctx, tweet.ID); err != nil {
		t.Fatalf("delete tweet likes: %v", err)
	}
	if err := tweetRepo.Delete(ctx, tweet.ID); err != nil {
		t.Fatalf("delete tweet: %v", err)
	}
	if _, err := tweetRepo.FindByID(ctx, tweet.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresSubscriptionRepository_ToggleAndListings(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	repo := NewPostgresSubscriptionRepository(testPool)

	viewer := createTestUser(t, userRepo, "viewer")
	channel := createTestUser(t, userRepo, "channel")

	subscribed, err := repo.Toggle(ctx, viewer.ID, channel.ID)
	if err != nil {
		t.Fatalf("toggle subscription: %v", err)
	}
	if !subscribed {
		t.Fatalf("expected first toggle to subscribe")
	}

	count, err := repo.CountSubscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("count subscribers: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 subscriber, got %d", count)
	}
	count, err = repo.CountSubscribedTo(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("count subscribed to: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 subscription, got %d", count)
	}

	isSubscribed, err := repo.IsSubscribed(ctx, viewer.ID, channel.ID)
	if err != nil {
		t.Fatalf("check subscription: %v", err)
	}
	if !isSubscribed {
		t.Fatalf("expected viewer subscribed")
	}

	subscribers, err := repo.ListSubscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("list subscribers: %v", err)
	}
	if len(subscribers) != 1 || subscribers[0].ID != viewer.ID {
		t.Fatalf("unexpected subscribers: %+v", subscribers)
	}
	if subscribers[0].SubscribedToSubscriber {
		t.Fatalf("channel does not subscribe back yet")
	}

	// Without any published video the latest-video column stays empty.
	channels, err := repo.ListSubscribedChannels(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list subscribed channels: %v", err)
	}
	if len(channels) != 1 || channels[0].ID != channel.ID {
		t.Fatalf("unexpected channels: %+v", channels)
	}
	if channels[0].LatestVideo != nil {
		t.Fatalf("expected no latest video, got %+v", channels[0].LatestVideo)
	}

	latest := createTestVideo(t, videoRepo, channel.ID, "latest", true)
	createTestVideo(t, videoRepo, channel.ID, "unlisted", false)

	channels, err = repo.ListSubscribedChannels(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list subscribed channels after upload: %v", err)
	}
	if channels[0].LatestVideo == nil || channels[0].LatestVideo.ID != latest.ID {
		t.Fatalf("expected latest published video, got %+v", channels[0].LatestVideo)
	}

	subscribed, err = repo.Toggle(ctx, viewer.ID, channel.ID)
	if err != nil {
		t.Fatalf("toggle subscription off: %v", err)
	}
	if subscribed {
		t.Fatalf("expected second toggle to unsubscribe")
	}
	count, err = repo.CountSubscribers(ctx, channel.ID)
	if err != nil {
		t.Fatalf("count after unsubscribe: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 subscribers, got %d", count)
	}
}

func TestPostgresPlaylistRepository_MembershipAndAggregates(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	repo := NewPostgresPlaylistRepository(testPool)

	curator := createTestUser(t, userRepo, "curator")
	first := createTestVideo(t, videoRepo, curator.ID, "first", true)
	second := createTestVideo(t, videoRepo, curator.ID, "second", false)

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Name:        "Favorites",
		Description: "the good ones",
		OwnerID:     curator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}

	withOwner, err := repo.FindWithOwner(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("find with owner: %v", err)
	}
	if withOwner.Owner.Username != curator.Username {
		t.Fatalf("expected owner summary, got %+v", withOwner.Owner)
	}

	if err := repo.AddVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("add first video: %v", err)
	}
	if err := repo.AddVideo(ctx, playlist.ID, second.ID); err != nil {
		t.Fatalf("add second video: %v", err)
	}
	// Adding the same video twice is a no-op.
	if err := repo.AddVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("re-add first video: %v", err)
	}

	videos, err := repo.ListVideos(ctx, playlist.ID, false)
	if err != nil {
		t.Fatalf("list playlist videos: %v", err)
	}
	if len(videos) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(videos))
	}
	if videos[0].ID != first.ID || videos[1].ID != second.ID {
		t.Fatalf("expected insertion order, got %s then %s", videos[0].ID, videos[1].ID)
	}

	published, err := repo.ListVideos(ctx, playlist.ID, true)
	if err != nil {
		t.Fatalf("list published playlist videos: %v", err)
	}
	if len(published) != 1 || published[0].ID != first.ID {
		t.Fatalf("expected only the published video, got %+v", published)
	}

	summaries, err := repo.ListForOwner(ctx, curator.ID)
	if err != nil {
		t.Fatalf("list playlists: %v", err)
	}
	if len(summaries) != 1 || summaries[0].TotalVideos != 2 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}

	if err := repo.RemoveVideo(ctx, playlist.ID, first.ID); err != nil {
		t.Fatalf("remove video: %v", err)
	}
	videos, err = repo.ListVideos(ctx, playlist.ID, false)
	if err != nil {
		t.Fatalf("list after removal: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != second.ID {
		t.Fatalf("expected only the second video, got %+v", videos)
	}

	if err := repo.ClearVideos(ctx, playlist.ID); err != nil {
		t.Fatalf("clear videos: %v", err)
	}
	if err := repo.Delete(ctx, playlist.ID); err != nil {
		t.Fatalf("delete playlist: %v", err)
	}
	if _, err := repo.FindByID(ctx, playlist.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgresWatchHistoryRepository_RecordIdempotent(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	videoRepo := NewPostgresVideoRepository(testPool)
	repo := NewPostgresWatchHistoryRepository(testPool)

	viewer := createTestUser(t, userRepo, "viewer")
	creator := createTestUser(t, userRepo, "creator")
	video := createTestVideo(t, videoRepo, creator.ID, "watched", true)

	before := time.Now().UTC()
	if err := repo.Record(ctx, viewer.ID, video.ID); err != nil {
		t.Fatalf("record watch: %v", err)
	}
	// Re-watching keeps the original row.
	if err := repo.Record(ctx, viewer.ID, video.ID); err != nil {
		t.Fatalf("record watch again: %v", err)
	}

	watched, err := repo.ListForUser(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list watch history: %v", err)
	}
	if len(watched) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(watched))
	}
	if watched[0].ID != video.ID || watched[0].Owner.Username != creator.Username {
		t.Fatalf("unexpected history row: %+v", watched[0])
	}
	if !timesClose(watched[0].WatchedAt, before, time.Minute) {
		t.Fatalf("unexpected watchedAt: %v", watched[0].WatchedAt)
	}

	if err := repo.DeleteForVideo(ctx, video.ID); err != nil {
		t.Fatalf("delete history for video: %v", err)
	}
	watched, err = repo.ListForUser(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(watched) != 0 {
		t.Fatalf("expected empty history, got %d rows", len(watched))
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE likes, comments, tweets, watch_history, playlist_videos, playlists, subscriptions, videos, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	now := time.Now().UTC()
	user := models.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    username + "@example.com",
		FullName: username,
		Avatar: models.MediaFile{
			PublicID: "avatar-" + username,
			URL:      "https://cdn.test/avatar-" + username,
		},
		Password:  "password-hash",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestVideo(t *testing.T, repo *PostgresVideoRepository, ownerID, title string, published bool) models.Video {
	t.Helper()
	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.NewString(),
		VideoFile:   models.MediaFile{PublicID: "file-" + title, URL: "https://cdn.test/file-" + title},
		Thumbnail:   models.MediaFile{PublicID: "thumb-" + title, URL: "https://cdn.test/thumb-" + title},
		OwnerID:     ownerID,
		Title:       title,
		Description: "about " + title,
		Duration:    120,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(context.Background(), video); err != nil {
		t.Fatalf("create test video: %v", err)
	}
	return video
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
