package handlers

import (
	"errors"
	"net/http"

	"github.com/tweettube/backend/internal/repositories"
)

// LikeHandler serves the like toggles and the liked-videos listing.
type LikeHandler struct {
	likes    LikeStore
	videos   VideoStore
	comments CommentStore
	tweets   TweetStore
}

// NewLikeHandler constructs a LikeHandler.
func NewLikeHandler(deps Dependencies) *LikeHandler {
	return &LikeHandler{
		likes:    deps.Likes,
		videos:   deps.Videos,
		comments: deps.Comments,
		tweets:   deps.Tweets,
	}
}

// ToggleVideo flips the caller's like on a video and reports the new state.
func (h *LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if _, err := h.videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, notFoundAs(err, "Video not found"))
		return
	}

	liked, err := h.likes.ToggleVideo(ctx, videoID, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{"isLiked": liked}, "Video like toggled successfully")
}

// ToggleComment flips the caller's like on a comment and reports the new state.
func (h *LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	commentID, err := pathID(r, "commentId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if _, err := h.comments.FindByID(ctx, commentID); err != nil {
		respondError(ctx, w, notFoundAs(err, "Comment not found"))
		return
	}

	liked, err := h.likes.ToggleComment(ctx, commentID, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{"isLiked": liked}, "Comment like toggled successfully")
}

// ToggleTweet flips the caller's like on a tweet and reports the new state.
func (h *LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	tweetID, err := pathID(r, "tweetId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if _, err := h.tweets.FindByID(ctx, tweetID); err != nil {
		respondError(ctx, w, notFoundAs(err, "Tweet not found"))
		return
	}

	liked, err := h.likes.ToggleTweet(ctx, tweetID, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{"isLiked": liked}, "Tweet like toggled successfully")
}

// LikedVideos lists the published videos the caller has liked.
func (h *LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	videos, err := h.likes.ListLikedVideos(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "Liked videos fetched successfully")
}

// notFoundAs converts a missing-row error into a caller-facing 404, passing
// other errors through unchanged.
func notFoundAs(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return errNotFound(message)
	}
	return err
}
