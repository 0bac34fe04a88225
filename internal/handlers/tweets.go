package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tweettube/backend/internal/models"
	"github.com/tweettube/backend/internal/repositories"
)

// TweetHandler serves the short-post endpoints.
type TweetHandler struct {
	tweets TweetStore
	users  UserStore
	likes  LikeStore
}

// NewTweetHandler constructs a TweetHandler.
func NewTweetHandler(deps Dependencies) *TweetHandler {
	return &TweetHandler{tweets: deps.Tweets, users: deps.Users, likes: deps.Likes}
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create posts a new tweet.
func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, errBadRequest("Content is required"))
		return
	}

	now := time.Now().UTC()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		Content:   req.Content,
		OwnerID:   user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "Tweet created successfully")
}

// ListForUser returns a user's tweets with owner summaries, like counts, and
// the viewer's like state.
func (h *TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := currentUser(ctx)

	ownerID, err := pathID(r, "userId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.users.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, errNotFound("User not found"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	tweets, err := h.tweets.ListForOwner(ctx, ownerID, viewer.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, tweets, "Tweets fetched successfully")
}

// Update edits a tweet's content. Only the owner may edit.
func (h *TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	tweet, err := h.ownedTweet(r, user.ID, "only the owner can edit this tweet")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, errBadRequest("Content is required"))
		return
	}

	if err := h.tweets.Update(ctx, tweet.ID, req.Content); err != nil {
		respondError(ctx, w, err)
		return
	}

	tweet.Content = req.Content
	respondData(ctx, w, http.StatusOK, tweet, "Tweet updated successfully")
}

// Delete removes a tweet. Only the owner may delete.
func (h *TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	tweet, err := h.ownedTweet(r, user.ID, "only the owner can delete this tweet")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.likes.DeleteForTweet(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.tweets.Delete(ctx, tweet.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{}, "Tweet deleted successfully")
}

func (h *TweetHandler) ownedTweet(r *http.Request, userID, forbiddenMessage string) (models.Tweet, error) {
	tweetID, err := pathID(r, "tweetId")
	if err != nil {
		return models.Tweet{}, err
	}

	tweet, err := h.tweets.FindByID(r.Context(), tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Tweet{}, errNotFound("Tweet not found")
		}
		return models.Tweet{}, err
	}

	if tweet.OwnerID != userID {
		return models.Tweet{}, errForbidden(forbiddenMessage)
	}

	return tweet, nil
}
