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

// CommentHandler serves comment CRUD under videos.
type CommentHandler struct {
	comments CommentStore
	videos   VideoStore
	likes    LikeStore
}

// NewCommentHandler constructs a CommentHandler.
func NewCommentHandler(deps Dependencies) *CommentHandler {
	return &CommentHandler{
		comments: deps.Comments,
		videos:   deps.Videos,
		likes:    deps.Likes,
	}
}

type commentRequest struct {
	Content string `json:"content"`
}

// List returns a page of a video's comments with owner summaries, live like
// counts, and the viewer's like state.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := currentUser(ctx)

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, errNotFound("Video not found"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	page, limit := pageParams(r)
	comments, total, err := h.comments.ListForVideo(ctx, videoID, viewer.ID, page, limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, models.NewPage(comments, total, page, limit), "Comments fetched successfully")
}

// Create adds a comment to a video.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, errBadRequest("Content is required"))
		return
	}

	if _, err := h.videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, errNotFound("Video not found"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.NewString(),
		Content:   req.Content,
		VideoID:   videoID,
		OwnerID:   user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "Comment added successfully")
}

// Update edits a comment's content. Only the owner may edit.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	comment, err := h.ownedComment(r, user.ID, "only the owner can edit this comment")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, errBadRequest("Content is required"))
		return
	}

	if err := h.comments.Update(ctx, comment.ID, req.Content); err != nil {
		respondError(ctx, w, err)
		return
	}

	comment.Content = req.Content
	respondData(ctx, w, http.StatusOK, comment, "Comment updated successfully")
}

// Delete removes a comment and its likes. Only the owner may delete.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	comment, err := h.ownedComment(r, user.ID, "only the owner can delete this comment")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.likes.DeleteForComment(ctx, comment.ID); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.comments.Delete(ctx, comment.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{}, "Comment deleted successfully")
}

func (h *CommentHandler) ownedComment(r *http.Request, userID, forbiddenMessage string) (models.Comment, error) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		return models.Comment{}, err
	}

	comment, err := h.comments.FindByID(r.Context(), commentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Comment{}, errNotFound("Comment not found")
		}
		return models.Comment{}, err
	}

	if comment.OwnerID != userID {
		return models.Comment{}, errForbidden(forbiddenMessage)
	}

	return comment, nil
}
