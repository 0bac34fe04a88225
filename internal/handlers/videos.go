package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tweettube/backend/internal/logging"
	"github.com/tweettube/backend/internal/models"
	"github.com/tweettube/backend/internal/repositories"
)

// VideoHandler serves the video listing, upload, and lifecycle endpoints.
type VideoHandler struct {
	videos        VideoStore
	users         UserStore
	likes         LikeStore
	comments      CommentStore
	subscriptions SubscriptionStore
	watchHistory  WatchHistoryStore
	media         MediaStorage
}

// NewVideoHandler constructs a VideoHandler.
func NewVideoHandler(deps Dependencies) *VideoHandler {
	return &VideoHandler{
		videos:        deps.Videos,
		users:         deps.Users,
		likes:         deps.Likes,
		comments:      deps.Comments,
		subscriptions: deps.Subscriptions,
		watchHistory:  deps.WatchHistory,
		media:         deps.Media,
	}
}

// List returns a page of published videos. Supports free-text search over
// title/description, an owner filter, and allow-listed sort keys.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, limit := pageParams(r)
	params := repositories.ListVideosParams{
		Query:   strings.TrimSpace(r.URL.Query().Get("query")),
		SortBy:  r.URL.Query().Get("sortBy"),
		SortAsc: r.URL.Query().Get("sortType") == "asc",
		Page:    page,
		Limit:   limit,
	}

	if ownerID := r.URL.Query().Get("userId"); ownerID != "" {
		if uuid.Validate(ownerID) != nil {
			respondError(ctx, w, errBadRequest("Invalid user id"))
			return
		}
		params.OwnerID = ownerID
	}

	videos, total, err := h.videos.ListPublic(ctx, params)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, models.NewPage(videos, total, page, limit), "Videos fetched successfully")
}

// Publish uploads a new video with its thumbnail. Videos start unpublished;
// the owner flips visibility through TogglePublish.
func (h *VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errBadRequest("invalid multipart form"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, errBadRequest("All fields are required"))
		return
	}

	duration := 0
	if raw := r.FormValue("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(ctx, w, errBadRequest("Invalid duration"))
			return
		}
		duration = parsed
	}

	videoPath, cleanupVideo, err := saveUpload(r, "videoFile")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer cleanupVideo()

	thumbnailPath, cleanupThumbnail, err := saveUpload(r, "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer cleanupThumbnail()

	videoFile, err := h.media.Upload(ctx, videoPath)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	thumbnail, err := h.media.Upload(ctx, thumbnailPath)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	video := models.Video{
		ID:          uuid.NewString(),
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
		OwnerID:     user.ID,
		Title:       title,
		Description: description,
		Duration:    duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.videos.Create(ctx, video); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "Video uploaded successfully")
}

// videoDetail is the aggregated single-video view.
type videoDetail struct {
	models.Video
	Owner      videoDetailOwner `json:"owner"`
	LikesCount int64            `json:"likesCount"`
	IsLiked    bool             `json:"isLiked"`
}

type videoDetailOwner struct {
	models.OwnerSummary
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// Get returns one video with its owner, live like and subscriber counts, and
// the viewer's like/subscribe state. Fetching counts a view and records the
// video in the viewer's watch history.
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := currentUser(ctx)

	videoID, err := pathID(r, "videoId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, errNotFound("Video not found"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	views, err := h.videos.IncrementViews(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	video.Views = views

	if err := h.watchHistory.Record(ctx, viewer.ID, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	owner, err := h.users.FindByID(ctx, video.OwnerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	likesCount, err := h.likes.CountForVideo(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	isLiked, err := h.likes.IsVideoLiked(ctx, videoID, viewer.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	subscribers, err := h.subscriptions.CountSubscribers(ctx, video.OwnerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	isSubscribed, err := h.subscriptions.IsSubscribed(ctx, viewer.ID, video.OwnerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, videoDetail{
		Video: video,
		Owner: videoDetailOwner{
			OwnerSummary: models.OwnerSummary{
				ID:       owner.ID,
				Username: owner.Username,
				FullName: owner.FullName,
				Avatar:   owner.Avatar,
			},
			SubscribersCount: subscribers,
			IsSubscribed:     isSubscribed,
		},
		LikesCount: likesCount,
		IsLiked:    isLiked,
	}, "Video fetched successfully")
}

// Update changes the video's title, description and optionally its
// thumbnail. Only the owner may update; a replaced thumbnail is removed from
// storage.
func (h *VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	video, err := h.ownedVideo(r, user.ID, "only the owner can update this video")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errBadRequest("invalid multipart form"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, errBadRequest("All fields are required"))
		return
	}

	thumbnail := video.Thumbnail
	replacedThumbnail := ""
	if formHasFile(r, "thumbnail") {
		path, cleanup, err := saveUpload(r, "thumbnail")
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		defer cleanup()

		uploaded, err := h.media.Upload(ctx, path)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		replacedThumbnail = thumbnail.PublicID
		thumbnail = uploaded
	}

	if err := h.videos.Update(ctx, video.ID, title, description, thumbnail); err != nil {
		respondError(ctx, w, err)
		return
	}

	if replacedThumbnail != "" {
		h.removeMedia(ctx, replacedThumbnail)
	}

	updated, err := h.videos.FindByID(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Video updated successfully")
}

// Delete removes the video and everything hanging off it: likes (including
// comment likes), comments, watch-history rows, the stored media objects,
// and finally the row itself.
func (h *VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	video, err := h.ownedVideo(r, user.ID, "only the owner can delete this video")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.likes.DeleteForVideo(ctx, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.comments.DeleteForVideo(ctx, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.watchHistory.DeleteForVideo(ctx, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	h.removeMedia(ctx, video.VideoFile.PublicID)
	h.removeMedia(ctx, video.Thumbnail.PublicID)

	if err := h.videos.Delete(ctx, video.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{}, "Video deleted successfully")
}

// TogglePublish flips the video's publish flag. Only the owner may toggle.
func (h *VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	video, err := h.ownedVideo(r, user.ID, "only the owner can toggle publish status")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.videos.SetPublished(ctx, video.ID, !video.IsPublished); err != nil {
		respondError(ctx, w, err)
		return
	}

	updated, err := h.videos.FindByID(ctx, video.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Publish status toggled successfully")
}

// ownedVideo loads the path video and verifies the caller owns it.
func (h *VideoHandler) ownedVideo(r *http.Request, userID, forbiddenMessage string) (models.Video, error) {
	videoID, err := pathID(r, "videoId")
	if err != nil {
		return models.Video{}, err
	}

	video, err := h.videos.FindByID(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Video{}, errNotFound("Video not found")
		}
		return models.Video{}, err
	}

	if video.OwnerID != userID {
		return models.Video{}, errForbidden(forbiddenMessage)
	}

	return video, nil
}

func (h *VideoHandler) removeMedia(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := h.media.Delete(ctx, publicID); err != nil {
		logging.FromContext(ctx).Warn("delete media object", "publicId", publicID, "error", err)
	}
}
