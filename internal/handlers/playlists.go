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

// PlaylistHandler serves playlist CRUD and membership endpoints.
type PlaylistHandler struct {
	playlists PlaylistStore
	videos    VideoStore
	users     UserStore
}

// NewPlaylistHandler constructs a PlaylistHandler.
func NewPlaylistHandler(deps Dependencies) *PlaylistHandler {
	return &PlaylistHandler{
		playlists: deps.Playlists,
		videos:    deps.Videos,
		users:     deps.Users,
	}
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create makes a new empty playlist owned by the caller.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.Description == "" {
		respondError(ctx, w, errBadRequest("All fields are required"))
		return
	}

	now := time.Now().UTC()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "Playlist created successfully")
}

// playlistDetail is a playlist with its owner and member videos.
type playlistDetail struct {
	repositories.PlaylistWithOwner
	Videos []models.Video `json:"videos"`
}

// Get returns a playlist with its videos. Unpublished member videos are
// visible to the playlist owner only.
func (h *PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := currentUser(ctx)

	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	playlist, err := h.playlists.FindWithOwner(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, notFoundAs(err, "Playlist not found"))
		return
	}

	publishedOnly := playlist.OwnerID != viewer.ID
	videos, err := h.playlists.ListVideos(ctx, playlistID, publishedOnly)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlistDetail{
		PlaylistWithOwner: playlist,
		Videos:            videos,
	}, "Playlist fetched successfully")
}

// Update renames a playlist. Only the owner may update.
func (h *PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	playlist, err := h.ownedPlaylist(r, user.ID, "only the owner can update this playlist")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" || req.Description == "" {
		respondError(ctx, w, errBadRequest("All fields are required"))
		return
	}

	if err := h.playlists.Update(ctx, playlist.ID, req.Name, req.Description); err != nil {
		respondError(ctx, w, err)
		return
	}

	playlist.Name = req.Name
	playlist.Description = req.Description
	respondData(ctx, w, http.StatusOK, playlist, "Playlist updated successfully")
}

// Delete removes a playlist and its membership rows. Only the owner may
// delete.
func (h *PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	playlist, err := h.ownedPlaylist(r, user.ID, "only the owner can delete this playlist")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.playlists.ClearVideos(ctx, playlist.ID); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.playlists.Delete(ctx, playlist.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{}, "Playlist deleted successfully")
}

// AddVideo appends a video to a playlist. Adding a video twice is a no-op.
// Only the owner may modify the playlist.
func (h *PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	playlist, videoID, err := h.ownedPlaylistAndVideo(r, user.ID, "only the owner can modify this playlist")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{}, "Video added to playlist successfully")
}

// RemoveVideo removes a video from a playlist. Only the owner may modify
// the playlist.
func (h *PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	playlist, videoID, err := h.ownedPlaylistAndVideo(r, user.ID, "only the owner can modify this playlist")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{}, "Video removed from playlist successfully")
}

// ListForUser returns a user's playlists with aggregate video counts and
// view totals.
func (h *PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ownerID, err := pathID(r, "userId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.users.FindByID(ctx, ownerID); err != nil {
		respondError(ctx, w, notFoundAs(err, "User not found"))
		return
	}

	playlists, err := h.playlists.ListForOwner(ctx, ownerID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "Playlists fetched successfully")
}

func (h *PlaylistHandler) ownedPlaylist(r *http.Request, userID, forbiddenMessage string) (models.Playlist, error) {
	playlistID, err := pathID(r, "playlistId")
	if err != nil {
		return models.Playlist{}, err
	}

	playlist, err := h.playlists.FindByID(r.Context(), playlistID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.Playlist{}, errNotFound("Playlist not found")
		}
		return models.Playlist{}, err
	}

	if playlist.OwnerID != userID {
		return models.Playlist{}, errForbidden(forbiddenMessage)
	}

	return playlist, nil
}

func (h *PlaylistHandler) ownedPlaylistAndVideo(r *http.Request, userID, forbiddenMessage string) (models.Playlist, string, error) {
	playlist, err := h.ownedPlaylist(r, userID, forbiddenMessage)
	if err != nil {
		return models.Playlist{}, "", err
	}

	videoID, err := pathID(r, "videoId")
	if err != nil {
		return models.Playlist{}, "", err
	}
	if _, err := h.videos.FindByID(r.Context(), videoID); err != nil {
		return models.Playlist{}, "", notFoundAs(err, "Video not found")
	}

	return playlist, videoID, nil
}
