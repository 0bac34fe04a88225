package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tweettube/backend/internal/auth"
	"github.com/tweettube/backend/internal/logging"
	"github.com/tweettube/backend/internal/models"
	"github.com/tweettube/backend/internal/repositories"
)

// UserHandler serves registration, session, and profile endpoints.
type UserHandler struct {
	users         UserStore
	subscriptions SubscriptionStore
	watchHistory  WatchHistoryStore
	tokens        TokenService
	media         MediaStorage
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(deps Dependencies) *UserHandler {
	return &UserHandler{
		users:         deps.Users,
		subscriptions: deps.Subscriptions,
		watchHistory:  deps.WatchHistory,
		tokens:        deps.Tokens,
		media:         deps.Media,
	}
}

// Register creates a new account from a multipart form carrying the profile
// fields plus an avatar image and an optional cover image.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errBadRequest("invalid multipart form"))
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	email := strings.TrimSpace(r.FormValue("email"))
	username := strings.ToLower(strings.TrimSpace(r.FormValue("username")))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondError(ctx, w, errBadRequest("All fields are required"))
		return
	}

	email, err := normalizeEmail(email)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	_, err = h.users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		respondError(ctx, w, errConflict("User with email or username already exists"))
		return
	case !errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, err)
		return
	}

	avatarPath, cleanupAvatar, err := saveUpload(r, "avatar")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer cleanupAvatar()

	avatar, err := h.media.Upload(ctx, avatarPath)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	var coverImage *models.MediaFile
	if formHasFile(r, "coverImage") {
		coverPath, cleanupCover, err := saveUpload(r, "coverImage")
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		defer cleanupCover()

		cover, err := h.media.Upload(ctx, coverPath)
		if err != nil {
			respondError(ctx, w, err)
			return
		}
		coverImage = &cover
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatar,
		CoverImage: coverImage,
		Password:   hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, errConflict("User with email or username already exists"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusCreated, user, "User registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// Login authenticates by username or email and issues the token pair as
// cookies and in the response body.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}

	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" && req.Email == "" {
		respondError(ctx, w, errBadRequest("username or email is required"))
		return
	}

	user, err := h.users.FindByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, errNotFound("User does not exist"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	if !auth.VerifyPassword(req.Password, user.Password) {
		respondError(ctx, w, errUnauthorized("Invalid user credentials"))
		return
	}

	pair, err := h.tokens.Issue(ctx, user)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setAuthCookies(w, pair)
	respondData(ctx, w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "User logged in successfully")
}

// Logout invalidates the stored refresh token and clears the auth cookies.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	if err := h.users.ClearRefreshToken(ctx, user.ID); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearAuthCookies(w)
	respondData(ctx, w, http.StatusOK, map[string]any{}, "User logged out")
}

// RefreshSession exchanges a valid refresh token, from the cookie or the
// request body, for a fresh token pair. The stored token rotates on every
// refresh, so a replayed older token is rejected.
func (h *UserHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenString := refreshTokenFrom(r)
	if tokenString == "" {
		respondError(ctx, w, errUnauthorized("unauthorized request"))
		return
	}

	claims, err := h.tokens.ParseRefreshToken(tokenString)
	if err != nil {
		respondError(ctx, w, errUnauthorized("Invalid refresh token"))
		return
	}

	user, err := h.users.FindByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, errUnauthorized("Invalid refresh token"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	if user.RefreshToken == nil || *user.RefreshToken != tokenString {
		respondError(ctx, w, errUnauthorized("Refresh token is expired or used"))
		return
	}

	pair, err := h.tokens.Issue(ctx, user)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setAuthCookies(w, pair)
	respondData(ctx, w, http.StatusOK, pair, "Access token refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword verifies the current password before storing a new hash.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, errBadRequest("All fields are required"))
		return
	}

	if !auth.VerifyPassword(req.OldPassword, user.Password) {
		respondError(ctx, w, errBadRequest("Invalid old password"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{}, "Password changed successfully")
}

// CurrentUser returns the authenticated user's profile.
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)
	respondData(ctx, w, http.StatusOK, user, "User fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateAccount replaces the user's full name and email.
func (h *UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errBadRequest("invalid request body"))
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" || req.Email == "" {
		respondError(ctx, w, errBadRequest("All fields are required"))
		return
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.users.UpdateDetails(ctx, user.ID, req.FullName, email); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, errConflict("Email already in use"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	updated, err := h.users.FindByID(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Account details updated successfully")
}

// UpdateAvatar replaces the user's avatar image. The previous object is
// removed from storage once the new one is in place.
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errBadRequest("invalid multipart form"))
		return
	}

	path, cleanup, err := saveUpload(r, "avatar")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer cleanup()

	avatar, err := h.media.Upload(ctx, path)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.users.UpdateAvatar(ctx, user.ID, avatar); err != nil {
		respondError(ctx, w, err)
		return
	}

	h.removeMedia(ctx, user.Avatar.PublicID)

	updated, err := h.users.FindByID(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Avatar image updated successfully")
}

// UpdateCoverImage replaces the user's cover image.
func (h *UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errBadRequest("invalid multipart form"))
		return
	}

	path, cleanup, err := saveUpload(r, "coverImage")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	defer cleanup()

	cover, err := h.media.Upload(ctx, path)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.users.UpdateCoverImage(ctx, user.ID, cover); err != nil {
		respondError(ctx, w, err)
		return
	}

	if user.CoverImage != nil {
		h.removeMedia(ctx, user.CoverImage.PublicID)
	}

	updated, err := h.users.FindByID(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "Cover image updated successfully")
}

// channelProfile is the public view of a channel with live counters relative
// to the viewer.
type channelProfile struct {
	ID                        string            `json:"id"`
	Username                  string            `json:"username"`
	Email                     string            `json:"email"`
	FullName                  string            `json:"fullName"`
	Avatar                    models.MediaFile  `json:"avatar"`
	CoverImage                *models.MediaFile `json:"coverImage"`
	SubscribersCount          int64             `json:"subscribersCount"`
	ChannelsSubscribedToCount int64             `json:"channelsSubscribedToCount"`
	IsSubscribed              bool              `json:"isSubscribed"`
}

// ChannelProfile returns another user's channel page with subscriber counts
// and whether the viewer subscribes to it.
func (h *UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, _ := currentUser(ctx)

	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, errBadRequest("username is missing"))
		return
	}

	channel, err := h.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, errNotFound("Channel does not exist"))
			return
		}
		respondError(ctx, w, err)
		return
	}

	subscribers, err := h.subscriptions.CountSubscribers(ctx, channel.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	subscribedTo, err := h.subscriptions.CountSubscribedTo(ctx, channel.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	isSubscribed, err := h.subscriptions.IsSubscribed(ctx, viewer.ID, channel.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, channelProfile{
		ID:                        channel.ID,
		Username:                  channel.Username,
		Email:                     channel.Email,
		FullName:                  channel.FullName,
		Avatar:                    channel.Avatar,
		CoverImage:                channel.CoverImage,
		SubscribersCount:          subscribers,
		ChannelsSubscribedToCount: subscribedTo,
		IsSubscribed:              isSubscribed,
	}, "User channel fetched successfully")
}

// WatchHistory lists the videos the user has watched, most recent first.
func (h *UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	history, err := h.watchHistory.ListForUser(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, history, "Watch history fetched successfully")
}

// removeMedia deletes a stored object, logging failures instead of failing
// the request that replaced it.
func (h *UserHandler) removeMedia(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := h.media.Delete(ctx, publicID); err != nil {
		logging.FromContext(ctx).Warn("delete replaced media object", "publicId", publicID, "error", err)
	}
}

// normalizeEmail lower-cases the address and rejects anything that does not
// parse as a bare RFC 5322 address.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", errBadRequest("Invalid email address")
	}
	return email, nil
}

// refreshTokenFrom extracts the refresh token from the cookie, falling back
// to a JSON body for non-browser clients.
func refreshTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return ""
	}
	return body.RefreshToken
}
