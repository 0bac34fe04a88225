package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tweettube/backend/internal/models"
	"github.com/tweettube/backend/internal/repositories"
)

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// requireAuth wraps a handler with cookie-JWT authentication. The verified
// user is loaded from the store and placed on the request context.
func requireAuth(tokens TokenService, users UserStore, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tokenString := accessTokenFrom(r)
		if tokenString == "" {
			respondError(ctx, w, errUnauthorized("unauthorized request"))
			return
		}

		claims, err := tokens.ParseAccessToken(tokenString)
		if err != nil {
			respondError(ctx, w, errUnauthorized("invalid access token"))
			return
		}

		user, err := users.FindByID(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				respondError(ctx, w, errUnauthorized("invalid access token"))
				return
			}
			respondError(ctx, w, err)
			return
		}

		next(w, r.WithContext(context.WithValue(ctx, currentUserKey, user)))
	}
}

// currentUser returns the authenticated user stored by requireAuth.
func currentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(currentUserKey).(models.User)
	return user, ok
}

// accessTokenFrom extracts the access token from the cookie, falling back to
// a bearer Authorization header for non-browser clients.
func accessTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
