package handlers

import (
	"net/http"

	"github.com/tweettube/backend/internal/auth"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// setAuthCookies delivers the token pair as HTTP-only cross-site cookies.
func setAuthCookies(w http.ResponseWriter, pair auth.TokenPair) {
	http.SetCookie(w, authCookie(accessTokenCookie, pair.AccessToken, 0))
	http.SetCookie(w, authCookie(refreshTokenCookie, pair.RefreshToken, 0))
}

// clearAuthCookies expires both token cookies.
func clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, authCookie(accessTokenCookie, "", -1))
	http.SetCookie(w, authCookie(refreshTokenCookie, "", -1))
}

func authCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
