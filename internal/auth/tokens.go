package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tweettube/backend/internal/models"
)

var (
	// ErrInvalidToken indicates the presented token failed signature or
	// structural validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates the presented token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// RefreshTokenStore persists the single active refresh token for a user.
// Issuing a new refresh token overwrites the previous one, which invalidates
// older sessions on their next refresh attempt.
type RefreshTokenStore interface {
	StoreRefreshToken(ctx context.Context, userID, refreshToken string) error
}

// AccessClaims is the payload carried by short-lived access tokens.
type AccessClaims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims is the minimal payload carried by long-lived refresh tokens.
type RefreshClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenPair groups the credentials issued to an authenticated user.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer signs and validates JWT access and refresh tokens. Access and
// refresh tokens use separate secrets so one cannot stand in for the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	store   RefreshTokenStore
	nowFunc func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer with the provided secrets and TTLs.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *TokenIssuer {
	if store == nil {
		panic("auth: refresh token store must not be nil")
	}
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		store:         store,
		nowFunc:       time.Now,
	}
}

// Issue creates a new access/refresh token pair for the user and records the
// refresh token as the user's current session token.
func (t *TokenIssuer) Issue(ctx context.Context, user models.User) (TokenPair, error) {
	now := t.nowFunc().UTC()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	})

	accessToken, err := access.SignedString(t.accessSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		ID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.refreshTTL)),
		},
	})

	refreshToken, err := refresh.SignedString(t.refreshSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := t.store.StoreRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (t *TokenIssuer) ParseAccessToken(tokenString string) (AccessClaims, error) {
	var claims AccessClaims
	if err := t.parse(tokenString, &claims, t.accessSecret); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

// ParseRefreshToken validates a refresh token and returns its claims.
func (t *TokenIssuer) ParseRefreshToken(tokenString string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := t.parse(tokenString, &claims, t.refreshSecret); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func (t *TokenIssuer) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(t.nowFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
