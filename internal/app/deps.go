package app

import (
	"time"

	"github.com/tweettube/backend/internal/auth"
	"github.com/tweettube/backend/internal/config"
	"github.com/tweettube/backend/internal/db"
	"github.com/tweettube/backend/internal/handlers"
	"github.com/tweettube/backend/internal/middleware"
	"github.com/tweettube/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(pool db.Pool, cfg config.Config, media handlers.MediaStorage) handlers.Dependencies {
	users := repositories.NewPostgresUserRepository(pool)
	tokens := auth.NewTokenIssuer(
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
		users,
	)

	return handlers.Dependencies{
		Users:         users,
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		WatchHistory:  repositories.NewPostgresWatchHistoryRepository(pool),
		Tokens:        tokens,
		Media:         media,

		CredentialLimiter: middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),

		AllowSelfSubscribe: cfg.AllowSelfSubscribe,
	}
}
