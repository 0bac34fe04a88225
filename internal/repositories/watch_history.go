package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tweettube/backend/internal/db"
	"github.com/tweettube/backend/internal/models"
)

// WatchedVideo is a row of a user's watch history: the video, its owner's
// summary, and when the user first watched it.
type WatchedVideo struct {
	models.Video
	Owner     models.OwnerSummary `json:"owner"`
	WatchedAt time.Time           `json:"watchedAt"`
}

// PostgresWatchHistoryRepository provides PostgreSQL-backed persistence for
// the user-video watch-history junction.
type PostgresWatchHistoryRepository struct {
	pool db.Pool
}

// NewPostgresWatchHistoryRepository constructs a watch-history repository backed by PostgreSQL.
func NewPostgresWatchHistoryRepository(pool db.Pool) *PostgresWatchHistoryRepository {
	return &PostgresWatchHistoryRepository{pool: pool}
}

// Record notes that the user watched the video. Creation is idempotent:
// re-watching leaves the existing row untouched.
func (r *PostgresWatchHistoryRepository) Record(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	now := time.Now().UTC()
	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (id, user_id, video_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
        ON CONFLICT (user_id, video_id) DO NOTHING
    `, uuid.NewString(), userID, videoID, now)
	if err != nil {
		if translated := translatePgError(err); translated != nil {
			return translated
		}
		return fmt.Errorf("record watch history: %w", err)
	}

	return nil
}

// ListForUser returns the user's watched videos, most recently watched first.
func (r *PostgresWatchHistoryRepository) ListForUser(ctx context.Context, userID string) ([]WatchedVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.video_file, v.thumbnail, v.owner_id, v.title, v.description,
               v.duration, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar,
               wh.created_at
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var watched []WatchedVideo
	for rows.Next() {
		var row WatchedVideo
		if err := rows.Scan(
			&row.ID, &row.VideoFile, &row.Thumbnail, &row.OwnerID, &row.Title, &row.Description,
			&row.Duration, &row.Views, &row.IsPublished, &row.CreatedAt, &row.UpdatedAt,
			&row.Owner.ID, &row.Owner.Username, &row.Owner.FullName, &row.Owner.Avatar,
			&row.WatchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan watch history entry: %w", err)
		}
		watched = append(watched, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return watched, nil
}

// DeleteForVideo removes every watch-history row referencing the video.
func (r *PostgresWatchHistoryRepository) DeleteForVideo(ctx context.Context, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM watch_history WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("delete watch history: %w", err)
	}
	return nil
}
