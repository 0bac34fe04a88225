package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tweettube/backend/internal/db"
	"github.com/tweettube/backend/internal/models"
)

// LikedVideo is a row of the liked-videos listing: a published video the
// user has liked, with its owner's summary.
type LikedVideo struct {
	models.Video
	Owner models.OwnerSummary `json:"owner"`
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
// A like targets exactly one of a video, comment, or tweet; per-target
// partial unique indexes keep a (user, target) pair unique.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// ToggleVideo flips the (user, video) like and reports the resulting state.
func (r *PostgresLikeRepository) ToggleVideo(ctx context.Context, videoID, userID string) (bool, error) {
	return r.toggle(ctx, "video_id", videoID, userID)
}

// ToggleComment flips the (user, comment) like and reports the resulting state.
func (r *PostgresLikeRepository) ToggleComment(ctx context.Context, commentID, userID string) (bool, error) {
	return r.toggle(ctx, "comment_id", commentID, userID)
}

// ToggleTweet flips the (user, tweet) like and reports the resulting state.
func (r *PostgresLikeRepository) ToggleTweet(ctx context.Context, tweetID, userID string) (bool, error) {
	return r.toggle(ctx, "tweet_id", tweetID, userID)
}

// toggle deletes an existing like row or inserts a new one. Concurrent
// identical toggles race on the insert; the partial unique index rejects the
// loser, which is then reported as the "on" state rather than an error.
func (r *PostgresLikeRepository) toggle(ctx context.Context, targetColumn, targetID, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	deleteQuery := fmt.Sprintf(`DELETE FROM likes WHERE %s = $1 AND liked_by_id = $2`, targetColumn)
	tag, err := conn.Exec(ctx, deleteQuery, targetID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	insertQuery := fmt.Sprintf(`
        INSERT INTO likes (id, %s, liked_by_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
    `, targetColumn)
	if _, err := conn.Exec(ctx, insertQuery, uuid.NewString(), targetID, userID, now); err != nil {
		if translated := translatePgError(err); translated != nil {
			if errors.Is(translated, ErrConflict) {
				// Lost a race against an identical toggle; the like exists.
				return true, nil
			}
			return false, translated
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	return true, nil
}

// CountForVideo returns the live like count for a video.
func (r *PostgresLikeRepository) CountForVideo(ctx context.Context, videoID string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM likes WHERE video_id = $1`, videoID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count video likes: %w", err)
	}
	return count, nil
}

// IsVideoLiked reports whether the user currently likes the video.
func (r *PostgresLikeRepository) IsVideoLiked(ctx context.Context, videoID, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var liked bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM likes WHERE video_id = $1 AND liked_by_id = $2)
    `, videoID, userID).Scan(&liked)
	if err != nil {
		return false, fmt.Errorf("check video like: %w", err)
	}
	return liked, nil
}

// ListLikedVideos returns the published videos the user has liked, most
// recently liked first.
func (r *PostgresLikeRepository) ListLikedVideos(ctx context.Context, userID string) ([]LikedVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.video_file, v.thumbnail, v.owner_id, v.title, v.description,
               v.duration, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by_id = $1
          AND l.video_id IS NOT NULL
          AND v.is_published = TRUE
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var videos []LikedVideo
	for rows.Next() {
		var row LikedVideo
		if err := rows.Scan(
			&row.ID, &row.VideoFile, &row.Thumbnail, &row.OwnerID, &row.Title, &row.Description,
			&row.Duration, &row.Views, &row.IsPublished, &row.CreatedAt, &row.UpdatedAt,
			&row.Owner.ID, &row.Owner.Username, &row.Owner.FullName, &row.Owner.Avatar,
		); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		videos = append(videos, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return videos, nil
}

// DeleteForVideo removes every like row targeting the video or one of its
// comments. Comment likes must go first or the comment rows cannot be
// deleted afterwards.
func (r *PostgresLikeRepository) DeleteForVideo(ctx context.Context, videoID string) error {
	return r.deleteWhere(ctx, `
        DELETE FROM likes
        WHERE video_id = $1
           OR comment_id IN (SELECT id FROM comments WHERE video_id = $1)
    `, videoID)
}

// DeleteForComment removes every like row targeting the comment.
func (r *PostgresLikeRepository) DeleteForComment(ctx context.Context, commentID string) error {
	return r.deleteWhere(ctx, `DELETE FROM likes WHERE comment_id = $1`, commentID)
}

// DeleteForTweet removes every like row targeting the tweet.
func (r *PostgresLikeRepository) DeleteForTweet(ctx context.Context, tweetID string) error {
	return r.deleteWhere(ctx, `DELETE FROM likes WHERE tweet_id = $1`, tweetID)
}

func (r *PostgresLikeRepository) deleteWhere(ctx context.Context, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete likes: %w", err)
	}
	return nil
}
