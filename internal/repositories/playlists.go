package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tweettube/backend/internal/db"
	"github.com/tweettube/backend/internal/models"
)

// PlaylistWithOwner pairs a playlist with its owner's public summary.
type PlaylistWithOwner struct {
	models.Playlist
	Owner models.OwnerSummary `json:"owner"`
}

// PlaylistSummary is a row of a user's playlist listing with live aggregates
// over the contained videos.
type PlaylistSummary struct {
	models.Playlist
	TotalVideos int64 `json:"totalVideos"`
	TotalViews  int64 `json:"totalViews"`
}

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for
// playlists and their playlist-video junction rows.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// Create persists a new playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, name, description, owner_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.Name, playlist.Description, playlist.OwnerID, playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		if translated := translatePgError(err); translated != nil {
			return translated
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// FindByID fetches a playlist by primary key.
func (r *PostgresPlaylistRepository) FindByID(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var playlist models.Playlist
	row := conn.QueryRow(ctx, `
        SELECT id, name, description, owner_id, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id)
	if err := row.Scan(&playlist.ID, &playlist.Name, &playlist.Description, &playlist.OwnerID, &playlist.CreatedAt, &playlist.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	return playlist, nil
}

// FindWithOwner fetches a playlist joined with its owner's summary.
func (r *PostgresPlaylistRepository) FindWithOwner(ctx context.Context, id string) (PlaylistWithOwner, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return PlaylistWithOwner{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var playlist PlaylistWithOwner
	row := conn.QueryRow(ctx, `
        SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
               u.id, u.username, u.full_name, u.avatar
        FROM playlists p
        JOIN users u ON u.id = p.owner_id
        WHERE p.id = $1
    `, id)
	if err := row.Scan(
		&playlist.ID, &playlist.Name, &playlist.Description, &playlist.OwnerID,
		&playlist.CreatedAt, &playlist.UpdatedAt,
		&playlist.Owner.ID, &playlist.Owner.Username, &playlist.Owner.FullName, &playlist.Owner.Avatar,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlaylistWithOwner{}, ErrNotFound
		}
		return PlaylistWithOwner{}, fmt.Errorf("select playlist with owner: %w", err)
	}

	return playlist, nil
}

// Update replaces the playlist's name and description.
func (r *PostgresPlaylistRepository) Update(ctx context.Context, id, name, description string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE playlists
        SET name = $2, description = $3, updated_at = NOW()
        WHERE id = $1
    `, id, name, description)
	if err != nil {
		return fmt.Errorf("update playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the playlist row.
func (r *PostgresPlaylistRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ClearVideos removes every junction row for the playlist.
func (r *PostgresPlaylistRepository) ClearVideos(ctx context.Context, playlistID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM playlist_videos WHERE playlist_id = $1`, playlistID); err != nil {
		return fmt.Errorf("clear playlist videos: %w", err)
	}
	return nil
}

// AddVideo appends the video to the playlist. The operation is find-or-create:
// a video already present is left untouched, so adding twice yields one row.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	now := time.Now().UTC()
	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (id, playlist_id, video_id, position, created_at, updated_at)
        VALUES (
            $1, $2, $3,
            COALESCE((SELECT MAX(position) + 1 FROM playlist_videos WHERE playlist_id = $2), 1),
            $4, $4
        )
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, uuid.NewString(), playlistID, videoID, now)
	if err != nil {
		if translated := translatePgError(err); translated != nil {
			return translated
		}
		return fmt.Errorf("add playlist video: %w", err)
	}

	return nil
}

// RemoveVideo drops the video from the playlist when present.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, playlistID, videoID); err != nil {
		return fmt.Errorf("remove playlist video: %w", err)
	}
	return nil
}

// ListVideos returns the playlist's videos in playlist order. When
// publishedOnly is set, unpublished videos are filtered out.
func (r *PostgresPlaylistRepository) ListVideos(ctx context.Context, playlistID string, publishedOnly bool) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	query := `
        SELECT v.id, v.video_file, v.thumbnail, v.owner_id, v.title, v.description,
               v.duration, v.views, v.is_published, v.created_at, v.updated_at
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        WHERE pv.playlist_id = $1
    `
	if publishedOnly {
		query += ` AND v.is_published = TRUE`
	}
	query += ` ORDER BY pv.position ASC`

	rows, err := conn.Query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(
			&video.ID, &video.VideoFile, &video.Thumbnail, &video.OwnerID, &video.Title,
			&video.Description, &video.Duration, &video.Views, &video.IsPublished,
			&video.CreatedAt, &video.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan playlist video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return videos, nil
}

// ListForOwner returns the user's playlists with live video/view aggregates.
func (r *PostgresPlaylistRepository) ListForOwner(ctx context.Context, ownerID string) ([]PlaylistSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.name, p.description, p.owner_id, p.created_at, p.updated_at,
               COUNT(pv.id),
               COALESCE(SUM(v.views), 0)
        FROM playlists p
        LEFT JOIN playlist_videos pv ON pv.playlist_id = p.id
        LEFT JOIN videos v ON v.id = pv.video_id
        WHERE p.owner_id = $1
        GROUP BY p.id
        ORDER BY p.updated_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []PlaylistSummary
	for rows.Next() {
		var row PlaylistSummary
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Description, &row.OwnerID, &row.CreatedAt, &row.UpdatedAt,
			&row.TotalVideos, &row.TotalViews,
		); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	return playlists, nil
}
