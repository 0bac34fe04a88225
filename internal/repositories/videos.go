package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tweettube/backend/internal/db"
	"github.com/tweettube/backend/internal/models"
)

const videoColumns = `id, video_file, thumbnail, owner_id, title, description, duration, views, is_published, created_at, updated_at`

// sortableVideoColumns is the allow-list for caller-supplied sort keys.
var sortableVideoColumns = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

// ListVideosParams filters and paginates the public video listing.
type ListVideosParams struct {
	Query   string
	OwnerID string
	SortBy  string
	SortAsc bool
	Page    int
	Limit   int
}

// VideoWithOwner pairs a video with its owner's public summary.
type VideoWithOwner struct {
	models.Video
	Owner models.OwnerSummary `json:"owner"`
}

// ChannelStats aggregates a channel's video counters at read time.
type ChannelStats struct {
	TotalVideos int64
	TotalViews  int64
	TotalLikes  int64
}

// ChannelVideo is a dashboard row: one of the owner's videos with its live
// like count, published or not.
type ChannelVideo struct {
	models.Video
	LikesCount int64 `json:"likesCount"`
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Create persists a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, video_file, thumbnail, owner_id, title, description, duration, views, is_published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.VideoFile, video.Thumbnail, video.OwnerID, video.Title, video.Description,
		video.Duration, video.Views, video.IsPublished, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		if translated := translatePgError(err); translated != nil {
			return translated
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by primary key.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// ListPublic returns one page of published videos matching the filters,
// together with the total match count. Search is a case-insensitive
// substring match over title and description.
func (r *PostgresVideoRepository) ListPublic(ctx context.Context, params ListVideosParams) ([]VideoWithOwner, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := []string{"v.is_published = TRUE"}
	args := []any{}

	if params.OwnerID != "" {
		args = append(args, params.OwnerID)
		where = append(where, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	if params.Query != "" {
		args = append(args, "%"+params.Query+"%")
		where = append(where, fmt.Sprintf("(v.title ILIKE $%d OR v.description ILIKE $%d)", len(args), len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM videos v WHERE ` + whereClause
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	orderColumn, ok := sortableVideoColumns[params.SortBy]
	if !ok {
		orderColumn = "created_at"
		params.SortAsc = false
	}
	direction := "DESC"
	if params.SortAsc {
		direction = "ASC"
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`
        SELECT v.id, v.video_file, v.thumbnail, v.owner_id, v.title, v.description,
               v.duration, v.views, v.is_published, v.created_at, v.updated_at,
               u.id, u.username, u.full_name, u.avatar
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE %s
        ORDER BY v.%s %s
        LIMIT $%d OFFSET $%d
    `, whereClause, orderColumn, direction, len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []VideoWithOwner
	for rows.Next() {
		var row VideoWithOwner
		if err := rows.Scan(
			&row.ID, &row.VideoFile, &row.Thumbnail, &row.OwnerID, &row.Title, &row.Description,
			&row.Duration, &row.Views, &row.IsPublished, &row.CreatedAt, &row.UpdatedAt,
			&row.Owner.ID, &row.Owner.Username, &row.Owner.FullName, &row.Owner.Avatar,
		); err != nil {
			return nil, 0, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, total, nil
}

// IncrementViews atomically bumps the view counter and returns the new value.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var views int64
	err = conn.QueryRow(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1
        RETURNING views
    `, id).Scan(&views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("increment views: %w", err)
	}

	return views, nil
}

// Update replaces the video's title, description and thumbnail.
func (r *PostgresVideoRepository) Update(ctx context.Context, id, title, description string, thumbnail models.MediaFile) error {
	return r.exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail = $4, updated_at = NOW()
        WHERE id = $1
    `, id, title, description, thumbnail)
}

// SetPublished flips the video's publish flag.
func (r *PostgresVideoRepository) SetPublished(ctx context.Context, id string, published bool) error {
	return r.exec(ctx, `
        UPDATE videos
        SET is_published = $2, updated_at = NOW()
        WHERE id = $1
    `, id, published)
}

// Delete removes the video row. Dependent likes, comments and watch-history
// rows are removed by the caller first; no schema-level cascade exists.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
}

// Stats computes live aggregate counters for a channel's videos.
func (r *PostgresVideoRepository) Stats(ctx context.Context, ownerID string) (ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stats ChannelStats
	err = conn.QueryRow(ctx, `
        SELECT COUNT(v.id),
               COALESCE(SUM(v.views), 0),
               COALESCE((SELECT COUNT(*) FROM likes l JOIN videos lv ON lv.id = l.video_id WHERE lv.owner_id = $1), 0)
        FROM videos v
        WHERE v.owner_id = $1
    `, ownerID).Scan(&stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes)
	if err != nil {
		return ChannelStats{}, fmt.Errorf("aggregate channel stats: %w", err)
	}

	return stats, nil
}

// ListByOwner returns all of the owner's videos, newest first, with live like
// counts. Unpublished videos are included; this feeds the owner dashboard.
func (r *PostgresVideoRepository) ListByOwner(ctx context.Context, ownerID string) ([]ChannelVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.video_file, v.thumbnail, v.owner_id, v.title, v.description,
               v.duration, v.views, v.is_published, v.created_at, v.updated_at,
               COUNT(l.id)
        FROM videos v
        LEFT JOIN likes l ON l.video_id = v.id
        WHERE v.owner_id = $1
        GROUP BY v.id
        ORDER BY v.created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query channel videos: %w", err)
	}
	defer rows.Close()

	var videos []ChannelVideo
	for rows.Next() {
		var row ChannelVideo
		if err := rows.Scan(
			&row.ID, &row.VideoFile, &row.Thumbnail, &row.OwnerID, &row.Title, &row.Description,
			&row.Duration, &row.Views, &row.IsPublished, &row.CreatedAt, &row.UpdatedAt,
			&row.LikesCount,
		); err != nil {
			return nil, fmt.Errorf("scan channel video: %w", err)
		}
		videos = append(videos, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel videos: %w", err)
	}

	return videos, nil
}

func (r *PostgresVideoRepository) exec(ctx context.Context, query string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		if translated := translatePgError(err); translated != nil {
			return translated
		}
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(
		&video.ID, &video.VideoFile, &video.Thumbnail, &video.OwnerID, &video.Title,
		&video.Description, &video.Duration, &video.Views, &video.IsPublished,
		&video.CreatedAt, &video.UpdatedAt,
	)
	return video, err
}
