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

// Subscriber is a row of a channel's subscriber listing: the subscriber's
// summary with their own live subscriber count, plus whether the channel
// subscribes back.
type Subscriber struct {
	models.OwnerSummary
	SubscribersCount       int64 `json:"subscribersCount"`
	SubscribedToSubscriber bool  `json:"subscribedToSubscriber"`
}

// SubscribedChannel is a row of a user's subscribed-channels listing: the
// channel's summary plus its latest published video, when one exists.
type SubscribedChannel struct {
	models.OwnerSummary
	LatestVideo *models.Video `json:"latestVideo"`
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// channel subscriptions. The (subscriber, channel) pair is unique.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the (subscriber, channel) subscription and reports the
// resulting state. Races between identical toggles are resolved by the
// unique constraint: the losing insert observes the row already present.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4)
    `, uuid.NewString(), subscriberID, channelID, now)
	if err != nil {
		if translated := translatePgError(err); translated != nil {
			if errors.Is(translated, ErrConflict) {
				return true, nil
			}
			return false, translated
		}
		return false, fmt.Errorf("insert subscription: %w", err)
	}

	return true, nil
}

// CountSubscribers returns the live number of subscribers of a channel.
func (r *PostgresSubscriptionRepository) CountSubscribers(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

// CountSubscribedTo returns the live number of channels a user subscribes to.
func (r *PostgresSubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

// IsSubscribed reports whether subscriber currently follows channel.
func (r *PostgresSubscriptionRepository) IsSubscribed(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var subscribed bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2)
    `, subscriberID, channelID).Scan(&subscribed)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return subscribed, nil
}

// ListSubscribers returns the channel's subscribers with live counts.
func (r *PostgresSubscriptionRepository) ListSubscribers(ctx context.Context, channelID string) ([]Subscriber, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar,
               (SELECT COUNT(*) FROM subscriptions sc WHERE sc.channel_id = u.id),
               EXISTS (
                   SELECT 1 FROM subscriptions back
                   WHERE back.subscriber_id = $1 AND back.channel_id = u.id
               )
        FROM subscriptions s
        JOIN users u ON u.id = s.subscriber_id
        WHERE s.channel_id = $1
        ORDER BY s.created_at DESC
    `, channelID)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var subscribers []Subscriber
	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(
			&sub.ID, &sub.Username, &sub.FullName, &sub.Avatar,
			&sub.SubscribersCount, &sub.SubscribedToSubscriber,
		); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}

	return subscribers, nil
}

// ListSubscribedChannels returns the channels the user subscribes to, each
// with its most recent published video when one exists.
func (r *PostgresSubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]SubscribedChannel, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.full_name, u.avatar,
               lv.id, lv.video_file, lv.thumbnail, lv.owner_id, lv.title, lv.description,
               lv.duration, lv.views, lv.is_published, lv.created_at, lv.updated_at
        FROM subscriptions s
        JOIN users u ON u.id = s.channel_id
        LEFT JOIN LATERAL (
            SELECT * FROM videos v
            WHERE v.owner_id = u.id AND v.is_published = TRUE
            ORDER BY v.created_at DESC
            LIMIT 1
        ) lv ON TRUE
        WHERE s.subscriber_id = $1
        ORDER BY s.created_at DESC
    `, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("query subscribed channels: %w", err)
	}
	defer rows.Close()

	var channels []SubscribedChannel
	for rows.Next() {
		var (
			ch    SubscribedChannel
			video models.Video

			videoID     *string
			videoFile   *models.MediaFile
			thumbnail   *models.MediaFile
			ownerID     *string
			title       *string
			description *string
			duration    *int
			views       *int64
			isPublished *bool
			createdAt   *time.Time
			updatedAt   *time.Time
		)

		if err := rows.Scan(
			&ch.ID, &ch.Username, &ch.FullName, &ch.Avatar,
			&videoID, &videoFile, &thumbnail, &ownerID, &title, &description,
			&duration, &views, &isPublished, &createdAt, &updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan subscribed channel: %w", err)
		}

		if videoID != nil {
			video = models.Video{
				ID:          *videoID,
				VideoFile:   *videoFile,
				Thumbnail:   *thumbnail,
				OwnerID:     *ownerID,
				Title:       *title,
				Description: *description,
				Duration:    *duration,
				Views:       *views,
				IsPublished: *isPublished,
				CreatedAt:   *createdAt,
				UpdatedAt:   *updatedAt,
			}
			ch.LatestVideo = &video
		}

		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribed channels: %w", err)
	}

	return channels, nil
}

func (r *PostgresSubscriptionRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return count, nil
}
