package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	FindByUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Create(ctx context.Context, notification *Notification) error {
	data, err := json.Marshal(notification.Data)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO notifications (user_id, type, title, message, data, read)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		notification.UserID, notification.Type, notification.Title,
		notification.Message, data,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *pgNotificationRepository) FindByUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}

func (r *pgNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`,
		userID,
	).Scan(&count)
	return count, err
}

func (r *pgNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return err
}

func (r *pgNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		userID,
	)
	return err
}

func (r *pgNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM notifications WHERE created_at < $1 AND read = TRUE`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func scanNotification(row pgx.Row) (*Notification, error) {
	notification := &Notification{}
	var data []byte
	err := row.Scan(
		&notification.ID, &notification.UserID, &notification.Type, &notification.Title,
		&notification.Message, &data, &notification.Read, &notification.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &notification.Data); err != nil {
			return nil, err
		}
	}
	return notification, nil
}
