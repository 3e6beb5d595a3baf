package postgres

import (
	"context"
	"lincognito/internal/domain/notification"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, user_id, client_id, post_id, type, title, body, status, priority, created_at`

type NotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	n := &notification.Notification{}
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.ClientID,
		&n.PostID,
		&n.Type,
		&n.Title,
		&n.Body,
		&n.Status,
		&n.Priority,
		&n.CreatedAt,
	)
	return n, err
}

func (r *NotificationRepository) Create(ctx context.Context, input notification.CreateNotificationInput) (*notification.Notification, error) {
	priority := input.Priority
	if priority == "" {
		priority = notification.PriorityNormal
	}

	query := `
		INSERT INTO notifications (id, user_id, client_id, post_id, type, title, body, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + notificationColumns

	n, err := scanNotification(r.db.Pool.QueryRow(ctx, query,
		uuid.New(),
		input.UserID,
		input.ClientID,
		input.PostID,
		input.Type,
		input.Title,
		input.Body,
		priority,
	))
	if err != nil {
		return nil, errFailedCreateNotification(err)
	}

	return n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListNotifications(err)
	}
	defer rows.Close()

	var items []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, errFailedScanNotification(err)
		}
		items = append(items, n)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListNotifications(err)
	}

	return items, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*notification.Notification, error) {
	query := `
		UPDATE notifications SET status = 'read'
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns

	n, err := scanNotification(r.db.Pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errNotificationNotFound)
		}
		return nil, errFailedUpdateNotification(err)
	}

	return n, nil
}

// MarkAllRead returns how many notifications changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `UPDATE notifications SET status = 'read' WHERE user_id = $1 AND status = 'unread'`

	result, err := r.db.Pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, errFailedUpdateNotification(err)
	}

	return result.RowsAffected(), nil
}

// GetSettings falls back to the defaults when the user never saved any.
func (r *NotificationRepository) GetSettings(ctx context.Context, userID uuid.UUID) (notification.Settings, error) {
	query := `
		SELECT user_id, email_post_published, email_client_added, email_weekly_report, in_app_messages, updated_at
		FROM notification_settings
		WHERE user_id = $1
	`

	var s notification.Settings
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.EmailPostPublished,
		&s.EmailClientAdded,
		&s.EmailWeeklyReport,
		&s.InAppMessages,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return notification.DefaultSettings(userID), nil
		}
		return notification.Settings{}, errFailedGetSettings(err)
	}

	return s, nil
}

func (r *NotificationRepository) UpsertSettings(ctx context.Context, s notification.Settings) (notification.Settings, error) {
	query := `
		INSERT INTO notification_settings (user_id, email_post_published, email_client_added, email_weekly_report, in_app_messages)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET email_post_published = EXCLUDED.email_post_published,
		    email_client_added = EXCLUDED.email_client_added,
		    email_weekly_report = EXCLUDED.email_weekly_report,
		    in_app_messages = EXCLUDED.in_app_messages,
		    updated_at = NOW()
		RETURNING user_id, email_post_published, email_client_added, email_weekly_report, in_app_messages, updated_at
	`

	var out notification.Settings
	err := r.db.Pool.QueryRow(ctx, query, s.UserID, s.EmailPostPublished, s.EmailClientAdded, s.EmailWeeklyReport, s.InAppMessages).Scan(
		&out.UserID,
		&out.EmailPostPublished,
		&out.EmailClientAdded,
		&out.EmailWeeklyReport,
		&out.InAppMessages,
		&out.UpdatedAt,
	)
	if err != nil {
		return notification.Settings{}, errFailedSaveSettings(err)
	}

	return out, nil
}
