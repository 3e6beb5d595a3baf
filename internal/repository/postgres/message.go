package postgres

import (
	"context"
	"lincognito/internal/domain/message"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const messageColumns = `id, user_id, client_id, post_id, parent_id, subject, body, status, priority, direction, created_at, updated_at`

type MessageRepository struct {
	db *DB
}

func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func scanMessage(row pgx.Row) (*message.Message, error) {
	m := &message.Message{}
	err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.ClientID,
		&m.PostID,
		&m.ParentID,
		&m.Subject,
		&m.Body,
		&m.Status,
		&m.Priority,
		&m.Direction,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}

func (r *MessageRepository) Create(ctx context.Context, input message.CreateMessageInput) (*message.Message, error) {
	status := input.Status
	if status == "" {
		status = message.StatusUnread
	}
	priority := input.Priority
	if priority == "" {
		priority = message.PriorityNormal
	}
	direction := input.Direction
	if direction == "" {
		direction = message.DirectionOutbound
	}

	query := `
		INSERT INTO messages (id, user_id, client_id, post_id, parent_id, subject, body, status, priority, direction)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + messageColumns

	m, err := scanMessage(r.db.Pool.QueryRow(ctx, query,
		uuid.New(),
		input.UserID,
		input.ClientID,
		input.PostID,
		input.ParentID,
		input.Subject,
		input.Body,
		status,
		priority,
		direction,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errClientNotFound)
		}
		return nil, errFailedCreateMessage(err)
	}

	return m, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*message.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1 AND user_id = $2`

	m, err := scanMessage(r.db.Pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errMessageNotFound)
		}
		return nil, errFailedGetMessage(err)
	}

	return m, nil
}

func (r *MessageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*message.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListMessages(err)
	}
	defer rows.Close()

	var messages []*message.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, errFailedScanMessage(err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListMessages(err)
	}

	return messages, nil
}

// ListByPost returns the thread attached to a post, oldest first.
func (r *MessageRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]*message.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE post_id = $1 ORDER BY created_at`

	rows, err := r.db.Pool.Query(ctx, query, postID)
	if err != nil {
		return nil, errFailedListMessages(err)
	}
	defer rows.Close()

	var messages []*message.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, errFailedScanMessage(err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListMessages(err)
	}

	return messages, nil
}

func (r *MessageRepository) UpdateStatus(ctx context.Context, id, userID uuid.UUID, status message.Status) (*message.Message, error) {
	query := `
		UPDATE messages SET status = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + messageColumns

	m, err := scanMessage(r.db.Pool.QueryRow(ctx, query, id, userID, status))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errMessageNotFound)
		}
		return nil, errFailedUpdateMessage(err)
	}

	return m, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := "DELETE FROM messages WHERE id = $1 AND user_id = $2"

	result, err := r.db.Pool.Exec(ctx, query, id, userID)
	if err != nil {
		return errFailedDeleteMessage(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errMessageNotFound)
	}

	return nil
}
