package postgres

import (
	"context"
	"lincognito/internal/domain/user"
	apperrors "lincognito/pkg/errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PasswordResetRepository struct {
	db *DB
}

func NewPasswordResetRepository(db *DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (*user.PasswordReset, error) {
	query := `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, token_hash, expires_at, used_at, created_at
	`

	pr := &user.PasswordReset{}
	err := r.db.Pool.QueryRow(ctx, query, uuid.New(), userID, tokenHash, expiresAt).Scan(
		&pr.ID,
		&pr.UserID,
		&pr.TokenHash,
		&pr.ExpiresAt,
		&pr.UsedAt,
		&pr.CreatedAt,
	)
	if err != nil {
		return nil, errFailedCreatePasswordReset(err)
	}

	return pr, nil
}

func (r *PasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*user.PasswordReset, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets
		WHERE token_hash = $1
	`

	pr := &user.PasswordReset{}
	err := r.db.Pool.QueryRow(ctx, query, tokenHash).Scan(
		&pr.ID,
		&pr.UserID,
		&pr.TokenHash,
		&pr.ExpiresAt,
		&pr.UsedAt,
		&pr.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errPasswordResetNotFound)
		}
		return nil, errFailedGetPasswordReset(err)
	}

	return pr, nil
}
