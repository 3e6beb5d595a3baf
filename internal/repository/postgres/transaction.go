package postgres

import (
	"context"
	"lincognito/internal/domain/user"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
)

// SignupTransaction creates the user together with default notification settings.
func (db *DB) SignupTransaction(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	userQuery := `
		INSERT INTO users (id, email, password_hash, name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	createdUser, err := scanUser(tx.QueryRow(ctx, userQuery, uuid.New(), input.Email, input.PasswordHash, input.Name))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errEmailTaken)
		}
		return nil, errFailedCreateUser(err)
	}

	settingsQuery := `INSERT INTO notification_settings (user_id) VALUES ($1)`
	if _, err := tx.Exec(ctx, settingsQuery, createdUser.ID); err != nil {
		return nil, errFailedSaveSettings(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return createdUser, nil
}

// ResetPasswordTransaction consumes the reset token and stores the new hash atomically.
// A token that was already used, or has expired, leaves the password untouched.
func (db *DB) ResetPasswordTransaction(ctx context.Context, resetID, userID uuid.UUID, passwordHash string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	consumeQuery := `
		UPDATE password_resets SET used_at = NOW()
		WHERE id = $1 AND user_id = $2 AND used_at IS NULL AND expires_at > NOW()
	`

	result, err := tx.Exec(ctx, consumeQuery, resetID, userID)
	if err != nil {
		return errFailedConsumePasswordReset(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.Expired(errPasswordResetExpired)
	}

	userQuery := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	result, err = tx.Exec(ctx, userQuery, userID, passwordHash)
	if err != nil {
		return errFailedUpdateUser(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return errFailedCommitTransaction(err)
	}

	return nil
}
