package postgres

import (
	"context"
	"fmt"
	"lincognito/internal/domain/user"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, name, plan, subscription_status, COALESCE(stripe_customer_id, ''), created_at, updated_at`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Plan,
		&u.SubscriptionStatus,
		&u.StripeCustomerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE stripe_customer_id = $1`

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, customerID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}

	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, input user.UpdateUserInput) (*user.User, error) {
	query := "UPDATE users SET updated_at = NOW()"
	args := []interface{}{id}
	argCount := 1

	if input.Name != nil {
		argCount++
		query += fmt.Sprintf(", name = $%d", argCount)
		args = append(args, *input.Name)
	}

	if input.PasswordHash != nil {
		argCount++
		query += fmt.Sprintf(", password_hash = $%d", argCount)
		args = append(args, *input.PasswordHash)
	}

	query += " WHERE id = $1 RETURNING " + userColumns

	u, err := scanUser(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedUpdateUser(err)
	}

	return u, nil
}

// SetStripeCustomerID links the user to a Stripe customer once it has been created.
func (r *UserRepository) SetStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) error {
	query := `UPDATE users SET stripe_customer_id = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id, customerID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(errStripeCustomerTaken)
		}
		return errFailedUpdateUser(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

// UpdateBilling applies the subscription state reported by a Stripe webhook.
func (r *UserRepository) UpdateBilling(ctx context.Context, id uuid.UUID, update user.BillingUpdate) error {
	query := `
		UPDATE users
		SET plan = $2,
		    subscription_status = $3,
		    stripe_customer_id = COALESCE(NULLIF($4, ''), stripe_customer_id),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, id, update.Plan, update.SubscriptionStatus, update.StripeCustomerID)
	if err != nil {
		return errFailedUpdateBilling(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

// ListWeeklyReportRecipients returns users that have not opted out of the weekly report.
// Users without a settings row get the defaults, which include the report.
func (r *UserRepository) ListWeeklyReportRecipients(ctx context.Context) ([]*user.User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.name, u.plan, u.subscription_status,
		       COALESCE(u.stripe_customer_id, ''), u.created_at, u.updated_at
		FROM users u
		LEFT JOIN notification_settings s ON s.user_id = u.id
		WHERE COALESCE(s.email_weekly_report, TRUE)
		ORDER BY u.created_at
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, errFailedListUsers(err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errFailedScanUser(err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateUsers(err)
	}

	return users, nil
}
