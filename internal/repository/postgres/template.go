package postgres

import (
	"context"
	"fmt"
	"lincognito/internal/domain/template"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const templateColumns = `id, user_id, name, content, category, tags, usage_count, last_used_at, created_at, updated_at`

type TemplateRepository struct {
	db *DB
}

func NewTemplateRepository(db *DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func scanTemplate(row pgx.Row) (*template.Template, error) {
	t := &template.Template{}
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.Content,
		&t.Category,
		&t.Tags,
		&t.UsageCount,
		&t.LastUsedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r *TemplateRepository) Create(ctx context.Context, input template.CreateTemplateInput) (*template.Template, error) {
	query := `
		INSERT INTO templates (id, user_id, name, content, category, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + templateColumns

	t, err := scanTemplate(r.db.Pool.QueryRow(ctx, query,
		uuid.New(),
		input.UserID,
		input.Name,
		input.Content,
		template.NormalizeCategory(input.Category),
		nonNilStrings(input.Tags),
	))
	if err != nil {
		return nil, errFailedCreateTemplate(err)
	}

	return t, nil
}

// GetByID scopes the lookup to the owner; another user's template reads as missing.
func (r *TemplateRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*template.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1 AND user_id = $2`

	t, err := scanTemplate(r.db.Pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errTemplateNotFound)
		}
		return nil, errFailedGetTemplate(err)
	}

	return t, nil
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*template.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListTemplates(err)
	}
	defer rows.Close()

	var templates []*template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, errFailedScanTemplate(err)
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListTemplates(err)
	}

	return templates, nil
}

func (r *TemplateRepository) Update(ctx context.Context, id, userID uuid.UUID, input template.UpdateTemplateInput) (*template.Template, error) {
	query := "UPDATE templates SET updated_at = NOW()"
	args := []interface{}{id, userID}
	argCount := 2

	if input.Name != nil {
		argCount++
		query += fmt.Sprintf(", name = $%d", argCount)
		args = append(args, *input.Name)
	}

	if input.Content != nil {
		argCount++
		query += fmt.Sprintf(", content = $%d", argCount)
		args = append(args, *input.Content)
	}

	if input.Category != nil {
		argCount++
		query += fmt.Sprintf(", category = $%d", argCount)
		args = append(args, template.NormalizeCategory(*input.Category))
	}

	if input.Tags != nil {
		argCount++
		query += fmt.Sprintf(", tags = $%d", argCount)
		args = append(args, nonNilStrings(*input.Tags))
	}

	query += " WHERE id = $1 AND user_id = $2 RETURNING " + templateColumns

	t, err := scanTemplate(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errTemplateNotFound)
		}
		return nil, errFailedUpdateTemplate(err)
	}

	return t, nil
}

// IncrementUsage counts one use and stamps last_used_at.
func (r *TemplateRepository) IncrementUsage(ctx context.Context, id, userID uuid.UUID) (*template.Template, error) {
	query := `
		UPDATE templates
		SET usage_count = usage_count + 1, last_used_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + templateColumns

	t, err := scanTemplate(r.db.Pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errTemplateNotFound)
		}
		return nil, errFailedUpdateTemplate(err)
	}

	return t, nil
}

func (r *TemplateRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := "DELETE FROM templates WHERE id = $1 AND user_id = $2"

	result, err := r.db.Pool.Exec(ctx, query, id, userID)
	if err != nil {
		return errFailedDeleteTemplate(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errTemplateNotFound)
	}

	return nil
}
