package postgres

import (
	"context"
	"fmt"
	"lincognito/internal/domain/post"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const postColumns = `p.id, p.client_id, p.author_id, p.title, p.content, p.status, p.scheduled_for, p.published_at,
	p.likes, p.comments, p.shares, p.views, p.hashtags, p.mentions, p.media_keys, p.version,
	p.created_at, p.updated_at`

type PostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row pgx.Row) (*post.Post, error) {
	p := &post.Post{}
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.AuthorID,
		&p.Title,
		&p.Content,
		&p.Status,
		&p.ScheduledFor,
		&p.PublishedAt,
		&p.Likes,
		&p.Comments,
		&p.Shares,
		&p.Views,
		&p.Hashtags,
		&p.Mentions,
		&p.MediaKeys,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func collectPosts(rows pgx.Rows) ([]*post.Post, error) {
	defer rows.Close()

	var posts []*post.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, errFailedScanPost(err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListPosts(err)
	}

	return posts, nil
}

func (r *PostRepository) Create(ctx context.Context, input post.CreatePostInput) (*post.Post, error) {
	status := input.Status
	if status == "" {
		status = post.StatusDraft
	}

	query := `
		INSERT INTO posts AS p (id, client_id, author_id, title, content, status, scheduled_for, hashtags, mentions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + postColumns

	p, err := scanPost(r.db.Pool.QueryRow(ctx, query,
		uuid.New(),
		input.ClientID,
		input.AuthorID,
		input.Title,
		input.Content,
		status,
		input.ScheduledFor,
		nonNilStrings(input.Hashtags),
		nonNilStrings(input.Mentions),
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errClientNotFound)
		}
		return nil, errFailedCreatePost(err)
	}

	return p, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*post.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	p, err := scanPost(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errPostNotFound)
		}
		return nil, errFailedGetPost(err)
	}

	return p, nil
}

// ListAccessible returns the posts of every client the user can reach, newest first.
func (r *PostRepository) ListAccessible(ctx context.Context, userID uuid.UUID) ([]*post.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN clients c ON c.id = p.client_id
		WHERE ` + accessibleClients + `
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListPosts(err)
	}

	return collectPosts(rows)
}

func (r *PostRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*post.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.client_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, errFailedListPosts(err)
	}

	return collectPosts(rows)
}

// Update applies a partial edit guarded by the caller's version.
func (r *PostRepository) Update(ctx context.Context, id uuid.UUID, input post.UpdatePostInput) (*post.Post, error) {
	query := "UPDATE posts AS p SET updated_at = NOW(), version = p.version + 1"
	args := []interface{}{id, input.ExpectedVersion}
	argCount := 2

	set := func(column string, value interface{}) {
		argCount++
		query += fmt.Sprintf(", %s = $%d", column, argCount)
		args = append(args, value)
	}

	if input.Title != nil {
		set("title", *input.Title)
	}
	if input.Content != nil {
		set("content", *input.Content)
	}
	if input.Hashtags != nil {
		set("hashtags", nonNilStrings(*input.Hashtags))
	}
	if input.Mentions != nil {
		set("mentions", nonNilStrings(*input.Mentions))
	}
	if input.ScheduledFor != nil {
		set("scheduled_for", *input.ScheduledFor)
	}

	query += " WHERE p.id = $1 AND p.version = $2 RETURNING " + postColumns

	p, err := scanPost(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, r.missingOrStale(ctx, id)
		}
		return nil, errFailedUpdatePost(err)
	}

	return p, nil
}

// ApplyStatusChange persists a planned transition under the same version guard as Update.
func (r *PostRepository) ApplyStatusChange(ctx context.Context, id uuid.UUID, change post.StatusChange) (*post.Post, error) {
	query := `
		UPDATE posts AS p
		SET status = $3,
		    scheduled_for = $4,
		    published_at = $5,
		    version = p.version + 1,
		    updated_at = NOW()
		WHERE p.id = $1 AND p.version = $2
		RETURNING ` + postColumns

	p, err := scanPost(r.db.Pool.QueryRow(ctx, query, id, change.ExpectedVersion, change.Status, change.ScheduledFor, change.PublishedAt))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, r.missingOrStale(ctx, id)
		}
		if isCheckViolation(err) {
			return nil, apperrors.Validation(errScheduledForRequired)
		}
		return nil, errFailedUpdatePost(err)
	}

	return p, nil
}

// UpdateEngagement overwrites the counters of a published post.
func (r *PostRepository) UpdateEngagement(ctx context.Context, id uuid.UUID, e post.Engagement) (*post.Post, error) {
	query := `
		UPDATE posts AS p
		SET likes = $2, comments = $3, shares = $4, views = $5, updated_at = NOW()
		WHERE p.id = $1 AND p.status = 'PUBLISHED'
		RETURNING ` + postColumns

	p, err := scanPost(r.db.Pool.QueryRow(ctx, query, id, e.Likes, e.Comments, e.Shares, e.Views))
	if err != nil {
		if err == pgx.ErrNoRows {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, apperrors.Precondition(errEngagementNotPublished)
		}
		if isCheckViolation(err) {
			return nil, apperrors.Validation(errEngagementNegative)
		}
		return nil, errFailedUpdatePost(err)
	}

	return p, nil
}

// AddMediaKey records an uploaded object once; repeating the same key is a no-op.
func (r *PostRepository) AddMediaKey(ctx context.Context, id uuid.UUID, key string) (*post.Post, error) {
	query := `
		UPDATE posts AS p
		SET media_keys = CASE WHEN $2 = ANY(p.media_keys) THEN p.media_keys ELSE array_append(p.media_keys, $2) END,
		    updated_at = NOW()
		WHERE p.id = $1
		RETURNING ` + postColumns

	p, err := scanPost(r.db.Pool.QueryRow(ctx, query, id, key))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errPostNotFound)
		}
		return nil, errFailedUpdatePost(err)
	}

	return p, nil
}

// Delete permanently removes a draft. Other statuses are archived instead.
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := "DELETE FROM posts WHERE id = $1 AND status = 'DRAFT'"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedDeletePost(err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.Precondition(errHardDeleteNotDraft)
	}

	return nil
}

func (r *PostRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperrors.StaleVersion(errPostVersionStale)
}
