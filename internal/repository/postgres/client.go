package postgres

import (
	"context"
	"fmt"
	"lincognito/internal/domain/agency"
	"lincognito/internal/domain/client"
	apperrors "lincognito/pkg/errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const clientColumns = `c.id, c.owner_user_id, c.agency_id, c.name, c.company, c.bio, c.tone, c.industry,
	c.linkedin_url, c.brand_guidelines, c.hashtags, c.keywords,
	c.linkedin_access_token, c.linkedin_refresh_token, c.linkedin_expires_at,
	c.created_at, c.updated_at`

// accessibleClients restricts clients to the ones $1 owns or reaches through an agency.
const accessibleClients = `(c.owner_user_id = $1 OR c.agency_id IN (SELECT agency_id FROM agency_members WHERE user_id = $1))`

type ClientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(row pgx.Row) (*client.Client, error) {
	c := &client.Client{}
	var accessToken, refreshToken *string
	var tokenExpiry *time.Time

	err := row.Scan(
		&c.ID,
		&c.OwnerUserID,
		&c.AgencyID,
		&c.Name,
		&c.Company,
		&c.Bio,
		&c.Tone,
		&c.Industry,
		&c.LinkedInURL,
		&c.BrandGuidelines,
		&c.Hashtags,
		&c.Keywords,
		&accessToken,
		&refreshToken,
		&tokenExpiry,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if accessToken != nil {
		c.LinkedIn = &client.LinkedInTokens{AccessToken: *accessToken, ExpiresAt: tokenExpiry}
		if refreshToken != nil {
			c.LinkedIn.RefreshToken = *refreshToken
		}
	}

	return c, nil
}

func (r *ClientRepository) Create(ctx context.Context, input client.CreateClientInput) (*client.Client, error) {
	query := `
		INSERT INTO clients AS c (id, owner_user_id, agency_id, name, company, bio, tone, industry,
			linkedin_url, brand_guidelines, hashtags, keywords)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + clientColumns

	c, err := scanClient(r.db.Pool.QueryRow(ctx, query,
		uuid.New(),
		input.OwnerUserID,
		input.AgencyID,
		input.Name,
		input.Company,
		input.Bio,
		input.Tone,
		input.Industry,
		input.LinkedInURL,
		input.BrandGuidelines,
		nonNilStrings(input.Hashtags),
		nonNilStrings(input.Keywords),
	))
	if err != nil {
		if isCheckViolation(err) {
			return nil, apperrors.Validation(errClientOwnerRequired)
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errAgencyNotFound)
		}
		return nil, errFailedCreateClient(err)
	}

	return c, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients c WHERE c.id = $1`

	c, err := scanClient(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errClientNotFound)
		}
		return nil, errFailedGetClient(err)
	}

	return c, nil
}

// ListAccessible returns every client the user owns or reaches through an agency membership.
func (r *ClientRepository) ListAccessible(ctx context.Context, userID uuid.UUID) ([]*client.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients c
		WHERE ` + accessibleClients + `
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListClients(err)
	}
	defer rows.Close()

	var clients []*client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, errFailedScanClient(err)
		}
		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListClients(err)
	}

	return clients, nil
}

// GetAccessRole resolves the role userID holds on a client. Direct owners act as agency owners.
// An empty role means the client exists but the user cannot reach it.
func (r *ClientRepository) GetAccessRole(ctx context.Context, clientID, userID uuid.UUID) (agency.Role, error) {
	query := `
		SELECT CASE WHEN c.owner_user_id = $2 THEN 'owner' ELSE m.role END
		FROM clients c
		LEFT JOIN agency_members m ON m.agency_id = c.agency_id AND m.user_id = $2
		WHERE c.id = $1
	`

	var role *string
	err := r.db.Pool.QueryRow(ctx, query, clientID, userID).Scan(&role)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", apperrors.NotFound(errClientNotFound)
		}
		return "", errFailedGetClient(err)
	}

	if role == nil {
		return "", nil
	}
	return agency.Role(*role), nil
}

func (r *ClientRepository) Update(ctx context.Context, id uuid.UUID, input client.UpdateClientInput) (*client.Client, error) {
	query := "UPDATE clients AS c SET updated_at = NOW()"
	args := []interface{}{id}
	argCount := 1

	set := func(column string, value interface{}) {
		argCount++
		query += fmt.Sprintf(", %s = $%d", column, argCount)
		args = append(args, value)
	}

	if input.Name != nil {
		set("name", *input.Name)
	}
	if input.Company != nil {
		set("company", *input.Company)
	}
	if input.Bio != nil {
		set("bio", *input.Bio)
	}
	if input.Tone != nil {
		set("tone", *input.Tone)
	}
	if input.Industry != nil {
		set("industry", *input.Industry)
	}
	if input.LinkedInURL != nil {
		set("linkedin_url", *input.LinkedInURL)
	}
	if input.BrandGuidelines != nil {
		set("brand_guidelines", *input.BrandGuidelines)
	}
	if input.Hashtags != nil {
		set("hashtags", nonNilStrings(*input.Hashtags))
	}
	if input.Keywords != nil {
		set("keywords", nonNilStrings(*input.Keywords))
	}

	query += " WHERE c.id = $1 RETURNING " + clientColumns

	c, err := scanClient(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errClientNotFound)
		}
		return nil, errFailedUpdateClient(err)
	}

	return c, nil
}

func (r *ClientRepository) ClearLinkedIn(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE clients
		SET linkedin_access_token = NULL,
		    linkedin_refresh_token = NULL,
		    linkedin_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedUpdateClient(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errClientNotFound)
	}

	return nil
}

// Delete removes the client. Posts and messages go with it through ON DELETE CASCADE.
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := "DELETE FROM clients WHERE id = $1"

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return errFailedDeleteClient(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errClientNotFound)
	}

	return nil
}

// nonNilStrings keeps NOT NULL text[] columns from receiving NULL.
func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
