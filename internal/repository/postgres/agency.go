package postgres

import (
	"context"
	"lincognito/internal/domain/agency"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	agencyColumns = `a.id, a.name, a.owner_id, a.created_at, a.updated_at`
	memberColumns = `m.agency_id, m.user_id, u.email, u.name, m.role, m.invited_by, m.joined_at`
)

type AgencyRepository struct {
	db *DB
}

func NewAgencyRepository(db *DB) *AgencyRepository {
	return &AgencyRepository{db: db}
}

func scanAgency(row pgx.Row) (*agency.Agency, error) {
	a := &agency.Agency{}
	err := row.Scan(&a.ID, &a.Name, &a.OwnerID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanMember(row pgx.Row) (*agency.Member, error) {
	m := &agency.Member{}
	err := row.Scan(&m.AgencyID, &m.UserID, &m.Email, &m.Name, &m.Role, &m.InvitedBy, &m.JoinedAt)
	return m, err
}

// Create inserts the agency and its owner membership in one transaction.
func (r *AgencyRepository) Create(ctx context.Context, input agency.CreateAgencyInput) (*agency.Agency, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	agencyQuery := `
		INSERT INTO agencies AS a (id, name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING ` + agencyColumns

	a, err := scanAgency(tx.QueryRow(ctx, agencyQuery, uuid.New(), input.Name, input.OwnerID))
	if err != nil {
		return nil, errFailedCreateAgency(err)
	}

	memberQuery := `
		INSERT INTO agency_members (agency_id, user_id, role, invited_by)
		VALUES ($1, $2, $3, $2)
	`

	if _, err := tx.Exec(ctx, memberQuery, a.ID, input.OwnerID, agency.RoleOwner); err != nil {
		return nil, errFailedAddMember(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return a, nil
}

func (r *AgencyRepository) GetByID(ctx context.Context, id uuid.UUID) (*agency.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies a WHERE a.id = $1`

	a, err := scanAgency(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errAgencyNotFound)
		}
		return nil, errFailedGetAgency(err)
	}

	return a, nil
}

// ListByUser returns the agencies the user belongs to in any role.
func (r *AgencyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*agency.Agency, error) {
	query := `
		SELECT ` + agencyColumns + `
		FROM agencies a
		JOIN agency_members m ON m.agency_id = a.id
		WHERE m.user_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, errFailedListAgencies(err)
	}
	defer rows.Close()

	var agencies []*agency.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, errFailedScanAgency(err)
		}
		agencies = append(agencies, a)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListAgencies(err)
	}

	return agencies, nil
}

func (r *AgencyRepository) AddMember(ctx context.Context, input agency.AddMemberInput) (*agency.Member, error) {
	query := `
		INSERT INTO agency_members (agency_id, user_id, role, invited_by)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query, input.AgencyID, input.UserID, input.Role, input.InvitedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict(errMemberExists)
		}
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound(errAgencyNotFound)
		}
		return nil, errFailedAddMember(err)
	}

	return r.GetMember(ctx, input.AgencyID, input.UserID)
}

func (r *AgencyRepository) GetMember(ctx context.Context, agencyID, userID uuid.UUID) (*agency.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM agency_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.agency_id = $1 AND m.user_id = $2
	`

	m, err := scanMember(r.db.Pool.QueryRow(ctx, query, agencyID, userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NotFound(errMemberNotFound)
		}
		return nil, errFailedGetMember(err)
	}

	return m, nil
}

func (r *AgencyRepository) ListMembers(ctx context.Context, agencyID uuid.UUID) ([]*agency.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM agency_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.agency_id = $1
		ORDER BY m.joined_at
	`

	rows, err := r.db.Pool.Query(ctx, query, agencyID)
	if err != nil {
		return nil, errFailedListMembers(err)
	}
	defer rows.Close()

	var members []*agency.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, errFailedScanMember(err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListMembers(err)
	}

	return members, nil
}

// UpdateMemberRole changes a role unless that would leave the agency without an owner.
func (r *AgencyRepository) UpdateMemberRole(ctx context.Context, input agency.UpdateMemberRoleInput) (*agency.Member, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	if err := changeMember(ctx, tx, input.AgencyID, input.UserID, input.Role); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errFailedCommitTransaction(err)
	}

	return r.GetMember(ctx, input.AgencyID, input.UserID)
}

// RemoveMember deletes a membership unless it belongs to the last owner.
func (r *AgencyRepository) RemoveMember(ctx context.Context, agencyID, userID uuid.UUID) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return errFailedStartTransaction(err)
	}
	defer tx.Rollback(ctx)

	if err := changeMember(ctx, tx, agencyID, userID, ""); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errFailedCommitTransaction(err)
	}

	return nil
}

type memberQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// changeMember applies a role change, or a removal when newRole is empty, against
// the member rows locked inside q. Concurrent changes to the same agency queue on
// the lock, so the owner check always sees committed roles.
func changeMember(ctx context.Context, q memberQuerier, agencyID, userID uuid.UUID, newRole agency.Role) error {
	members, err := lockMembers(ctx, q, agencyID)
	if err != nil {
		return err
	}
	if _, ok := agency.FindMember(members, userID); !ok {
		return apperrors.NotFound(errMemberNotFound)
	}
	if err := agency.EnsureOwnerRemains(members, userID, newRole); err != nil {
		return err
	}

	if newRole == "" {
		query := `DELETE FROM agency_members WHERE agency_id = $1 AND user_id = $2`
		if _, err := q.Exec(ctx, query, agencyID, userID); err != nil {
			return errFailedRemoveMember(err)
		}
		return nil
	}

	query := `UPDATE agency_members SET role = $3 WHERE agency_id = $1 AND user_id = $2`
	if _, err := q.Exec(ctx, query, agencyID, userID, newRole); err != nil {
		return errFailedUpdateMemberRole(err)
	}
	return nil
}

func lockMembers(ctx context.Context, q memberQuerier, agencyID uuid.UUID) ([]*agency.Member, error) {
	query := `
		SELECT user_id, role
		FROM agency_members
		WHERE agency_id = $1
		ORDER BY user_id
		FOR UPDATE
	`

	rows, err := q.Query(ctx, query, agencyID)
	if err != nil {
		return nil, errFailedListMembers(err)
	}
	defer rows.Close()

	var members []*agency.Member
	for rows.Next() {
		m := &agency.Member{AgencyID: agencyID}
		if err := rows.Scan(&m.UserID, &m.Role); err != nil {
			return nil, errFailedScanMember(err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errFailedListMembers(err)
	}

	return members, nil
}
