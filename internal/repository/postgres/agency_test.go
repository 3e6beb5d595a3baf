package postgres

import (
	"context"
	"errors"
	"lincognito/internal/domain/agency"
	apperrors "lincognito/pkg/errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memberRow struct {
	userID uuid.UUID
	role   agency.Role
}

// memberTable stands in for agency_members. Query hands out the current rows and
// Exec applies UPDATE and DELETE statements to them.
type memberTable struct {
	mu      sync.Mutex
	rows    []memberRow
	queries []string
}

func (t *memberTable) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queries = append(t.queries, sql)
	return &memberRows{rows: append([]memberRow(nil), t.rows...), pos: -1}, nil
}

func (t *memberTable) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queries = append(t.queries, sql)
	userID := args[1].(uuid.UUID)
	for i, r := range t.rows {
		if r.userID != userID {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(sql), "DELETE") {
			t.rows = append(t.rows[:i], t.rows[i+1:]...)
			return pgconn.NewCommandTag("DELETE 1"), nil
		}
		t.rows[i].role = args[2].(agency.Role)
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.NewCommandTag("UPDATE 0"), nil
}

type memberRows struct {
	pgx.Rows
	rows []memberRow
	pos  int
}

func (r *memberRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *memberRows) Scan(dest ...any) error {
	*dest[0].(*uuid.UUID) = r.rows[r.pos].userID
	*dest[1].(*agency.Role) = r.rows[r.pos].role
	return nil
}

func (r *memberRows) Err() error { return nil }
func (r *memberRows) Close() {}

func TestChangeMember_LocksMemberRows(t *testing.T) {
	owner := uuid.New()
	table := &memberTable{rows: []memberRow{{owner, agency.RoleOwner}, {uuid.New(), agency.RoleEditor}}}

	err := changeMember(context.Background(), table, uuid.New(), owner, agency.RoleViewer)

	assert.True(t, errors.Is(err, apperrors.ErrPrecondition))
	require.Len(t, table.queries, 1, "a rejected change must not write")
	assert.Contains(t, table.queries[0], "FOR UPDATE")
	assert.Equal(t, agency.RoleOwner, table.rows[0].role)
}

// Two owners demoting each other: the second change reads the roles after the
// first one committed and is refused.
func TestChangeMember_MutualDemotionKeepsAnOwner(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	agencyID := uuid.New()
	table := &memberTable{rows: []memberRow{{alice, agency.RoleOwner}, {bob, agency.RoleOwner}}}
	ctx := context.Background()

	require.NoError(t, changeMember(ctx, table, agencyID, bob, agency.RoleEditor))
	err := changeMember(ctx, table, agencyID, alice, agency.RoleEditor)

	assert.True(t, errors.Is(err, apperrors.ErrPrecondition))
	owners := 0
	for _, r := range table.rows {
		if r.role == agency.RoleOwner {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
}

func TestChangeMember_RemoveAndMissing(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	agencyID := uuid.New()
	ctx := context.Background()

	tests := []struct {
		name    string
		target  uuid.UUID
		wantErr error
		wantLen int
	}{
		{"removes a non-owner", bob, nil, 1},
		{"refuses the last owner", alice, apperrors.ErrPrecondition, 2},
		{"unknown member", uuid.New(), apperrors.ErrNotFound, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := &memberTable{rows: []memberRow{{alice, agency.RoleOwner}, {bob, agency.RoleViewer}}}
			err := changeMember(ctx, table, agencyID, tt.target, "")
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			assert.Len(t, table.rows, tt.wantLen)
		})
	}
}
