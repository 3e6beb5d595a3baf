package agency

import (
	"fmt"
	apperrors "lincognito/pkg/errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Agency struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"

	errInvalidRoleFmt = "invalid role: %s"
	msgLastOwner      = "an agency must keep at least one owner"
)

// Validate validates the role
func (r Role) Validate() error {
	switch r {
	case RoleViewer, RoleEditor, RoleOwner:
		return nil
	default:
		return fmt.Errorf(errInvalidRoleFmt, r)
	}
}

func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if err := r.Validate(); err != nil {
		return "", apperrors.Validation(err.Error())
	}
	return r, nil
}

// Member is an agency membership joined with the member's user record.
type Member struct {
	AgencyID  uuid.UUID  `json:"agencyId"`
	UserID    uuid.UUID  `json:"userId"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	InvitedBy *uuid.UUID `json:"invitedBy,omitempty"`
	JoinedAt  time.Time  `json:"joinedAt"`
}

type WithMembers struct {
	*Agency
	Members []*Member `json:"members"`
}

type CreateAgencyInput struct {
	Name    string
	OwnerID uuid.UUID
}

type AddMemberInput struct {
	AgencyID  uuid.UUID
	UserID    uuid.UUID
	Role      Role
	InvitedBy uuid.UUID
}

type UpdateMemberRoleInput struct {
	AgencyID uuid.UUID
	UserID   uuid.UUID
	Role     Role
}

// EnsureOwnerRemains rejects a change that would leave the agency without an owner.
// newRole is empty when the member is being removed.
func EnsureOwnerRemains(members []*Member, userID uuid.UUID, newRole Role) error {
	owners := 0
	targetIsOwner := false
	for _, m := range members {
		if m.Role == RoleOwner {
			owners++
			if m.UserID == userID {
				targetIsOwner = true
			}
		}
	}
	if !targetIsOwner || newRole == RoleOwner {
		return nil
	}
	if owners <= 1 {
		return apperrors.Precondition(msgLastOwner)
	}
	return nil
}

func FindMember(members []*Member, userID uuid.UUID) (*Member, bool) {
	for _, m := range members {
		if m.UserID == userID {
			return m, true
		}
	}
	return nil, false
}
