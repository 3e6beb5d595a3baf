package auth

import (
	"context"
	"errors"
	"lincognito/internal/domain/agency"
	"lincognito/internal/rbac"
	"lincognito/internal/rbac/presets"
	apperrors "lincognito/pkg/errors"

	"github.com/google/uuid"
)

// ClientRoleResolver reports the role a user holds on a client, or "" for none.
type ClientRoleResolver interface {
	GetAccessRole(ctx context.Context, clientID, userID uuid.UUID) (agency.Role, error)
}

type AgencyMemberGetter interface {
	GetMember(ctx context.Context, agencyID, userID uuid.UUID) (*agency.Member, error)
}

// Access answers "may this user do this to that" for clients and agencies.
type Access struct {
	checker  *rbac.Checker
	clients  ClientRoleResolver
	agencies AgencyMemberGetter
}

func NewAccess(clients ClientRoleResolver, agencies AgencyMemberGetter) *Access {
	return &Access{
		checker:  rbac.MustNew(presets.Agency()),
		clients:  clients,
		agencies: agencies,
	}
}

// Client checks the caller's role on a client. A client the caller cannot see at all
// reports as not found so its existence is not leaked.
func (a *Access) Client(ctx context.Context, userID, clientID uuid.UUID, resource rbac.Resource, action rbac.Action) (rbac.Role, error) {
	role, err := a.clients.GetAccessRole(ctx, clientID, userID)
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", apperrors.NotFound(msgClientNotFound)
	}

	r := rbac.Role(role)
	if err := a.checker.Authorize(r, resource, action); err != nil {
		return r, apperrors.Forbidden(msgAccessDenied)
	}
	return r, nil
}

// Agency checks the caller's membership role on an agency.
func (a *Access) Agency(ctx context.Context, userID, agencyID uuid.UUID, resource rbac.Resource, action rbac.Action) (rbac.Role, error) {
	member, err := a.agencies.GetMember(ctx, agencyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.NotFound(msgAgencyNotFound)
		}
		return "", err
	}

	r := rbac.Role(member.Role)
	if err := a.checker.Authorize(r, resource, action); err != nil {
		return r, apperrors.Forbidden(msgAccessDenied)
	}
	return r, nil
}

// Can is the pure capability check, used when the role is already known.
func (a *Access) Can(role rbac.Role, resource rbac.Resource, action rbac.Action) bool {
	return a.checker.IsAuthorized(role, resource, action)
}
