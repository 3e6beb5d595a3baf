package auth

import (
	"context"
	"errors"
	"lincognito/internal/rbac"
	apperrors "lincognito/pkg/errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type RBACMiddleware struct {
	access *Access
	log    *logrus.Logger
}

func NewRBACMiddleware(access *Access, log *logrus.Logger) *RBACMiddleware {
	return &RBACMiddleware{access: access, log: log}
}

// RequireClientAccess guards /clients/:id routes.
func (m *RBACMiddleware) RequireClientAccess(resource rbac.Resource, action rbac.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, clientID, err := subjectAndTarget(c)
			if err != nil {
				return handleHTTPError(c, err)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), roleLookupLimit)
			defer cancel()

			role, err := m.access.Client(ctx, userID, clientID, resource, action)
			if err != nil {
				return m.respondAccessError(c, err)
			}

			c.Set(ContextKeyClientRole, role)
			return next(c)
		}
	}
}

// RequireAgencyAccess guards /agencies/:id routes.
func (m *RBACMiddleware) RequireAgencyAccess(resource rbac.Resource, action rbac.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, agencyID, err := subjectAndTarget(c)
			if err != nil {
				return handleHTTPError(c, err)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), roleLookupLimit)
			defer cancel()

			role, err := m.access.Agency(ctx, userID, agencyID, resource, action)
			if err != nil {
				return m.respondAccessError(c, err)
			}

			c.Set(ContextKeyAgencyRole, role)
			return next(c)
		}
	}
}

func GetClientRole(c echo.Context) rbac.Role {
	role, _ := c.Get(ContextKeyClientRole).(rbac.Role)
	return role
}

func GetAgencyRole(c echo.Context) rbac.Role {
	role, _ := c.Get(ContextKeyAgencyRole).(rbac.Role)
	return role
}

func subjectAndTarget(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := GetUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, msgUserNotAuthenticated)
	}

	target, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return uuid.Nil, uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, msgInvalidID)
	}

	return userID, target, nil
}

func (m *RBACMiddleware) respondAccessError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		msg, _ := apperrors.PublicMessage(err)
		return respondError(c, http.StatusNotFound, msg)
	case errors.Is(err, apperrors.ErrForbidden):
		return respondError(c, http.StatusForbidden, msgAccessDenied)
	default:
		m.log.WithError(err).WithFields(logrus.Fields{
			"path":   c.Path(),
			"target": c.Param(paramID),
		}).Error("access check failed")
		return handleHTTPError(c, err)
	}
}
