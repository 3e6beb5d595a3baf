package handler

import (
	"errors"
	apperrors "lincognito/pkg/errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// MapToPublicError maps internal errors to public-facing HTTP status codes and messages.
func MapToPublicError(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, apperrors.ErrUnauthorized), errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, apperrors.ErrForbidden), errors.Is(err, apperrors.ErrInsufficientPerms):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrEmailExists):
		return http.StatusConflict, "resource conflict"
	case errors.Is(err, apperrors.ErrStaleVersion):
		return http.StatusConflict, "the post was changed by someone else; reload and try again"
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, "invalid input"
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrPrecondition):
		return http.StatusUnprocessableEntity, "operation not allowed in the current state"
	case errors.Is(err, apperrors.ErrExpired):
		return http.StatusGone, "resource expired"
	default:
		// Never expose internal errors to clients
		return http.StatusInternalServerError, msgInternalError
	}
}

// respondAppError answers with the mapped status. Client errors carry the AppError
// message; server errors are logged and answered generically.
func respondAppError(c echo.Context, log *logrus.Logger, err error, what string) error {
	status, msg := MapToPublicError(err)
	if status >= http.StatusInternalServerError {
		requestLogger(log, c).WithError(err).Error(what)
		return respondError(c, status, msg)
	}
	if public, ok := apperrors.PublicMessage(err); ok && public != "" {
		msg = public
	}
	return respondError(c, status, msg)
}
