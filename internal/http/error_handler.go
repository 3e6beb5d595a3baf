package http

import (
	"errors"
	"fmt"
	"lincognito/internal/http/handler"
	"lincognito/internal/http/middleware"
	apperrors "lincognito/pkg/errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// NewHTTPErrorHandler handles errors that reach echo unanswered: routing misses,
// middleware failures and anything a handler returned instead of writing.
func NewHTTPErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var code int
		var message string

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			message = fmt.Sprintf("%v", httpErr.Message)
		} else {
			code, message = handler.MapToPublicError(err)
			if public, ok := apperrors.PublicMessage(err); ok && public != "" && code < http.StatusInternalServerError {
				message = public
			}
		}

		requestID := middleware.GetRequestID(c)
		if requestID == "" {
			requestID = "unknown"
		}

		entry := log.WithFields(logrus.Fields{
			"request_id": requestID,
			"status":     code,
			"path":       c.Request().URL.Path,
		}).WithError(err)

		if code >= http.StatusInternalServerError {
			entry.Error("internal_server_error")
			message = "internal server error"
		} else {
			entry.Warn("client_error")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]any{
				"error":      message,
				"request_id": requestID,
			})
		}
		if err != nil {
			log.WithError(err).Error("failed to write error response")
		}
	}
}
