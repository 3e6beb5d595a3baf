package middleware

import (
	"lincognito/internal/auth"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			fields := logrus.Fields{
				"request_id":  GetRequestID(c),
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"route":       c.Path(),
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"ip":          c.RealIP(),
			}
			if userID, uerr := auth.GetUserID(c); uerr == nil {
				fields["user_id"] = userID.String()
			}

			entry := log.WithFields(fields)
			switch {
			case err != nil && status >= http.StatusInternalServerError:
				entry.WithError(err).Error("request failed")
			case status >= http.StatusInternalServerError:
				entry.Error("request failed")
			case status >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Info("request completed")
			}

			return err
		}
	}
}
