package handler

import (
	"lincognito/internal/auth"
	"lincognito/internal/domain/notification"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	notifications NotificationRepository
	log           *logrus.Logger
}

func NewNotificationHandler(notifications NotificationRepository, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, log: log}
}

type UpdateSettingsRequest struct {
	EmailPostPublished *bool `json:"emailPostPublished"`
	EmailClientAdded   *bool `json:"emailClientAdded"`
	EmailWeeklyReport  *bool `json:"emailWeeklyReport"`
	InAppMessages      *bool `json:"inAppMessages"`
}

type NotificationListResponse struct {
	Notifications []*notification.Notification `json:"notifications"`
	UnreadCount   int                          `json:"unreadCount"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	status := notification.Status(strings.ToLower(strings.TrimSpace(c.QueryParam(queryStatus))))
	if status != "" && status != notification.StatusRead && status != notification.StatusUnread {
		return respondError(c, http.StatusBadRequest, msgInvalidStatus)
	}

	all, err := h.notifications.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list notifications")
	}

	return c.JSON(http.StatusOK, NotificationListResponse{
		Notifications: notification.Filter(all, status),
		UnreadCount:   len(notification.Filter(all, notification.StatusUnread)),
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	n, err := h.notifications.MarkRead(c.Request().Context(), id, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to mark notification read")
	}

	return c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	n, err := h.notifications.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to mark notifications read")
	}

	return c.JSON(http.StatusOK, MarkAllReadResponse{Updated: n})
}

func (h *NotificationHandler) GetSettings(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	settings, err := h.notifications.GetSettings(c.Request().Context(), userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load notification settings")
	}

	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings is a partial update; omitted toggles keep their value.
func (h *NotificationHandler) UpdateSettings(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	var req UpdateSettingsRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	current, err := h.notifications.GetSettings(ctx, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load notification settings")
	}

	next := current.Apply(notification.UpdateSettingsInput{
		EmailPostPublished: req.EmailPostPublished,
		EmailClientAdded:   req.EmailClientAdded,
		EmailWeeklyReport:  req.EmailWeeklyReport,
		InAppMessages:      req.InAppMessages,
	})
	next.UserID = userID

	saved, err := h.notifications.UpsertSettings(ctx, next)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to save notification settings")
	}

	return c.JSON(http.StatusOK, saved)
}
