package handler

import (
	"context"
	"errors"
	"lincognito/internal/audit"
	"lincognito/internal/auth"
	"lincognito/internal/domain/message"
	"lincognito/internal/rbac/presets"
	apperrors "lincognito/pkg/errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const msgInvalidPriority = "invalid priority"

type MessageHandler struct {
	messages MessageRepository
	posts    PostGetter
	access   AccessChecker
	activity ActivityRecorder
	log      *logrus.Logger
}

func NewMessageHandler(messages MessageRepository, posts PostGetter, access AccessChecker, activity ActivityRecorder, log *logrus.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, posts: posts, access: access, activity: activity, log: log}
}

type ComposeMessageRequest struct {
	ClientID uuid.UUID  `json:"clientId" validate:"required"`
	PostID   *uuid.UUID `json:"postId"`
	Subject  string     `json:"subject" validate:"max=255"`
	Body     string     `json:"body"`
	Priority string     `json:"priority"`
}

type ReplyRequest struct {
	Body string `json:"body" validate:"required"`
}

type MessageListResponse struct {
	Messages    []*message.Message `json:"messages"`
	UnreadCount int                `json:"unreadCount"`
}

func (h *MessageHandler) ListMessages(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	filter := message.ListFilter{Query: c.QueryParam(queryQ)}
	if raw := strings.ToLower(strings.TrimSpace(c.QueryParam(queryStatus))); raw != "" {
		status := message.Status(raw)
		if !status.Valid() {
			return respondError(c, http.StatusBadRequest, msgInvalidStatus)
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(c.QueryParam(queryPriority)); raw != "" {
		priority, err := message.ParsePriority(raw)
		if err != nil {
			return respondError(c, http.StatusBadRequest, msgInvalidPriority)
		}
		filter.Priority = priority
	}
	clientID, ok := parseOptionalUUID(c.QueryParam(queryClientID))
	if !ok {
		return respondError(c, http.StatusBadRequest, msgInvalidClientID)
	}
	filter.ClientID = clientID

	all, err := h.messages.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to list messages")
	}

	return c.JSON(http.StatusOK, MessageListResponse{
		Messages:    message.Filter(all, filter),
		UnreadCount: message.CountUnread(all),
	})
}

// ComposeMessage records an outbound message. Every required field must be filled.
func (h *MessageHandler) ComposeMessage(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}

	var req ComposeMessageRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	priority, err := message.ParsePriority(req.Priority)
	if err != nil {
		return respondAppError(c, h.log, err, "invalid priority")
	}
	input := message.ComposeInput{
		ClientID: req.ClientID,
		PostID:   req.PostID,
		Subject:  req.Subject,
		Body:     req.Body,
		Priority: priority,
	}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return respondAppError(c, h.log, err, "invalid message")
	}

	ctx := c.Request().Context()
	if _, err := h.access.Client(ctx, userID, input.ClientID, presets.ResourceMessage, presets.ActionWrite); err != nil {
		return respondAppError(c, h.log, err, "client access check failed")
	}
	if input.PostID != nil {
		if err := h.ensurePostOfClient(ctx, *input.PostID, input.ClientID); err != nil {
			return respondAppError(c, h.log, err, "referenced post check failed")
		}
	}

	msg, err := h.messages.Create(ctx, message.CreateMessageInput{
		UserID:    userID,
		ClientID:  input.ClientID,
		PostID:    input.PostID,
		Subject:   input.Subject,
		Body:      input.Body,
		Status:    message.StatusRead,
		Priority:  input.Priority,
		Direction: message.DirectionOutbound,
	})
	if err != nil {
		return respondAppError(c, h.log, err, "failed to send message")
	}

	h.activity.Record(c, audit.ResourceTypeMessage, msg.ID, audit.ActionCreate, map[string]any{
		"client_id": msg.ClientID.String(),
	})

	return c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) GetMessage(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	msg, err := h.messages.GetByID(c.Request().Context(), id, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load message")
	}

	return c.JSON(http.StatusOK, msg)
}

func (h *MessageHandler) MarkRead(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	msg, err := h.messages.GetByID(ctx, id, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load message")
	}
	if msg.Status != message.StatusUnread {
		return c.JSON(http.StatusOK, msg)
	}

	updated, err := h.messages.UpdateStatus(ctx, id, userID, message.StatusRead)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to mark message read")
	}

	return c.JSON(http.StatusOK, updated)
}

// Reply marks the original as replied and records the outbound answer in the same thread.
func (h *MessageHandler) Reply(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	var req ReplyRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	original, err := h.messages.GetByID(ctx, id, userID)
	if err != nil {
		return respondAppError(c, h.log, err, "failed to load message")
	}

	input := message.ComposeInput{
		ClientID: original.ClientID,
		PostID:   original.PostID,
		Subject:  message.ReplySubject(original.Subject),
		Body:     req.Body,
		Priority: original.Priority,
	}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return respondAppError(c, h.log, err, "invalid reply")
	}

	reply, err := h.messages.Create(ctx, message.CreateMessageInput{
		UserID:    userID,
		ClientID:  original.ClientID,
		PostID:    original.PostID,
		ParentID:  &original.ID,
		Subject:   input.Subject,
		Body:      input.Body,
		Status:    message.StatusRead,
		Priority:  input.Priority,
		Direction: message.DirectionOutbound,
	})
	if err != nil {
		return respondAppError(c, h.log, err, "failed to send reply")
	}

	if _, err := h.messages.UpdateStatus(ctx, original.ID, userID, message.StatusReplied); err != nil {
		requestLogger(h.log, c).WithError(err).WithField("message_id", original.ID).Warn("failed to mark message replied")
	}

	h.activity.Record(c, audit.ResourceTypeMessage, reply.ID, audit.ActionCreate, map[string]any{
		"parent_id": original.ID.String(),
	})

	return c.JSON(http.StatusCreated, reply)
}

func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return respondError(c, http.StatusUnauthorized, err.Error())
	}
	id, err := parseIDParam(c, paramID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if err := h.messages.Delete(c.Request().Context(), id, userID); err != nil {
		return respondAppError(c, h.log, err, "failed to delete message")
	}

	h.activity.Record(c, audit.ResourceTypeMessage, id, audit.ActionDelete, nil)

	return c.NoContent(http.StatusNoContent)
}

// ensurePostOfClient rejects a post reference outside the message's client.
// Both a missing post and a foreign one answer 404.
func (h *MessageHandler) ensurePostOfClient(ctx context.Context, postID, clientID uuid.UUID) error {
	p, err := h.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound(msgPostNotFound)
		}
		return err
	}
	if p.ClientID != clientID {
		return apperrors.NotFound(msgPostNotFound)
	}
	return nil
}
