package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeStripe ActorType = "stripe"
	ActorTypeSystem ActorType = "system"
)

type ResourceType string

const (
	ResourceTypeUser     ResourceType = "user"
	ResourceTypeClient   ResourceType = "client"
	ResourceTypePost     ResourceType = "post"
	ResourceTypeTemplate ResourceType = "template"
	ResourceTypeMessage  ResourceType = "message"
	ResourceTypeAgency   ResourceType = "agency"
	ResourceTypeBilling  ResourceType = "billing"
)

type Action string

const (
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionArchive       Action = "archive"
	ActionTransition    Action = "transition"
	ActionCollaborate   Action = "collaborate"
	ActionEngagement    Action = "engagement"
	ActionMediaUpload   Action = "media_upload"
	ActionSignup        Action = "signup"
	ActionLogin         Action = "login"
	ActionPasswordReset Action = "password_reset"
	ActionMemberAdd     Action = "member_add"
	ActionMemberUpdate  Action = "member_update"
	ActionMemberRemove  Action = "member_remove"
	ActionSubscription  Action = "subscription"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusDenied  Status = "denied"
)

const (
	defaultQueryLimit = 100
	asyncWriteTimeout = 2 * time.Second

	contextKeyUserID    = "user_id"
	contextKeyRequestID = "request_id"
)

// Event is one row of the activity log.
type Event struct {
	ID           uuid.UUID      `json:"id"`
	EventType    string         `json:"eventType"`
	ActorType    ActorType      `json:"actorType"`
	ActorID      *uuid.UUID     `json:"actorId,omitempty"`
	ResourceType ResourceType   `json:"resourceType"`
	ResourceID   *uuid.UUID     `json:"resourceId,omitempty"`
	Action       Action         `json:"action"`
	Status       Status         `json:"status"`
	IPAddress    string         `json:"-"`
	UserAgent    string         `json:"-"`
	RequestID    string         `json:"requestId,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	ErrorMessage string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// RequestMeta is the slice of an HTTP request worth keeping next to an event.
type RequestMeta struct {
	ActorID   *uuid.UUID
	IPAddress string
	UserAgent string
	RequestID string
}

// MetaFromContext reads the caller identity and request details set by the middleware chain.
func MetaFromContext(c echo.Context) RequestMeta {
	meta := RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	if id, ok := c.Get(contextKeyRequestID).(string); ok {
		meta.RequestID = id
	}
	if uid, ok := c.Get(contextKeyUserID).(uuid.UUID); ok {
		meta.ActorID = &uid
	}
	return meta
}

// Apply copies the request details onto the event.
func (m RequestMeta) Apply(event *Event) {
	event.IPAddress = m.IPAddress
	event.UserAgent = m.UserAgent
	event.RequestID = m.RequestID
	if event.ActorID == nil && m.ActorID != nil {
		event.ActorType = ActorTypeUser
		event.ActorID = m.ActorID
	}
}

// DB is the part of a pgx pool the logger needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Logger struct {
	db  DB
	log *logrus.Logger
}

func NewLogger(db DB, log *logrus.Logger) *Logger {
	return &Logger{db: db, log: log}
}

// Log records an event synchronously.
func (l *Logger) Log(ctx context.Context, event *Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.EventType == "" {
		event.EventType = string(event.Action) + "_" + string(event.ResourceType)
	}
	if event.ActorType == "" {
		event.ActorType = ActorTypeSystem
	}
	if event.Status == "" {
		event.Status = StatusSuccess
	}

	var metadataJSON []byte
	var err error
	if event.Metadata != nil {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_events (
			id, event_type, actor_type, actor_id, resource_type, resource_id,
			action, status, ip_address, user_agent, request_id, metadata, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = l.db.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.ActorType,
		event.ActorID,
		event.ResourceType,
		event.ResourceID,
		event.Action,
		event.Status,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		metadataJSON,
		event.ErrorMessage,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	return nil
}

// Record writes the event in the background; a failed write is logged, never returned.
func (l *Logger) Record(c echo.Context, resourceType ResourceType, resourceID uuid.UUID, action Action, metadata map[string]any) {
	event := &Event{
		ResourceType: resourceType,
		ResourceID:   &resourceID,
		Action:       action,
		Status:       StatusSuccess,
		Metadata:     metadata,
	}
	MetaFromContext(c).Apply(event)
	l.logAsync(event)
}

// RecordError is Record for an action that failed.
func (l *Logger) RecordError(c echo.Context, resourceType ResourceType, resourceID *uuid.UUID, action Action, err error) {
	event := &Event{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Action:       action,
		Status:       StatusFailure,
		ErrorMessage: err.Error(),
	}
	MetaFromContext(c).Apply(event)
	l.logAsync(event)
}

func (l *Logger) logAsync(event *Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncWriteTimeout)
		defer cancel()
		if err := l.Log(ctx, event); err != nil {
			l.log.WithFields(logrus.Fields{
				"event_type": event.EventType,
				"request_id": event.RequestID,
			}).WithError(err).Warn("audit write failed")
		}
	}()
}

type QueryFilter struct {
	ActorID      *uuid.UUID
	ResourceType *ResourceType
	ResourceID   *uuid.UUID
	Action       *Action
	StartTime    *time.Time
	EndTime      *time.Time
	Limit        int
	Offset       int
}

// Query returns events newest first.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]*Event, error) {
	query := `
		SELECT id, event_type, actor_type, actor_id, resource_type, resource_id,
		       action, status, ip_address, user_agent, request_id, metadata, error_message, created_at
		FROM audit_events
		WHERE 1=1
	`
	args := []any{}
	argCount := 1

	if filter.ActorID != nil {
		query += fmt.Sprintf(" AND actor_id = $%d", argCount)
		args = append(args, *filter.ActorID)
		argCount++
	}

	if filter.ResourceType != nil {
		query += fmt.Sprintf(" AND resource_type = $%d", argCount)
		args = append(args, *filter.ResourceType)
		argCount++
	}

	if filter.ResourceID != nil {
		query += fmt.Sprintf(" AND resource_id = $%d", argCount)
		args = append(args, *filter.ResourceID)
		argCount++
	}

	if filter.Action != nil {
		query += fmt.Sprintf(" AND action = $%d", argCount)
		args = append(args, *filter.Action)
		argCount++
	}

	if filter.StartTime != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argCount)
		args = append(args, *filter.StartTime)
		argCount++
	}

	if filter.EndTime != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argCount)
		args = append(args, *filter.EndTime)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	query += fmt.Sprintf(" LIMIT $%d", argCount)
	args = append(args, limit)
	argCount++

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argCount)
		args = append(args, filter.Offset)
	}

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event := &Event{}
		var metadataJSON []byte

		err := rows.Scan(
			&event.ID,
			&event.EventType,
			&event.ActorType,
			&event.ActorID,
			&event.ResourceType,
			&event.ResourceID,
			&event.Action,
			&event.Status,
			&event.IPAddress,
			&event.UserAgent,
			&event.RequestID,
			&metadataJSON,
			&event.ErrorMessage,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}

		events = append(events, event)
	}

	return events, rows.Err()
}

// ForResource is the common "history of one thing" query.
func (l *Logger) ForResource(ctx context.Context, resourceType ResourceType, resourceID uuid.UUID, limit int) ([]*Event, error) {
	return l.Query(ctx, QueryFilter{
		ResourceType: &resourceType,
		ResourceID:   &resourceID,
		Limit:        limit,
	})
}
