package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypePostPublished  Type = "post_published"
	TypePostScheduled  Type = "post_scheduled"
	TypeClientAdded    Type = "client_added"
	TypeMessage        Type = "message"
	TypeCollaboration  Type = "collaboration"
	TypeWeeklyReport   Type = "weekly_report"
	TypeBillingChanged Type = "billing"
)

type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	ClientID  *uuid.UUID `json:"clientId,omitempty"`
	PostID    *uuid.UUID `json:"postId,omitempty"`
	Type      Type       `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Status    Status     `json:"status"`
	Priority  Priority   `json:"priority"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CreateNotificationInput struct {
	UserID   uuid.UUID
	ClientID *uuid.UUID
	PostID   *uuid.UUID
	Type     Type
	Title    string
	Body     string
	Priority Priority
}

func Filter(items []*Notification, status Status) []*Notification {
	if status == "" {
		return items
	}
	out := make([]*Notification, 0, len(items))
	for _, n := range items {
		if n.Status == status {
			out = append(out, n)
		}
	}
	return out
}

// Settings are per-user alert preferences.
type Settings struct {
	UserID             uuid.UUID `json:"userId"`
	EmailPostPublished bool      `json:"emailPostPublished"`
	EmailClientAdded   bool      `json:"emailClientAdded"`
	EmailWeeklyReport  bool      `json:"emailWeeklyReport"`
	InAppMessages      bool      `json:"inAppMessages"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// DefaultSettings is used until the user saves their own.
func DefaultSettings(userID uuid.UUID) Settings {
	return Settings{
		UserID:             userID,
		EmailPostPublished: true,
		EmailClientAdded:   true,
		EmailWeeklyReport:  true,
		InAppMessages:      true,
	}
}

type UpdateSettingsInput struct {
	EmailPostPublished *bool
	EmailClientAdded   *bool
	EmailWeeklyReport  *bool
	InAppMessages      *bool
}

func (s Settings) Apply(in UpdateSettingsInput) Settings {
	if in.EmailPostPublished != nil {
		s.EmailPostPublished = *in.EmailPostPublished
	}
	if in.EmailClientAdded != nil {
		s.EmailClientAdded = *in.EmailClientAdded
	}
	if in.EmailWeeklyReport != nil {
		s.EmailWeeklyReport = *in.EmailWeeklyReport
	}
	if in.InAppMessages != nil {
		s.InAppMessages = *in.InAppMessages
	}
	return s
}
