package message

import (
	"fmt"
	apperrors "lincognito/pkg/errors"
	"lincognito/pkg/validator"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusUnread  Status = "unread"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
)

func (s Status) Valid() bool {
	return s == StatusUnread || s == StatusRead || s == StatusReplied
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ParsePriority defaults an empty value to normal.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if p == "" {
		return PriorityNormal, nil
	}
	if !p.Valid() {
		return "", apperrors.Validation(fmt.Sprintf("invalid priority: %s", raw))
	}
	return p, nil
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Message struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	ClientID  uuid.UUID  `json:"clientId"`
	PostID    *uuid.UUID `json:"postId,omitempty"`
	ParentID  *uuid.UUID `json:"parentId,omitempty"`
	Subject   string     `json:"subject"`
	Body      string     `json:"body"`
	Status    Status     `json:"status"`
	Priority  Priority   `json:"priority"`
	Direction Direction  `json:"direction"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ComposeInput is what the compose form submits. Every required field must be non-empty.
type ComposeInput struct {
	ClientID uuid.UUID
	PostID   *uuid.UUID
	Subject  string
	Body     string
	Priority Priority
}

func (in *ComposeInput) Normalize() {
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	if in.Priority == "" {
		in.Priority = PriorityNormal
	}
}

func (in ComposeInput) Validate() error {
	if in.ClientID == uuid.Nil {
		return apperrors.Validation("clientId is required")
	}
	if strings.TrimSpace(in.Subject) == "" {
		return apperrors.Validation("subject is required")
	}
	if err := validator.Name("subject", strings.TrimSpace(in.Subject)); err != nil {
		return apperrors.Validation(err.Error())
	}
	if err := validator.MessageBody(in.Body); err != nil {
		return apperrors.Validation(err.Error())
	}
	if in.Priority != "" && !in.Priority.Valid() {
		return apperrors.Validation(fmt.Sprintf("invalid priority: %s", in.Priority))
	}
	return nil
}

type CreateMessageInput struct {
	UserID    uuid.UUID
	ClientID  uuid.UUID
	PostID    *uuid.UUID
	ParentID  *uuid.UUID
	Subject   string
	Body      string
	Status    Status
	Priority  Priority
	Direction Direction
}

// ReplySubject prefixes "Re: " once.
func ReplySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

type ListFilter struct {
	Query    string
	Status   Status
	Priority Priority
	ClientID uuid.UUID
}

func Filter(messages []*Message, f ListFilter) []*Message {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]*Message, 0, len(messages))
	for _, m := range messages {
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.Priority != "" && m.Priority != f.Priority {
			continue
		}
		if f.ClientID != uuid.Nil && m.ClientID != f.ClientID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(m.Subject), q) && !strings.Contains(strings.ToLower(m.Body), q) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func CountUnread(messages []*Message) int {
	n := 0
	for _, m := range messages {
		if m.Status == StatusUnread {
			n++
		}
	}
	return n
}
