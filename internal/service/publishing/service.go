// Package publishing moves posts through their status lifecycle and fans out the
// side effects: client messages, in-app notifications, email and the activity log.
package publishing

import (
	"context"
	"errors"
	"fmt"
	"lincognito/internal/audit"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/message"
	"lincognito/internal/domain/notification"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/user"
	"lincognito/internal/rbac"
	"lincognito/internal/rbac/presets"
	apperrors "lincognito/pkg/errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	msgCollaborateDraftOnly = "only draft posts can be sent for review"
	defaultActivityLimit    = 50
)

type Access interface {
	Client(ctx context.Context, userID, clientID uuid.UUID, resource rbac.Resource, action rbac.Action) (rbac.Role, error)
}

type Posts interface {
	GetByID(ctx context.Context, id uuid.UUID) (*post.Post, error)
	ApplyStatusChange(ctx context.Context, id uuid.UUID, change post.StatusChange) (*post.Post, error)
}

type Clients interface {
	GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error)
}

type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Messages interface {
	Create(ctx context.Context, input message.CreateMessageInput) (*message.Message, error)
}

type Notifications interface {
	Create(ctx context.Context, input notification.CreateNotificationInput) (*notification.Notification, error)
	GetSettings(ctx context.Context, userID uuid.UUID) (notification.Settings, error)
}

type Activity interface {
	Log(ctx context.Context, event *audit.Event) error
	ForResource(ctx context.Context, resourceType audit.ResourceType, resourceID uuid.UUID, limit int) ([]*audit.Event, error)
}

type Mailer interface {
	PostPublished(u *user.User, c *client.Client, p *post.Post)
}

type StatsInvalidator interface {
	Invalidate(ctx context.Context, clientID uuid.UUID)
}

type Deps struct {
	Access        Access
	Posts         Posts
	Clients       Clients
	Users         Users
	Messages      Messages
	Notifications Notifications
	Activity      Activity
	Mailer        Mailer
	Stats         StatsInvalidator
	Log           *logrus.Logger
}

type Service struct {
	Deps
	now func() time.Time
}

func NewService(deps Deps) *Service {
	return &Service{Deps: deps, now: time.Now}
}

type TransitionInput struct {
	PostID       uuid.UUID
	ActorID      uuid.UUID
	Status       post.Status
	ScheduledFor *time.Time
	NotifyClient bool
	Note         string
	Meta         audit.RequestMeta
}

type TransitionResult struct {
	Post    *post.Post       `json:"-"`
	Changed bool             `json:"changed"`
	Message *message.Message `json:"message,omitempty"`
}

// Transition validates and applies a status change. Side effects run only when the
// status actually changed; their failures are logged and do not undo the change.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	current, err := s.loadWritable(ctx, in.ActorID, in.PostID)
	if err != nil {
		return nil, err
	}

	change, changed, err := post.PlanTransition(current, in.Status, in.ScheduledFor, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return &TransitionResult{Post: current}, nil
	}

	updated, err := s.Posts.ApplyStatusChange(ctx, current.ID, change)
	if err != nil {
		return nil, err
	}
	s.Stats.Invalidate(ctx, updated.ClientID)

	result := &TransitionResult{Post: updated, Changed: true}
	s.record(ctx, in.Meta, in.ActorID, updated.ID, audit.ActionTransition, map[string]any{
		"from": string(current.Status),
		"to":   string(updated.Status),
	})

	c, err := s.Clients.GetByID(ctx, updated.ClientID)
	if err != nil {
		s.Log.WithError(err).WithField("post_id", updated.ID).Warn("client lookup after transition failed")
		return result, nil
	}

	if in.NotifyClient {
		result.Message = s.messageClient(ctx, in.ActorID, c, updated, statusSubject(updated), noteOrDefault(in.Note, updated))
	}

	switch updated.Status {
	case post.StatusPublished:
		s.announcePublished(ctx, in.ActorID, c, updated)
	case post.StatusScheduled:
		s.notify(ctx, notification.CreateNotificationInput{
			UserID:   in.ActorID,
			ClientID: &c.ID,
			PostID:   &updated.ID,
			Type:     notification.TypePostScheduled,
			Title:    "Post scheduled for " + c.Name,
			Body:     fmt.Sprintf("%q goes out %s.", updated.DisplayTitle(), updated.ScheduledFor.UTC().Format(time.RFC1123)),
		})
	}

	return result, nil
}

type CollaborateInput struct {
	PostID  uuid.UUID
	ActorID uuid.UUID
	Subject string
	Body    string
	Meta    audit.RequestMeta
}

// Collaborate sends a draft to its client for review as an outbound message.
func (s *Service) Collaborate(ctx context.Context, in CollaborateInput) (*message.Message, error) {
	current, err := s.loadWritable(ctx, in.ActorID, in.PostID)
	if err != nil {
		return nil, err
	}
	if !current.Status.Allows(post.ActionCollaborate) {
		return nil, apperrors.InvalidTransition(msgCollaborateDraftOnly)
	}

	compose := message.ComposeInput{
		ClientID: current.ClientID,
		PostID:   &current.ID,
		Subject:  in.Subject,
		Body:     in.Body,
	}
	if strings.TrimSpace(compose.Subject) == "" {
		compose.Subject = "Review requested: " + current.DisplayTitle()
	}
	compose.Normalize()
	if err := compose.Validate(); err != nil {
		return nil, err
	}

	msg, err := s.Messages.Create(ctx, message.CreateMessageInput{
		UserID:    in.ActorID,
		ClientID:  current.ClientID,
		PostID:    &current.ID,
		Subject:   compose.Subject,
		Body:      compose.Body,
		Status:    message.StatusRead,
		Priority:  compose.Priority,
		Direction: message.DirectionOutbound,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, in.Meta, in.ActorID, current.ID, audit.ActionCollaborate, map[string]any{
		"message_id": msg.ID.String(),
	})
	s.notify(ctx, notification.CreateNotificationInput{
		UserID:   in.ActorID,
		ClientID: &current.ClientID,
		PostID:   &current.ID,
		Type:     notification.TypeCollaboration,
		Title:    "Review requested",
		Body:     fmt.Sprintf("%q was sent to the client for review.", current.DisplayTitle()),
	})

	return msg, nil
}

// History returns the activity log of a post the caller can read.
func (s *Service) History(ctx context.Context, actorID, postID uuid.UUID) ([]*audit.Event, error) {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Access.Client(ctx, actorID, p.ClientID, presets.ResourcePost, presets.ActionRead); err != nil {
		return nil, hidePost(err)
	}
	return s.Activity.ForResource(ctx, audit.ResourceTypePost, postID, defaultActivityLimit)
}

func (s *Service) loadWritable(ctx context.Context, actorID, postID uuid.UUID) (*post.Post, error) {
	p, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Access.Client(ctx, actorID, p.ClientID, presets.ResourcePost, presets.ActionWrite); err != nil {
		return nil, hidePost(err)
	}
	return p, nil
}

func (s *Service) announcePublished(ctx context.Context, actorID uuid.UUID, c *client.Client, p *post.Post) {
	s.notify(ctx, notification.CreateNotificationInput{
		UserID:   actorID,
		ClientID: &c.ID,
		PostID:   &p.ID,
		Type:     notification.TypePostPublished,
		Title:    "Post published for " + c.Name,
		Body:     fmt.Sprintf("%q is live.", p.DisplayTitle()),
		Priority: notification.PriorityHigh,
	})

	settings, err := s.Notifications.GetSettings(ctx, actorID)
	if err != nil {
		s.Log.WithError(err).WithField("user_id", actorID).Warn("notification settings lookup failed")
		return
	}
	if !settings.EmailPostPublished {
		return
	}

	u, err := s.Users.GetByID(ctx, actorID)
	if err != nil {
		s.Log.WithError(err).WithField("user_id", actorID).Warn("user lookup for publish email failed")
		return
	}
	s.Mailer.PostPublished(u, c, p)
}

func (s *Service) messageClient(ctx context.Context, actorID uuid.UUID, c *client.Client, p *post.Post, subject, body string) *message.Message {
	msg, err := s.Messages.Create(ctx, message.CreateMessageInput{
		UserID:    actorID,
		ClientID:  c.ID,
		PostID:    &p.ID,
		Subject:   subject,
		Body:      body,
		Status:    message.StatusRead,
		Priority:  message.PriorityNormal,
		Direction: message.DirectionOutbound,
	})
	if err != nil {
		s.Log.WithError(err).WithField("post_id", p.ID).Warn("client message after transition failed")
		return nil
	}
	return msg
}

func (s *Service) notify(ctx context.Context, in notification.CreateNotificationInput) {
	if _, err := s.Notifications.Create(ctx, in); err != nil {
		s.Log.WithError(err).WithField("type", in.Type).Warn("notification create failed")
	}
}

func (s *Service) record(ctx context.Context, meta audit.RequestMeta, actorID, postID uuid.UUID, action audit.Action, metadata map[string]any) {
	event := &audit.Event{
		ActorType:    audit.ActorTypeUser,
		ActorID:      &actorID,
		ResourceType: audit.ResourceTypePost,
		ResourceID:   &postID,
		Action:       action,
		Status:       audit.StatusSuccess,
		Metadata:     metadata,
	}
	meta.Apply(event)
	if err := s.Activity.Log(ctx, event); err != nil {
		s.Log.WithError(err).WithField("post_id", postID).Warn("activity write failed")
	}
}

func statusSubject(p *post.Post) string {
	switch p.Status {
	case post.StatusScheduled:
		return "Scheduled: " + p.DisplayTitle()
	case post.StatusPublished:
		return "Published: " + p.DisplayTitle()
	case post.StatusArchived:
		return "Archived: " + p.DisplayTitle()
	default:
		return "Back to draft: " + p.DisplayTitle()
	}
}

func noteOrDefault(note string, p *post.Post) string {
	if note = strings.TrimSpace(note); note != "" {
		return note
	}
	switch p.Status {
	case post.StatusScheduled:
		return fmt.Sprintf("Your post is scheduled for %s.", p.ScheduledFor.UTC().Format(time.RFC1123))
	case post.StatusPublished:
		return "Your post is now live on LinkedIn."
	case post.StatusArchived:
		return "This post has been archived."
	default:
		return "This post is back in drafts for more edits."
	}
}

// hidePost keeps posts of inaccessible clients indistinguishable from missing ones.
func hidePost(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound("post not found")
	}
	return err
}
