package publishing

import (
	"context"
	"lincognito/internal/audit"
	"lincognito/internal/domain/client"
	"lincognito/internal/domain/message"
	"lincognito/internal/domain/notification"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/user"
	"lincognito/internal/rbac"
	"lincognito/internal/rbac/presets"
	apperrors "lincognito/pkg/errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fakeAccess struct {
	role rbac.Role
}

func (f fakeAccess) Client(_ context.Context, _, _ uuid.UUID, resource rbac.Resource, action rbac.Action) (rbac.Role, error) {
	if f.role == "" {
		return "", apperrors.NotFound("client not found")
	}
	if !rbac.MustNew(presets.Agency()).IsAuthorized(f.role, resource, action) {
		return f.role, apperrors.Forbidden("denied")
	}
	return f.role, nil
}

type fakeStore struct {
	mu            sync.Mutex
	posts         map[uuid.UUID]*post.Post
	client        *client.Client
	user          *user.User
	messages      []message.CreateMessageInput
	notifications []notification.CreateNotificationInput
	events        []*audit.Event
	settings      notification.Settings
	published     []*post.Post
	invalidated   []uuid.UUID
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*post.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ApplyStatusChange(_ context.Context, id uuid.UUID, change post.StatusChange) (*post.Post, error) {
	p := f.posts[id]
	if p.Version != change.ExpectedVersion {
		return nil, apperrors.StaleVersion("stale")
	}
	p.Status = change.Status
	p.ScheduledFor = change.ScheduledFor
	p.PublishedAt = change.PublishedAt
	p.Version++
	cp := *p
	return &cp, nil
}

type clientsFake struct{ *fakeStore }

func (c clientsFake) GetByID(context.Context, uuid.UUID) (*client.Client, error) { return c.client, nil }

type usersFake struct{ *fakeStore }

func (u usersFake) GetByID(context.Context, uuid.UUID) (*user.User, error) { return u.user, nil }

func (f *fakeStore) Create(_ context.Context, in message.CreateMessageInput) (*message.Message, error) {
	f.messages = append(f.messages, in)
	return &message.Message{ID: uuid.New(), ClientID: in.ClientID, PostID: in.PostID, Subject: in.Subject, Body: in.Body, Direction: in.Direction}, nil
}

type notificationsFake struct{ *fakeStore }

func (n notificationsFake) Create(_ context.Context, in notification.CreateNotificationInput) (*notification.Notification, error) {
	n.notifications = append(n.notifications, in)
	return &notification.Notification{ID: uuid.New(), Type: in.Type}, nil
}

func (n notificationsFake) GetSettings(context.Context, uuid.UUID) (notification.Settings, error) {
	return n.settings, nil
}

func (f *fakeStore) Log(_ context.Context, e *audit.Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeStore) ForResource(_ context.Context, _ audit.ResourceType, id uuid.UUID, _ int) ([]*audit.Event, error) {
	var out []*audit.Event
	for _, e := range f.events {
		if e.ResourceID != nil && *e.ResourceID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) PostPublished(_ *user.User, _ *client.Client, p *post.Post) {
	f.mu.Lock()
	f.published = append(f.published, p)
	f.mu.Unlock()
}

func (f *fakeStore) Invalidate(_ context.Context, clientID uuid.UUID) {
	f.invalidated = append(f.invalidated, clientID)
}

func setup(t *testing.T, status post.Status, role rbac.Role) (*Service, *fakeStore, *post.Post) {
	t.Helper()
	c := &client.Client{ID: uuid.New(), Name: "Grace"}
	p := &post.Post{ID: uuid.New(), ClientID: c.ID, Title: "Launch", Content: "We shipped.", Status: status, Version: 1}
	store := &fakeStore{
		posts:    map[uuid.UUID]*post.Post{p.ID: p},
		client:   c,
		user:     &user.User{ID: uuid.New(), Email: "ada@example.com"},
		settings: notification.DefaultSettings(uuid.Nil),
	}
	svc := NewService(Deps{
		Access:        fakeAccess{role: role},
		Posts:         store,
		Clients:       clientsFake{store},
		Users:         usersFake{store},
		Messages:      store,
		Notifications: notificationsFake{store},
		Activity:      store,
		Mailer:        store,
		Stats:         store,
		Log:           logrus.New(),
	})
	svc.now = func() time.Time { return now }
	return svc, store, p
}

func TestTransition_PublishFansOut(t *testing.T) {
	svc, store, p := setup(t, post.StatusDraft, presets.RoleEditor)

	res, err := svc.Transition(context.Background(), TransitionInput{
		PostID:       p.ID,
		ActorID:      store.user.ID,
		Status:       post.StatusPublished,
		NotifyClient: true,
	})
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Equal(t, post.StatusPublished, res.Post.Status)
	require.NotNil(t, res.Post.PublishedAt)
	assert.True(t, res.Post.PublishedAt.Equal(now))

	require.Len(t, store.messages, 1)
	assert.Equal(t, message.DirectionOutbound, store.messages[0].Direction)
	assert.Equal(t, "Published: Launch", store.messages[0].Subject)

	require.Len(t, store.notifications, 1)
	assert.Equal(t, notification.TypePostPublished, store.notifications[0].Type)
	assert.Len(t, store.published, 1)

	require.Len(t, store.events, 1)
	assert.Equal(t, audit.ActionTransition, store.events[0].Action)
	assert.Equal(t, "DRAFT", store.events[0].Metadata["from"])
	assert.Equal(t, []uuid.UUID{p.ClientID}, store.invalidated)
}

func TestTransition_PublishEmailRespectsSettings(t *testing.T) {
	svc, store, p := setup(t, post.StatusScheduled, presets.RoleOwner)
	store.settings.EmailPostPublished = false

	_, err := svc.Transition(context.Background(), TransitionInput{PostID: p.ID, ActorID: store.user.ID, Status: post.StatusPublished})
	require.NoError(t, err)

	assert.Empty(t, store.published)
	assert.Empty(t, store.messages)
}

func TestTransition_SameStatusIsNoop(t *testing.T) {
	svc, store, p := setup(t, post.StatusDraft, presets.RoleEditor)

	res, err := svc.Transition(context.Background(), TransitionInput{PostID: p.ID, ActorID: store.user.ID, Status: post.StatusDraft})
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Empty(t, store.events)
	assert.Equal(t, 1, store.posts[p.ID].Version)
}

func TestTransition_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		from    post.Status
		role    rbac.Role
		to      post.Status
		wantErr error
	}{
		{"archived is terminal", post.StatusArchived, presets.RoleOwner, post.StatusDraft, apperrors.ErrInvalidTransition},
		{"published cannot go back to draft", post.StatusPublished, presets.RoleOwner, post.StatusDraft, apperrors.ErrInvalidTransition},
		{"viewer cannot transition", post.StatusDraft, presets.RoleViewer, post.StatusPublished, apperrors.ErrForbidden},
		{"no access looks like missing", post.StatusDraft, "", post.StatusPublished, apperrors.ErrNotFound},
		{"schedule needs a time", post.StatusDraft, presets.RoleEditor, post.StatusScheduled, apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, p := setup(t, tt.from, tt.role)
			_, err := svc.Transition(context.Background(), TransitionInput{PostID: p.ID, ActorID: store.user.ID, Status: tt.to})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.events)
		})
	}
}

func TestTransition_ScheduleNotifies(t *testing.T) {
	svc, store, p := setup(t, post.StatusDraft, presets.RoleEditor)
	at := now.Add(24 * time.Hour)

	res, err := svc.Transition(context.Background(), TransitionInput{PostID: p.ID, ActorID: store.user.ID, Status: post.StatusScheduled, ScheduledFor: &at})
	require.NoError(t, err)

	assert.Equal(t, post.StatusScheduled, res.Post.Status)
	require.Len(t, store.notifications, 1)
	assert.Equal(t, notification.TypePostScheduled, store.notifications[0].Type)
}

func TestCollaborate(t *testing.T) {
	svc, store, p := setup(t, post.StatusDraft, presets.RoleEditor)

	msg, err := svc.Collaborate(context.Background(), CollaborateInput{PostID: p.ID, ActorID: store.user.ID, Body: "Thoughts on the hook?"})
	require.NoError(t, err)

	assert.Equal(t, "Review requested: Launch", msg.Subject)
	require.NotNil(t, msg.PostID)
	assert.Equal(t, p.ID, *msg.PostID)
	assert.Equal(t, audit.ActionCollaborate, store.events[0].Action)

	history, err := svc.History(context.Background(), store.user.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCollaborate_DraftOnlyAndBodyRequired(t *testing.T) {
	svc, store, p := setup(t, post.StatusScheduled, presets.RoleEditor)
	_, err := svc.Collaborate(context.Background(), CollaborateInput{PostID: p.ID, ActorID: store.user.ID, Body: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	svc, store, p = setup(t, post.StatusDraft, presets.RoleEditor)
	_, err = svc.Collaborate(context.Background(), CollaborateInput{PostID: p.ID, ActorID: store.user.ID, Body: "  "})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, store.messages)
}
