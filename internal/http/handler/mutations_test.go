package handler

import (
	"context"
	"encoding/json"
	"lincognito/internal/auth"
	"lincognito/internal/domain/agency"
	"lincognito/internal/domain/notification"
	"lincognito/internal/domain/post"
	"lincognito/internal/domain/template"
	"lincognito/internal/infra/cache"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostHandler_UpdatePost(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	cl := store.addClient("Acme", userID, agency.RoleEditor)
	h := newPostHandler(store)

	tests := []struct {
		name       string
		status     post.Status
		body       string
		wantStatus int
		wantBody   string
	}{
		{"missing version", post.StatusDraft, `{"content":"New copy"}`, http.StatusBadRequest, msgVersionRequired},
		{"negative version", post.StatusDraft, `{"content":"New copy","version":-1}`, http.StatusBadRequest, "version must be greater than 0"},
		{"stale version", post.StatusDraft, `{"content":"New copy","version":7}`, http.StatusConflict, ""},
		{"archived is read-only", post.StatusArchived, `{"content":"New copy","version":1}`, http.StatusUnprocessableEntity, ""},
		{"empty content", post.StatusDraft, `{"content":"   ","version":1}`, http.StatusBadRequest, msgContentRequired},
		{"reschedule a draft", post.StatusDraft, `{"scheduledFor":"2030-01-01T09:00:00Z","version":1}`, http.StatusUnprocessableEntity, msgScheduleViaStatus},
		{"updates a draft", post.StatusDraft, `{"content":" New copy ","version":1}`, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := store.addPost(cl.ID, "Old copy", tt.status)
			c, rec := newJSONContext(newEcho(), http.MethodPut, "/api/posts/"+p.ID.String(), tt.body)
			withID(c, []string{paramID}, p.ID.String())

			require.NoError(t, h.UpdatePost(asUser(c, userID)))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, decodeError(t, rec))
			}
			if tt.wantStatus == http.StatusOK {
				var view post.View
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
				assert.Equal(t, "New copy", view.Content)
				assert.Equal(t, 2, view.Version)
			} else {
				assert.Equal(t, "Old copy", p.Content)
				assert.Equal(t, 1, p.Version)
			}
		})
	}
}

func TestPostHandler_DeletePost(t *testing.T) {
	store := newFakeStore()
	userID := uuid.New()
	cl := store.addClient("Acme", userID, agency.RoleEditor)
	viewOnly := store.addClient("Globex", userID, agency.RoleViewer)
	publisher := &fakePublisher{store: store}
	stats := cache.NewStatsCache(cache.NewMemoryStore(), time.Minute, quietLogger())
	h := NewPostHandler(fakePosts{store}, auth.NewAccess(store, store), publisher, nil, stats, nopActivity{}, quietLogger())

	tests := []struct {
		name        string
		clientID    uuid.UUID
		status      post.Status
		query       string
		wantStatus  int
		wantRemoved bool
		wantState   post.Status
	}{
		{"archives by default", cl.ID, post.StatusPublished, "", http.StatusNoContent, false, post.StatusArchived},
		{"hard delete of a draft", cl.ID, post.StatusDraft, "?hard=true", http.StatusNoContent, true, ""},
		{"hard delete needs a draft", cl.ID, post.StatusScheduled, "?hard=true", http.StatusUnprocessableEntity, false, post.StatusScheduled},
		{"viewer cannot delete", viewOnly.ID, post.StatusDraft, "", http.StatusForbidden, false, post.StatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := store.addPost(tt.clientID, "Copy", tt.status)
			c, rec := newJSONContext(newEcho(), http.MethodDelete, "/api/posts/"+p.ID.String()+tt.query, "")
			withID(c, []string{paramID}, p.ID.String())

			require.NoError(t, h.DeletePost(asUser(c, userID)))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			_, stillThere := store.posts[p.ID]
			assert.Equal(t, !tt.wantRemoved, stillThere)
			if !tt.wantRemoved {
				assert.Equal(t, tt.wantState, p.Status)
			}
		})
	}

	require.Len(t, publisher.transitions, 1)
	assert.Equal(t, post.StatusArchived, publisher.transitions[0].Status)
	assert.Equal(t, userID, publisher.transitions[0].ActorID)
}

func TestTemplateHandler_UseTemplate(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	templates := newFakeTemplates(now)
	owner, stranger := uuid.New(), uuid.New()
	created, err := templates.Create(context.Background(), template.CreateTemplateInput{
		UserID:   owner,
		Name:     "Hook + story",
		Content:  "Start with a bold claim",
		Category: "storytelling",
	})
	require.NoError(t, err)
	h := NewTemplateHandler(templates, nopActivity{}, quietLogger())

	use := func(userID uuid.UUID) *httptest.ResponseRecorder {
		c, rec := newJSONContext(newEcho(), http.MethodPost, "/api/templates/"+created.ID.String()+"/use", "")
		withID(c, []string{paramID}, created.ID.String())
		require.NoError(t, h.UseTemplate(asUser(c, userID)))
		return rec
	}

	rec := use(owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = use(owner)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UseTemplateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Start with a bold claim", resp.Content)
	assert.Equal(t, 2, resp.Template.UsageCount)
	require.NotNil(t, resp.Template.LastUsedAt)
	assert.True(t, resp.Template.LastUsedAt.Equal(now))

	rec = use(stranger)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 2, created.UsageCount)
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	userID, other := uuid.New(), uuid.New()
	inbox := &fakeNotifications{items: []*notification.Notification{
		{ID: uuid.New(), UserID: userID, Status: notification.StatusUnread},
		{ID: uuid.New(), UserID: userID, Status: notification.StatusUnread},
		{ID: uuid.New(), UserID: userID, Status: notification.StatusRead},
		{ID: uuid.New(), UserID: other, Status: notification.StatusUnread},
	}}
	h := NewNotificationHandler(inbox, quietLogger())
	e := newEcho()

	c, rec := newJSONContext(e, http.MethodPost, "/api/notifications/read-all", "")
	require.NoError(t, h.MarkAllRead(asUser(c, userID)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MarkAllReadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Updated)
	assert.Equal(t, notification.StatusUnread, inbox.items[3].Status)

	c, rec = newJSONContext(e, http.MethodGet, "/api/notifications", "")
	require.NoError(t, h.ListNotifications(asUser(c, userID)))
	var list NotificationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Notifications, 3)
	assert.Zero(t, list.UnreadCount)
}

func TestNotificationHandler_UpdateSettings(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		want       notification.Settings
	}{
		{
			name:       "partial update keeps omitted toggles",
			body:       `{"emailWeeklyReport":false}`,
			wantStatus: http.StatusOK,
			want: notification.Settings{
				UserID:             userID,
				EmailPostPublished: true,
				EmailClientAdded:   true,
				EmailWeeklyReport:  false,
				InAppMessages:      true,
			},
		},
		{
			name:       "all toggles off",
			body:       `{"emailPostPublished":false,"emailClientAdded":false,"emailWeeklyReport":false,"inAppMessages":false}`,
			wantStatus: http.StatusOK,
			want:       notification.Settings{UserID: userID},
		},
		{
			name:       "unknown field",
			body:       `{"smsAlerts":true}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inbox := &fakeNotifications{settings: notification.DefaultSettings(userID)}
			h := NewNotificationHandler(inbox, quietLogger())
			c, rec := newJSONContext(newEcho(), http.MethodPut, "/api/notifications/settings", tt.body)

			require.NoError(t, h.UpdateSettings(asUser(c, userID)))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Zero(t, inbox.saved)
				return
			}

			var got notification.Settings
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, inbox.saved)
		})
	}
}
