package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDB struct {
	sql  string
	args []any
}

func (r *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql, r.args = sql, args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *recordingDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	r.sql, r.args = sql, args
	return nil, assert.AnError
}

func TestLog_FillsDefaults(t *testing.T) {
	db := &recordingDB{}
	l := NewLogger(db, logrus.New())
	postID := uuid.New()

	event := &Event{ResourceType: ResourceTypePost, ResourceID: &postID, Action: ActionTransition}
	require.NoError(t, l.Log(context.Background(), event))

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "transition_post", event.EventType)
	assert.Equal(t, ActorTypeSystem, event.ActorType)
	assert.Equal(t, StatusSuccess, event.Status)
	assert.False(t, event.CreatedAt.IsZero())
	assert.Contains(t, db.sql, "INSERT INTO audit_events")
	assert.Len(t, db.args, 14)
}

func TestQuery_BuildsFilters(t *testing.T) {
	db := &recordingDB{}
	l := NewLogger(db, logrus.New())
	postID := uuid.New()

	_, err := l.ForResource(context.Background(), ResourceTypePost, postID, 0)
	require.Error(t, err)

	assert.True(t, strings.Contains(db.sql, "resource_type = $1"))
	assert.True(t, strings.Contains(db.sql, "resource_id = $2"))
	assert.True(t, strings.Contains(db.sql, "LIMIT $3"))
	assert.Equal(t, []any{ResourceTypePost, postID, defaultQueryLimit}, db.args)
}

func TestMetaFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("User-Agent", "dashboard/1.0")
	c := e.NewContext(req, httptest.NewRecorder())
	userID := uuid.New()
	c.Set(contextKeyUserID, userID)
	c.Set(contextKeyRequestID, "req-1")

	event := &Event{}
	MetaFromContext(c).Apply(event)

	assert.Equal(t, ActorTypeUser, event.ActorType)
	require.NotNil(t, event.ActorID)
	assert.Equal(t, userID, *event.ActorID)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, "dashboard/1.0", event.UserAgent)
}
