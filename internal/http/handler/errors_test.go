package handler

import (
	"errors"
	"fmt"
	apperrors "lincognito/pkg/errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToPublicError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.NotFound("client not found"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", apperrors.NotFound("post not found")), http.StatusNotFound},
		{"forbidden", apperrors.Forbidden("no"), http.StatusForbidden},
		{"conflict", apperrors.Conflict("taken"), http.StatusConflict},
		{"stale version", apperrors.StaleVersion("changed"), http.StatusConflict},
		{"validation", apperrors.Validation("bad"), http.StatusBadRequest},
		{"invalid transition", apperrors.InvalidTransition("archived"), http.StatusUnprocessableEntity},
		{"precondition", apperrors.Precondition("not published"), http.StatusUnprocessableEntity},
		{"expired", apperrors.Expired("token"), http.StatusGone},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := MapToPublicError(tt.err)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestRespondAppErrorHidesInternalDetail(t *testing.T) {
	c, rec := newJSONContext(newEcho(), http.MethodGet, "/", "")
	require.NoError(t, respondAppError(c, quietLogger(), errors.New("pq: password authentication failed"), "lookup"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
}

func TestRespondAppErrorKeepsClientMessage(t *testing.T) {
	c, rec := newJSONContext(newEcho(), http.MethodGet, "/", "")
	require.NoError(t, respondAppError(c, quietLogger(), apperrors.Validation("subject is required"), "compose"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "subject is required", decodeError(t, rec))
}

func TestSearchHandler_RequiresQuery(t *testing.T) {
	h := NewSearchHandler(SearchSources{}, quietLogger())

	c, rec := newJSONContext(newEcho(), http.MethodGet, "/api/search?q=%20%20", "")
	require.NoError(t, h.Search(asUser(c, uuid.New())))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgQueryRequired, decodeError(t, rec))
}
