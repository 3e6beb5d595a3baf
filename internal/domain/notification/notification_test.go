package notification

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSettings_Apply(t *testing.T) {
	s := DefaultSettings(uuid.New())
	off := false
	updated := s.Apply(UpdateSettingsInput{EmailWeeklyReport: &off})

	assert.False(t, updated.EmailWeeklyReport)
	assert.True(t, updated.EmailPostPublished)
	assert.True(t, s.EmailWeeklyReport, "Apply must not mutate the receiver")
}

func TestFilter(t *testing.T) {
	items := []*Notification{{Status: StatusUnread}, {Status: StatusRead}, {Status: StatusUnread}}
	assert.Len(t, Filter(items, StatusUnread), 2)
	assert.Len(t, Filter(items, ""), 3)
}
