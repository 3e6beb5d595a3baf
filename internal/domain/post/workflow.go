package post

import (
	"fmt"
	apperrors "lincognito/pkg/errors"
	"time"
)

const (
	msgArchivedTerminal      = "archived posts cannot change status"
	msgTransitionNotAllowed  = "cannot move a post from %s to %s"
	msgScheduleNeedsTime     = "scheduledFor is required to schedule a post"
	msgScheduleInPast        = "scheduledFor must be in the future"
	msgEngagementNeedsPublic = "engagement can only be recorded on published posts"
	msgEngagementNegative    = "engagement counters cannot be negative"
	msgArchivedReadOnly      = "archived posts cannot be edited"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusScheduled, StatusPublished, StatusArchived},
	StatusScheduled: {StatusPublished, StatusDraft, StatusArchived},
	StatusPublished: {StatusArchived},
	StatusArchived:  {},
}

// CanTransition reports whether from may move to to. Same-status moves are allowed no-ops.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PlanTransition validates moving p to the target status at now and returns the change
// to persist. changed is false when p is already in that status.
func PlanTransition(p *Post, to Status, scheduledFor *time.Time, now time.Time) (StatusChange, bool, error) {
	change := StatusChange{
		Status:          to,
		ScheduledFor:    p.ScheduledFor,
		PublishedAt:     p.PublishedAt,
		ExpectedVersion: p.Version,
	}

	if !to.Valid() {
		return change, false, apperrors.Validation(fmt.Sprintf(errInvalidStatusFmt, to))
	}
	if p.Status == to && to != StatusScheduled {
		return change, false, nil
	}
	if p.Status == StatusArchived {
		return change, false, apperrors.InvalidTransition(msgArchivedTerminal)
	}
	if !CanTransition(p.Status, to) {
		return change, false, apperrors.InvalidTransition(fmt.Sprintf(msgTransitionNotAllowed, p.Status, to))
	}

	switch to {
	case StatusScheduled:
		if scheduledFor == nil {
			if p.Status == StatusScheduled {
				return change, false, nil
			}
			return change, false, apperrors.Validation(msgScheduleNeedsTime)
		}
		if err := ValidateScheduledFor(*scheduledFor, now); err != nil {
			return change, false, err
		}
		at := scheduledFor.UTC()
		if p.Status == StatusScheduled && p.ScheduledFor != nil && p.ScheduledFor.Equal(at) {
			return change, false, nil
		}
		change.ScheduledFor = &at
	case StatusPublished:
		at := now.UTC()
		change.PublishedAt = &at
	case StatusDraft:
		change.ScheduledFor = nil
	}

	return change, true, nil
}

func ValidateScheduledFor(at, now time.Time) error {
	if !at.After(now) {
		return apperrors.Validation(msgScheduleInPast)
	}
	return nil
}

// ValidateEngagement enforces that counters exist only on published posts and are never negative.
func ValidateEngagement(status Status, e Engagement) error {
	if status != StatusPublished {
		return apperrors.Precondition(msgEngagementNeedsPublic)
	}
	if e.Likes < 0 || e.Comments < 0 || e.Shares < 0 || e.Views < 0 {
		return apperrors.Validation(msgEngagementNegative)
	}
	return nil
}

func ValidateEditable(status Status) error {
	if !status.Allows(ActionEdit) {
		return apperrors.InvalidTransition(msgArchivedReadOnly)
	}
	return nil
}
