package session

import (
	"errors"
	"fmt"

	"github.com/coachforge/coachforge-backend/internal/models"
)

// ErrInvalidTransition is returned when a lifecycle operation is requested
// from a status that does not permit it.
var ErrInvalidTransition = errors.New("invalid session transition")

// CanStart reports whether a session may move to in_progress. Only a
// scheduled session can start; in particular nothing skips straight from
// scheduled to processing.
func CanStart(s models.SessionStatus) bool {
	return s == models.StatusScheduled
}

// CanEnd reports whether a session may be submitted to the end transition.
// A live session ends normally; a processing or completed session may be
// re-submitted to rerun the synthesis pipeline against its persisted
// transcript.
func CanEnd(s models.SessionStatus) bool {
	switch s {
	case models.StatusInProgress, models.StatusProcessing, models.StatusCompleted:
		return true
	default:
		return false
	}
}

// CanCancel reports whether a session may be cancelled. Cancellation is only
// reachable from scheduled.
func CanCancel(s models.SessionStatus) bool {
	return s == models.StatusScheduled
}

func transitionError(from models.SessionStatus, op string) error {
	return fmt.Errorf("%w: cannot %s a %s session", ErrInvalidTransition, op, from)
}
