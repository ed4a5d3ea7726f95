package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/coachforge/coachforge-backend/internal/models"
)

func TestTransitionGuards(t *testing.T) {
	tests := []struct {
		status    models.SessionStatus
		canStart  bool
		canEnd    bool
		canCancel bool
	}{
		{models.StatusScheduled, true, false, true},
		{models.StatusInProgress, false, true, false},
		{models.StatusProcessing, false, true, false},
		{models.StatusCompleted, false, true, false},
		{models.StatusCancelled, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.canStart, CanStart(tt.status))
			assert.Equal(t, tt.canEnd, CanEnd(tt.status))
			assert.Equal(t, tt.canCancel, CanCancel(tt.status))
		})
	}
}

func TestTransitionErrorWrapsSentinel(t *testing.T) {
	err := transitionError(models.StatusCompleted, "start")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Contains(t, err.Error(), "completed")
}
