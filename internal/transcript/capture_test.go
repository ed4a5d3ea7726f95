package transcript

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a scriptable capture source.
type fakeSource struct {
	mu     sync.Mutex
	starts int
	events chan Event
}

func newFakeSource() *fakeSource {
	return &fakeSource{events: make(chan Event, 32)}
}

func (s *fakeSource) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	return nil
}

func (s *fakeSource) Events() <-chan Event {
	return s.events
}

func (s *fakeSource) startCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

func newTestCapture(t *testing.T) (*Capture, *fakeSource) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	source := newFakeSource()
	buffer := NewBuffer(time.Now())
	c := NewCapture(source, buffer, log)
	t.Cleanup(func() {
		close(source.events)
		<-c.Done()
	})
	return c, source
}

func waitForEntries(t *testing.T, c *Capture, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(c.Snapshot().Entries) == n
	}, time.Second, 5*time.Millisecond)
}

func TestCaptureCommitsFinalResults(t *testing.T) {
	c, source := newTestCapture(t)

	source.events <- Event{Type: EventResult, IsFinal: false, Text: "partial"}
	source.events <- Event{Type: EventResult, IsFinal: true, Text: "committed line"}

	waitForEntries(t, c, 1)
	assert.Equal(t, "committed line", c.Snapshot().Entries[0].Text)
}

func TestCaptureRestartsOnUnsolicitedStop(t *testing.T) {
	c, source := newTestCapture(t)

	source.events <- Event{Type: EventStopped}
	source.events <- Event{Type: EventStopped}

	require.Eventually(t, func() bool {
		return source.startCount() == 2
	}, time.Second, 5*time.Millisecond)
	_ = c
}

func TestCaptureNoRestartAfterDeactivate(t *testing.T) {
	c, source := newTestCapture(t)

	c.Deactivate()
	source.events <- Event{Type: EventStopped}
	source.events <- Event{Type: EventResult, IsFinal: true, Text: "too late"}

	// Drain: wait until both events have been consumed.
	require.Eventually(t, func() bool {
		return len(source.events) == 0
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.Zero(t, source.startCount())
	assert.Empty(t, c.Snapshot().Entries)
}

func TestCapturePauseDropsResults(t *testing.T) {
	c, source := newTestCapture(t)

	c.Pause()
	source.events <- Event{Type: EventResult, IsFinal: true, Text: "while muted"}
	require.Eventually(t, func() bool {
		return len(source.events) == 0
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.Snapshot().Entries)

	c.Resume()
	source.events <- Event{Type: EventResult, IsFinal: true, Text: "after resume"}
	waitForEntries(t, c, 1)
	assert.Equal(t, "after resume", c.Snapshot().Entries[0].Text)
}

func TestCaptureStopWhilePausedRestartsOnResume(t *testing.T) {
	c, source := newTestCapture(t)

	c.Pause()
	source.events <- Event{Type: EventStopped}
	require.Eventually(t, func() bool {
		return len(source.events) == 0
	}, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, source.startCount(), "no restart while paused")

	c.Resume()
	require.Eventually(t, func() bool {
		return source.startCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCaptureIgnoresNoSpeechErrors(t *testing.T) {
	c, source := newTestCapture(t)

	source.events <- Event{Type: EventError, Code: ErrNoSpeech}
	source.events <- Event{Type: EventError, Code: "network"}
	source.events <- Event{Type: EventResult, IsFinal: true, Text: "still running"}

	// Errors are non-fatal: the loop keeps consuming.
	waitForEntries(t, c, 1)
}

func TestCaptureSnapshotDuringLiveResults(t *testing.T) {
	c, source := newTestCapture(t)

	// Snapshots race with the consumer loop committing results; both sides
	// must go through the capture lock.
	const n = 500
	go func() {
		for i := 0; i < n; i++ {
			source.events <- Event{Type: EventResult, IsFinal: true, Text: "word"}
		}
	}()

	for c.Snapshot().WordCount < n {
		time.Sleep(time.Millisecond)
	}

	snap := c.Snapshot()
	assert.Len(t, snap.Entries, n)
	assert.Equal(t, n, snap.WordCount)
}

func TestCaptureFlagLastEntry(t *testing.T) {
	c, source := newTestCapture(t)

	source.events <- Event{Type: EventResult, IsFinal: true, Text: "breakthrough moment"}
	waitForEntries(t, c, 1)

	c.FlagLastEntry()
	require.Eventually(t, func() bool {
		entries := c.Snapshot().Entries
		return len(entries) == 1 && entries[0].Flagged
	}, time.Second, 5*time.Millisecond)
}
