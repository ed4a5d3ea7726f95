package transcript

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/coachforge/coachforge-backend/internal/models"
)

// ErrNoSpeech is the error code recognition services report when a listening
// window closes without detecting speech. It is expected and never logged.
const ErrNoSpeech = "no-speech"

// EventType classifies a capture source event.
type EventType string

const (
	EventResult  EventType = "result"
	EventStopped EventType = "stopped"
	EventError   EventType = "error"
)

// Event is one inbound event from a capture source.
type Event struct {
	Type    EventType
	IsFinal bool
	Text    string
	Speaker string
	Code    string // error code for EventError
}

// Source is a speech recognition stream. Implementations emit events on the
// returned channel and close it when the source is torn down for good.
type Source interface {
	// Start begins (or restarts) recognition.
	Start() error

	// Events returns the event stream.
	Events() <-chan Event
}

// Capture owns one live capture session: a single consumer loop drains the
// source's events into a Buffer, restarting the source whenever it stops
// without being asked to, until Deactivate. Recognition services routinely
// terminate after a silence timeout, so an unsolicited stop is expected.
type Capture struct {
	source Source
	log    *logrus.Logger

	mu             sync.Mutex
	buffer         *Buffer
	paused         bool
	active         bool
	pendingRestart bool

	commands chan func()
	done     chan struct{}
}

// NewCapture creates a capture session around a source and starts its
// consumer loop. The caller must call Deactivate when the session leaves the
// live phase.
func NewCapture(source Source, buffer *Buffer, log *logrus.Logger) *Capture {
	c := &Capture{
		source:   source,
		log:      log,
		buffer:   buffer,
		active:   true,
		commands: make(chan func(), 16),
		done:     make(chan struct{}),
	}
	go c.loop()
	return c
}

// Start begins recognition on the underlying source.
func (c *Capture) Start() error {
	return c.source.Start()
}

// loop is the single consumer: every buffer mutation happens here, in the
// order events and commands arrive.
func (c *Capture) loop() {
	defer close(c.done)
	events := c.source.Events()
	for {
		select {
		case cmd := <-c.commands:
			cmd()
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handle(ev)
		}
	}
}

func (c *Capture) handle(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case EventResult:
		if c.paused || !c.active {
			return
		}
		c.buffer.HandleResult(ResultEvent{IsFinal: ev.IsFinal, Text: ev.Text, Speaker: ev.Speaker})
	case EventStopped:
		if !c.active {
			return
		}
		if c.paused {
			c.pendingRestart = true
			return
		}
		if err := c.source.Start(); err != nil {
			c.log.WithError(err).Warn("failed to restart capture source")
		}
	case EventError:
		if ev.Code == ErrNoSpeech {
			return
		}
		c.log.WithField("code", ev.Code).Warn("capture source error, continuing")
	}
}

// Pause mutes capture: results are dropped and a stop observed while paused
// does not restart the source until Resume.
func (c *Capture) Pause() {
	c.enqueue(func() {
		c.mu.Lock()
		c.paused = true
		c.mu.Unlock()
	})
}

// Resume unmutes capture, restarting the source if it stopped while paused.
func (c *Capture) Resume() {
	c.enqueue(func() {
		c.mu.Lock()
		c.paused = false
		restart := c.pendingRestart && c.active
		c.pendingRestart = false
		c.mu.Unlock()
		if restart {
			if err := c.source.Start(); err != nil {
				c.log.WithError(err).Warn("failed to restart capture source after resume")
			}
		}
	})
}

// FlagLastEntry marks the most recent committed entry.
func (c *Capture) FlagLastEntry() {
	c.enqueue(func() {
		c.mu.Lock()
		c.buffer.FlagLastEntry()
		c.mu.Unlock()
	})
}

// Deactivate ends capture for good: no further restarts, no further buffer
// mutations. Safe to call more than once.
func (c *Capture) Deactivate() {
	c.enqueue(func() {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
	})
}

// Done is closed when the consumer loop exits (after the source closes its
// event channel).
func (c *Capture) Done() <-chan struct{} {
	return c.done
}

// Snapshot is a point-in-time copy of the accumulated transcript.
type Snapshot struct {
	Entries        models.TranscriptEntries
	WordCount      int
	FlaggedMoments []string
}

// Snapshot copies the transcript state under the same lock the consumer loop
// holds while committing results. Safe to call from any goroutine at any
// time during capture.
func (c *Capture) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Entries:        c.buffer.Entries(),
		WordCount:      c.buffer.WordCount(),
		FlaggedMoments: c.buffer.FlaggedMoments(),
	}
}

func (c *Capture) enqueue(cmd func()) {
	select {
	case c.commands <- cmd:
	case <-c.done:
	}
}
