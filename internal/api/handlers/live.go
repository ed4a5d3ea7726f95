package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/coachforge/coachforge-backend/internal/models"
	"github.com/coachforge/coachforge-backend/internal/repository"
	"github.com/coachforge/coachforge-backend/internal/session"
	"github.com/coachforge/coachforge-backend/internal/transcript"
)

// LiveHandler owns the live transcript WebSocket. The browser runs speech
// recognition and streams results here; the server accumulates them into the
// session transcript and instructs the browser to re-listen whenever
// recognition stops on its own.
type LiveHandler struct {
	svc      *session.Service
	sessions repository.SessionRepository
	log      *logrus.Logger
}

// NewLiveHandler creates a live capture handler
func NewLiveHandler(svc *session.Service, sessions repository.SessionRepository, log *logrus.Logger) *LiveHandler {
	return &LiveHandler{svc: svc, sessions: sessions, log: log}
}

// liveMessage is one inbound frame from the browser.
type liveMessage struct {
	Type    string `json:"type"` // result, stopped, error, flag, pause, resume, save
	IsFinal bool   `json:"is_final"`
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
	Code    string `json:"code"`
}

// connSource adapts the WebSocket connection into a capture source: Start
// tells the browser to (re)begin recognition, and the read loop feeds inbound
// results into the events channel.
type connSource struct {
	conn    *websocket.Conn
	writeMu *sync.Mutex
	events  chan transcript.Event
}

func (s *connSource) Start() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(map[string]string{"type": "listen"})
}

func (s *connSource) Events() <-chan transcript.Event {
	return s.events
}

// Stream handles WebSocket /ws/sessions/:id/live
func (h *LiveHandler) Stream(c *websocket.Conn) {
	defer c.Close()

	coachID, ok := c.Locals("coach_id").(string)
	if !ok {
		return
	}
	coach, err := uuid.Parse(coachID)
	if err != nil {
		return
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		h.writeError(c, nil, "invalid session id")
		return
	}

	sess, err := h.sessions.Get(context.Background(), coach, sessionID)
	if err != nil || sess == nil {
		h.writeError(c, nil, "session not found")
		return
	}
	if sess.Status != models.StatusInProgress {
		h.writeError(c, nil, "session is not live")
		return
	}

	startedAt := time.Now()
	if sess.StartedAt != nil {
		startedAt = *sess.StartedAt
	}

	var writeMu sync.Mutex
	source := &connSource{
		conn:    c,
		writeMu: &writeMu,
		events:  make(chan transcript.Event, 64),
	}
	buffer := transcript.NewBuffer(startedAt)
	capture := transcript.NewCapture(source, buffer, h.log)

	if err := capture.Start(); err != nil {
		h.log.WithError(err).WithField("session_id", sessionID).Warn("failed to start live capture")
	}

	for {
		var msg liveMessage
		if err := c.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "result":
			source.events <- transcript.Event{
				Type:    transcript.EventResult,
				IsFinal: msg.IsFinal,
				Text:    msg.Text,
				Speaker: msg.Speaker,
			}
		case "stopped":
			source.events <- transcript.Event{Type: transcript.EventStopped}
		case "error":
			source.events <- transcript.Event{Type: transcript.EventError, Code: msg.Code}
		case "flag":
			capture.FlagLastEntry()
		case "pause":
			capture.Pause()
		case "resume":
			capture.Resume()
		case "save":
			h.persist(c, &writeMu, coach, sessionID, capture.Snapshot())
		}
	}

	// Connection gone: stop the capture loop and persist what we have.
	capture.Deactivate()
	close(source.events)
	<-capture.Done()
	h.persist(nil, nil, coach, sessionID, capture.Snapshot())
}

func (h *LiveHandler) persist(c *websocket.Conn, writeMu *sync.Mutex, coachID, sessionID uuid.UUID, snap transcript.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := h.svc.PersistLiveTranscript(ctx, coachID, sessionID,
		snap.Entries, snap.WordCount, snap.FlaggedMoments)
	if err != nil {
		h.log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist live transcript")
		h.writeError(c, writeMu, "save failed")
		return
	}

	if c != nil {
		writeMu.Lock()
		c.WriteJSON(map[string]interface{}{
			"type":       "saved",
			"word_count": snap.WordCount,
		})
		writeMu.Unlock()
	}
}

func (h *LiveHandler) writeError(c *websocket.Conn, writeMu *sync.Mutex, msg string) {
	if c == nil {
		return
	}
	if writeMu != nil {
		writeMu.Lock()
		defer writeMu.Unlock()
	}
	c.WriteJSON(map[string]string{"type": "error", "error": msg})
}
