package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/coachforge/coachforge-backend/internal/api/middleware"
	"github.com/coachforge/coachforge-backend/internal/models"
	"github.com/coachforge/coachforge-backend/internal/repository"
	"github.com/coachforge/coachforge-backend/internal/session"
)

// SessionHandlers serves the session lifecycle endpoints.
type SessionHandlers struct {
	svc      *session.Service
	sessions repository.SessionRepository
	actions  repository.ActionItemRepository
}

// NewSessionHandlers creates session handlers
func NewSessionHandlers(svc *session.Service, sessions repository.SessionRepository, actions repository.ActionItemRepository) *SessionHandlers {
	return &SessionHandlers{svc: svc, sessions: sessions, actions: actions}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandlers) Create(c *fiber.Ctx) error {
	coachID, err := middleware.GetCoachID(c)
	if err != nil {
		return err
	}

	var req struct {
		ClientID    string  `json:"client_id"`
		ScheduledAt *string `json:"scheduled_at"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid client_id",
		})
	}

	scheduledAt, err := parseOptionalTime(req.ScheduledAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scheduled_at",
		})
	}

	sess, err := h.svc.Create(c.Context(), coachID, clientID, scheduledAt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(sess)
}

// List handles GET /api/v1/sessions
func (h *SessionHandlers) List(c *fiber.Ctx) error {
	coachID, err := middleware.GetCoachID(c)
	if err != nil {
		return err
	}

	sessions, err := h.sessions.ListByCoach(c.Context(), coachID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandlers) Get(c *fiber.Ctx) error {
	coachID, sessionID, err := h.ids(c)
	if err != nil {
		return err
	}

	sess, err := h.sessions.Get(c.Context(), coachID, sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if sess == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}

	items, err := h.actions.ListBySession(c.Context(), sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"session":      sess,
		"action_items": items,
	})
}

// Start handles POST /api/v1/sessions/:id/start
func (h *SessionHandlers) Start(c *fiber.Ctx) error {
	coachID, sessionID, err := h.ids(c)
	if err != nil {
		return err
	}

	sess, err := h.svc.Start(c.Context(), coachID, sessionID)
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(sess)
}

// End handles POST /api/v1/sessions/:id/end. The session always lands in a
// terminal state; a pipeline failure surfaces as a 500 with the terminal
// status in the body.
func (h *SessionHandlers) End(c *fiber.Ctx) error {
	coachID, sessionID, err := h.ids(c)
	if err != nil {
		return err
	}

	result, err := h.svc.End(c.Context(), coachID, sessionID)
	if err != nil {
		return sessionError(c, err)
	}

	if result.PipelineError {
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}
	return c.JSON(result)
}

// Cancel handles POST /api/v1/sessions/:id/cancel
func (h *SessionHandlers) Cancel(c *fiber.Ctx) error {
	coachID, sessionID, err := h.ids(c)
	if err != nil {
		return err
	}

	if err := h.svc.Cancel(c.Context(), coachID, sessionID); err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"status": models.StatusCancelled})
}

// SendEmail handles POST /api/v1/sessions/:id/send-email
func (h *SessionHandlers) SendEmail(c *fiber.Ctx) error {
	coachID, sessionID, err := h.ids(c)
	if err != nil {
		return err
	}

	if err := h.svc.ResendFollowup(c.Context(), coachID, sessionID); err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"sent": true})
}

// PrepBrief handles POST /api/v1/sessions/:id/prep-brief
func (h *SessionHandlers) PrepBrief(c *fiber.Ctx) error {
	coachID, sessionID, err := h.ids(c)
	if err != nil {
		return err
	}

	brief, err := h.svc.GeneratePrepBrief(c.Context(), coachID, sessionID)
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"prep_brief": brief})
}

func (h *SessionHandlers) ids(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	coachID, err := middleware.GetCoachID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}
	return coachID, sessionID, nil
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, session.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
