package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/coachforge/coachforge-backend/internal/api/middleware"
	"github.com/coachforge/coachforge-backend/internal/repository"
	"github.com/coachforge/coachforge-backend/internal/session"
)

// ActionItemHandlers serves the action item endpoints.
type ActionItemHandlers struct {
	actions repository.ActionItemRepository
	svc     *session.Service
}

// NewActionItemHandlers creates action item handlers
func NewActionItemHandlers(actions repository.ActionItemRepository, svc *session.Service) *ActionItemHandlers {
	return &ActionItemHandlers{actions: actions, svc: svc}
}

// Toggle handles POST /api/v1/action-items/:id/toggle
func (h *ActionItemHandlers) Toggle(c *fiber.Ctx) error {
	coachID, itemID, err := h.ids(c)
	if err != nil {
		return err
	}

	item, err := h.actions.Get(c.Context(), itemID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if item == nil || item.CoachID != coachID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Action item not found"})
	}

	if err := h.actions.SetCompleted(c.Context(), itemID, !item.Completed); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"completed": !item.Completed})
}

// Nudge handles POST /api/v1/action-items/:id/nudge
func (h *ActionItemHandlers) Nudge(c *fiber.Ctx) error {
	coachID, itemID, err := h.ids(c)
	if err != nil {
		return err
	}

	if err := h.svc.SendNudge(c.Context(), coachID, itemID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"sent": true})
}

func (h *ActionItemHandlers) ids(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	coachID, err := middleware.GetCoachID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid action item id")
	}
	return coachID, itemID, nil
}
