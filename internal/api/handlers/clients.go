package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/coachforge/coachforge-backend/internal/api/middleware"
	"github.com/coachforge/coachforge-backend/internal/config"
	"github.com/coachforge/coachforge-backend/internal/email"
	"github.com/coachforge/coachforge-backend/internal/models"
	"github.com/coachforge/coachforge-backend/internal/repository"
)

// ClientHandlers serves the client roster endpoints.
type ClientHandlers struct {
	clients  repository.ClientRepository
	progress repository.ProgressRepository
	actions  repository.ActionItemRepository
	mail     email.Sender
	cfg      *config.Config
	log      *logrus.Logger
}

// NewClientHandlers creates client handlers
func NewClientHandlers(
	clients repository.ClientRepository,
	progress repository.ProgressRepository,
	actions repository.ActionItemRepository,
	mail email.Sender,
	cfg *config.Config,
	log *logrus.Logger,
) *ClientHandlers {
	return &ClientHandlers{
		clients:  clients,
		progress: progress,
		actions:  actions,
		mail:     mail,
		cfg:      cfg,
		log:      log,
	}
}

// Create handles POST /api/v1/clients. A portal invite email goes out
// best-effort; a delivery failure never fails the creation.
func (h *ClientHandlers) Create(c *fiber.Ctx) error {
	coachID, err := middleware.GetCoachID(c)
	if err != nil {
		return err
	}

	var req struct {
		FullName     string   `json:"full_name"`
		Email        string   `json:"email"`
		Phone        *string  `json:"phone"`
		CoachingType *string  `json:"coaching_type"`
		Goals        []string `json:"goals"`
		IntakeNotes  *string  `json:"intake_notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.FullName == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Full name and email are required",
		})
	}

	client := &models.Client{
		CoachID:      coachID,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		CoachingType: req.CoachingType,
		Goals:        pq.StringArray(req.Goals),
		Status:       models.ClientActive,
		PortalToken:  uuid.New().String(),
		IntakeNotes:  req.IntakeNotes,
	}
	if err := h.clients.Create(c.Context(), client); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	h.sendPortalInvite(c, client)

	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *ClientHandlers) sendPortalInvite(c *fiber.Ctx, client *models.Client) {
	coach := middleware.GetCoach(c)
	if coach == nil {
		return
	}

	portalURL := fmt.Sprintf("%s/portal/%s", h.cfg.AppURL, client.PortalToken)
	from := email.FromLine(coach.FullName, h.cfg.Email.FromAddress)
	html := email.InviteHTML(client.FirstName(), coach.FullName, portalURL)

	if err := h.mail.Send(c.Context(), from, client.Email, email.InviteSubject(coach.FullName), html); err != nil {
		h.log.WithError(err).WithField("client_id", client.ID).Warn("portal invite email failed")
	}
}

// List handles GET /api/v1/clients
func (h *ClientHandlers) List(c *fiber.Ctx) error {
	coachID, err := middleware.GetCoachID(c)
	if err != nil {
		return err
	}

	clients, err := h.clients.ListByCoach(c.Context(), coachID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"clients": clients})
}

// Get handles GET /api/v1/clients/:id
func (h *ClientHandlers) Get(c *fiber.Ctx) error {
	coachID, clientID, err := h.ids(c)
	if err != nil {
		return err
	}

	client, err := h.clients.Get(c.Context(), coachID, clientID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if client == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	openItems, err := h.actions.ListOpenByClient(c.Context(), clientID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"client":            client,
		"open_action_items": openItems,
	})
}

// Progress handles GET /api/v1/clients/:id/progress
func (h *ClientHandlers) Progress(c *fiber.Ctx) error {
	coachID, clientID, err := h.ids(c)
	if err != nil {
		return err
	}

	client, err := h.clients.Get(c.Context(), coachID, clientID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if client == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}

	rows, err := h.progress.ListByClient(c.Context(), clientID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"progress": rows})
}

func (h *ClientHandlers) ids(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	coachID, err := middleware.GetCoachID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	clientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid client id")
	}
	return coachID, clientID, nil
}
