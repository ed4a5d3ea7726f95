// Package api wires the HTTP and WebSocket surface.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"github.com/coachforge/coachforge-backend/internal/api/handlers"
	"github.com/coachforge/coachforge-backend/internal/api/middleware"
	"github.com/coachforge/coachforge-backend/internal/auth"
	"github.com/coachforge/coachforge-backend/internal/config"
	"github.com/coachforge/coachforge-backend/internal/email"
	"github.com/coachforge/coachforge-backend/internal/repository"
	"github.com/coachforge/coachforge-backend/internal/session"
)

// Deps collects everything the route handlers need.
type Deps struct {
	Sessions    repository.SessionRepository
	Clients     repository.ClientRepository
	Actions     repository.ActionItemRepository
	Progress    repository.ProgressRepository
	SessionSvc  *session.Service
	AuthService *auth.Service
	Mail        email.Sender
	Config      *config.Config
	Log         *logrus.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	api := app.Group("/api/v1")

	// ========================================
	// Public routes (no authentication needed)
	// ========================================

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "coachforge-backend",
		})
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", handlers.Signup(deps.AuthService))
	authGroup.Post("/login", handlers.Login(deps.AuthService))

	// ========================================
	// Protected routes (authentication required)
	// ========================================

	protected := api.Group("", middleware.AuthRequired(deps.AuthService))

	protected.Get("/auth/me", handlers.GetCurrentCoach())

	sessionHandlers := handlers.NewSessionHandlers(deps.SessionSvc, deps.Sessions, deps.Actions)
	protected.Post("/sessions", sessionHandlers.Create)
	protected.Get("/sessions", sessionHandlers.List)
	protected.Get("/sessions/:id", sessionHandlers.Get)
	protected.Post("/sessions/:id/start", sessionHandlers.Start)
	protected.Post("/sessions/:id/end", sessionHandlers.End)
	protected.Post("/sessions/:id/cancel", sessionHandlers.Cancel)
	protected.Post("/sessions/:id/send-email", sessionHandlers.SendEmail)
	protected.Post("/sessions/:id/prep-brief", sessionHandlers.PrepBrief)

	clientHandlers := handlers.NewClientHandlers(deps.Clients, deps.Progress, deps.Actions, deps.Mail, deps.Config, deps.Log)
	protected.Post("/clients", clientHandlers.Create)
	protected.Get("/clients", clientHandlers.List)
	protected.Get("/clients/:id", clientHandlers.Get)
	protected.Get("/clients/:id/progress", clientHandlers.Progress)

	actionHandlers := handlers.NewActionItemHandlers(deps.Actions, deps.SessionSvc)
	protected.Post("/action-items/:id/toggle", actionHandlers.Toggle)
	protected.Post("/action-items/:id/nudge", actionHandlers.Nudge)

	// ========================================
	// WebSocket routes (with auth)
	// ========================================

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			// Browsers cannot set headers on WebSocket upgrades, so the token
			// may arrive as a query param instead.
			token := c.Query("token")
			if token == "" {
				token = auth.ExtractTokenFromBearer(c.Get("Authorization"))
			}

			if token != "" {
				coach, err := deps.AuthService.ValidateAccessToken(c.Context(), token)
				if err == nil {
					c.Locals("coach_id", coach.ID.String())
					return c.Next()
				}
			}

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required for WebSocket",
			})
		}
		return fiber.ErrUpgradeRequired
	})

	liveHandler := handlers.NewLiveHandler(deps.SessionSvc, deps.Sessions, deps.Log)
	app.Get("/ws/sessions/:id/live", websocket.New(liveHandler.Stream))
}
