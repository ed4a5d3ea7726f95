package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/coachforge/coachforge-backend/internal/auth"
	"github.com/coachforge/coachforge-backend/internal/models"
)

// AuthRequired creates a middleware that requires a valid coach access token
func AuthRequired(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := auth.ExtractTokenFromBearer(c.Get("Authorization"))

		// Also check for token in cookie (for web clients)
		if token == "" {
			token = c.Cookies("access_token")
		}

		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		coach, err := authService.ValidateAccessToken(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		storeCoachContext(c, coach)
		return c.Next()
	}
}

func storeCoachContext(c *fiber.Ctx, coach *models.Coach) {
	c.Locals("coach_id", coach.ID.String())
	c.Locals("coach_email", coach.Email)
	c.Locals("coach", coach)
}

// GetCoach retrieves the authenticated coach from the fiber context
func GetCoach(c *fiber.Ctx) *models.Coach {
	if v := c.Locals("coach"); v != nil {
		if coach, ok := v.(*models.Coach); ok {
			return coach
		}
	}
	return nil
}

// GetCoachID retrieves the authenticated coach ID from the fiber context
func GetCoachID(c *fiber.Ctx) (uuid.UUID, error) {
	if v := c.Locals("coach_id"); v != nil {
		if id, ok := v.(string); ok {
			return uuid.Parse(id)
		}
	}
	return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
}
