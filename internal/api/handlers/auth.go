package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/coachforge/coachforge-backend/internal/api/middleware"
	"github.com/coachforge/coachforge-backend/internal/auth"
)

// Signup handles POST /api/v1/auth/signup
func Signup(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			FullName string `json:"full_name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if req.Email == "" || req.FullName == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Email and full name are required",
			})
		}

		coach, err := authService.SignUp(c.Context(), req.Email, req.Password, req.FullName)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrEmailAlreadyExists):
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
			case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooWeak):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(coach)
	}
}

// Login handles POST /api/v1/auth/login
func Login(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		coach, token, err := authService.Login(c.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}

		return c.JSON(fiber.Map{
			"coach":        coach,
			"access_token": token,
		})
	}
}

// GetCurrentCoach handles GET /api/v1/auth/me
func GetCurrentCoach() fiber.Handler {
	return func(c *fiber.Ctx) error {
		coach := middleware.GetCoach(c)
		if coach == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Not authenticated",
			})
		}
		return c.JSON(coach)
	}
}
