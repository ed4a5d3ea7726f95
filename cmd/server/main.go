package main

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/coachforge/coachforge-backend/internal/ai"
	"github.com/coachforge/coachforge-backend/internal/api"
	"github.com/coachforge/coachforge-backend/internal/auth"
	"github.com/coachforge/coachforge-backend/internal/config"
	"github.com/coachforge/coachforge-backend/internal/database"
	"github.com/coachforge/coachforge-backend/internal/email"
	"github.com/coachforge/coachforge-backend/internal/pipeline"
	"github.com/coachforge/coachforge-backend/internal/repository/postgres"
	"github.com/coachforge/coachforge-backend/internal/session"
	"github.com/coachforge/coachforge-backend/internal/video"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	// Connect to database
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CoachForge Backend",
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     getOrigins(),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepository(db.DB)
	clientRepo := postgres.NewClientRepository(db.DB)
	coachRepo := postgres.NewCoachRepository(db.DB)
	actionItemRepo := postgres.NewActionItemRepository(db.DB)
	progressRepo := postgres.NewProgressRepository(db.DB)

	// Initialize auth service
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "change-me-in-production" // Default for development
		log.Warn("Using default JWT secret. Set COACHFORGE_JWT_SECRET in production!")
	}
	authService := auth.NewService(coachRepo, jwtSecret)

	// Initialize the synthesis pipeline
	generator, err := ai.NewGenerator(cfg.AI)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize AI provider")
	}
	log.WithField("provider", generator.Name()).Info("AI provider ready")
	pipe := pipeline.New(generator, log)

	// Vendor clients
	rooms := video.NewDailyProvisioner(cfg.Video)
	mail := email.NewResendSender(cfg.Email.APIKey)

	// Session lifecycle service
	sessionService := session.NewService(
		sessionRepo,
		clientRepo,
		coachRepo,
		actionItemRepo,
		progressRepo,
		pipe,
		rooms,
		mail,
		cfg,
		log,
	)

	// Setup routes
	api.SetupRoutes(app, api.Deps{
		Sessions:    sessionRepo,
		Clients:     clientRepo,
		Actions:     actionItemRepo,
		Progress:    progressRepo,
		SessionSvc:  sessionService,
		AuthService: authService,
		Mail:        mail,
		Config:      cfg,
		Log:         log,
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.WithField("addr", addr).Info("CoachForge Backend starting")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func getOrigins() string {
	origins := os.Getenv("COACHFORGE_CORS_ORIGINS")
	if origins == "" {
		return "http://localhost:3000,http://localhost:5173"
	}
	return origins
}
