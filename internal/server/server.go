// Package server contains the HTTP handlers and routing for the clubhub API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "clubhub/docs" // swagger docs
	"clubhub/internal/bootstrap"
	"clubhub/internal/cache"
	"clubhub/internal/config"
	"clubhub/internal/database"
	"clubhub/internal/featureflags"
	"clubhub/internal/middleware"
	"clubhub/internal/models"
	"clubhub/internal/repository"
	"clubhub/internal/service"
	"clubhub/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const defaultOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo        repository.UserRepository
	clubRepo        repository.ClubRepository
	postRepo        repository.PostRepository
	interactionRepo repository.InteractionRepository

	featureFlags *featureflags.Manager
	images       *storage.ImageStore

	interactionService *service.InteractionService
	moderationService  *service.ModerationService
	clubService        *service.ClubService
	feedService        *service.FeedService

	now func() time.Time
}

// NewServer connects the runtime dependencies and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests pass a SQLite database and a miniredis-backed client here.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires a config and a database")
	}

	s := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("clubhub-api"),
		userRepo:        repository.NewUserRepository(db),
		clubRepo:        repository.NewClubRepository(db),
		postRepo:        repository.NewPostRepository(db),
		interactionRepo: repository.NewInteractionRepository(db),
		featureFlags:    featureflags.NewManager(cfg.FeatureFlags),
		images:          storage.NewImageStore(cfg.UploadDir, cfg.ImageMaxSizeMB),
		now:             func() time.Time { return time.Now().UTC() },
	}

	s.interactionService = service.NewInteractionService(s.clubRepo, s.postRepo, s.interactionRepo)
	s.moderationService = service.NewModerationService(s.userRepo, s.clubRepo, s.postRepo)
	s.clubService = service.NewClubService(s.userRepo, s.clubRepo, s.postRepo, s.interactionRepo).
		WithImageRemover(s.images)
	s.feedService = service.NewFeedService(s.clubRepo, s.postRepo, s.interactionRepo)

	return s, nil
}

// NewApp builds a Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	maxUpload := s.config.ImageMaxSizeMB
	if maxUpload <= 0 {
		maxUpload = storage.DefaultMaxUploadMB
	}

	app := fiber.New(fiber.Config{
		AppName:      "ClubHub API",
		BodyLimit:    (maxUpload + 1) * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before the context middleware so the trace id reaches the log context.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses keep their headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = defaultOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static("/static/uploads", s.images.Dir())

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "ClubHub Metrics"}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	student := api.Group("/student", s.AuthRequired(), s.RoleRequired(service.RequireMember))
	student.Get("/dashboard", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.StudentDashboard)
	student.Get("/following", s.FollowingFeed)
	student.Get("/my-rsvps.ics", s.MyRSVPsICS)
	student.Get("/my-rsvps/calendar", s.MyRSVPsCalendar)
	student.Get("/my-rsvps", s.MyRSVPs)
	student.Get("/event/:id", s.EventDetail)
	student.Post("/rsvp/:id", s.ToggleRSVP)
	student.Post("/follow/:id", s.ToggleFollow)
	student.Post("/like/:id", s.ToggleLike)
	student.Get("/clubs", s.BrowseClubs)
	student.Get("/club/:slug", s.ClubPage)
	student.Get("/my-clubs", s.MyClubs)

	club := api.Group("/club", s.AuthRequired(), s.RoleRequired(service.RequireClubOrAdmin))
	club.Get("/dashboard", s.ClubDashboard)
	club.Put("/settings", s.UpdateClubSettings)
	club.Post("/onboarding", s.OnboardClub)
	club.Post("/posts", middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreateClubPost)
	club.Put("/posts/:id", s.EditClubPost)
	club.Get("/posts/:id/rsvps", s.ClubPostRSVPs)
	club.Get("/followers", s.ClubFollowers)
	club.Delete("/followers/:userId", s.RemoveClubFollower)
	club.Post("/images", middleware.RateLimit(s.redis, 20, 10*time.Minute, "upload_image"), s.UploadClubImage)

	admin := api.Group("/admin", s.AuthRequired(), s.RoleRequired(service.RequireAdmin))
	admin.Get("/dashboard", s.AdminDashboard)
	admin.Post("/clubs/:id/verify", s.VerifyClub)
	admin.Get("/users", s.ListUsers)
	admin.Put("/users/:id/role", s.ChangeUserRole)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Delete("/posts/:id", s.DeletePost)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   s.now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so a
// missing client degrades the report without failing readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": s.now(),
	})
}

// Shutdown stops the HTTP server and releases the database and Redis pools.
func (s *Server) Shutdown(ctx context.Context) error {
	log := middleware.Logger
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.ErrorContext(ctx, "error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.ErrorContext(ctx, "error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil && s.redis == cache.GetClient() {
		cache.Close()
	} else if s.redis != nil {
		_ = s.redis.Close()
	}

	log.InfoContext(ctx, "server shutdown complete")
	return nil
}
