// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dayboard/internal/auth"
	"dayboard/internal/cache"
	"dayboard/internal/config"
	"dayboard/internal/middleware"
	"dayboard/internal/models"
	"dayboard/internal/repository"
	"dayboard/internal/service"
	"dayboard/internal/storage"
	"dayboard/internal/storage/gormstore"
	"dayboard/internal/storage/memory"
	"dayboard/internal/storage/surreal"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	store          storage.Store
	redis          *redis.Client
	creds          *auth.Credentials
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
	taskRepo  repository.TaskRepository
	noteRepo  repository.NoteRepository
	fileRepo  repository.FileRepository
	notifRepo repository.NotificationRepository

	accountService *service.AccountService
	searchService  *service.SearchService
	statsService   *service.StatsService
	exportService  *service.ExportService
}

// OpenStore selects the backend implementation once at startup. Everything
// above this call is backend-agnostic.
func OpenStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendSQLite, config.BackendPostgres:
		return gormstore.Open(cfg)
	case config.BackendSurreal:
		return surreal.Open(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// NewServer creates a server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := OpenStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage initialization failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, store, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests and by bootstrap layers that establish the store themselves.
func NewServerWithDeps(cfg *config.Config, store storage.Store, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("dayboard-api")

	s := &Server{
		config:         cfg,
		store:          store,
		redis:          redisClient,
		creds:          auth.NewCredentials(cfg.JWTSecret),
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(store),
		eventRepo:      repository.NewEventRepository(store),
		taskRepo:       repository.NewTaskRepository(store),
		noteRepo:       repository.NewNoteRepository(store),
		fileRepo:       repository.NewFileRepository(store),
		notifRepo:      repository.NewNotificationRepository(store),
	}

	s.accountService = service.NewAccountService(s.userRepo, s.creds)
	s.searchService = service.NewSearchService(store)
	s.statsService = service.NewStatsService(store)
	s.exportService = service.NewExportService(s.userRepo, s.eventRepo, s.taskRepo, s.noteRepo)

	return s, nil
}

// Store exposes the active backend, mainly for shutdown.
func (s *Server) Store() storage.Store {
	return s.store
}

// Shutdown releases server resources after the HTTP listener has drained.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.WarnContext(ctx, "redis close failed", "error", err)
		}
	}
	return s.store.Close()
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
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
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	api.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	api.Get("/feed", s.BlogFeed)

	protected := api.Group("", s.AuthRequired())

	protected.Get("/profile", s.GetProfile)
	protected.Put("/profile", s.UpdateProfile)
	protected.Put("/profile/password", s.ChangePassword)

	events := protected.Group("/events")
	events.Get("/", s.ListEvents)
	events.Post("/", s.CreateEvent)
	events.Get("/:id", s.GetEvent)
	events.Put("/:id", s.UpdateEvent)
	events.Delete("/:id", s.DeleteEvent)

	tasks := protected.Group("/tasks")
	tasks.Get("/", s.ListTasks)
	tasks.Post("/", s.CreateTask)
	tasks.Get("/:id", s.GetTask)
	tasks.Put("/:id", s.UpdateTask)
	tasks.Delete("/:id", s.DeleteTask)

	notes := protected.Group("/notes")
	notes.Get("/", s.ListNotes)
	notes.Post("/", s.CreateNote)
	notes.Get("/:id", s.GetNote)
	notes.Put("/:id", s.UpdateNote)
	notes.Delete("/:id", s.DeleteNote)

	protected.Post("/upload", s.UploadFile)
	files := protected.Group("/files")
	files.Get("/", s.ListFiles)
	files.Get("/:id/download", s.DownloadFile)
	files.Delete("/:id", s.DeleteFile)

	notifications := protected.Group("/notifications")
	notifications.Get("/", s.ListNotifications)
	notifications.Post("/", s.CreateNotification)
	notifications.Put("/:id/read", s.MarkNotificationRead)
	notifications.Delete("/:id", s.DeleteNotification)

	protected.Get("/search", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.Search)
	protected.Get("/stats", s.Stats)

	protected.Get("/export", s.Export)
	protected.Post("/import", s.Import)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports backend and cache health.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The cache is optional; readiness only degrades on the store.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overall,
		"backend": s.config.StorageBackend,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It verifies the Bearer
// token and stores the caller's identity in locals and the request context.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		claims, err := s.creds.VerifyToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, auth.AsUnauthorized(err))
		}

		c.Locals("userID", claims.UserID)
		c.Locals("username", claims.Username)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, claims.UserID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}
