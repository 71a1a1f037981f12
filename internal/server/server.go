// Package server contains the HTTP and WebSocket handlers of the club API.
package server

import (
	"context"
	"errors"
	"time"

	_ "sangrachna/docs" // swagger docs
	"sangrachna/internal/auth"
	"sangrachna/internal/bootstrap"
	"sangrachna/internal/config"
	"sangrachna/internal/middleware"
	"sangrachna/internal/models"
	"sangrachna/internal/notifications"
	"sangrachna/internal/observability"
	"sangrachna/internal/repository"
	"sangrachna/internal/service"
	"sangrachna/internal/workflow"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	notifier       *notifications.Notifier
	hub            *notifications.Hub

	authService *service.AuthService
	moderation  *service.ModerationService
	loans       *service.LoanService
	likes       *service.LikeService
	submissions *service.SubmissionService
	catalog     *service.CatalogService
	feed        *service.FeedService
	dashboard   *service.DashboardService
}

// NewServer connects to the database and Redis, applies the schema and
// builds a server on top.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{ApplySchema: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, token revocation and the operator
// websocket are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	policy, err := workflow.ByName(cfg.ModerationPolicy)
	if err != nil {
		return nil, err
	}

	poems := repository.NewPoemRepository(db)
	pendown := repository.NewPendownRepository(db)
	books := repository.NewBookRepository(db)
	requests := repository.NewBookRequestRepository(db)
	events := repository.NewEventRepository(db)
	team := repository.NewTeamRepository(db)
	operators := repository.NewOperatorRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(observability.ServiceName),
	}

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
	}

	var inventory service.InventoryHook
	if cfg.LoanInventoryTracking {
		inventory = service.NewCatalogInventory(books)
	}
	notifyTimeout := time.Duration(cfg.NotifyTimeoutSeconds) * time.Second

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	s.authService = service.NewAuthService(operators, tokens, redisClient)
	s.moderation = service.NewModerationService(poems, pendown, policy, s.notifier)
	s.loans = service.NewLoanService(requests, service.LoanServiceOptions{
		Policy:        policy,
		Dispatcher:    notifications.New(cfg.NotifyEndpoint, cfg.NotifyAPIKey, notifyTimeout),
		Inventory:     inventory,
		Publisher:     s.notifier,
		NotifyTimeout: notifyTimeout,
	})
	s.likes = service.NewLikeService(poems)
	s.submissions = service.NewSubmissionService(poems, pendown, books, requests)
	s.catalog = service.NewCatalogService(books, events, team)
	s.feed = service.NewFeedService(poems, pendown)
	s.dashboard = service.NewDashboardService(books, events, poems, pendown, requests)

	middleware.Logger.Info("server configured",
		"policy", policy.Name(),
		"inventory_tracking", cfg.LoanInventoryTracking,
		"notifications", cfg.NotifyEndpoint != "",
	)
	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected browser requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:8080"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
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
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
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

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", s.AuthRequired(), s.Logout)

	// Public content
	api.Get("/poems", s.GetFeed)
	api.Post("/poems", middleware.RateLimit(s.redis, 5, 10*time.Minute, "submit_poem"), s.SubmitPoem)
	api.Post("/poems/:id/like", middleware.RateLimit(s.redis, 30, time.Minute, "like_poem"), s.ToggleLike)
	api.Post("/pendown", middleware.RateLimit(s.redis, 5, 10*time.Minute, "submit_pendown"), s.SubmitPendown)

	books := api.Group("/books")
	books.Get("/", s.GetBooks)
	books.Post("/:id/requests", middleware.RateLimit(s.redis, 5, 10*time.Minute, "book_request"), s.RequestLoan)
	books.Get("/:id", s.GetBook)

	api.Get("/events", s.GetEvents)
	api.Get("/team", s.GetTeam)
	api.Get("/team/president", s.GetPresident)

	// Operator routes
	admin := api.Group("/admin", s.AuthRequired())
	admin.Get("/stats", s.GetDashboardStats)
	admin.Post("/ws/ticket", s.IssueWSTicket)
	admin.Get("/ws", s.ModerationSocket())

	admin.Get("/poems", s.ListPoems)
	admin.Post("/poems/:id/status", s.TransitionPoem)
	admin.Delete("/poems/:id", s.DeletePoem)

	admin.Get("/pendown", s.ListPendown)
	admin.Post("/pendown/:id/status", s.TransitionPendown)
	admin.Delete("/pendown/:id", s.DeletePendown)

	admin.Get("/book-requests", s.ListBookRequests)
	admin.Post("/book-requests/:id/status", s.TransitionBookRequest)

	admin.Post("/books", s.CreateBook)
	admin.Put("/books/:id", s.UpdateBook)
	admin.Delete("/books/:id", s.DeleteBook)

	admin.Post("/events", s.CreateEvent)
	admin.Put("/events/:id", s.UpdateEvent)
	admin.Delete("/events/:id", s.DeleteEvent)

	admin.Post("/team", s.CreateTeamMember)
	admin.Put("/team/:id", s.UpdateTeamMember)
	admin.Delete("/team/:id", s.DeleteTeamMember)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database is reachable. Redis is
// optional and only reported.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
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
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App returns the Fiber application, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app == nil {
		s.app = fiber.New(fiber.Config{
			AppName:      "Sangrachna API",
			ProxyHeader:  s.config.ProxyHeader,
			ErrorHandler: errorHandler,
		})
		s.SetupMiddleware(s.app)
		s.SetupRoutes(s.app)
	}
	return s.app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled request error", "path", c.Path(), "error", err)
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// Start wires the moderation stream and listens until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.notifier != nil && s.hub != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start moderation stream", "error", err)
		}
	}

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down websocket hub", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
