package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/facegate/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
	"github.com/saturnino-fabrica-de-software/facegate/internal/oracle"
	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
	"github.com/saturnino-fabrica-de-software/facegate/internal/service"
)

type Dependencies struct {
	Config         *config.Config
	IdentityRepo   repository.IdentityRepositoryInterface
	LockoutRepo    repository.LockoutRepositoryInterface
	AttemptRepo    repository.AttemptRepositoryInterface
	ReviewFlagRepo repository.ReviewFlagRepositoryInterface
	Oracle         oracle.FaceOracle
	DB             *pgxpool.Pool
}

type Router struct {
	app           *fiber.App
	logger        *slog.Logger
	deps          *Dependencies
	cancelJanitor context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Facegate API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation (no auth required)
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints (no auth required)
	var healthHandler *handler.HealthHandler
	if r.deps != nil && r.deps.DB != nil {
		healthHandler = handler.NewHealthHandler(r.deps.DB)
	} else {
		healthHandler = handler.NewHealthHandler(nil)
	}
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group with authentication
	v1 := r.app.Group("/v1")

	// Only configure authenticated routes if dependencies were provided
	if r.deps != nil {
		v1.Use(middleware.Auth(r.deps.Config.APIKeySecret))

		policy := service.PolicyFromConfig(r.deps.Config)

		guard := service.NewDuplicateGuard(r.deps.Oracle, policy, r.logger)
		enrollmentService := service.NewEnrollmentService(
			r.deps.IdentityRepo,
			guard,
			r.deps.Oracle,
			policy,
			r.logger,
		)
		verificationService := service.NewVerificationService(
			r.deps.IdentityRepo,
			r.deps.LockoutRepo,
			r.deps.AttemptRepo,
			r.deps.ReviewFlagRepo,
			r.deps.Oracle,
			policy,
			r.logger,
		)

		enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService, r.logger)
		loginHandler := handler.NewLoginHandler(verificationService, r.logger)
		duplicateHandler := handler.NewDuplicateHandler(guard, r.logger)
		qualityHandler := handler.NewQualityHandler(r.logger)

		// Enrollment routes
		v1.Post("/enrollment/register", enrollmentHandler.Register)
		v1.Post("/enrollment/captures", enrollmentHandler.SubmitCapture)
		v1.Post("/enrollment/complete", enrollmentHandler.Complete)
		v1.Delete("/enrollment/:user_id", enrollmentHandler.Delete)
		v1.Patch("/enrollment/:user_id/verification-status", enrollmentHandler.UpdateVerificationStatus)

		// Login routes
		v1.Post("/login/verify", loginHandler.Verify)

		// Face routes
		v1.Post("/faces/duplicate-check", duplicateHandler.Check)

		// Quality routes
		v1.Post("/quality/evaluate", qualityHandler.Evaluate)

		// Expired lockout counter cleanup
		janitor := service.NewLockoutJanitor(r.deps.LockoutRepo, r.logger, 10*time.Minute)
		janitorCtx, janitorCancel := context.WithCancel(context.Background())
		r.cancelJanitor = janitorCancel
		go janitor.Run(janitorCtx)
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	if r.cancelJanitor != nil {
		r.cancelJanitor()
	}

	return r.app.Shutdown()
}
