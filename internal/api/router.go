package api

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/SakutaArc/QuickFund/docs"
	"github.com/SakutaArc/QuickFund/internal/api/handler"
	"github.com/SakutaArc/QuickFund/internal/api/middleware"
	"github.com/SakutaArc/QuickFund/internal/core/domain"
	"github.com/SakutaArc/QuickFund/internal/core/ports"
	"github.com/SakutaArc/QuickFund/internal/core/service"
	mongostore "github.com/SakutaArc/QuickFund/internal/infrastructure/db/mongo"
	"github.com/SakutaArc/QuickFund/internal/infrastructure/db/postgres"
	redisstore "github.com/SakutaArc/QuickFund/internal/infrastructure/db/redis"
)

// RouterConfig carries the connections and settings NewRouter wires together.
// Entries, Idempotency and Audit are optional.
type RouterConfig struct {
	DB          *sqlx.DB
	Entries     *mongostore.LedgerEntryRepository
	Idempotency *redisstore.IdempotencyStore
	Audit       service.AuditRecorder

	JWTSecret string
	TokenTTL  time.Duration

	Log zerolog.Logger
	// Registerer receives the HTTP metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "quickfund",
		Registerer: cfg.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	e.Use(middleware.RequestLogger(cfg.Log))

	// --- Dependencies ---
	userRepo := postgres.NewUserRepository(cfg.DB)
	projectRepo := postgres.NewProjectRepository(cfg.DB)
	ledgerRepo := postgres.NewLedgerRepository(cfg.DB)
	commentRepo := postgres.NewCommentRepository(cfg.DB)
	ratingRepo := postgres.NewRatingRepository(cfg.DB)

	// Nil pointers must stay nil interfaces so the optional stores read as absent.
	var (
		entries   ports.LedgerEntryRepository
		auditPing handler.Pinger
		idem      service.IdempotencyStore
		idemPing  handler.Pinger
	)
	if cfg.Entries != nil {
		entries, auditPing = cfg.Entries, cfg.Entries
	}
	if cfg.Idempotency != nil {
		idem, idemPing = cfg.Idempotency, cfg.Idempotency
	}

	authHandler := handler.NewAuthHandler(service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL))
	userHandler := handler.NewUserHandler(service.NewUserService(userRepo, cfg.Log))
	projectHandler := handler.NewProjectHandler(service.NewProjectService(projectRepo, cfg.Log))
	ledgerHandler := handler.NewLedgerHandler(service.NewLedgerService(ledgerRepo, entries, idem, cfg.Audit, cfg.Log))
	commentHandler := handler.NewCommentHandler(service.NewCommentService(commentRepo))
	ratingHandler := handler.NewRatingHandler(service.NewRatingService(ratingRepo, cfg.Log))

	// --- Public routes ---
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)

	e.GET("/projects", projectHandler.Popular)
	e.GET("/projects/:id", projectHandler.Get)
	e.PUT("/projects/:id", projectHandler.Update)
	e.GET("/search", projectHandler.Search)
	e.POST("/manager-rating", ratingHandler.Submit)

	// --- Authenticated routes ---
	secured := e.Group("", middleware.Auth(cfg.JWTSecret), middleware.AccountStatus(domain.AccountActive))

	secured.POST("/createproject", projectHandler.Create)

	secured.POST("/donations", ledgerHandler.Donate)
	secured.GET("/donations/:projectId", ledgerHandler.ListDonations)
	secured.POST("/refunds/:projectId", ledgerHandler.Refund)
	secured.GET("/ledger/:projectId", ledgerHandler.History)

	secured.GET("/comments/:projectId", commentHandler.List)
	secured.POST("/comments", commentHandler.Add)

	secured.GET("/users/me", userHandler.Me)
	secured.PUT("/users/update", userHandler.Update)
	secured.DELETE("/users/delete", userHandler.Delete)

	// --- Operational ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(cfg.DB, auditPing, idemPing).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
