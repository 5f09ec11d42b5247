// @title        QuickFund API
// @version      1.0
// @description  Crowdfunding backend: projects, donations, refunds, comments and manager ratings.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/SakutaArc/QuickFund/internal/api"
	"github.com/SakutaArc/QuickFund/internal/core/service"
	"github.com/SakutaArc/QuickFund/internal/infrastructure/config"
	mongostore "github.com/SakutaArc/QuickFund/internal/infrastructure/db/mongo"
	"github.com/SakutaArc/QuickFund/internal/infrastructure/db/postgres"
	redisstore "github.com/SakutaArc/QuickFund/internal/infrastructure/db/redis"
	"github.com/SakutaArc/QuickFund/internal/infrastructure/queue"
	"github.com/SakutaArc/QuickFund/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "quickfund",
	})
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("could not read .env")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:          cfg.Postgres.URL,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("postgres ready")

	var (
		entries    *mongostore.LedgerEntryRepository
		dispatcher *queue.Dispatcher
		audit      service.AuditRecorder
	)
	if cfg.Mongo.URI != "" {
		entries, err = mongostore.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer func() { _ = entries.Close(context.Background()) }()

		// Workers outlive the signal context; Stop drains them after the server.
		dispatcher = queue.NewDispatcher(cfg.Audit.Workers, entries, log)
		dispatcher.Start(context.Background())
		audit = dispatcher
		log.Info().Str("database", cfg.Mongo.Database).Int("workers", cfg.Audit.Workers).Msg("ledger audit trail enabled")
	} else {
		log.Warn().Msg("MONGO_URI not set, ledger audit trail disabled")
	}

	var idem *redisstore.IdempotencyStore
	if cfg.Redis.Addr != "" {
		idem, err = redisstore.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer idem.Close()
		log.Info().Str("addr", cfg.Redis.Addr).Msg("donation idempotency enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, donation idempotency disabled")
	}

	e := api.NewRouter(api.RouterConfig{
		DB:          db,
		Entries:     entries,
		Idempotency: idem,
		Audit:       audit,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		Log:         log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		drainAudit(dispatcher, log)
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		drainAudit(dispatcher, log)
		return err
	}
	drainAudit(dispatcher, log)
	return nil
}

// drainAudit flushes queued audit entries once no handler can enqueue more.
func drainAudit(d *queue.Dispatcher, log zerolog.Logger) {
	if d == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("audit queue not fully drained")
	}
}
