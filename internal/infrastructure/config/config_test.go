package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.Postgres.MaxOpenConns != 10 {
		t.Fatalf("expected 10 open conns, got %d", cfg.Postgres.MaxOpenConns)
	}
	if cfg.Mongo.URI != "" || cfg.Mongo.Database != "quickfund" {
		t.Fatalf("unexpected mongo config: %+v", cfg.Mongo)
	}
	if cfg.Redis.Addr != "" || cfg.Redis.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Audit.Workers != 4 {
		t.Fatalf("expected 4 audit workers, got %d", cfg.Audit.Workers)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env")
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":      "s3cret",
		"ENV":             "production",
		"TOKEN_TTL":       "30m",
		"DATABASE_URL":    "postgres://db/app",
		"MONGO_URI":       "mongodb://mongo:27017",
		"REDIS_ADDR":      "redis:6379",
		"IDEMPOTENCY_TTL": "2h",
		"AUDIT_WORKERS":   "8",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.IsDevelopment() || cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.Postgres.URL != "postgres://db/app" || cfg.Mongo.URI != "mongodb://mongo:27017" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("unexpected connection settings: %+v", cfg)
	}
	if cfg.Redis.IdempotencyTTL != 2*time.Hour || cfg.Audit.Workers != 8 {
		t.Fatalf("unexpected tuning settings: %+v", cfg)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}
