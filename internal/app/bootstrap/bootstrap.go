package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kotche/femhealth/infrastructure/logger"
	infra_metrics "github.com/kotche/femhealth/infrastructure/metrics"
	"github.com/kotche/femhealth/internal/app/telegram"
	"github.com/kotche/femhealth/internal/config"
	"github.com/kotche/femhealth/internal/content"
	"github.com/kotche/femhealth/internal/cycle"
	"github.com/kotche/femhealth/internal/dispatch"
	"github.com/kotche/femhealth/internal/metrics"
	"github.com/kotche/femhealth/internal/repository/sessions"
	"github.com/kotche/femhealth/internal/service/session"
)

const migrationsSource = "file://migrations"

// Sessions builds the session service shared by both bots: the session
// store selected by STORE, content generation and the dispatch sequencer.
// The returned cleanup closes the database.
func Sessions(ctx context.Context, cfg *config.Config, sender telegram.Sender, lggr logger.Logger) (*session.DefaultService, func(), error) {
	repo, cleanup, err := openRepository(cfg.PostgresConfig, lggr)
	if err != nil {
		return nil, nil, err
	}

	contentSvc := content.NewDefaultService(newSource(ctx, cfg.GeminiConfig, lggr), lggr)

	seq := dispatch.NewSequencer(contentSvc, dispatch.NewMailtoComposer(telegram.LinkOpener(sender)), lggr,
		dispatch.WithHost(cfg.DispatchConfig.SMTPHost),
		dispatch.WithDelay(dispatch.RandomDelay(cfg.DispatchConfig.MinDelay, cfg.DispatchConfig.MaxDelay)),
	)

	svc := session.NewDefaultService(repo, cycle.NewPredictor(cfg.DispatchConfig.DueSoonDays, nil), contentSvc, seq, nil, lggr)
	return svc, cleanup, nil
}

// Metrics registers every collector and serves them on the configured address.
func Metrics(ctx context.Context, cfg config.MetricsConfig, lggr logger.Logger) {
	infra_metrics.Init(prometheus.DefaultRegisterer)
	metrics.Init(prometheus.DefaultRegisterer)
	infra_metrics.StartMetricsServer(ctx, cfg.Addr, lggr)
}

func openRepository(cfg config.PostgresConfig, lggr logger.Logger) (sessions.Repository, func(), error) {
	if cfg.Store == config.StoreMemory {
		lggr.Infof("using in-memory session store")
		return sessions.NewMemoryRepository(), func() {}, nil
	}

	connStr := cfg.DSN()
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err = runMigrations(connStr); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migration error: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			lggr.Errorf("failed to close postgres: %v", err)
		}
	}
	return sessions.NewDefaultRepository(db), cleanup, nil
}

func newSource(ctx context.Context, cfg config.GeminiConfig, lggr logger.Logger) content.Source {
	if cfg.APIKey == "" {
		lggr.Warnf("GEMINI_API_KEY is not set, serving fallback content only")
		return content.StaticSource{}
	}

	src, err := content.NewGeminiSource(ctx, geminiConfig(cfg))
	if err != nil {
		lggr.Errorf("failed to init content generation, serving fallback content only: %v", err)
		return content.StaticSource{}
	}
	return src
}

func geminiConfig(cfg config.GeminiConfig) content.GeminiConfig {
	return content.GeminiConfig{
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		Attempts: cfg.Attempts,
		Delay:    cfg.Delay,
		Timeout:  cfg.Timeout,
	}
}

func runMigrations(dbURL string) error {
	m, err := migrate.New(
		migrationsSource,
		dbURL,
	)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if err = m.Up(); !errors.Is(err, migrate.ErrNoChange) && err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
