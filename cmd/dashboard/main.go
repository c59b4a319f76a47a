package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/kotche/femhealth/infrastructure/tracing"
	"github.com/kotche/femhealth/internal/app/bootstrap"
	"github.com/kotche/femhealth/internal/app/dashboard"
	"github.com/kotche/femhealth/internal/app/telegram"
	"github.com/kotche/femhealth/internal/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lggr, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = lggr.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap.Metrics(ctx, cfg.MetricsConfig, lggr)

	shutdown, err := tracing.InitTracing(cfg.TracingConfig.Endpoint, "femhealth-dashboard")
	if err != nil {
		lggr.Fatalf("failed to init tracing: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	bot, err := telegram.NewBot(cfg.TelegramConfig.TokenDashboardBot)
	if err != nil {
		lggr.Fatalf("%v", err)
	}

	sessions, cleanup, err := bootstrap.Sessions(ctx, cfg, bot, lggr)
	if err != nil {
		lggr.Fatalf("%v", err)
	}
	defer cleanup()

	dashboardImpl := dashboard.New(bot, sessions, lggr)
	go func() {
		<-ctx.Done()
		dashboardImpl.Stop()
	}()
	dashboardImpl.Start()
}
