package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/kotche/femhealth/infrastructure/tracing"
	"github.com/kotche/femhealth/internal/app/bootstrap"
	"github.com/kotche/femhealth/internal/app/notifier"
	"github.com/kotche/femhealth/internal/app/telegram"
	"github.com/kotche/femhealth/internal/config"
	"github.com/kotche/femhealth/internal/service/kafka"
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

	if cfg.PostgresConfig.Store == config.StoreMemory {
		lggr.Warnf("notifier runs with an in-memory store and will not see dashboard sessions")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap.Metrics(ctx, cfg.MetricsConfig, lggr)

	shutdown, err := tracing.InitTracing(cfg.TracingConfig.Endpoint, "femhealth-notifier")
	if err != nil {
		lggr.Fatalf("failed to init tracing: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	bot, err := telegram.NewBot(cfg.TelegramConfig.TokenNotifyBot)
	if err != nil {
		lggr.Fatalf("%v", err)
	}

	sessions, cleanup, err := bootstrap.Sessions(ctx, cfg, bot, lggr)
	if err != nil {
		lggr.Fatalf("%v", err)
	}
	defer cleanup()

	kafkaServ, err := kafka.New(kafka.Options{
		Brokers:           cfg.KafkaConfig.Brokers,
		Topic:             cfg.KafkaConfig.Topic,
		GroupID:           cfg.KafkaConfig.GroupID,
		NumPartitions:     cfg.KafkaConfig.NumPartitions,
		ReplicationFactor: cfg.KafkaConfig.ReplicationFactor,
	}, lggr)
	if err != nil {
		lggr.Fatalf("failed to initialize kafka: %v", err)
	}
	defer func() {
		if err := kafkaServ.Close(); err != nil {
			lggr.Errorf("%v", err)
		}
	}()

	notifierImpl := notifier.New(bot, sessions, kafkaServ, cfg.NotifierConfig.Schedule, lggr)
	if err = notifierImpl.Start(ctx); err != nil {
		lggr.Errorf("notifier stopped: %v", err)
	}
}
