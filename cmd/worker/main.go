package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/config"
	"github.com/Domenick1991/tutorbooking/internal/email"
	"github.com/Domenick1991/tutorbooking/internal/kafka"
	"github.com/Domenick1991/tutorbooking/internal/logger"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if !cfg.Kafka.Enabled() {
		zl.Fatal("worker needs kafka brokers")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var mailer email.Mailer = email.NewLogMailer(zl)
	if cfg.Mail.Enabled {
		mailer = email.NewMailerSend(cfg.Mail.APIKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	}
	sender := email.NewSender(mailer, zl)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.WorkerGroupID, cfg.Kafka.BookingEventsTopic)
	defer consumer.Close()

	zl.Info("worker started", zap.String("topic", cfg.Kafka.BookingEventsTopic), zap.Bool("mail_enabled", cfg.Mail.Enabled))
	if err := consumer.Consume(ctx, sender.HandleMessage); err != nil {
		zl.Error("consumer stopped", zap.Error(err))
		return
	}
	zl.Info("worker stopped")
}
