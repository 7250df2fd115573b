package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/api"
	"github.com/Domenick1991/tutorbooking/config"
	"github.com/Domenick1991/tutorbooking/internal/bootstrap"
	"github.com/Domenick1991/tutorbooking/internal/cache"
	"github.com/Domenick1991/tutorbooking/internal/catalog"
	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/feed"
	"github.com/Domenick1991/tutorbooking/internal/identity"
	"github.com/Domenick1991/tutorbooking/internal/kafka"
	"github.com/Domenick1991/tutorbooking/internal/logger"
	"github.com/Domenick1991/tutorbooking/internal/metrics"
	"github.com/Domenick1991/tutorbooking/internal/migrations"
	"github.com/Domenick1991/tutorbooking/internal/pricing"
	"github.com/Domenick1991/tutorbooking/internal/repository"
	"github.com/Domenick1991/tutorbooking/internal/service/reservation"
	"github.com/Domenick1991/tutorbooking/internal/service/schedule"
	"github.com/Domenick1991/tutorbooking/internal/session"
)

const sessionSweepInterval = time.Minute

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

	if err := run(cfg, zl); err != nil {
		zl.Fatal("app stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.App.MigrateOnStart {
		migrator, err := migrations.NewMigrator(pool, zl)
		if err != nil {
			return err
		}
		if err := migrator.Up(ctx); err != nil {
			_ = migrator.Close()
			return err
		}
		_ = migrator.Close()
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.App.SlotsCacheTTLDuration())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		zl.Warn("redis unavailable", zap.Error(err))
	}

	m := metrics.New("tutorbooking")
	calc := pricing.NewCalculator(cfg.Pricing)

	tutorRepo := repository.NewTutorRepository(pool)
	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	resetRepo := repository.NewResetRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)

	loader := feed.NewRepositoryLoader(tutorRepo, slotRepo, bookingRepo, redisCache, zl)
	hubOpts := []feed.Option{feed.WithMetrics(m)}
	reservationOpts := []reservation.Option{reservation.WithMetrics(m), reservation.WithPricing(calc)}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled() {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, zl)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			zl.Warn("kafka unavailable, changes refresh locally", zap.Error(err))
		}
		hubOpts = append(hubOpts, feed.WithPublisher(producer, cfg.Kafka.ChangesTopic))
		reservationOpts = append(reservationOpts, reservation.WithEvents(producer, cfg.Kafka.BookingEventsTopic))
	}

	hub := feed.NewHub(loader, zl, hubOpts...)
	cat := catalog.New()
	hub.Attach(cat)
	if err := hub.Refresh(ctx); err != nil {
		zl.Warn("initial catalog load incomplete", zap.Error(err))
	}

	if cfg.Kafka.Enabled() {
		// each replica reads every change event, so group ids must not be shared
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID+"-"+uuid.NewString(), cfg.Kafka.ChangesTopic)
		defer consumer.Close()
		go func() {
			if err := hub.Run(ctx, consumer); err != nil {
				zl.Error("change feed stopped", zap.Error(err))
			}
		}()
	}

	reservationOpts = append(reservationOpts, reservation.WithDirectory(cat))
	reservationSvc := reservation.NewReservationService(bookingRepo, hub, zl, reservationOpts...)
	scheduleSvc := schedule.NewScheduleService(tutorRepo, slotRepo, resetRepo, hub, zl)

	tokens, err := identity.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		return err
	}
	ident := identity.NewService(accountRepo, tokens, redisCache, zl)
	if cfg.App.AdminEmail != "" {
		if err := ident.EnsureAccount(ctx, cfg.App.AdminEmail, cfg.App.AdminPassword, domain.RoleAdmin); err != nil {
			return err
		}
	}
	unsubscribe := ident.Subscribe(func(p identity.Principal, signedIn bool) {
		zl.Info("identity changed", zap.String("email", p.Email), zap.Bool("signed_in", signedIn))
	})
	defer unsubscribe()

	sessions := session.NewManager(calc, cfg.App.SessionTTL())
	go sessions.RunSweeper(ctx, sessionSweepInterval)

	router := api.NewRouter(api.Handlers{
		Catalog:  api.NewCatalogHandler(cat, calc, zl),
		Sessions: api.NewSessionHandler(sessions, cat, reservationSvc, redisCache, cfg.App.SubmitLockTTL(), zl),
		Portal:   api.NewPortalHandler(scheduleSvc, zl),
		Admin:    api.NewAdminHandler(cat, reservationSvc, scheduleSvc, zl),
		Auth:     api.NewAuthHandler(ident, zl),
	}, ident, m, zl)

	if err := bootstrap.Run(ctx, cfg.HTTP, router, zl); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
