// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"telegram-group-subscription/internal/config"
	"telegram-group-subscription/internal/domain/ports/adapter"
	"telegram-group-subscription/internal/infra/catalog"
	pg "telegram-group-subscription/internal/infra/db/postgres"
	"telegram-group-subscription/internal/infra/logging"
	"telegram-group-subscription/internal/infra/metrics"
	payInfra "telegram-group-subscription/internal/infra/payment"
	red "telegram-group-subscription/internal/infra/redis"
	"telegram-group-subscription/internal/infra/sched"
	tele "telegram-group-subscription/internal/infra/telegram"
	"telegram-group-subscription/internal/infra/web"
	"telegram-group-subscription/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (noop gateway and bot)")
	flag.Parse()

	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	intentRepo := pg.NewPaymentIntentRepo(pool)
	entRepo := pg.NewEntitlementRepo(pool)
	notifLogRepo := pg.NewNotificationLogRepo(pool)
	txManager := pg.NewTxManager(pool)

	planCatalog, err := catalog.NewStaticCatalog(cfg.Plans)
	if err != nil {
		logger.Fatal().Err(err).Msg("plan catalog")
	}

	// ---- Adapters ----
	var gateway adapter.PaymentGateway
	if cfg.Runtime.Dev && cfg.Payment.MercadoPago.AccessToken == "" {
		gateway = payInfra.NewNoopGateway()
		logger.Warn().Msg("payment gateway: noop (dev)")
	} else {
		gateway = payInfra.NewMercadoPagoGateway(
			cfg.Payment.MercadoPago.AccessToken,
			cfg.Payment.MercadoPago.BaseURL,
			cfg.Payment.MercadoPago.NotificationURL,
		)
	}

	var group adapter.GroupAccess
	if cfg.Bot.Token == "" {
		if !cfg.Runtime.Dev {
			logger.Fatal().Msg("bot.token is required outside dev mode")
		}
		group = tele.NewNoopGroupAccess(logger)
	} else {
		group, err = tele.NewRealGroupAccess(cfg.Bot.Token, cfg.Bot.GroupID, cfg.Bot.InviteLink, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
	}

	// ---- Use cases ----
	payUC := usecase.NewPaymentUseCase(intentRepo, entRepo, planCatalog, gateway, group, locker, txManager, logger)
	entUC := usecase.NewEntitlementUseCase(entRepo, logger)
	notifUC := usecase.NewNotificationUseCase(entRepo, notifLogRepo, group, cfg.Sweep.WarningDays, cfg.Sweep.DedupWindow, logger)
	statsUC := usecase.NewStatsUseCase(entRepo, intentRepo, logger)

	// ---- Sweep workers ----
	expiryWorker := sched.NewExpiryWorker(cfg.Sweep.ExpiryInterval, entUC, group, logger)
	reminderWorker := sched.NewReminderWorker(cfg.Sweep.ReminderInterval, notifUC, logger)
	go func() { _ = expiryWorker.Run(ctx) }()
	go func() { _ = reminderWorker.Run(ctx) }()

	// ---- HTTP server (webhook receiver + admin) ----
	auth := web.NewAuthManager(cfg.Web.JWTSecret, 30*time.Minute)
	srv := web.NewServer(payUC, statsUC, auth, cfg.Web.AdminAPIKey, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
