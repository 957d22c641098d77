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

	"card-key-service/internal/config"
	pg "card-key-service/internal/infra/db/postgres"
	"card-key-service/internal/infra/logging"
	"card-key-service/internal/infra/metrics"
	red "card-key-service/internal/infra/redis"
	"card-key-service/internal/infra/sched"
	"card-key-service/internal/infra/security"
	"card-key-service/internal/infra/web"
	"card-key-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.ConnectAttempts, cfg.Database.ConnectBackoff, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}
	if cfg.Bootstrap.AdminPassword != "" {
		if err := pg.EnsureAdmin(ctx, pool, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword, logger); err != nil {
			logger.Fatal().Err(err).Msg("bootstrap admin")
		}
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	sessions := red.NewSessionStore(redisClient)

	// ---- Encryption ----
	encSvc, err := security.NewEncryptionService(cfg.Security.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("encryption")
	}

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	cardRepo := pg.NewCardRepo(pool)
	accountRepo := pg.NewAccountRepo(pool)
	adminRepo := pg.NewAdminRepo(pool)

	// ---- Use cases ----
	redemptionUC := usecase.NewRedemptionUseCase(cardRepo, accountRepo, tm, encSvc, logger)
	cardUC := usecase.NewCardUseCase(cardRepo, accountRepo, tm, logger)
	accountUC := usecase.NewAccountUseCase(accountRepo, cardRepo, tm, encSvc, logger)
	adminUC := usecase.NewAdminUseCase(adminRepo, logger)

	// ---- Metrics ----
	metrics.MustRegister()

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.SecureCookie, cfg.Auth.CookieDomain, cfg.Auth.SessionTTL)
	srv := web.NewServer(redemptionUC, accountUC, cardUC, adminUC, sessions, auth, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Stats worker (hourly) ----
	statsWorker := sched.NewStatsWorker(1*time.Hour, cardRepo, logger)
	go func() { _ = statsWorker.Run(ctx) }()

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
