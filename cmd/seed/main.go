// Seeds or resets an admin login. Useful when the bootstrap credentials in
// config were never set or have been lost.
package main

import (
	"context"
	"flag"
	"log"

	"golang.org/x/crypto/bcrypt"

	"card-key-service/internal/config"
	"card-key-service/internal/domain/model"
	pg "card-key-service/internal/infra/db/postgres"
	"card-key-service/internal/infra/logging"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	username := flag.String("username", "admin", "admin username to create or reset")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx := context.Background()
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.ConnectAttempts, cfg.Database.ConnectBackoff, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("migrate")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Err(err).Msg("hash password")
	}
	repo := pg.NewAdminRepo(pool)
	if err := repo.Save(ctx, nil, &model.Admin{Username: *username, PasswordHash: string(hash)}); err != nil {
		logger.Fatal().Err(err).Msg("seed admin")
	}
	logger.Info().Str("admin", *username).Msg("done")
}
