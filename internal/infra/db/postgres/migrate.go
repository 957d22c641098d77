package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/model"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS admins (
		username      TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS accounts (
		username     TEXT PRIMARY KEY,
		password_enc TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS cards (
		card_key        TEXT PRIMARY KEY,
		username        TEXT NOT NULL,
		batch_id        TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		first_used_at   TIMESTAMPTZ,
		query_count     INTEGER NOT NULL DEFAULT 0,
		max_query_count INTEGER NOT NULL,
		duration_hours  INTEGER NOT NULL,
		CONSTRAINT quota_not_exceeded CHECK (query_count <= max_query_count)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_cards_username ON cards (username);`,
	`CREATE INDEX IF NOT EXISTS idx_cards_batch_id ON cards (batch_id);`,
}

// Migrate applies the idempotent schema. Cards reference accounts only
// weakly (no FK): the cascade on account deletion is done by the use case
// inside one transaction, and orphaned cards stay resolvable by key.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// EnsureAdmin seeds the bootstrap admin if it does not exist yet. The
// password is bcrypt-hashed before it touches the database.
func EnsureAdmin(ctx context.Context, pool *pgxpool.Pool, username, password string, logger *zerolog.Logger) error {
	if username == "" || password == "" {
		return domain.ErrInvalidArgument
	}
	repo := NewAdminRepo(pool)
	_, err := repo.FindByUsername(ctx, nil, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	if err := repo.Save(ctx, nil, &model.Admin{Username: username, PasswordHash: string(hash)}); err != nil {
		return err
	}
	logger.Info().Str("admin", username).Msg("bootstrap admin created")
	return nil
}
