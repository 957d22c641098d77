package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// NewPgxPool connects to Postgres with a bounded fixed-interval retry loop.
// Startup connectivity is the one legitimately fatal condition: after the
// last attempt the error propagates and the process fails to start.
func NewPgxPool(ctx context.Context, dsn string, maxConns, attempts int, backoff time.Duration, logger *zerolog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err = pgxpool.ConnectConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}
		logger.Error().Err(err).Int("attempt", attempt).Int("max_attempts", attempts).Msg("postgres connect failed")
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return nil, fmt.Errorf("postgres unreachable after %d attempts: %w", attempts, err)
}
