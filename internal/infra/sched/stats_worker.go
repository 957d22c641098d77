package sched

import (
	"context"
	"time"

	"card-key-service/internal/domain/ports/repository"
	"card-key-service/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// StatsWorker periodically snapshots the card table into gauges. Cards are
// never mutated by time passing (expiry is evaluated at redemption), so
// this sweep is read-only.
type StatsWorker struct {
	interval time.Duration
	cards    repository.CardRepository
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, cards repository.CardRepository, logger *zerolog.Logger) *StatsWorker {
	wlog := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{
		interval: interval,
		cards:    cards,
		log:      &wlog,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			stats, err := w.cards.Stats(ctx, repository.NoTX)
			if err != nil {
				w.log.Error().Err(err).Msg("stats sweep failed")
				continue
			}
			metrics.SetCardStats(stats.Total, stats.Activated, stats.Exhausted)
			w.log.Debug().
				Int("total", stats.Total).
				Int("activated", stats.Activated).
				Int("exhausted", stats.Exhausted).
				Msg("card stats")
		}
	}
}
