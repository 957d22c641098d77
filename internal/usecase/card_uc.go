package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/model"
	"card-key-service/internal/domain/ports/repository"
	"card-key-service/internal/infra/logging"
	"card-key-service/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ CardUseCase = (*cardUC)(nil)

// CardUseCase exposes the admin-side card operations: batch issuance,
// deletion and listing.
type CardUseCase interface {
	// IssueBatch creates count cards bound to username, each with a fresh
	// unique key and the same quota/window. All-or-nothing.
	IssueBatch(ctx context.Context, username string, count, maxQueryCount, durationHours int) (*model.CardBatch, error)
	Delete(ctx context.Context, cardKey string) error
	List(ctx context.Context) ([]*model.Card, error)
}

// How many times a single card slot regenerates its key after a primary-key
// collision before the batch is abandoned.
const keyCollisionRetries = 3

type cardUC struct {
	cards    repository.CardRepository
	accounts repository.AccountRepository
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewCardUseCase(cards repository.CardRepository, accounts repository.AccountRepository, tm repository.TransactionManager, logger *zerolog.Logger) *cardUC {
	return &cardUC{
		cards:    cards,
		accounts: accounts,
		tm:       tm,
		log:      logger,
	}
}

func (u *cardUC) IssueBatch(ctx context.Context, username string, count, maxQueryCount, durationHours int) (*model.CardBatch, error) {
	defer logging.TraceDuration(u.log, "CardUC.IssueBatch")()

	if username == "" || count <= 0 || maxQueryCount <= 0 || durationHours <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	batchID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()

	var batch *model.CardBatch
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		// The issuing account must exist; cards hold only a weak reference,
		// so this is checked here rather than left to the schema.
		if _, err := u.accounts.FindByUsername(ctx, tx, username); err != nil {
			return err
		}

		cards := make([]*model.Card, 0, count)
		for i := 0; i < count; i++ {
			card, err := u.issueOne(ctx, tx, username, batchID, maxQueryCount, durationHours)
			if err != nil {
				return err
			}
			cards = append(cards, card)
		}
		batch = &model.CardBatch{BatchID: batchID, Cards: cards}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
			return nil, err
		}
		metrics.IncStoreError()
		u.log.Error().Err(err).Str("account", username).Int("count", count).Msg("batch issuance failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}

	metrics.AddCardsIssued(count)
	u.log.Info().Str("account", username).Str("batch_id", batchID).Int("count", count).Msg("cards issued")
	return batch, nil
}

// issueOne inserts a single card, regenerating the key on the vanishingly
// rare collision instead of failing the whole batch.
func (u *cardUC) issueOne(ctx context.Context, tx repository.Tx, username, batchID string, maxQueryCount, durationHours int) (*model.Card, error) {
	for attempt := 0; attempt <= keyCollisionRetries; attempt++ {
		key, err := generateCardKey()
		if err != nil {
			return nil, fmt.Errorf("generate card key: %w", err)
		}
		card, err := model.NewCard(key, username, batchID, maxQueryCount, durationHours)
		if err != nil {
			return nil, err
		}
		err = u.cards.Insert(ctx, tx, card)
		if err == nil {
			return card, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		u.log.Warn().Str("batch_id", batchID).Msg("card key collision, regenerating")
	}
	return nil, fmt.Errorf("card key collision persisted after %d retries", keyCollisionRetries)
}

func (u *cardUC) Delete(ctx context.Context, cardKey string) error {
	defer logging.TraceDuration(u.log, "CardUC.Delete")()

	err := u.cards.Delete(ctx, repository.NoTX, cardKey)
	if err != nil {
		// Deleting an already-deleted card reports not-found, never a
		// store failure.
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		metrics.IncStoreError()
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	u.log.Info().Str("card_key", logging.Redact(cardKey, false)).Msg("card deleted")
	return nil
}

func (u *cardUC) List(ctx context.Context) ([]*model.Card, error) {
	defer logging.TraceDuration(u.log, "CardUC.List")()
	cards, err := u.cards.ListAll(ctx, repository.NoTX)
	if err != nil {
		metrics.IncStoreError()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	return cards, nil
}
