package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/model"
	"card-key-service/internal/domain/ports/repository"
	"card-key-service/internal/infra/logging"
	"card-key-service/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase is the card lifecycle engine: given a card key it
// decides whether redemption succeeds, updates the card atomically and
// returns the bound account's credential on success.
//
// Failure modes: domain.ErrCardNotFound, domain.ErrQuotaExceeded,
// domain.ErrCardExpired, domain.ErrStoreFailure. Nothing else escapes.
type RedemptionUseCase interface {
	Redeem(ctx context.Context, cardKey string) (*model.RedemptionResult, error)
}

type redemptionUC struct {
	cards    repository.CardRepository
	accounts repository.AccountRepository
	tm       repository.TransactionManager
	cipher   Cipher
	log      *zerolog.Logger
}

func NewRedemptionUseCase(cards repository.CardRepository, accounts repository.AccountRepository, tm repository.TransactionManager, cipher Cipher, logger *zerolog.Logger) *redemptionUC {
	return &redemptionUC{
		cards:    cards,
		accounts: accounts,
		tm:       tm,
		cipher:   cipher,
		log:      logger,
	}
}

// Redeem runs the whole state machine in one transaction with the card row
// locked, so two concurrent redemptions of the same key cannot both win the
// last quota slot or race on the activation timestamp. The card is always
// re-read inside the transaction; no state is carried across calls.
func (u *redemptionUC) Redeem(ctx context.Context, cardKey string) (*model.RedemptionResult, error) {
	defer logging.TraceDuration(u.log, "RedemptionUC.Redeem")()

	if cardKey == "" {
		metrics.IncRedemption("not_found")
		return nil, domain.ErrCardNotFound
	}

	var res *model.RedemptionResult
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		card, err := u.cards.FindByKeyForUpdate(ctx, tx, cardKey)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrCardNotFound
			}
			return err
		}

		// Quota is checked before expiry: an exhausted card always reports
		// quota exhaustion even when it is also past its window.
		if card.Exhausted() {
			return domain.ErrQuotaExceeded
		}

		now := time.Now()
		if !card.Activated() {
			// Activation event. Setting the timestamp before the expiry
			// check means a card can never be expired on its own
			// activation call.
			card.FirstUsedAt = &now
		} else if card.ExpiredAt(now) {
			return domain.ErrCardExpired
		}

		card.QueryCount++
		// Activation timestamp and count increment land in one write; the
		// rollback on any later failure leaves the card untouched.
		if err := u.cards.Save(ctx, tx, card); err != nil {
			return err
		}

		account, err := u.accounts.FindByUsername(ctx, tx, card.Username)
		if err != nil {
			return err
		}
		password, err := u.cipher.Decrypt(account.Password)
		if err != nil {
			return fmt.Errorf("decrypt account credential: %w", err)
		}

		expiry, _ := card.ExpiresAt()
		res = &model.RedemptionResult{
			AccountName:     account.Username,
			AccountPassword: password,
			ExpiresAt:       expiry,
			QueryCount:      card.QueryCount,
			MaxQueryCount:   card.MaxQueryCount,
		}
		return nil
	})

	switch {
	case err == nil:
		metrics.IncRedemption("success")
		return res, nil
	case errors.Is(err, domain.ErrCardNotFound):
		metrics.IncRedemption("not_found")
		return nil, err
	case errors.Is(err, domain.ErrQuotaExceeded):
		metrics.IncRedemption("quota_exceeded")
		return nil, err
	case errors.Is(err, domain.ErrCardExpired):
		metrics.IncRedemption("expired")
		return nil, err
	default:
		// Persistence failure: the transaction rolled back, the card is
		// unchanged. Detail is logged here; callers see a generic kind.
		metrics.IncRedemption("store_error")
		metrics.IncStoreError()
		u.log.Error().Err(err).Str("card_key", logging.Redact(cardKey, false)).Msg("redemption store failure")
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
}
