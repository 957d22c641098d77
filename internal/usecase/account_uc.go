package usecase

import (
	"context"
	"errors"
	"fmt"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/model"
	"card-key-service/internal/domain/ports/repository"
	"card-key-service/internal/infra/logging"
	"card-key-service/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// AccountUseCase exposes admin-side account provisioning.
type AccountUseCase interface {
	Add(ctx context.Context, username, password string) (*model.Account, error)
	// ResetPassword overwrites the credential with a fresh random one and
	// returns it. This is the only way to see a forgotten account password;
	// it is not recoverable afterwards except by another reset.
	ResetPassword(ctx context.Context, username string) (string, error)
	// Delete cascades: all bound cards first, then the account, atomically.
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*model.AccountSummary, error)
}

type accountUC struct {
	accounts repository.AccountRepository
	cards    repository.CardRepository
	tm       repository.TransactionManager
	cipher   Cipher
	log      *zerolog.Logger
}

func NewAccountUseCase(accounts repository.AccountRepository, cards repository.CardRepository, tm repository.TransactionManager, cipher Cipher, logger *zerolog.Logger) *accountUC {
	return &accountUC{
		accounts: accounts,
		cards:    cards,
		tm:       tm,
		cipher:   cipher,
		log:      logger,
	}
}

func (u *accountUC) Add(ctx context.Context, username, password string) (*model.Account, error) {
	defer logging.TraceDuration(u.log, "AccountUC.Add")()

	if username == "" || password == "" {
		return nil, domain.ErrInvalidArgument
	}
	enc, err := u.cipher.Encrypt(password)
	if err != nil {
		return nil, fmt.Errorf("encrypt account credential: %w", err)
	}
	account, err := model.NewAccount(username, enc)
	if err != nil {
		return nil, err
	}
	if err := u.accounts.Insert(ctx, repository.NoTX, account); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.ErrAlreadyExists
		}
		metrics.IncStoreError()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	u.log.Info().Str("account", username).Msg("account added")
	return account, nil
}

func (u *accountUC) ResetPassword(ctx context.Context, username string) (string, error) {
	defer logging.TraceDuration(u.log, "AccountUC.ResetPassword")()

	password, err := generateRandomPassword()
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	enc, err := u.cipher.Encrypt(password)
	if err != nil {
		return "", fmt.Errorf("encrypt account credential: %w", err)
	}

	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err = u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.accounts.FindByUsername(ctx, tx, username); err != nil {
			return err
		}
		return u.accounts.UpdatePassword(ctx, tx, username, enc)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		metrics.IncStoreError()
		return "", fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	u.log.Info().Str("account", username).Msg("account password reset")
	return password, nil
}

func (u *accountUC) Delete(ctx context.Context, username string) error {
	defer logging.TraceDuration(u.log, "AccountUC.Delete")()

	var removedCards int
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.accounts.FindByUsername(ctx, tx, username); err != nil {
			return err
		}
		n, err := u.cards.DeleteByAccount(ctx, tx, username)
		if err != nil {
			return err
		}
		removedCards = n
		return u.accounts.Delete(ctx, tx, username)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		metrics.IncStoreError()
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	metrics.IncAccountDeleted()
	u.log.Info().Str("account", username).Int("cards_removed", removedCards).Msg("account deleted")
	return nil
}

func (u *accountUC) List(ctx context.Context) ([]*model.AccountSummary, error) {
	defer logging.TraceDuration(u.log, "AccountUC.List")()

	accounts, err := u.accounts.ListAll(ctx, repository.NoTX)
	if err != nil {
		metrics.IncStoreError()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	out := make([]*model.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		n, err := u.cards.CountByAccount(ctx, repository.NoTX, a.Username)
		if err != nil {
			metrics.IncStoreError()
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
		}
		out = append(out, &model.AccountSummary{
			Username:  a.Username,
			CreatedAt: a.CreatedAt,
			CardCount: n,
		})
	}
	return out, nil
}
