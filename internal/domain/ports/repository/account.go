package repository

import (
	"context"

	"card-key-service/internal/domain/model"
)

// AccountRepository is the port for account persistence.
type AccountRepository interface {
	// FindByUsername returns the account, or domain.ErrNotFound.
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.Account, error)
	// Insert creates an account; domain.ErrAlreadyExists if the username
	// is taken.
	Insert(ctx context.Context, tx Tx, account *model.Account) error
	// UpdatePassword overwrites the stored (encrypted) credential.
	UpdatePassword(ctx context.Context, tx Tx, username, encryptedPassword string) error
	// Delete removes the account row only; cascading the bound cards is
	// the use case's job, inside one transaction.
	Delete(ctx context.Context, tx Tx, username string) error
	ListAll(ctx context.Context, tx Tx) ([]*model.Account, error)
}
