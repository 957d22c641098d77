package repository

import (
	"context"

	"card-key-service/internal/domain/model"
)

// CardRepository is the port for card persistence.
type CardRepository interface {
	// FindByKey returns the card for key, or domain.ErrNotFound.
	FindByKey(ctx context.Context, tx Tx, key string) (*model.Card, error)
	// FindByKeyForUpdate locks the card row for the duration of the
	// surrounding transaction. This is what serializes concurrent
	// redemptions of the same key; calls for different keys never contend.
	FindByKeyForUpdate(ctx context.Context, tx Tx, key string) (*model.Card, error)
	// Insert creates one card; domain.ErrAlreadyExists on key collision.
	Insert(ctx context.Context, tx Tx, card *model.Card) error
	// Save persists the mutable redemption state of an existing card.
	Save(ctx context.Context, tx Tx, card *model.Card) error
	// Delete removes a card; domain.ErrNotFound if absent.
	Delete(ctx context.Context, tx Tx, key string) error
	// DeleteByAccount removes all cards bound to username, returning how
	// many rows went away.
	DeleteByAccount(ctx context.Context, tx Tx, username string) (int, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Card, error)
	CountByAccount(ctx context.Context, tx Tx, username string) (int, error)
	// Stats aggregates the card table for the periodic stats sweep.
	Stats(ctx context.Context, tx Tx) (*model.CardStats, error)
}
