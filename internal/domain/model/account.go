package model

import (
	"time"

	"card-key-service/internal/domain"
)

// Account is a provisioned credential that cards are bound to. Password
// holds the AES-GCM ciphertext of the credential: it must stay reversible
// because it is revealed to whoever successfully redeems a bound card.
type Account struct {
	Username  string
	Password  string
	CreatedAt time.Time
}

func NewAccount(username, encryptedPassword string) (*Account, error) {
	if username == "" || encryptedPassword == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Account{
		Username:  username,
		Password:  encryptedPassword,
		CreatedAt: time.Now(),
	}, nil
}

// AccountSummary is the read-only projection served by the admin listing.
type AccountSummary struct {
	Username  string
	CreatedAt time.Time
	CardCount int
}
