package model

import (
	"time"

	"card-key-service/internal/domain"
)

// Card is a bearer token entitling limited, time-boxed, count-limited
// disclosure of one account's credential. The expiry clock starts at the
// first successful redemption, not at issuance.
type Card struct {
	CardKey       string
	Username      string
	BatchID       string
	CreatedAt     time.Time
	FirstUsedAt   *time.Time // nil until the card is activated
	QueryCount    int
	MaxQueryCount int
	DurationHours int
}

func NewCard(key, username, batchID string, maxQueryCount, durationHours int) (*Card, error) {
	if key == "" || username == "" {
		return nil, domain.ErrInvalidArgument
	}
	if maxQueryCount <= 0 || durationHours <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Card{
		CardKey:       key,
		Username:      username,
		BatchID:       batchID,
		CreatedAt:     time.Now(),
		QueryCount:    0,
		MaxQueryCount: maxQueryCount,
		DurationHours: durationHours,
	}, nil
}

// Activated reports whether the card's expiry clock has started.
func (c *Card) Activated() bool { return c.FirstUsedAt != nil }

// Exhausted reports whether the redemption quota is used up.
func (c *Card) Exhausted() bool { return c.QueryCount >= c.MaxQueryCount }

// ValidityWindow is the length of the card's validity window.
func (c *Card) ValidityWindow() time.Duration {
	return time.Duration(c.DurationHours) * time.Hour
}

// ExpiresAt returns the actual expiry instant. The second return is false
// for an unused card, whose window has not started yet.
func (c *Card) ExpiresAt() (time.Time, bool) {
	if c.FirstUsedAt == nil {
		return time.Time{}, false
	}
	return c.FirstUsedAt.Add(c.ValidityWindow()), true
}

// ExpiredAt reports whether the card is past its validity window at now.
// Expiry is independent of the query count.
func (c *Card) ExpiredAt(now time.Time) bool {
	exp, ok := c.ExpiresAt()
	if !ok {
		return false
	}
	return now.After(exp)
}

// DisplayExpiresAt is the issuance-relative expiry preview shown in admin
// listings. It is anchored on CreatedAt, unlike the redemption-time check
// which is anchored on FirstUsedAt.
func (c *Card) DisplayExpiresAt() time.Time {
	return c.CreatedAt.Add(c.ValidityWindow())
}
