package model

import "time"

// RedemptionResult is the success payload surfaced to the presentation
// layer after a card key is redeemed.
type RedemptionResult struct {
	AccountName     string
	AccountPassword string
	ExpiresAt       time.Time
	QueryCount      int
	MaxQueryCount   int
}
