package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Redemption errors
	ErrCardNotFound  = errors.New("card key not found")
	ErrQuotaExceeded = errors.New("card query quota exceeded")
	ErrCardExpired   = errors.New("card has expired")

	// ErrStoreFailure wraps any persistence failure crossing the core
	// boundary. The triggering write is rolled back in full.
	ErrStoreFailure = errors.New("store failure")

	// Auth errors
	ErrBadCredentials = errors.New("bad credentials")

	ErrInvalidExecContext = errors.New("invalid executor context")
)
