package repository

import (
	"context"
	"time"
)

// SessionStore tracks live admin sessions so that auth is validated
// per-request against server-side state instead of a process-global flag.
// Revoking a session invalidates its token immediately, before the JWT
// itself would expire.
type SessionStore interface {
	// Put records a session ID for username with the given TTL.
	Put(ctx context.Context, id, username string, ttl time.Duration) error
	// Get returns the username for a live session, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (string, error)
	// Revoke drops a session. Revoking an unknown ID is not an error.
	Revoke(ctx context.Context, id string) error
}
