package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps live admin sessions in Redis. A session that has been
// revoked (logout) or expired by TTL fails auth even while its JWT is still
// within its own validity window.
type SessionStore struct {
	client RedisClient
}

func NewSessionStore(client RedisClient) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) key(id string) string {
	return fmt.Sprintf("admin_session:%s", id)
}

func (s *SessionStore) Put(ctx context.Context, id, username string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(id), username, ttl)
}

func (s *SessionStore) Get(ctx context.Context, id string) (string, error) {
	username, err := s.client.Get(ctx, s.key(id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return username, nil
}

func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id))
}
