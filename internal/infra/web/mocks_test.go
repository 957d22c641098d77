//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/model"
)

// memSessionStore stands in for the Redis-backed store in handler tests.
type memSessionStore struct {
	mu    sync.Mutex
	store map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{store: make(map[string]string)}
}

func (m *memSessionStore) Put(ctx context.Context, id, username string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[id] = username
	return nil
}

func (m *memSessionStore) Get(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return "", domain.ErrNotFound
	}
	return u, nil
}

func (m *memSessionStore) Revoke(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, id)
	return nil
}

type mockRedemptionUC struct {
	redeemFunc func(ctx context.Context, cardKey string) (*model.RedemptionResult, error)
}

func (m *mockRedemptionUC) Redeem(ctx context.Context, cardKey string) (*model.RedemptionResult, error) {
	return m.redeemFunc(ctx, cardKey)
}

type mockAccountUC struct {
	addFunc    func(ctx context.Context, username, password string) (*model.Account, error)
	resetFunc  func(ctx context.Context, username string) (string, error)
	deleteFunc func(ctx context.Context, username string) error
	listFunc   func(ctx context.Context) ([]*model.AccountSummary, error)
}

func (m *mockAccountUC) Add(ctx context.Context, username, password string) (*model.Account, error) {
	return m.addFunc(ctx, username, password)
}
func (m *mockAccountUC) ResetPassword(ctx context.Context, username string) (string, error) {
	return m.resetFunc(ctx, username)
}
func (m *mockAccountUC) Delete(ctx context.Context, username string) error {
	return m.deleteFunc(ctx, username)
}
func (m *mockAccountUC) List(ctx context.Context) ([]*model.AccountSummary, error) {
	return m.listFunc(ctx)
}

type mockCardUC struct {
	issueFunc  func(ctx context.Context, username string, count, maxQueryCount, durationHours int) (*model.CardBatch, error)
	deleteFunc func(ctx context.Context, cardKey string) error
	listFunc   func(ctx context.Context) ([]*model.Card, error)
}

func (m *mockCardUC) IssueBatch(ctx context.Context, username string, count, maxQueryCount, durationHours int) (*model.CardBatch, error) {
	return m.issueFunc(ctx, username, count, maxQueryCount, durationHours)
}
func (m *mockCardUC) Delete(ctx context.Context, cardKey string) error {
	return m.deleteFunc(ctx, cardKey)
}
func (m *mockCardUC) List(ctx context.Context) ([]*model.Card, error) {
	return m.listFunc(ctx)
}

type mockAdminUC struct {
	verifyFunc func(ctx context.Context, username, password string) error
	changeFunc func(ctx context.Context, username, current, next string) error
}

func (m *mockAdminUC) Verify(ctx context.Context, username, password string) error {
	return m.verifyFunc(ctx, username, password)
}
func (m *mockAdminUC) ChangePassword(ctx context.Context, username, current, next string) error {
	return m.changeFunc(ctx, username, current, next)
}
