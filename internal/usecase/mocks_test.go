package usecase

import (
	"context"
	"strings"
	"sync"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/model"
	"card-key-service/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// plainCipher is a transparent Cipher for unit tests.
type plainCipher struct{}

func (plainCipher) Encrypt(s string) (string, error) { return "enc:" + s, nil }
func (plainCipher) Decrypt(s string) (string, error) {
	return strings.TrimPrefix(s, "enc:"), nil
}

// memCardRepo is a small in-memory implementation used by unit tests.
type memCardRepo struct {
	mu    sync.Mutex
	store map[string]*model.Card

	// optional hooks to simulate failures
	saveErr    error
	insertFunc func(ctx context.Context, tx repository.Tx, card *model.Card) error
}

func newMemCardRepo() *memCardRepo {
	return &memCardRepo{store: make(map[string]*model.Card)}
}

func (m *memCardRepo) snapshot() map[string]*model.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := make(map[string]*model.Card, len(m.store))
	for k, v := range m.store {
		cp := *v
		snap[k] = &cp
	}
	return snap
}

func (m *memCardRepo) restore(snap map[string]*model.Card) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = snap
}

func (m *memCardRepo) FindByKey(ctx context.Context, tx repository.Tx, key string) (*model.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCardRepo) FindByKeyForUpdate(ctx context.Context, tx repository.Tx, key string) (*model.Card, error) {
	return m.FindByKey(ctx, tx, key)
}

func (m *memCardRepo) Insert(ctx context.Context, tx repository.Tx, card *model.Card) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, tx, card)
	}
	return m.insert(card)
}

func (m *memCardRepo) insert(card *model.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[card.CardKey]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *card
	m.store[card.CardKey] = &cp
	return nil
}

func (m *memCardRepo) Save(ctx context.Context, tx repository.Tx, card *model.Card) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[card.CardKey]; !ok {
		return domain.ErrNotFound
	}
	cp := *card
	m.store[card.CardKey] = &cp
	return nil
}

func (m *memCardRepo) Delete(ctx context.Context, tx repository.Tx, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[key]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, key)
	return nil
}

func (m *memCardRepo) DeleteByAccount(ctx context.Context, tx repository.Tx, username string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, c := range m.store {
		if c.Username == username {
			delete(m.store, k)
			n++
		}
	}
	return n, nil
}

func (m *memCardRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Card, 0, len(m.store))
	for _, c := range m.store {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memCardRepo) CountByAccount(ctx context.Context, tx repository.Tx, username string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.store {
		if c.Username == username {
			n++
		}
	}
	return n, nil
}

func (m *memCardRepo) Stats(ctx context.Context, tx repository.Tx) (*model.CardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s model.CardStats
	for _, c := range m.store {
		s.Total++
		if c.FirstUsedAt != nil {
			s.Activated++
		}
		if c.QueryCount >= c.MaxQueryCount {
			s.Exhausted++
		}
	}
	return &s, nil
}

// memAccountRepo mirrors memCardRepo for accounts.
type memAccountRepo struct {
	mu    sync.Mutex
	store map[string]*model.Account

	findErr error
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{store: make(map[string]*model.Account)}
}

func (m *memAccountRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Account, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccountRepo) Insert(ctx context.Context, tx repository.Tx, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[account.Username]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *account
	m.store[account.Username] = &cp
	return nil
}

func (m *memAccountRepo) UpdatePassword(ctx context.Context, tx repository.Tx, username, encryptedPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[username]
	if !ok {
		return domain.ErrNotFound
	}
	a.Password = encryptedPassword
	return nil
}

func (m *memAccountRepo) Delete(ctx context.Context, tx repository.Tx, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[username]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, username)
	return nil
}

func (m *memAccountRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Account, 0, len(m.store))
	for _, a := range m.store {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

// memAdminRepo holds admin credentials in memory.
type memAdminRepo struct {
	mu    sync.Mutex
	store map[string]*model.Admin
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{store: make(map[string]*model.Admin)}
}

func (m *memAdminRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.store[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAdminRepo) Save(ctx context.Context, tx repository.Tx, admin *model.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *admin
	m.store[admin.Username] = &cp
	return nil
}

// mockTxManager serializes transactions with a single mutex, which is the
// in-memory stand-in for the store's per-row serialization guarantee, and
// rolls the card/account maps back on error so all-or-nothing semantics
// hold in tests too.
type mockTxManager struct {
	mu       sync.Mutex
	cards    *memCardRepo
	accounts *memAccountRepo
}

func newMockTxManager(cards *memCardRepo, accounts *memAccountRepo) *mockTxManager {
	return &mockTxManager{cards: cards, accounts: accounts}
}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var snap map[string]*model.Card
	if m.cards != nil {
		snap = m.cards.snapshot()
	}
	if err := fn(ctx, nil); err != nil {
		if m.cards != nil {
			m.cards.restore(snap)
		}
		return err
	}
	return nil
}
