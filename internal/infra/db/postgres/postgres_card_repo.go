package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"card-key-service/internal/domain"
	"card-key-service/internal/domain/model"
	"card-key-service/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CardRepository = (*cardRepo)(nil)

type cardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepo(pool *pgxpool.Pool) *cardRepo {
	return &cardRepo{pool: pool}
}

const cardColumns = `card_key, username, batch_id, created_at, first_used_at, query_count, max_query_count, duration_hours`

func scanCard(row pgx.Row) (*model.Card, error) {
	var c model.Card
	err := row.Scan(&c.CardKey, &c.Username, &c.BatchID, &c.CreatedAt, &c.FirstUsedAt, &c.QueryCount, &c.MaxQueryCount, &c.DurationHours)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *cardRepo) FindByKey(ctx context.Context, tx repository.Tx, key string) (*model.Card, error) {
	const q = `SELECT ` + cardColumns + ` FROM cards WHERE card_key = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, key)
	if err != nil {
		return nil, err
	}
	return scanCard(row)
}

// FindByKeyForUpdate locks the card row until the surrounding transaction
// ends. Concurrent redemptions of the same key queue up on this lock;
// other keys are untouched.
func (r *cardRepo) FindByKeyForUpdate(ctx context.Context, tx repository.Tx, key string) (*model.Card, error) {
	const q = `SELECT ` + cardColumns + ` FROM cards WHERE card_key = $1 FOR UPDATE;`
	row, err := pickRow(ctx, r.pool, tx, q, key)
	if err != nil {
		return nil, err
	}
	return scanCard(row)
}

func (r *cardRepo) Insert(ctx context.Context, tx repository.Tx, card *model.Card) error {
	const q = `
INSERT INTO cards (card_key, username, batch_id, created_at, first_used_at, query_count, max_query_count, duration_hours)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		card.CardKey, card.Username, card.BatchID, card.CreatedAt, card.FirstUsedAt, card.QueryCount, card.MaxQueryCount, card.DurationHours,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save persists the redemption-mutable fields. Activation timestamp and
// query count always land in the same write.
func (r *cardRepo) Save(ctx context.Context, tx repository.Tx, card *model.Card) error {
	const q = `
UPDATE cards SET first_used_at = $2, query_count = $3 WHERE card_key = $1;
`
	tag, err := execSQL(ctx, r.pool, tx, q, card.CardKey, card.FirstUsedAt, card.QueryCount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cardRepo) Delete(ctx context.Context, tx repository.Tx, key string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM cards WHERE card_key = $1;`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *cardRepo) DeleteByAccount(ctx context.Context, tx repository.Tx, username string) (int, error) {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM cards WHERE username = $1;`, username)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *cardRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Card, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY created_at, card_key;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cardRepo) Stats(ctx context.Context, tx repository.Tx) (*model.CardStats, error) {
	const q = `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE first_used_at IS NOT NULL),
       COUNT(*) FILTER (WHERE query_count >= max_query_count)
  FROM cards;
`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	var s model.CardStats
	if err := row.Scan(&s.Total, &s.Activated, &s.Exhausted); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cardRepo) CountByAccount(ctx context.Context, tx repository.Tx, username string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM cards WHERE username = $1;`, username)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
