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

var _ repository.AccountRepository = (*accountRepo)(nil)

type accountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *accountRepo {
	return &accountRepo{pool: pool}
}

func (r *accountRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Account, error) {
	const q = `SELECT username, password_enc, created_at FROM accounts WHERE username = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, username)
	if err != nil {
		return nil, err
	}
	var a model.Account
	if err := row.Scan(&a.Username, &a.Password, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) Insert(ctx context.Context, tx repository.Tx, account *model.Account) error {
	const q = `INSERT INTO accounts (username, password_enc, created_at) VALUES ($1, $2, $3);`
	_, err := execSQL(ctx, r.pool, tx, q, account.Username, account.Password, account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *accountRepo) UpdatePassword(ctx context.Context, tx repository.Tx, username, encryptedPassword string) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE accounts SET password_enc = $2 WHERE username = $1;`, username, encryptedPassword)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepo) Delete(ctx context.Context, tx repository.Tx, username string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM accounts WHERE username = $1;`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Account, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT username, password_enc, created_at FROM accounts ORDER BY created_at, username;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.Username, &a.Password, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
