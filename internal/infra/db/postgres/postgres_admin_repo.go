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

var _ repository.AdminRepository = (*adminRepo)(nil)

type adminRepo struct {
	pool *pgxpool.Pool
}

func NewAdminRepo(pool *pgxpool.Pool) *adminRepo {
	return &adminRepo{pool: pool}
}

func (r *adminRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.Admin, error) {
	const q = `SELECT username, password_hash FROM admins WHERE username = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, username)
	if err != nil {
		return nil, err
	}
	var a model.Admin
	if err := row.Scan(&a.Username, &a.PasswordHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Save upserts so it serves both the bootstrap seed and password changes.
func (r *adminRepo) Save(ctx context.Context, tx repository.Tx, admin *model.Admin) error {
	const q = `
INSERT INTO admins (username, password_hash) VALUES ($1, $2)
ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash;
`
	_, err := execSQL(ctx, r.pool, tx, q, admin.Username, admin.PasswordHash)
	return err
}
