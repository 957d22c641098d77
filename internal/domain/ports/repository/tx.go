package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Repositories accept the opaque handle and detect a live transaction on
// the implementation side (e.g. pgx.Tx for Postgres), which lets them run
// SELECT ... FOR UPDATE and tx-bound Exec/Query without leaking transaction
// types into use-case interfaces. Repositories MUST gracefully accept a nil
// handle (non-transactional path).
//
// The redemption engine's correctness depends on the implementation
// guaranteeing serialized read-modify-write per card row under concurrent
// access; the Postgres implementation does this with row locks.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
