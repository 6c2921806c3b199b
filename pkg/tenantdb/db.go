package tenantdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx query methods the store needs. Both a
// pooled connection and a transaction satisfy it, which is what lets the
// session bridge swap one for the other transparently.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Tx is a database transaction. Its statements are guaranteed by pgx to
// run on one physical connection, which the session bridge relies on:
// if a pooling layer could multiplex a transaction across connections,
// database-side enforcement would silently break.
type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB is the connection source the store runs on. The pgxpool adapter is
// the production implementation; tests inject fault-injecting fakes.
type DB interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
}

type poolDB struct {
	pool *pgxpool.Pool
}

// NewDB adapts a pgx connection pool to the DB interface.
func NewDB(pool *pgxpool.Pool) DB {
	return &poolDB{pool: pool}
}

func (d *poolDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return d.pool.Exec(ctx, sql, args...)
}

func (d *poolDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return d.pool.Query(ctx, sql, args...)
}

func (d *poolDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return d.pool.QueryRow(ctx, sql, args...)
}

func (d *poolDB) Begin(ctx context.Context) (Tx, error) {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
