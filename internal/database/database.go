// Package database wraps the database implementation used for Stockfolio.
package database

import (
	"context"
	"os"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	shopspring "github.com/jackc/pgtype/ext/shopspring-numeric"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}

// Queryable defines an interface for a connection or transaction.
type Queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (int64, error)
	Query(ctx context.Context, sql string, arguments ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) Row
}

var ErrNoRows = pgx.ErrNoRows

// pgxQueryable is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQueryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

type queryable struct {
	impl pgxQueryable
}

// Exec executes a database query, returning the affected row count.
func (q *queryable) Exec(ctx context.Context, sql string, arguments ...any) (int64, error) {
	tag, err := q.impl.Exec(ctx, sql, arguments...)

	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// Query executes a database query returning Rows data.
func (q *queryable) Query(ctx context.Context, sql string, arguments ...any) (Rows, error) {
	return q.impl.Query(ctx, sql, arguments...)
}

// QueryRow executes a database query returning Row data.
func (q *queryable) QueryRow(ctx context.Context, sql string, arguments ...any) Row {
	return q.impl.QueryRow(ctx, sql, arguments...)
}

type Conn struct {
	queryable
	pool *pgxpool.Pool
}

// Connect connects to Postgres with the DATABASE_URL environment variable.
//
// Every connection scans numeric columns into shopspring decimals.
func Connect(ctx context.Context) (*Conn, error) {
	config, err := pgxpool.ParseConfig(os.Getenv("DATABASE_URL"))

	if err != nil {
		return nil, err
	}

	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		conn.ConnInfo().RegisterDataType(pgtype.DataType{
			Value: &shopspring.Numeric{},
			Name:  "numeric",
			OID:   pgtype.NumericOID,
		})

		return nil
	}

	pool, err := pgxpool.ConnectConfig(ctx, config)

	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return &Conn{queryable{pool}, pool}, nil
}

// Close closes a database connection.
func (conn *Conn) Close() {
	conn.pool.Close()
}

// WithTransaction runs a function inside a database transaction.
//
// The transaction is committed when the function returns nil, and rolled
// back on every other exit path, including panics.
func (conn *Conn) WithTransaction(ctx context.Context, run func(tx Queryable) error) error {
	tx, err := conn.pool.Begin(ctx)

	if err != nil {
		return err
	}

	defer tx.Rollback(ctx)

	if err := run(&queryable{tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
