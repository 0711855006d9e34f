package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Cursor is the statement surface handed to a unit of work. pgx transactions
// satisfy it directly.
type Cursor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Tx is a Cursor bound to an open transaction.
type Tx interface {
	Cursor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Conn is a single live store connection owned by the pool.
type Conn interface {
	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type pgxConn struct {
	conn *pgx.Conn
}

func (c *pgxConn) Begin(ctx context.Context) (Tx, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (c *pgxConn) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

func (c *pgxConn) Close(ctx context.Context) error { return c.conn.Close(ctx) }

// PgxDialer opens direct pgx connections for the given DSN. Pooling is the
// job of Pool, so each dial is a plain single connection.
func PgxDialer(dsn string) Dialer {
	return func(ctx context.Context) (Conn, error) {
		conn, err := pgx.Connect(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return &pgxConn{conn: conn}, nil
	}
}
