package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"
)

// ErrNoConnection marks a unit of work that never got a connection; no
// cursor was created and nothing was written.
var ErrNoConnection = errors.New("store: no connection available")

// DB runs units of work against a pool. Each unit of work borrows exactly one
// connection for its duration.
type DB struct {
	pool *Pool
}

func NewDB(pool *Pool) *DB {
	return &DB{pool: pool}
}

// WithSession acquires a connection, opens a transaction and invokes fn with
// its cursor. A normal return commits; any failure rolls the transaction back
// and rethrows the original error. The connection is released exactly once on
// every exit path, including panics inside fn.
func (d *DB) WithSession(ctx context.Context, fn func(ctx context.Context, cur Cursor) error) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoConnection, err)
	}

	released := false
	release := func(unusable bool) {
		if !released {
			released = true
			d.pool.Release(conn, unusable)
		}
	}
	defer func() { release(true) }()

	tx, err := conn.Begin(ctx)
	if err != nil {
		release(true)
		return fmt.Errorf("store: begin: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logx.WithContext(ctx).Errorf("store: rollback after failed session: %v", rbErr)
			release(true)
		} else {
			release(false)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		release(true)
		return fmt.Errorf("store: commit: %w", err)
	}
	release(false)
	return nil
}
