package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDialer tracks every connection it creates so tests can assert on
// lifecycle behavior without a live database.
type fakeDialer struct {
	mu      sync.Mutex
	dialed  int
	conns   []*fakeConn
	dialErr error
}

func (d *fakeDialer) dial(ctx context.Context) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	d.dialed++
	c := &fakeConn{}
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialed
}

type fakeConn struct {
	pingErr  error
	beginErr error
	closed   atomic.Bool
	tx       *fakeTx
}

func (c *fakeConn) Begin(ctx context.Context) (Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	if c.tx == nil {
		c.tx = &fakeTx{}
	}
	return c.tx, nil
}

func (c *fakeConn) Ping(ctx context.Context) error { return c.pingErr }

func (c *fakeConn) Close(ctx context.Context) error {
	c.closed.Store(true)
	return nil
}

type fakeTx struct {
	execErr    error
	commitErr  error
	committed  bool
	rolledBack bool
	batches    []*pgx.Batch
	rowTag     string
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.execErr != nil {
		return pgconn.CommandTag{}, t.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	t.batches = append(t.batches, b)
	tag := t.rowTag
	if tag == "" {
		tag = "INSERT 0 1"
	}
	return &fakeBatchResults{remaining: b.Len(), tag: tag, execErr: t.execErr}
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeBatchResults struct {
	remaining int
	tag       string
	execErr   error
	closed    bool
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) {
	if r.execErr != nil {
		return pgconn.CommandTag{}, r.execErr
	}
	if r.remaining <= 0 {
		return pgconn.CommandTag{}, errors.New("no more results")
	}
	r.remaining--
	return pgconn.NewCommandTag(r.tag), nil
}

func (r *fakeBatchResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }

func (r *fakeBatchResults) QueryRow() pgx.Row { return nil }

func (r *fakeBatchResults) Close() error {
	r.closed = true
	return nil
}
