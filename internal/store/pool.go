package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"
)

// ErrPoolClosed is returned by Acquire after the pool has been shut down.
var ErrPoolClosed = errors.New("store: pool is closed")

// Dialer opens a fresh connection to the backing store.
type Dialer func(ctx context.Context) (Conn, error)

// PoolConfig controls pool sizing. MaxUses of 0 means a connection is reused
// without limit.
type PoolConfig struct {
	MinIdle  int
	MaxIdle  int
	MaxTotal int
	MaxUses  int
}

func (c *PoolConfig) normalize() error {
	if c.MinIdle <= 0 {
		c.MinIdle = 2
	}
	if c.MaxIdle <= 0 {
		c.MaxIdle = 5
	}
	if c.MaxTotal <= 0 {
		c.MaxTotal = 10
	}
	if c.MaxUses < 0 {
		c.MaxUses = 0
	}
	if c.MaxIdle < c.MinIdle {
		return fmt.Errorf("store: maxIdle %d below minIdle %d", c.MaxIdle, c.MinIdle)
	}
	if c.MaxTotal < c.MaxIdle {
		return fmt.Errorf("store: maxTotal %d below maxIdle %d", c.MaxTotal, c.MaxIdle)
	}
	return nil
}

type pooledConn struct {
	conn Conn
	uses int
}

// Pool maintains a bounded set of live store connections. Connections are
// either idle or handed out; the number handed out never exceeds MaxTotal,
// and Acquire blocks until a release when the pool is saturated.
//
// The pool is constructed once at startup and injected into everything that
// needs persistence; there is no package-level instance.
type Pool struct {
	dial Dialer
	cfg  PoolConfig
	sem  chan struct{}

	mu     sync.Mutex
	idle   []*pooledConn
	inUse  map[Conn]*pooledConn
	closed bool
}

// NewPool eagerly dials MinIdle connections so that an unreachable store is
// detected at startup rather than on the first unit of work.
func NewPool(ctx context.Context, dial Dialer, cfg PoolConfig) (*Pool, error) {
	if dial == nil {
		return nil, errors.New("store: nil dialer")
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	p := &Pool{
		dial:  dial,
		cfg:   cfg,
		sem:   make(chan struct{}, cfg.MaxTotal),
		inUse: make(map[Conn]*pooledConn, cfg.MaxTotal),
	}
	for i := 0; i < cfg.MinIdle; i++ {
		conn, err := dial(ctx)
		if err != nil {
			p.Close(ctx)
			return nil, fmt.Errorf("store: initialize pool: %w", err)
		}
		p.idle = append(p.idle, &pooledConn{conn: conn})
	}
	return p, nil
}

// Acquire hands out a connection, blocking while MaxTotal connections are
// already in use. Idle connections are health-checked before reuse; a
// connection that fails its ping is discarded and a replacement dialed.
func (p *Pool) Acquire(ctx context.Context) (Conn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("store: acquire: %w", ctx.Err())
	}

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			<-p.sem
			return nil, ErrPoolClosed
		}
		var pc *pooledConn
		if n := len(p.idle); n > 0 {
			pc = p.idle[n-1]
			p.idle = p.idle[:n-1]
		}
		p.mu.Unlock()

		if pc == nil {
			break
		}
		if err := pc.conn.Ping(ctx); err != nil {
			logx.WithContext(ctx).Errorf("store: discarding stale connection: %v", err)
			_ = pc.conn.Close(ctx)
			continue
		}
		p.mu.Lock()
		p.inUse[pc.conn] = pc
		p.mu.Unlock()
		return pc.conn, nil
	}

	conn, err := p.dial(ctx)
	if err != nil {
		<-p.sem
		return nil, fmt.Errorf("store: acquire: %w", err)
	}
	pc := &pooledConn{conn: conn}
	p.mu.Lock()
	p.inUse[conn] = pc
	p.mu.Unlock()
	return conn, nil
}

// Release returns a connection to the idle set, or closes it when it has been
// flagged unusable, exhausted its use budget, or the idle set is full.
// Releasing a connection the pool did not hand out is a no-op, so a release
// can never happen twice for the same acquisition.
func (p *Pool) Release(conn Conn, unusable bool) {
	if conn == nil {
		return
	}
	p.mu.Lock()
	pc, ok := p.inUse[conn]
	if !ok {
		p.mu.Unlock()
		return
	}
	delete(p.inUse, conn)
	pc.uses++
	discard := unusable || p.closed ||
		(p.cfg.MaxUses > 0 && pc.uses >= p.cfg.MaxUses) ||
		len(p.idle) >= p.cfg.MaxIdle
	if !discard {
		p.idle = append(p.idle, pc)
	}
	p.mu.Unlock()

	if discard {
		_ = conn.Close(context.Background())
	}
	<-p.sem
}

// Stats is a point-in-time view of pool occupancy, used by health reporting
// and tests.
type Stats struct {
	Idle  int
	InUse int
}

func (p *Pool) Stat() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Idle: len(p.idle), InUse: len(p.inUse)}
}

// Close shuts the pool down and closes every idle connection. Connections
// still in use are closed as they are released.
func (p *Pool) Close(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, pc := range idle {
		if err := pc.conn.Close(ctx); err != nil {
			logx.WithContext(ctx).Errorf("store: close pooled connection: %v", err)
		}
	}
}
