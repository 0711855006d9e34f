package svc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/stores/redis"

	cachekeys "snowfeed/internal/cache"
	"snowfeed/internal/config"
	"snowfeed/internal/ingest"
	"snowfeed/internal/store"
	"snowfeed/pkg/idgen"
	"snowfeed/pkg/notify"
	"snowfeed/pkg/snowball"
)

// ServiceContext owns every process-wide dependency, constructed exactly once
// at startup and passed explicitly to whatever needs it. The connection pool
// in particular has no hidden global instance: this is its single home.
type ServiceContext struct {
	Config *config.Config

	Pool     *store.Pool
	DB       *store.DB
	Snowball *snowball.Client
	Redis    *redis.Redis
	TTL      cachekeys.TTLSet
	Notifier *notify.Client
	IDs      *idgen.Generator
	Ingest   *ingest.Service
}

// NewServiceContext wires the full dependency graph. An unreachable store is
// a construction failure: the process cannot serve any persistence operation
// and should fail fast.
func NewServiceContext(ctx context.Context, c *config.Config) (*ServiceContext, error) {
	if c == nil {
		return nil, errors.New("svc: nil config")
	}
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		return nil, errors.New("svc: postgres DSN is required")
	}
	if c.Snowball.Value == nil {
		return nil, errors.New("svc: snowball config section is required")
	}

	pool, err := store.NewPool(ctx, store.PgxDialer(c.Postgres.DSN), store.PoolConfig{
		MinIdle:  c.Postgres.MinIdle,
		MaxIdle:  c.Postgres.MaxIdle,
		MaxTotal: c.Postgres.MaxOpen,
		MaxUses:  c.Postgres.MaxUses,
	})
	if err != nil {
		return nil, fmt.Errorf("svc: %w", err)
	}

	sctx := &ServiceContext{
		Config:   c,
		Pool:     pool,
		DB:       store.NewDB(pool),
		Snowball: c.Snowball.Value.BuildClient(),
		TTL:      cachekeys.NewTTLSet(c.TTL.Short, c.TTL.Medium, c.TTL.Long),
		Notifier: notify.NewClient(c.Notify.DeviceKey, notify.WithURL(c.Notify.URL)),
	}

	if strings.TrimSpace(c.Redis.Host) != "" {
		r, err := redis.NewRedis(c.Redis)
		if err != nil {
			pool.Close(ctx)
			return nil, fmt.Errorf("svc: redis: %w", err)
		}
		sctx.Redis = r
	}

	ids, err := idgen.New()
	if err != nil {
		pool.Close(ctx)
		return nil, fmt.Errorf("svc: %w", err)
	}
	sctx.IDs = ids

	ing, err := ingest.NewService(ingest.Config{
		Source:     sctx.Snowball,
		Writer:     sctx.DB,
		Cache:      sctx.Redis,
		TTL:        sctx.TTL,
		IDs:        sctx.IDs,
		Financials: c.Ingest.Financials,
	})
	if err != nil {
		pool.Close(ctx)
		return nil, fmt.Errorf("svc: %w", err)
	}
	sctx.Ingest = ing

	return sctx, nil
}

// Close releases pooled resources.
func (s *ServiceContext) Close(ctx context.Context) {
	if s.Pool != nil {
		s.Pool.Close(ctx)
	}
}
