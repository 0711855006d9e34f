package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"

	cachekeys "snowfeed/internal/cache"
	"snowfeed/internal/model"
	"snowfeed/internal/store"
	"snowfeed/pkg/snowball"
)

// ErrNoData marks a kline run whose envelope carried no usable rows. It is
// the benign "nothing to persist" outcome, distinct from a transport failure.
var ErrNoData = errors.New("ingest: no data")

// KlineSource fetches one time-series envelope.
type KlineSource interface {
	Kline(ctx context.Context, symbol, period string, count int) (*snowball.KlineEnvelope, error)
}

// Source is the upstream surface an ingestion run needs.
type Source interface {
	QuoteSource
	KlineSource
}

// Writer persists normalized batches.
type Writer interface {
	Upsert(ctx context.Context, table store.Table, rows [][]any) (int64, error)
}

// IDSource hands out identifiers for ingestion runs.
type IDSource interface {
	NextID() (int64, error)
}

// Config enumerates the collaborators of an ingestion service. Source and
// Writer are mandatory; the cache mirror and run identifiers are optional
// and best-effort.
type Config struct {
	Source     Source
	Writer     Writer
	Cache      *redis.Redis
	TTL        cachekeys.TTLSet
	IDs        IDSource
	Financials bool
	Now        func() time.Time
}

// Service runs ingestion passes: paginated fetch, per-field normalization,
// one batch upsert per table per run.
type Service struct {
	source     Source
	writer     Writer
	cache      *redis.Redis
	ttl        cachekeys.TTLSet
	ids        IDSource
	financials bool
	now        func() time.Time
}

// NewService validates mandatory collaborators and builds a service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("ingest: missing source")
	}
	if cfg.Writer == nil {
		return nil, errors.New("ingest: missing writer")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		source:     cfg.Source,
		writer:     cfg.Writer,
		cache:      cfg.Cache,
		ttl:        cfg.TTL,
		ids:        cfg.IDs,
		financials: cfg.Financials,
		now:        now,
	}, nil
}

// QuoteReport summarizes one quote ingestion pass.
type QuoteReport struct {
	RunID              int64
	Fetched            int
	Dropped            int
	Affected           int64
	FinancialsAffected int64
}

// RunQuotes walks the full screener listing and upserts every normalized
// record in a single batch. A page-fetch failure still persists the pages
// accumulated before it and is then reported to the caller; the idempotent
// upsert makes a later full retry harmless.
func (s *Service) RunQuotes(ctx context.Context) (QuoteReport, error) {
	report := QuoteReport{RunID: s.runID(ctx)}
	raws, fetchErr := NewPager(s.source).FetchAll(ctx)
	report.Fetched = len(raws)
	if fetchErr != nil {
		logx.WithContext(ctx).Errorf("ingest: pagination halted after %d records: %v", len(raws), fetchErr)
	}

	now := s.now()
	quoteRows := make([][]any, 0, len(raws))
	finRows := make([][]any, 0, len(raws))
	quotes := make([]model.QuoteRecord, 0, len(raws))
	for _, raw := range raws {
		if raw.Symbol == "" {
			report.Dropped++
			logx.WithContext(ctx).Errorf("ingest: dropping record without symbol (name=%q)", raw.Name)
			continue
		}
		rec := NormalizeQuote(raw, now)
		quotes = append(quotes, rec)
		quoteRows = append(quoteRows, rec.Row())
		if s.financials {
			finRows = append(finRows, NormalizeFinancial(raw, now).Row())
		}
	}

	affected, err := s.writer.Upsert(ctx, model.QuotesTable, quoteRows)
	if err != nil {
		return report, fmt.Errorf("ingest: upsert quotes: %w", err)
	}
	report.Affected = affected

	if s.financials {
		finAffected, err := s.writer.Upsert(ctx, model.FinancialsTable, finRows)
		if err != nil {
			return report, fmt.Errorf("ingest: upsert financials: %w", err)
		}
		report.FinancialsAffected = finAffected
	}

	s.mirrorQuotes(ctx, quotes)
	s.recordRun(ctx, model.QuotesTable.Name, runRecord{
		RunID:    report.RunID,
		Fetched:  report.Fetched,
		Dropped:  report.Dropped,
		Affected: report.Affected,
		At:       now.Format(time.RFC3339),
	})
	logx.WithContext(ctx).Infof("ingest: quotes pass run=%d fetched=%d dropped=%d affected=%d", report.RunID, report.Fetched, report.Dropped, report.Affected)
	return report, fetchErr
}

// KlineReport summarizes one kline ingestion pass.
type KlineReport struct {
	RunID    int64
	Symbol   string
	Rows     int
	Dropped  int
	Affected int64
}

// RunKline fetches one time-series envelope for symbol and upserts its rows.
// An envelope with a non-zero error code or no rows yields ErrNoData.
func (s *Service) RunKline(ctx context.Context, symbol, period string, count int) (KlineReport, error) {
	report := KlineReport{RunID: s.runID(ctx), Symbol: symbol}
	env, err := s.source.Kline(ctx, symbol, period, count)
	if err != nil {
		return report, fmt.Errorf("ingest: fetch kline %s: %w", symbol, err)
	}
	if env.Empty() {
		if env != nil && env.ErrorCode != 0 {
			logx.WithContext(ctx).Infof("ingest: kline %s error %d: %s", symbol, env.ErrorCode, env.ErrorDescription)
		}
		return report, ErrNoData
	}

	name := env.Data.Symbol
	if name == "" {
		name = symbol
	}
	rows := make([][]any, 0, len(env.Data.Item))
	for _, item := range env.Data.Item {
		rec, ok := NormalizeKline(name, env.Data.Column, item)
		if !ok {
			report.Dropped++
			continue
		}
		rows = append(rows, rec.Row())
	}
	report.Rows = len(rows)

	affected, err := s.writer.Upsert(ctx, model.KlineTable, rows)
	if err != nil {
		return report, fmt.Errorf("ingest: upsert kline %s: %w", symbol, err)
	}
	report.Affected = affected
	s.recordRun(ctx, model.KlineTable.Name, runRecord{
		RunID:    report.RunID,
		Fetched:  report.Rows,
		Dropped:  report.Dropped,
		Affected: report.Affected,
		At:       s.now().Format(time.RFC3339),
	})
	logx.WithContext(ctx).Infof("ingest: kline pass run=%d symbol=%s rows=%d affected=%d", report.RunID, name, report.Rows, report.Affected)
	return report, nil
}

// runID tags a pass with a sortable identifier. Runs proceed without one
// when no generator is wired or it fails.
func (s *Service) runID(ctx context.Context) int64 {
	if s.ids == nil {
		return 0
	}
	id, err := s.ids.NextID()
	if err != nil {
		logx.WithContext(ctx).Errorf("ingest: run id: %v", err)
		return 0
	}
	return id
}

type runRecord struct {
	RunID    int64  `json:"runId"`
	Fetched  int    `json:"fetched"`
	Dropped  int    `json:"dropped"`
	Affected int64  `json:"affected"`
	At       string `json:"at"`
}

// recordRun keeps the outcome of the latest pass per table in the cache so
// operators can inspect it without touching the store. Best effort, like the
// quote mirror.
func (s *Service) recordRun(ctx context.Context, table string, rec runRecord) {
	if s.cache == nil {
		return
	}
	ttl := int(cachekeys.IngestRunTTL(s.ttl).Seconds())
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return
	}
	key := cachekeys.IngestRunKey(table)
	if err := s.cache.SetexCtx(ctx, key, string(payload), ttl); err != nil {
		logx.WithContext(ctx).Errorf("ingest: record run %s: %v", key, err)
	}
}

type cachedQuote struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	ChangePct  float64 `json:"changePct"`
	RecordDate string  `json:"recordDate"`
}

// mirrorQuotes refreshes the latest-price cache after a successful upsert.
// Failures are logged and swallowed: the store row is the source of truth.
func (s *Service) mirrorQuotes(ctx context.Context, quotes []model.QuoteRecord) {
	if s.cache == nil {
		return
	}
	ttl := int(cachekeys.QuoteLatestTTL(s.ttl).Seconds())
	if ttl <= 0 {
		return
	}
	for _, rec := range quotes {
		if !rec.CurrentPrice.Valid {
			continue
		}
		payload, err := json.Marshal(cachedQuote{
			Symbol:     rec.Symbol,
			Price:      rec.CurrentPrice.Float64,
			ChangePct:  rec.ChangePct.Float64,
			RecordDate: rec.RecordDate.Format("2006-01-02"),
		})
		if err != nil {
			continue
		}
		key := cachekeys.QuoteLatestKey(rec.Symbol)
		if err := s.cache.SetexCtx(ctx, key, string(payload), ttl); err != nil {
			logx.WithContext(ctx).Errorf("ingest: cache %s: %v", key, err)
		}
	}
}
