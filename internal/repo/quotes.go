// Package repo exposes read helpers over the persisted market data.
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snowfeed/internal/model"
	"snowfeed/internal/store"
)

// ScreenFilter narrows a screening query over stored quote snapshots. Zero
// valued criteria are not applied.
type ScreenFilter struct {
	// Date selects the snapshot day; zero means today.
	Date            time.Time
	MinTurnoverRate float64
	MaxPeTTM        float64
	MinMarketCap    int64
	Limit           int
}

// SQL renders the filter as a parameterized query in QuotesTable column
// order, best daily movers first.
func (f ScreenFilter) SQL() (string, []any) {
	day := f.Date
	if day.IsZero() {
		day = time.Now()
	}
	y, m, d := day.Date()
	day = time.Date(y, m, d, 0, 0, 0, 0, day.Location())

	var b strings.Builder
	args := []any{day}
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(model.QuotesTable.Columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(model.QuotesTable.Name)
	b.WriteString(" WHERE record_date = $1")
	if f.MinTurnoverRate > 0 {
		args = append(args, f.MinTurnoverRate)
		fmt.Fprintf(&b, " AND turnover_rate >= $%d", len(args))
	}
	if f.MaxPeTTM > 0 {
		args = append(args, f.MaxPeTTM)
		fmt.Fprintf(&b, " AND pe_ttm > 0 AND pe_ttm <= $%d", len(args))
	}
	if f.MinMarketCap > 0 {
		args = append(args, f.MinMarketCap)
		fmt.Fprintf(&b, " AND market_cap >= $%d", len(args))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	fmt.Fprintf(&b, " ORDER BY change_pct DESC LIMIT $%d", len(args))
	return b.String(), args
}

// QuotesRepo reads persisted quote snapshots.
type QuotesRepo interface {
	// Screen returns the snapshots matching the filter, best movers first.
	Screen(ctx context.Context, filter ScreenFilter) ([]model.QuoteRecord, error)
}

type quotesRepo struct {
	db *store.DB
}

func NewQuotesRepo(db *store.DB) QuotesRepo {
	return &quotesRepo{db: db}
}

func (r *quotesRepo) Screen(ctx context.Context, filter ScreenFilter) ([]model.QuoteRecord, error) {
	query, args := filter.SQL()

	var out []model.QuoteRecord
	err := r.db.WithSession(ctx, func(ctx context.Context, cur store.Cursor) error {
		rows, err := cur.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("repo: screen quotes: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var rec model.QuoteRecord
			if err := rows.Scan(
				&rec.Symbol, &rec.RecordDate,
				&rec.Name, &rec.CurrentPrice, &rec.ChangePct, &rec.ChangeAmt,
				&rec.Volume, &rec.Amount, &rec.TurnoverRate,
				&rec.MarketCap, &rec.FloatMarketCap,
				&rec.PeTTM, &rec.PbTTM, &rec.RoeTTM, &rec.DividendYield,
				&rec.IssueDate, &rec.Followers,
			); err != nil {
				return fmt.Errorf("repo: scan quote: %w", err)
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
