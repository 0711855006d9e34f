package model

import (
	"database/sql"
	"time"

	"snowfeed/internal/store"
)

// QuotesTable is the destination for daily quote snapshots. One row per
// (symbol, record_date); re-ingestion on the same day overwrites the mutable
// columns and never duplicates history.
var QuotesTable = store.Table{
	Name: "stock_quotes",
	Columns: []string{
		"symbol", "record_date",
		"name", "current_price", "change_pct", "change_amt",
		"volume", "amount", "turnover_rate",
		"market_cap", "float_market_cap",
		"pe_ttm", "pb_ttm", "roe_ttm", "dividend_yield",
		"issue_date", "followers",
	},
	Key: []string{"symbol", "record_date"},
}

// QuoteRecord is a persistence-ready quote snapshot. Every field except the
// natural key is nullable: upstream payloads are inconsistently populated and
// a missing or malformed field must not discard the row.
type QuoteRecord struct {
	Symbol         string
	RecordDate     time.Time
	Name           sql.NullString
	CurrentPrice   sql.NullFloat64
	ChangePct      sql.NullFloat64
	ChangeAmt      sql.NullFloat64
	Volume         sql.NullInt64
	Amount         sql.NullFloat64
	TurnoverRate   sql.NullFloat64
	MarketCap      sql.NullInt64
	FloatMarketCap sql.NullInt64
	PeTTM          sql.NullFloat64
	PbTTM          sql.NullFloat64
	RoeTTM         sql.NullFloat64
	DividendYield  sql.NullFloat64
	IssueDate      sql.NullTime
	Followers      sql.NullInt64
}

// Row returns the record values in QuotesTable column order.
func (r QuoteRecord) Row() []any {
	return []any{
		r.Symbol, r.RecordDate,
		r.Name, r.CurrentPrice, r.ChangePct, r.ChangeAmt,
		r.Volume, r.Amount, r.TurnoverRate,
		r.MarketCap, r.FloatMarketCap,
		r.PeTTM, r.PbTTM, r.RoeTTM, r.DividendYield,
		r.IssueDate, r.Followers,
	}
}
