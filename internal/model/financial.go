package model

import (
	"database/sql"
	"time"

	"snowfeed/internal/store"
)

// FinancialsTable mirrors the fundamental indicators the screener returns in
// the same page payload as the quote fields.
var FinancialsTable = store.Table{
	Name: "stock_financials",
	Columns: []string{
		"symbol", "record_date",
		"net_profit_cagr", "income_cagr",
		"ps_ttm", "pcf_ttm", "eps_ttm",
		"main_net_inflows", "north_net_inflow",
		"volume_ratio", "amplitude",
		"total_shares", "float_shares",
		"limitup_days", "lot_size", "stock_type",
	},
	Key: []string{"symbol", "record_date"},
}

// FinancialRecord is the fundamentals companion to QuoteRecord, sharing its
// (symbol, record_date) key.
type FinancialRecord struct {
	Symbol         string
	RecordDate     time.Time
	NetProfitCagr  sql.NullFloat64
	IncomeCagr     sql.NullFloat64
	PsTTM          sql.NullFloat64
	PcfTTM         sql.NullFloat64
	EpsTTM         sql.NullFloat64
	MainNetInflows sql.NullFloat64
	NorthNetInflow sql.NullFloat64
	VolumeRatio    sql.NullFloat64
	Amplitude      sql.NullFloat64
	TotalShares    sql.NullInt64
	FloatShares    sql.NullInt64
	LimitupDays    sql.NullInt64
	LotSize        sql.NullInt64
	StockType      sql.NullInt64
}

// Row returns the record values in FinancialsTable column order.
func (r FinancialRecord) Row() []any {
	return []any{
		r.Symbol, r.RecordDate,
		r.NetProfitCagr, r.IncomeCagr,
		r.PsTTM, r.PcfTTM, r.EpsTTM,
		r.MainNetInflows, r.NorthNetInflow,
		r.VolumeRatio, r.Amplitude,
		r.TotalShares, r.FloatShares,
		r.LimitupDays, r.LotSize, r.StockType,
	}
}
