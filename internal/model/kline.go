package model

import (
	"database/sql"
	"time"

	"snowfeed/internal/store"
)

// KlineTable holds weekly candle rows keyed by (symbol, timestamp). Rows are
// append-mostly, but metric corrections arrive via the same upsert path.
var KlineTable = store.Table{
	Name: "stock_weekly_kline",
	Columns: []string{
		"symbol", "timestamp",
		"volume", "open", "high", "low", "close", "chg", "percent",
		"turnoverrate", "amount", "volume_post", "amount_post",
		"pe", "pb", "ps", "pcf", "market_capital", "balance",
		"hold_volume_cn", "hold_ratio_cn", "net_volume_cn",
		"hold_volume_hk", "hold_ratio_hk", "net_volume_hk",
	},
	Key: []string{"symbol", "timestamp"},
}

// KlineRecord is one candle plus the auxiliary market metrics the upstream
// time-series feed reports alongside it. Timestamp is the upstream
// millisecond epoch truncated to a calendar date.
type KlineRecord struct {
	Symbol       string
	Timestamp    time.Time
	Volume       sql.NullInt64
	Open         sql.NullFloat64
	High         sql.NullFloat64
	Low          sql.NullFloat64
	Close        sql.NullFloat64
	Chg          sql.NullFloat64
	Percent      sql.NullFloat64
	TurnoverRate sql.NullFloat64
	Amount       sql.NullFloat64
	VolumePost   sql.NullInt64
	AmountPost   sql.NullFloat64
	Pe           sql.NullFloat64
	Pb           sql.NullFloat64
	Ps           sql.NullFloat64
	Pcf          sql.NullFloat64
	MarketCap    sql.NullFloat64
	Balance      sql.NullFloat64
	HoldVolumeCN sql.NullInt64
	HoldRatioCN  sql.NullFloat64
	NetVolumeCN  sql.NullInt64
	HoldVolumeHK sql.NullInt64
	HoldRatioHK  sql.NullFloat64
	NetVolumeHK  sql.NullInt64
}

// Row returns the record values in KlineTable column order.
func (r KlineRecord) Row() []any {
	return []any{
		r.Symbol, r.Timestamp,
		r.Volume, r.Open, r.High, r.Low, r.Close, r.Chg, r.Percent,
		r.TurnoverRate, r.Amount, r.VolumePost, r.AmountPost,
		r.Pe, r.Pb, r.Ps, r.Pcf, r.MarketCap, r.Balance,
		r.HoldVolumeCN, r.HoldRatioCN, r.NetVolumeCN,
		r.HoldVolumeHK, r.HoldRatioHK, r.NetVolumeHK,
	}
}
