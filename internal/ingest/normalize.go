package ingest

import (
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"snowfeed/internal/model"
	"snowfeed/pkg/snowball"
)

// Field coercion is total: every raw value, however malformed, maps to a
// typed-but-possibly-null result. A single bad field must never discard a
// record or abort a batch.

func numeric(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToDecimal coerces a loosely typed value to a decimal rounded to precision
// digits. Missing, non-numeric or malformed input yields null.
func ToDecimal(v any, precision int) sql.NullFloat64 {
	f, ok := numeric(v)
	if !ok {
		return sql.NullFloat64{}
	}
	p := math.Pow10(precision)
	return sql.NullFloat64{Float64: math.Round(f*p) / p, Valid: true}
}

// ToInt coerces a loosely typed value to an integer, truncating fractions.
func ToInt(v any) sql.NullInt64 {
	f, ok := numeric(v)
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f), Valid: true}
}

// EpochMilliToDate converts a millisecond Unix epoch to a calendar date in
// local time. Null input yields null output.
func EpochMilliToDate(v any) sql.NullTime {
	ms := ToInt(v)
	if !ms.Valid {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: DateOf(time.UnixMilli(ms.Int64)), Valid: true}
}

// DateOf truncates a time to its local calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// NormalizeQuote maps a raw screener entry to a persistence record. The
// record date is always the ingestion day, never inherited from upstream.
func NormalizeQuote(raw snowball.RawQuote, now time.Time) model.QuoteRecord {
	return model.QuoteRecord{
		Symbol:         raw.Symbol,
		RecordDate:     DateOf(now),
		Name:           sql.NullString{String: raw.Name, Valid: raw.Name != ""},
		CurrentPrice:   ToDecimal(raw.Current, 2),
		ChangePct:      ToDecimal(raw.Percent, 2),
		ChangeAmt:      ToDecimal(raw.Chg, 2),
		Volume:         ToInt(raw.Volume),
		Amount:         ToDecimal(raw.Amount, 2),
		TurnoverRate:   ToDecimal(raw.TurnoverRate, 2),
		MarketCap:      ToInt(raw.MarketCapital),
		FloatMarketCap: ToInt(raw.FloatMarketCapital),
		PeTTM:          ToDecimal(raw.PeTTM, 2),
		PbTTM:          ToDecimal(raw.PbTTM, 2),
		RoeTTM:         ToDecimal(raw.RoeTTM, 4),
		DividendYield:  ToDecimal(raw.DividendYield, 4),
		IssueDate:      EpochMilliToDate(raw.IssueDateTs),
		Followers:      ToInt(raw.Followers),
	}
}

// NormalizeFinancial maps the fundamentals half of a raw screener entry.
func NormalizeFinancial(raw snowball.RawQuote, now time.Time) model.FinancialRecord {
	return model.FinancialRecord{
		Symbol:         raw.Symbol,
		RecordDate:     DateOf(now),
		NetProfitCagr:  ToDecimal(raw.NetProfitCagr, 4),
		IncomeCagr:     ToDecimal(raw.IncomeCagr, 4),
		PsTTM:          ToDecimal(raw.Ps, 4),
		PcfTTM:         ToDecimal(raw.Pcf, 4),
		EpsTTM:         ToDecimal(raw.Eps, 2),
		MainNetInflows: ToDecimal(raw.MainNetInflows, 2),
		NorthNetInflow: ToDecimal(raw.NorthNetInflow, 2),
		VolumeRatio:    ToDecimal(raw.VolumeRatio, 2),
		Amplitude:      ToDecimal(raw.Amplitude, 2),
		TotalShares:    ToInt(raw.TotalShares),
		FloatShares:    ToInt(raw.FloatShares),
		LimitupDays:    ToInt(raw.LimitupDays),
		LotSize:        ToInt(raw.LotSize),
		StockType:      ToInt(raw.Type),
	}
}

// NormalizeKline maps one column-name list plus row-value array to a candle
// record. Rows without a usable timestamp cannot satisfy the natural key and
// are reported unusable via ok=false.
func NormalizeKline(symbol string, columns []string, row []any) (model.KlineRecord, bool) {
	values := make(map[string]any, len(columns))
	for i, col := range columns {
		if i < len(row) {
			values[col] = row[i]
		}
	}

	ts := EpochMilliToDate(values["timestamp"])
	if symbol == "" || !ts.Valid {
		return model.KlineRecord{}, false
	}

	return model.KlineRecord{
		Symbol:       symbol,
		Timestamp:    ts.Time,
		Volume:       ToInt(values["volume"]),
		Open:         ToDecimal(values["open"], 2),
		High:         ToDecimal(values["high"], 2),
		Low:          ToDecimal(values["low"], 2),
		Close:        ToDecimal(values["close"], 2),
		Chg:          ToDecimal(values["chg"], 2),
		Percent:      ToDecimal(values["percent"], 2),
		TurnoverRate: ToDecimal(values["turnoverrate"], 2),
		Amount:       ToDecimal(values["amount"], 2),
		VolumePost:   ToInt(values["volume_post"]),
		AmountPost:   ToDecimal(values["amount_post"], 2),
		Pe:           ToDecimal(values["pe"], 4),
		Pb:           ToDecimal(values["pb"], 4),
		Ps:           ToDecimal(values["ps"], 4),
		Pcf:          ToDecimal(values["pcf"], 4),
		MarketCap:    ToDecimal(values["market_capital"], 2),
		Balance:      ToDecimal(values["balance"], 2),
		HoldVolumeCN: ToInt(values["hold_volume_cn"]),
		HoldRatioCN:  ToDecimal(values["hold_ratio_cn"], 4),
		NetVolumeCN:  ToInt(values["net_volume_cn"]),
		HoldVolumeHK: ToInt(values["hold_volume_hk"]),
		HoldRatioHK:  ToDecimal(values["hold_ratio_hk"], 4),
		NetVolumeHK:  ToInt(values["net_volume_hk"]),
	}, true
}
