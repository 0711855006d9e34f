package ingest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snowfeed/pkg/snowball"
)

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		precision int
		want      float64
		valid     bool
	}{
		{"float", 51.3449, 2, 51.34, true},
		{"rounds up", 51.345, 2, 51.35, true},
		{"four digits", -40.82648601552229, 4, -40.8265, true},
		{"numeric string", "26.1", 2, 26.1, true},
		{"integer", 100, 0, 100, true},
		{"nil", nil, 2, 0, false},
		{"non-numeric string", "n/a", 2, 0, false},
		{"empty string", "", 2, 0, false},
		{"bool", true, 2, 0, false},
		{"NaN", math.NaN(), 2, 0, false},
		{"Inf", math.Inf(1), 2, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDecimal(tt.input, tt.precision)
			require.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, got.Float64, 1e-9)
			}
		})
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int64
		valid bool
	}{
		{"float", 35678826.0, 35678826, true},
		{"truncates fraction", 8176767780.9, 8176767780, true},
		{"string", "31096", 31096, true},
		{"nil", nil, 0, false},
		{"garbage", "many", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToInt(tt.input)
			require.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Int64)
			}
		})
	}
}

func TestEpochMilliToDate(t *testing.T) {
	// 2015-04-22 00:00:00 +0800 in milliseconds.
	got := EpochMilliToDate(float64(1429632000000))
	require.True(t, got.Valid)
	assert.Equal(t, 0, got.Time.Hour())
	assert.Equal(t, 0, got.Time.Minute())

	// Deterministic: same input, same output.
	again := EpochMilliToDate(float64(1429632000000))
	assert.True(t, got.Time.Equal(again.Time))

	assert.False(t, EpochMilliToDate(nil).Valid)
	assert.False(t, EpochMilliToDate("not-a-ts").Valid)
}

func TestNormalizeQuoteIsTotal(t *testing.T) {
	now := time.Date(2025, 7, 3, 15, 30, 0, 0, time.Local)
	raw := snowball.RawQuote{
		Symbol:        "SZ300436",
		Name:          "广生堂",
		Current:       51.34,
		Percent:       20.01,
		Chg:           8.56,
		Volume:        35678826.0,
		Amount:        1715428301.44,
		TurnoverRate:  26.1,
		MarketCapital: 8176767780.0,
		RoeTTM:        -40.82648601552229,
		IssueDateTs:   1429632000000.0,
		Followers:     31096.0,
		PeTTM:         nil,    // upstream null
		DividendYield: "none", // malformed
	}

	rec := NormalizeQuote(raw, now)

	require.Equal(t, "SZ300436", rec.Symbol)
	require.True(t, rec.CurrentPrice.Valid)
	assert.InDelta(t, 51.34, rec.CurrentPrice.Float64, 1e-9)
	require.True(t, rec.Volume.Valid)
	assert.Equal(t, int64(35678826), rec.Volume.Int64)
	require.True(t, rec.RoeTTM.Valid)
	assert.InDelta(t, -40.8265, rec.RoeTTM.Float64, 1e-9)

	// Malformed or absent fields degrade to null, never to an error.
	assert.False(t, rec.PeTTM.Valid)
	assert.False(t, rec.DividendYield.Valid)
	assert.False(t, rec.PbTTM.Valid)

	require.True(t, rec.IssueDate.Valid)
	assert.Equal(t, DateOf(time.UnixMilli(1429632000000)), rec.IssueDate.Time)

	// Record date is the ingestion day, not anything upstream says.
	assert.Equal(t, time.Date(2025, 7, 3, 0, 0, 0, 0, time.Local), rec.RecordDate)
}

func TestNormalizeQuoteRowAlignsWithSchema(t *testing.T) {
	rec := NormalizeQuote(snowball.RawQuote{Symbol: "SH688068"}, time.Now())
	require.Len(t, rec.Row(), 17)
}

func TestNormalizeFinancial(t *testing.T) {
	now := time.Date(2025, 7, 3, 9, 0, 0, 0, time.Local)
	raw := snowball.RawQuote{
		Symbol:        "SZ300436",
		NetProfitCagr: 33.64344403893904,
		Ps:            19.5141,
		Eps:           -1.07,
		TotalShares:   159267000.0,
		LimitupDays:   2.0,
		Type:          11.0,
	}
	rec := NormalizeFinancial(raw, now)

	require.True(t, rec.NetProfitCagr.Valid)
	assert.InDelta(t, 33.6434, rec.NetProfitCagr.Float64, 1e-9)
	require.True(t, rec.TotalShares.Valid)
	assert.Equal(t, int64(159267000), rec.TotalShares.Int64)
	assert.False(t, rec.IncomeCagr.Valid)
	assert.Equal(t, time.Date(2025, 7, 3, 0, 0, 0, 0, time.Local), rec.RecordDate)
}

func TestNormalizeKline(t *testing.T) {
	columns := []string{"timestamp", "volume", "open", "high", "low", "close", "pe"}
	row := []any{1429632000000.0, 1000.0, 10.0, 12.5, 9.8, 12.004, nil}

	rec, ok := NormalizeKline("SZ300436", columns, row)
	require.True(t, ok)
	assert.Equal(t, "SZ300436", rec.Symbol)
	assert.Equal(t, DateOf(time.UnixMilli(1429632000000)), rec.Timestamp)
	require.True(t, rec.Close.Valid)
	assert.InDelta(t, 12.0, rec.Close.Float64, 1e-9)
	assert.False(t, rec.Pe.Valid)
	assert.False(t, rec.Amount.Valid, "columns absent from the feed stay null")
	require.Len(t, rec.Row(), 25)
}

func TestNormalizeKlineRejectsUnkeyedRows(t *testing.T) {
	_, ok := NormalizeKline("SZ300436", []string{"timestamp", "close"}, []any{nil, 12.0})
	assert.False(t, ok, "row without a timestamp cannot satisfy the natural key")

	_, ok = NormalizeKline("", []string{"timestamp", "close"}, []any{1429632000000.0, 12.0})
	assert.False(t, ok, "row without a symbol cannot satisfy the natural key")

	// Short rows are padded with nulls rather than rejected.
	rec, ok := NormalizeKline("SZ300436", []string{"timestamp", "volume", "open"}, []any{1429632000000.0})
	require.True(t, ok)
	assert.False(t, rec.Volume.Valid)
	assert.False(t, rec.Open.Valid)
}
