package repo

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snowfeed/internal/model"
	"snowfeed/internal/store"
)

func TestScreenFilterSQL(t *testing.T) {
	day := time.Date(2025, 7, 3, 15, 30, 0, 0, time.Local)
	filter := ScreenFilter{
		Date:            day,
		MinTurnoverRate: 5,
		MaxPeTTM:        30,
		MinMarketCap:    1_000_000_000,
		Limit:           20,
	}

	query, args := filter.SQL()

	assert.Equal(t,
		"SELECT symbol, record_date, name, current_price, change_pct, change_amt, "+
			"volume, amount, turnover_rate, market_cap, float_market_cap, "+
			"pe_ttm, pb_ttm, roe_ttm, dividend_yield, issue_date, followers "+
			"FROM stock_quotes WHERE record_date = $1 AND turnover_rate >= $2 "+
			"AND pe_ttm > 0 AND pe_ttm <= $3 AND market_cap >= $4 "+
			"ORDER BY change_pct DESC LIMIT $5",
		query)

	require.Len(t, args, 5)
	assert.Equal(t, time.Date(2025, 7, 3, 0, 0, 0, 0, time.Local), args[0], "the date criterion is a calendar day")
	assert.Equal(t, []any{5.0, 30.0, int64(1_000_000_000), 20}, args[1:])
}

func TestScreenFilterSQLDefaults(t *testing.T) {
	query, args := ScreenFilter{}.SQL()

	assert.Contains(t, query, "WHERE record_date = $1 ORDER BY change_pct DESC LIMIT $2")
	require.Len(t, args, 2)
	assert.Equal(t, 100, args[1])

	today, ok := args[0].(time.Time)
	require.True(t, ok)
	assert.Zero(t, today.Hour())
}

// The stubs below satisfy the store interfaces so Screen can run against a
// real pool and session without a database.

type stubTx struct {
	gotSQL    string
	gotArgs   []any
	rows      *stubRows
	queryErr  error
	committed bool
}

func (t *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("SELECT 0"), nil
}

func (t *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	t.gotSQL = sql
	t.gotArgs = args
	if t.queryErr != nil {
		return nil, t.queryErr
	}
	return t.rows, nil
}

func (t *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *stubTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *stubTx) Rollback(ctx context.Context) error { return nil }

type stubConn struct {
	tx *stubTx
}

func (c *stubConn) Begin(ctx context.Context) (store.Tx, error) { return c.tx, nil }
func (c *stubConn) Ping(ctx context.Context) error              { return nil }
func (c *stubConn) Close(ctx context.Context) error             { return nil }

type stubRows struct {
	rows [][]any
	idx  int
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT 1") }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *stubRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *time.Time:
			*p = row[i].(time.Time)
		case *sql.NullString:
			*p = row[i].(sql.NullString)
		case *sql.NullFloat64:
			*p = row[i].(sql.NullFloat64)
		case *sql.NullInt64:
			*p = row[i].(sql.NullInt64)
		case *sql.NullTime:
			*p = row[i].(sql.NullTime)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

func newStubDB(t *testing.T, tx *stubTx) *store.DB {
	t.Helper()
	conn := &stubConn{tx: tx}
	pool, err := store.NewPool(context.Background(),
		func(ctx context.Context) (store.Conn, error) { return conn, nil },
		store.PoolConfig{MinIdle: 1, MaxIdle: 1, MaxTotal: 1})
	require.NoError(t, err)
	return store.NewDB(pool)
}

func TestScreen(t *testing.T) {
	day := time.Date(2025, 7, 3, 0, 0, 0, 0, time.Local)
	want := []model.QuoteRecord{
		{
			Symbol:       "SZ300436",
			RecordDate:   day,
			Name:         sql.NullString{String: "广生堂", Valid: true},
			CurrentPrice: sql.NullFloat64{Float64: 51.34, Valid: true},
			ChangePct:    sql.NullFloat64{Float64: 20.01, Valid: true},
			TurnoverRate: sql.NullFloat64{Float64: 26.1, Valid: true},
			Volume:       sql.NullInt64{Int64: 35678826, Valid: true},
		},
		{
			Symbol:     "SH688068",
			RecordDate: day,
		},
	}
	tx := &stubTx{rows: &stubRows{rows: [][]any{want[0].Row(), want[1].Row()}}}
	quotes := NewQuotesRepo(newStubDB(t, tx))

	got, err := quotes.Screen(context.Background(), ScreenFilter{Date: day, MinTurnoverRate: 5})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Contains(t, tx.gotSQL, "turnover_rate >= $2")
	require.Len(t, tx.gotArgs, 3)
	assert.Equal(t, day, tx.gotArgs[0])
	assert.True(t, tx.committed, "a read-only session still commits")
}

func TestScreenQueryFailure(t *testing.T) {
	tx := &stubTx{queryErr: fmt.Errorf("relation does not exist")}
	quotes := NewQuotesRepo(newStubDB(t, tx))

	_, err := quotes.Screen(context.Background(), ScreenFilter{})
	assert.ErrorContains(t, err, "screen quotes")
}

func TestScreenEmptyDay(t *testing.T) {
	tx := &stubTx{rows: &stubRows{}}
	quotes := NewQuotesRepo(newStubDB(t, tx))

	got, err := quotes.Screen(context.Background(), ScreenFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
