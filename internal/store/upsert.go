package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Table describes a destination table for batch upserts. Columns is the
// authoritative insert order: placeholders, row values and the conflict
// update clause are all derived from it, never from map iteration. Key lists
// the natural-key columns; they decide conflicts and are never updated.
type Table struct {
	Name    string
	Columns []string
	Key     []string
}

func (t Table) isKey(col string) bool {
	for _, k := range t.Key {
		if k == col {
			return true
		}
	}
	return false
}

// UpsertSQL renders the parameterized insert-or-update statement for one row.
func (t Table) UpsertSQL() string {
	placeholders := make([]string, len(t.Columns))
	for i := range t.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	updates := make([]string, 0, len(t.Columns)-len(t.Key))
	for _, col := range t.Columns {
		if t.isKey(col) {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		t.Name,
		strings.Join(t.Columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(t.Key, ", "),
		strings.Join(updates, ", "),
	)
}

// Upsert writes all rows through a single scoped session, one queued
// statement per row in one batch round trip, and reports the summed affected
// row count (inserts and conflict updates both count). Empty input is a
// zero-row no-op.
func (d *DB) Upsert(ctx context.Context, table Table, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for i, row := range rows {
		if len(row) != len(table.Columns) {
			return 0, fmt.Errorf("store: %s row %d has %d values, want %d", table.Name, i, len(row), len(table.Columns))
		}
	}

	stmt := table.UpsertSQL()
	var affected int64
	err := d.WithSession(ctx, func(ctx context.Context, cur Cursor) error {
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(stmt, row...)
		}
		results := cur.SendBatch(ctx, batch)
		for range rows {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return fmt.Errorf("store: upsert %s: %w", table.Name, err)
			}
			affected += tag.RowsAffected()
		}
		return results.Close()
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
