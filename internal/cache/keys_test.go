package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLayout(t *testing.T) {
	assert.Equal(t, "snowfeed:quote:latest:SZ300436", QuoteLatestKey("SZ300436"))
	assert.Equal(t, "snowfeed:quote:latest", QuoteLatestKey("  "), "blank segments are dropped")
	assert.Equal(t, "snowfeed:ingest:last_run:stock_quotes", IngestRunKey("stock_quotes"))
}

func TestNewTTLSet(t *testing.T) {
	ttl := NewTTLSet(30, 300, 7200)
	assert.Equal(t, 30*time.Second, ttl.Short)
	assert.Equal(t, 5*time.Minute, ttl.Medium)
	assert.Equal(t, 2*time.Hour, ttl.Long)

	defaults := NewTTLSet(0, 0, 0)
	assert.Equal(t, time.Minute, defaults.Short)
	assert.Equal(t, 10*time.Minute, defaults.Medium)
	assert.Equal(t, time.Hour, defaults.Long)

	disabled := NewTTLSet(-1, -1, -1)
	assert.Zero(t, disabled.Short)
	assert.Zero(t, disabled.Medium)
	assert.Zero(t, disabled.Long)
}

func TestTTLSelectors(t *testing.T) {
	ttl := NewTTLSet(30, 300, 7200)
	assert.Equal(t, ttl.Short, QuoteLatestTTL(ttl))
	assert.Equal(t, ttl.Long, IngestRunTTL(ttl))
}
