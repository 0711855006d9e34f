package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snowfeed/internal/config"
)

func TestConfigSummaryLines(t *testing.T) {
	cfg := &config.Config{
		Env: "dev",
		Postgres: config.PostgresConf{
			DSN:     "postgres://snowfeed@localhost:5432/snowfeed",
			MinIdle: 2, MaxIdle: 5, MaxOpen: 10,
		},
		TTL: config.CacheTTL{Short: 60, Medium: 600, Long: 3600},
		Ingest: config.IngestConf{
			Symbols:     []string{"SZ300436", "SH688068"},
			KlinePeriod: "week",
			KlineCount:  284,
		},
	}

	lines := ConfigSummaryLines(cfg)
	joined := strings.Join(lines, "\n")

	assert.Contains(t, joined, "Environment: dev")
	assert.Contains(t, joined, "Postgres: configured")
	assert.Contains(t, joined, "Pool (minIdle/maxIdle/maxOpen): 2 / 5 / 10")
	assert.Contains(t, joined, "Redis: not configured")
	assert.Contains(t, joined, "Notify: not configured")
	assert.Contains(t, joined, "Kline symbols: 2 (week/284)")
	assert.Contains(t, joined, "Snowball config: not configured")
	assert.NotContains(t, joined, "snowfeed@localhost", "summaries never leak the DSN")
}

func TestConfigSummaryLinesNil(t *testing.T) {
	lines := ConfigSummaryLines(nil)
	require.Len(t, lines, 1)
	assert.Equal(t, "Configuration: <nil>", lines[0])
}
