package cache

import (
	"strings"
	"time"
)

// Namespace is the Redis key prefix for the snowfeed application.
const Namespace = "snowfeed"

// TTLSet normalises cache TTLs from config into time.Duration values.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// NewTTLSet converts TTL seconds into durations, with sensible fallbacks.
func NewTTLSet(short, medium, long int) TTLSet {
	return TTLSet{
		Short:  durationOrDefault(short, time.Minute),
		Medium: durationOrDefault(medium, 10*time.Minute),
		Long:   durationOrDefault(long, time.Hour),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds < 0 {
		return 0
	}
	if seconds == 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts)+1)
	values = append(values, Namespace)
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// QuoteLatestKey stores the freshest observed quote for a symbol.
func QuoteLatestKey(symbol string) string {
	return formatKey("quote", "latest", symbol)
}

// QuoteLatestTTL returns the lifetime for latest-quote mirrors.
func QuoteLatestTTL(ttl TTLSet) time.Duration {
	return ttl.Short
}

// IngestRunKey records the outcome summary of the last ingestion pass.
func IngestRunKey(table string) string {
	return formatKey("ingest", "last_run", table)
}

// IngestRunTTL returns the lifetime for last-run summaries.
func IngestRunTTL(ttl TTLSet) time.Duration {
	return ttl.Long
}
