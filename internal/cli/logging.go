package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"snowfeed/internal/config"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Pool (minIdle/maxIdle/maxOpen): %d / %d / %d", cfg.Postgres.MinIdle, cfg.Postgres.MaxIdle, cfg.Postgres.MaxOpen),
		fmt.Sprintf("Redis: %s", presence(strings.TrimSpace(cfg.Redis.Host) != "")),
		fmt.Sprintf("Notify: %s", presence(strings.TrimSpace(cfg.Notify.DeviceKey) != "")),
		fmt.Sprintf("TTL (short/medium/long): %ds / %ds / %ds", cfg.TTL.Short, cfg.TTL.Medium, cfg.TTL.Long),
		fmt.Sprintf("Kline symbols: %d (%s/%d)", len(cfg.Ingest.Symbols), cfg.Ingest.KlinePeriod, cfg.Ingest.KlineCount),
		snowballLine(cfg),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func snowballLine(cfg *config.Config) string {
	switch {
	case strings.TrimSpace(cfg.Snowball.File) != "":
		return fmt.Sprintf("Snowball config: %s", cfg.Snowball.File)
	case cfg.Snowball.Value != nil:
		return "Snowball config: inline"
	default:
		return "Snowball config: not configured"
	}
}
