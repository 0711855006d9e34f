package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snowfeed/internal/config"
	"snowfeed/internal/ingest"
	"snowfeed/pkg/notify"
)

var configFile = flag.String("f", "etc/snowfeed.yaml", "the config file")

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting snowfeed watcher...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}
	if cfg.Snowball.Value == nil {
		log.Fatal("[main] Snowball config section is required")
	}
	if len(cfg.Watch.Rules) == 0 {
		log.Fatal("[main] No watch rules configured")
	}

	rules := make([]ingest.WatchRule, 0, len(cfg.Watch.Rules))
	for _, rule := range cfg.Watch.Rules {
		rules = append(rules, ingest.WatchRule{Symbol: rule.Symbol, Upper: rule.Upper, Lower: rule.Lower})
	}

	notifier := notify.NewClient(cfg.Notify.DeviceKey, notify.WithURL(cfg.Notify.URL))
	if notifier == nil {
		log.Println("[main] No device key configured, alerts are log-only")
	}

	watcher, err := ingest.NewWatcher(cfg.Snowball.Value.BuildClient(), notifier, rules)
	if err != nil {
		log.Fatalf("[main] Failed to build watcher: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.Watch.IntervalSeconds) * time.Second
	log.Printf("[main] Watching %d rules every %s", len(rules), interval)

	checkOnce(ctx, watcher)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[main] Shutdown requested")
			return
		case <-ticker.C:
			checkOnce(ctx, watcher)
		}
	}
}

func checkOnce(ctx context.Context, watcher *ingest.Watcher) {
	alerts, err := watcher.Check(ctx)
	if err != nil {
		log.Printf("[watch] check failed: %v", err)
		return
	}
	for _, alert := range alerts {
		log.Printf("[watch] %s", alert.Message())
	}
}
