package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snowfeed/internal/cli"
	"snowfeed/internal/config"
	"snowfeed/internal/ingest"
	"snowfeed/internal/svc"
)

var configFile = flag.String("f", "etc/snowfeed.yaml", "the config file")

const klineDelay = 500 * time.Millisecond

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting snowfeed ingestd...")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}
	for _, line := range cli.ConfigSummaryLines(cfg) {
		log.Printf("  - %s", line)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sctx, err := svc.NewServiceContext(ctx, cfg)
	if err != nil {
		// No pool means no persistence at all; fail fast.
		log.Fatalf("[main] Failed to build service context: %v", err)
	}
	defer sctx.Close(context.Background())

	runPass(ctx, sctx)

	interval := time.Duration(cfg.Ingest.IntervalSeconds) * time.Second
	if interval <= 0 {
		log.Println("[main] Single pass complete, exiting")
		return
	}

	log.Printf("[main] Looping every %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[main] Shutdown requested")
			return
		case <-ticker.C:
			runPass(ctx, sctx)
		}
	}
}

// runPass executes one full ingestion cycle: the quote listing, then a kline
// pass per configured symbol. Per-symbol failures are logged and skipped so
// one bad symbol cannot starve the rest of the run.
func runPass(ctx context.Context, sctx *svc.ServiceContext) {
	start := time.Now()

	quoteReport, err := sctx.Ingest.RunQuotes(ctx)
	if err != nil {
		log.Printf("[ingest] quotes pass finished with error: %v", err)
	}
	log.Printf("[ingest] quotes run=%d fetched=%d dropped=%d affected=%d financials=%d",
		quoteReport.RunID, quoteReport.Fetched, quoteReport.Dropped, quoteReport.Affected, quoteReport.FinancialsAffected)

	var klineRows int64
	for _, symbol := range sctx.Config.Ingest.Symbols {
		if ctx.Err() != nil {
			return
		}
		report, err := sctx.Ingest.RunKline(ctx, symbol, sctx.Config.Ingest.KlinePeriod, sctx.Config.Ingest.KlineCount)
		switch {
		case errors.Is(err, ingest.ErrNoData):
			log.Printf("[ingest] kline %s: no data", symbol)
		case err != nil:
			log.Printf("[ingest] kline %s failed: %v", symbol, err)
		default:
			klineRows += report.Affected
		}
		time.Sleep(klineDelay)
	}

	summary := fmt.Sprintf("quotes: %d rows, klines: %d rows, took %s",
		quoteReport.Affected, klineRows, time.Since(start).Round(time.Millisecond))
	log.Printf("[ingest] pass done: %s", summary)

	if pushErr := sctx.Notifier.Push(ctx, "snowfeed ingestion", summary); pushErr != nil {
		log.Printf("[ingest] notify failed: %v", pushErr)
	}
}
