package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"snowfeed/internal/config"
	"snowfeed/internal/repo"
	"snowfeed/internal/store"
)

var (
	configFile  = flag.String("f", "etc/snowfeed.yaml", "the config file")
	date        = flag.String("d", "", "snapshot day as YYYY-MM-DD (default today)")
	minTurnover = flag.Float64("t", 0, "minimum turnover rate percent")
	maxPe       = flag.Float64("pe", 0, "maximum trailing PE (0 disables)")
	minCap      = flag.Int64("mc", 0, "minimum market cap")
	limit       = flag.Int("n", 20, "maximum rows to print")
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if strings.TrimSpace(cfg.Postgres.DSN) == "" {
		log.Fatal("postgres DSN is required")
	}

	filter := repo.ScreenFilter{
		MinTurnoverRate: *minTurnover,
		MaxPeTTM:        *maxPe,
		MinMarketCap:    *minCap,
		Limit:           *limit,
	}
	if *date != "" {
		day, err := time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			log.Fatalf("invalid date %q: %v", *date, err)
		}
		filter.Date = day
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, store.PgxDialer(cfg.Postgres.DSN), store.PoolConfig{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: cfg.Postgres.MaxOpen,
	})
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close(context.Background())

	records, err := repo.NewQuotesRepo(store.NewDB(pool)).Screen(ctx, filter)
	if err != nil {
		log.Fatalf("screen: %v", err)
	}
	if len(records) == 0 {
		fmt.Println("no matches")
		return
	}

	fmt.Printf("%-10s %-10s %10s %8s %10s %12s\n", "symbol", "name", "price", "chg%", "turnover%", "pe_ttm")
	for _, rec := range records {
		fmt.Printf("%-10s %-10s %10s %8s %10s %12s\n",
			rec.Symbol, rec.Name.String,
			fmtFloat(rec.CurrentPrice),
			fmtFloat(rec.ChangePct),
			fmtFloat(rec.TurnoverRate),
			fmtFloat(rec.PeTTM))
	}
}

func fmtFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatFloat(v.Float64, 'f', 2, 64)
}
