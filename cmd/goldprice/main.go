package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snowfeed/pkg/goldprice"
)

var (
	monitor  = flag.Bool("m", false, "monitor mode: refresh the price periodically")
	interval = flag.Duration("i", 5*time.Minute, "refresh interval in monitor mode")
	save     = flag.Bool("s", false, "append each observation to the CSV history file")
	file     = flag.String("f", "gold_price_history.csv", "CSV history file path")
	currency = flag.String("c", "CNY", "quote currency")
)

func main() {
	flag.Parse()

	tracker := goldprice.NewTracker()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !*monitor {
		if err := fetchOnce(ctx, tracker); err != nil {
			log.Fatal(err)
		}
		return
	}

	log.Printf("monitoring gold price every %s", *interval)
	if err := fetchOnce(ctx, tracker); err != nil {
		log.Print(err)
	}
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Print("monitor stopped")
			return
		case <-ticker.C:
			if err := fetchOnce(ctx, tracker); err != nil {
				log.Print(err)
			}
		}
	}
}

func fetchOnce(ctx context.Context, tracker *goldprice.Tracker) error {
	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	quote, err := tracker.International(reqCtx, *currency)
	if err != nil {
		return err
	}
	fmt.Printf("%s  XAU/%s  %.2f per ounce  %.2f per gram\n",
		quote.FetchedAt.Format("2006-01-02 15:04:05"), quote.Currency, quote.Price, quote.PriceGram)

	if *save {
		if err := goldprice.AppendCSV(*file, quote); err != nil {
			return err
		}
		fmt.Printf("saved to %s\n", *file)
	}
	return nil
}
