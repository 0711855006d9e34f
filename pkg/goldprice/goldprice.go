// Package goldprice fetches the international gold price quoted in CNY and
// optionally appends snapshots to a CSV history file.
package goldprice

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL     = "https://data-asg.goldprice.org"
	defaultHTTPTimeout = 10 * time.Second

	// gramsPerTroyOunce converts the per-ounce quote to a per-gram price.
	gramsPerTroyOunce = 31.1035
)

// Quote is one observed gold price.
type Quote struct {
	Price     float64   // per troy ounce
	PriceGram float64   // per gram
	Currency  string
	FetchedAt time.Time
}

// Tracker polls the goldprice.org rates endpoint.
type Tracker struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a new Tracker.
type Option func(*Tracker)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(t *Tracker) {
		if hc != nil {
			t.httpClient = hc
		}
	}
}

// WithBaseURL overrides the rates endpoint origin.
func WithBaseURL(u string) Option {
	return func(t *Tracker) {
		if u != "" {
			t.baseURL = u
		}
	}
}

// NewTracker builds a gold price tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type ratesEnvelope struct {
	Items []struct {
		XauPrice float64 `json:"xauPrice"`
	} `json:"items"`
}

// International fetches the current XAU price in the given currency
// (e.g. "CNY").
func (t *Tracker) International(ctx context.Context, currency string) (*Quote, error) {
	if currency == "" {
		currency = "CNY"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/dbXRates/"+currency, nil)
	if err != nil {
		return nil, fmt.Errorf("goldprice: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("goldprice: fetch: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("goldprice: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("goldprice: http status %d", resp.StatusCode)
	}

	var env ratesEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("goldprice: decode response: %w", err)
	}
	if len(env.Items) == 0 {
		return nil, fmt.Errorf("goldprice: empty rates payload")
	}

	price := env.Items[0].XauPrice
	return &Quote{
		Price:     price,
		PriceGram: price / gramsPerTroyOunce,
		Currency:  currency,
		FetchedAt: time.Now(),
	}, nil
}

var csvHeader = []string{"time", "currency", "price_ounce", "price_gram"}

// AppendCSV appends a quote to the history file, writing the header first
// when the file is new.
func AppendCSV(path string, q *Quote) error {
	if q == nil {
		return fmt.Errorf("goldprice: nil quote")
	}
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("goldprice: open history: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("goldprice: write header: %w", err)
		}
	}
	row := []string{
		q.FetchedAt.Format(time.RFC3339),
		q.Currency,
		strconv.FormatFloat(q.Price, 'f', 2, 64),
		strconv.FormatFloat(q.PriceGram, 'f', 2, 64),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("goldprice: write row: %w", err)
	}
	w.Flush()
	return w.Error()
}
