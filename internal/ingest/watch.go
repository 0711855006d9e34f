package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/zeromicro/go-zero/core/logx"

	"snowfeed/pkg/snowball"
)

// RealtimeSource yields current prices for a set of symbols.
type RealtimeSource interface {
	Quotec(ctx context.Context, symbols ...string) ([]snowball.RealtimeQuote, error)
}

// Notifier delivers alert messages to a device.
type Notifier interface {
	Push(ctx context.Context, title, body string) error
}

// WatchRule is one price band for a symbol: alert at or above Upper, or at
// or below Lower. A zero bound is disabled.
type WatchRule struct {
	Symbol string
	Upper  float64
	Lower  float64
}

func (r WatchRule) evaluate(price float64) (Alert, bool) {
	if r.Upper > 0 && price >= r.Upper {
		return Alert{Symbol: r.Symbol, Price: price, Bound: r.Upper, Above: true}, true
	}
	if r.Lower > 0 && price <= r.Lower {
		return Alert{Symbol: r.Symbol, Price: price, Bound: r.Lower}, true
	}
	return Alert{}, false
}

// Alert reports one threshold crossing.
type Alert struct {
	Symbol string
	Price  float64
	Bound  float64
	Above  bool
}

func (a Alert) Message() string {
	direction := "below"
	if a.Above {
		direction = "above"
	}
	return fmt.Sprintf("%s at %.2f, %s %.2f", a.Symbol, a.Price, direction, a.Bound)
}

// Watcher polls realtime quotes and raises an alert when a price leaves its
// configured band. Each rule fires once per excursion and re-arms when the
// price returns inside the band, so a hovering price cannot flood the device.
type Watcher struct {
	source   RealtimeSource
	notifier Notifier
	rules    map[string]WatchRule
	symbols  []string
	fired    map[string]bool
}

// NewWatcher validates the rules and builds a watcher. The notifier may be
// nil; alerts are then only returned to the caller.
func NewWatcher(source RealtimeSource, notifier Notifier, rules []WatchRule) (*Watcher, error) {
	if source == nil {
		return nil, errors.New("ingest: missing realtime source")
	}
	if len(rules) == 0 {
		return nil, errors.New("ingest: no watch rules")
	}
	bySymbol := make(map[string]WatchRule, len(rules))
	for _, rule := range rules {
		if rule.Symbol == "" {
			return nil, errors.New("ingest: watch rule without symbol")
		}
		bySymbol[rule.Symbol] = rule
	}
	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return &Watcher{
		source:   source,
		notifier: notifier,
		rules:    bySymbol,
		symbols:  symbols,
		fired:    make(map[string]bool),
	}, nil
}

// Check fetches one realtime snapshot and evaluates every rule against it.
// A notification failure is logged, not returned; the alert still counts.
func (w *Watcher) Check(ctx context.Context) ([]Alert, error) {
	quotes, err := w.source.Quotec(ctx, w.symbols...)
	if err != nil {
		return nil, fmt.Errorf("ingest: watch fetch: %w", err)
	}

	var alerts []Alert
	for _, quote := range quotes {
		rule, ok := w.rules[quote.Symbol]
		if !ok {
			continue
		}
		price := ToDecimal(quote.Current, 2)
		if !price.Valid {
			continue
		}
		alert, crossing := rule.evaluate(price.Float64)
		if !crossing {
			w.fired[quote.Symbol] = false
			continue
		}
		if w.fired[quote.Symbol] {
			continue
		}
		w.fired[quote.Symbol] = true
		alerts = append(alerts, alert)
		if w.notifier != nil {
			if err := w.notifier.Push(ctx, "price alert", alert.Message()); err != nil {
				logx.WithContext(ctx).Errorf("ingest: watch notify %s: %v", quote.Symbol, err)
			}
		}
	}
	return alerts, nil
}
