package snowball

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://stock.xueqiu.com"
	defaultHTTPTimeout = 10 * time.Second

	// DefaultPageSize is the fixed screener page size; a page shorter than
	// this is the pagination exhaustion signal.
	DefaultPageSize = 30

	quoteListPath = "/v5/stock/screener/quote/list.json"
	klinePath     = "/v5/stock/chart/kline.json"
	realtimePath  = "/v5/stock/realtime/quotec.json"
)

// Client talks to the Xueqiu quote endpoints. All calls are single-attempt
// and bounded by the injected http.Client timeout; a failed page is the
// caller's decision to retry, never the transport's.
type Client struct {
	baseURL    string
	token      string
	userID     string
	market     string
	listType   string
	pageSize   int
	httpClient *http.Client
}

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default API origin.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sets the xq_a_token session cookie value.
func WithToken(token, userID string) Option {
	return func(c *Client) {
		c.token = token
		c.userID = userID
	}
}

// WithMarket scopes the screener listing (e.g. "CN", "sh_sz").
func WithMarket(market, listType string) Option {
	return func(c *Client) {
		if market != "" {
			c.market = market
		}
		if listType != "" {
			c.listType = listType
		}
	}
}

// WithPageSize adjusts the screener page size.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// NewClient constructs a quote API client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		market:     "CN",
		listType:   "sh_sz",
		pageSize:   DefaultPageSize,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// PageSize reports the configured screener page size.
func (c *Client) PageSize() int { return c.pageSize }

func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("snowball: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://xueqiu.com/")
	if c.token != "" {
		cookie := "xq_a_token=" + c.token
		if c.userID != "" {
			cookie += ";u=" + c.userID
		}
		req.Header.Set("Cookie", cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("snowball: %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("snowball: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("snowball: %s: http status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("snowball: decode response: %w", err)
		}
	}
	return nil
}

// QuotePage fetches one screener page, ordered by daily change percent
// descending. An empty page is a valid result: it means the listing is
// exhausted, not that the call failed.
func (c *Client) QuotePage(ctx context.Context, page int) ([]RawQuote, error) {
	if page < 1 {
		return nil, fmt.Errorf("snowball: page must be >= 1, got %d", page)
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(c.pageSize))
	params.Set("order", "desc")
	params.Set("order_by", "percent")
	params.Set("market", c.market)
	params.Set("type", c.listType)

	var env quoteListEnvelope
	if err := c.get(ctx, quoteListPath, params, &env); err != nil {
		return nil, err
	}
	if env.ErrorCode != 0 {
		return nil, fmt.Errorf("snowball: quote list error %d: %s", env.ErrorCode, env.ErrorDescription)
	}
	return env.Data.List, nil
}

// Kline fetches up to count candles for symbol, walking backwards from now.
// The returned envelope may still report "no data" via its error code.
func (c *Client) Kline(ctx context.Context, symbol, period string, count int) (*KlineEnvelope, error) {
	if symbol == "" {
		return nil, fmt.Errorf("snowball: symbol is required")
	}
	if period == "" {
		period = "day"
	}
	if count <= 0 {
		count = 284
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("begin", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("period", period)
	params.Set("type", "before")
	params.Set("count", strconv.Itoa(-count))
	params.Set("indicator", "kline")

	var env KlineEnvelope
	if err := c.get(ctx, klinePath, params, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// Quotec returns realtime quotes for the given symbols.
func (c *Client) Quotec(ctx context.Context, symbols ...string) ([]RealtimeQuote, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("snowball: at least one symbol is required")
	}
	params := url.Values{}
	params.Set("symbol", strings.Join(symbols, ","))

	var env realtimeEnvelope
	if err := c.get(ctx, realtimePath, params, &env); err != nil {
		return nil, err
	}
	if env.ErrorCode != 0 {
		return nil, fmt.Errorf("snowball: quotec error %d: %s", env.ErrorCode, env.ErrorDescription)
	}
	return env.Data, nil
}
