// Package notify delivers push notifications through a Bark-compatible
// endpoint. Delivery is best effort: ingestion outcomes never depend on it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultURL is the public Bark push endpoint.
	DefaultURL = "https://api.day.app/push"

	defaultHTTPTimeout = 5 * time.Second
)

// Client posts (title, body) pairs to a device.
type Client struct {
	url        string
	deviceKey  string
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

// WithURL overrides the push endpoint.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// NewClient builds a push client for the given device. Returns nil when the
// device key is empty so call sites can treat notification as optional.
func NewClient(deviceKey string, opts ...Option) *Client {
	deviceKey = strings.TrimSpace(deviceKey)
	if deviceKey == "" {
		return nil
	}
	client := &Client{
		url:        DefaultURL,
		deviceKey:  deviceKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type pushPayload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	DeviceKey string `json:"device_key"`
}

// Push sends one notification. A nil client drops the message silently.
func (c *Client) Push(ctx context.Context, title, body string) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(pushPayload{Title: title, Body: body, DeviceKey: c.deviceKey})
	if err != nil {
		return fmt.Errorf("notify: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: push: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: push: http status %d", resp.StatusCode)
	}
	return nil
}
