package snowball

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes upstream access for the quote provider.
type Config struct {
	BaseURL  string `yaml:"base_url"`
	Token    string `yaml:"token"`
	UserID   string `yaml:"user_id"`
	Market   string `yaml:"market"`
	ListType string `yaml:"list_type"`
	PageSize int    `yaml:"page_size"`

	TimeoutRaw string        `yaml:"timeout"`
	Timeout    time.Duration `yaml:"-"`
}

// LoadConfig reads configuration from disk.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snowball config: %w", err)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader constructs a Config from an io.Reader.
func LoadConfigFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snowball config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal snowball config: %w", err)
	}
	if err := cfg.normalise(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalise() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.Token = strings.TrimSpace(os.ExpandEnv(c.Token))
	c.UserID = strings.TrimSpace(os.ExpandEnv(c.UserID))
	if c.Market == "" {
		c.Market = "CN"
	}
	if c.ListType == "" {
		c.ListType = "sh_sz"
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if raw := strings.TrimSpace(c.TimeoutRaw); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("snowball config: invalid timeout %q: %w", raw, err)
		}
		c.Timeout = d
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultHTTPTimeout
	}
	return nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("snowball config: token is required")
	}
	return nil
}

// BuildClient constructs a Client from the configuration.
func (c *Config) BuildClient() *Client {
	opts := []Option{
		WithToken(c.Token, c.UserID),
		WithMarket(c.Market, c.ListType),
		WithPageSize(c.PageSize),
		WithHTTPClient(&http.Client{Timeout: c.Timeout}),
	}
	if c.BaseURL != "" {
		opts = append(opts, WithBaseURL(c.BaseURL))
	}
	return NewClient(opts...)
}
