/*
Package config builds the immutable run configuration from viper.

Values come from tickerwatch.yaml, TICKERWATCH_* environment variables and command-line
flags, in viper's usual precedence. The Config returned by Load is read-only: components
receive the pieces they need at construction time.
*/
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/shanehull/tickerwatch/internal/notify"
)

// Default values for optional configuration fields.
const (
	DefaultFeedURL            = "https://www.sec.gov/cgi-bin/browse-edgar?action=getcurrent&type=S-1&output=atom"
	DefaultTickerSourceURL    = "https://raw.githubusercontent.com/rreichel3/US-Stock-Symbols/main/all/all_tickers.txt"
	DefaultLedgerPath         = "processed_filings.txt"
	DefaultTickerCachePath    = "tickers_cache.txt"
	DefaultCacheMaxAgeSeconds = 30 * 24 * 60 * 60
	DefaultFetchDelay         = 5 * time.Second
	DefaultRequestsPerSecond  = 10
	DefaultHTTPTimeout        = 60 * time.Second
	DefaultDocumentType       = "S-1"
	DefaultSchedule           = "*/15 * * * *"
	DefaultSMTPServer         = "smtp.gmail.com"
	DefaultSMTPPort           = 587
	DefaultGeminiModel        = "gemini-2.5-flash"
)

// Config is the full run configuration.
type Config struct {
	FeedURL            string            `mapstructure:"feed_url" validate:"required,url"`
	WebhookURL         string            `mapstructure:"webhook_url" validate:"omitempty,url"`
	LedgerPath         string            `mapstructure:"ledger_path" validate:"required"`
	TickerCachePath    string            `mapstructure:"ticker_cache_path" validate:"required"`
	TickerSourceURL    string            `mapstructure:"ticker_source_url" validate:"required,url"`
	CacheMaxAgeSeconds int               `mapstructure:"cache_max_age_seconds" validate:"gte=0"`
	UserAgent          string            `mapstructure:"user_agent"`
	Headers            map[string]string `mapstructure:"headers"`
	FetchDelay         time.Duration     `mapstructure:"fetch_delay" validate:"gte=0"`
	RequestsPerSecond  float64           `mapstructure:"requests_per_second" validate:"gt=0"`
	HTTPTimeout        time.Duration     `mapstructure:"http_timeout" validate:"gt=0"`
	DocumentType       string            `mapstructure:"document_type" validate:"required"`
	Schedule           string            `mapstructure:"schedule"`
	SMTP               SMTPConfig        `mapstructure:"smtp"`
	Gemini             GeminiConfig      `mapstructure:"gemini"`
}

// SMTPConfig configures the optional email channel.
type SMTPConfig struct {
	Server string `mapstructure:"server"`
	Port   int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User   string `mapstructure:"user"`
	Pass   string `mapstructure:"pass"`
	From   string `mapstructure:"from" validate:"omitempty,email"`
	To     string `mapstructure:"to" validate:"omitempty,email"`
}

// GeminiConfig configures the optional filing brief.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// SetDefaults registers default values on v.
// Keys without a meaningful default are registered empty so AutomaticEnv can fill them
// during Unmarshal.
func SetDefaults(v *viper.Viper) {
	for _, key := range []string{"webhook_url", "user_agent", "smtp.user", "smtp.pass", "smtp.from", "smtp.to", "gemini.api_key"} {
		v.SetDefault(key, "")
	}
	v.SetDefault("feed_url", DefaultFeedURL)
	v.SetDefault("ticker_source_url", DefaultTickerSourceURL)
	v.SetDefault("ledger_path", DefaultLedgerPath)
	v.SetDefault("ticker_cache_path", DefaultTickerCachePath)
	v.SetDefault("cache_max_age_seconds", DefaultCacheMaxAgeSeconds)
	v.SetDefault("fetch_delay", DefaultFetchDelay)
	v.SetDefault("requests_per_second", DefaultRequestsPerSecond)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("document_type", DefaultDocumentType)
	v.SetDefault("schedule", DefaultSchedule)
	v.SetDefault("smtp.server", DefaultSMTPServer)
	v.SetDefault("smtp.port", DefaultSMTPPort)
	v.SetDefault("gemini.model", DefaultGeminiModel)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and that requests will identify themselves.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.RequestHeaders().Get("User-Agent") == "" {
		return errors.New("invalid config: user_agent is required (SEC rejects anonymous requests)")
	}
	return nil
}

// RequestHeaders merges the configured headers with the user agent. An explicit
// user_agent wins over a User-Agent entry in headers.
func (c *Config) RequestHeaders() http.Header {
	h := make(http.Header, len(c.Headers)+1)
	for k, v := range c.Headers {
		h.Set(k, v)
	}
	if ua := strings.TrimSpace(c.UserAgent); ua != "" {
		h.Set("User-Agent", ua)
	}
	return h
}

// HeaderMap flattens RequestHeaders for httpclient.Options.
func (c *Config) HeaderMap() map[string]string {
	h := c.RequestHeaders()
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

// CacheMaxAge is the ticker cache staleness window.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CacheMaxAgeSeconds) * time.Second
}

// Email maps the smtp section onto the notifier's configuration.
func (c *Config) Email() notify.EmailConfig {
	return notify.EmailConfig{
		SMTPServer: c.SMTP.Server,
		SMTPPort:   c.SMTP.Port,
		SMTPUser:   c.SMTP.User,
		SMTPPass:   c.SMTP.Pass,
		FromEmail:  c.SMTP.From,
		ToEmail:    c.SMTP.To,
	}
}
