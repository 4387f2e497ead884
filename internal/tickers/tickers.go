/*
Package tickers supplies the universe of already-listed ticker symbols, cached locally and
refreshed wholesale from a remote list once the cache is older than a maximum age.
*/
package tickers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/shanehull/tickerwatch/internal/store"
)

// DefaultMaxAge is how long a cached list is trusted.
const DefaultMaxAge = 30 * 24 * time.Hour

// Set is a set of upper-case ticker symbols.
type Set map[string]struct{}

// NewSet normalizes and deduplicates symbols.
func NewSet(symbols ...string) Set {
	s := make(Set, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym != "" {
			s[sym] = struct{}{}
		}
	}
	return s
}

func (s Set) Contains(symbol string) bool {
	_, ok := s[symbol]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for sym := range s {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Fetcher retrieves a URL body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Provider struct {
	cache     store.Lines
	fetcher   Fetcher
	sourceURL string
	maxAge    time.Duration
	now       func() time.Time
	logger    *log.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides the time source used for cache age.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

// WithLogger sets a logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

func NewProvider(cache store.Lines, fetcher Fetcher, sourceURL string, maxAge time.Duration, opts ...Option) *Provider {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	p := &Provider{
		cache:     cache,
		fetcher:   fetcher,
		sourceURL: sourceURL,
		maxAge:    maxAge,
		now:       time.Now,
		logger:    &log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load returns the known tickers, refreshing the cache first when it is missing or at
// least maxAge old. A failed refresh is an error; the stale cache is not used.
func (p *Provider) Load(ctx context.Context) (Set, error) {
	stale, err := p.isStale()
	if err != nil {
		return nil, err
	}

	if stale {
		if err := p.refresh(ctx); err != nil {
			return nil, err
		}
	}

	lines, err := p.cache.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ticker cache: %w", err)
	}

	set := NewSet(lines...)
	p.logger.Info().Int("tickers", len(set)).Bool("refreshed", stale).Msg("Loaded known tickers")
	return set, nil
}

func (p *Provider) isStale() (bool, error) {
	modTime, ok, err := p.cache.ModTime()
	if err != nil {
		return false, fmt.Errorf("failed to check ticker cache: %w", err)
	}
	if !ok {
		p.logger.Info().Msg("Ticker cache not found")
		return true, nil
	}

	age := p.now().Sub(modTime)
	if age >= p.maxAge {
		p.logger.Info().Dur("age", age).Dur("max_age", p.maxAge).Msg("Ticker cache is stale")
		return true, nil
	}
	return false, nil
}

func (p *Provider) refresh(ctx context.Context) error {
	p.logger.Info().Str("url", p.sourceURL).Msg("Downloading ticker list")

	body, err := p.fetcher.Get(ctx, p.sourceURL)
	if err != nil {
		return fmt.Errorf("failed to download ticker list: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(string(body), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if err := p.cache.ReplaceAll(lines); err != nil {
		return fmt.Errorf("failed to write ticker cache: %w", err)
	}
	return nil
}
