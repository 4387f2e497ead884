/*
Package scanner drives one detection run: list the feed, fetch each unseen filing's primary
document, extract the proposed ticker, compare it with the listed universe and alert on
near-duplicates.

A filing is recorded as processed as soon as its document has been fetched, before the
ticker is extracted. Processing is therefore at-most-once: a filing whose extraction fails
is not retried on later runs.
*/
package scanner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/shanehull/tickerwatch/internal/edgar"
	"github.com/shanehull/tickerwatch/internal/extract"
	"github.com/shanehull/tickerwatch/internal/notify"
	"github.com/shanehull/tickerwatch/internal/similar"
	"github.com/shanehull/tickerwatch/internal/tickers"
	"github.com/shanehull/tickerwatch/internal/types"
)

// DefaultDelay is the pause before each filing fetch.
const DefaultDelay = 5 * time.Second

type FeedReader interface {
	ListRecentFilings(ctx context.Context) ([]types.FilingEntry, error)
}

type DocumentFetcher interface {
	FetchPrimaryDocument(ctx context.Context, indexURL string) (*edgar.Document, error)
}

type TickerLoader interface {
	Load(ctx context.Context) (tickers.Set, error)
}

type Ledger interface {
	IsProcessed(id string) bool
	MarkProcessed(id string) error
}

type Briefer interface {
	Brief(ctx context.Context, proposed string, matches []string, text string) (*types.FilingBrief, error)
}

type Scanner struct {
	feed    FeedReader
	docs    DocumentFetcher
	known   TickerLoader
	ledger  Ledger
	sink    notify.Sink
	briefer Briefer
	delay   time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *log.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDelay sets the pause before each filing fetch.
func WithDelay(d time.Duration) Option {
	return func(s *Scanner) {
		s.delay = d
	}
}

// WithSleep replaces the delay implementation (tests).
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scanner) {
		s.sleep = sleep
	}
}

// WithBriefer attaches a generated brief to every alert.
func WithBriefer(b Briefer) Option {
	return func(s *Scanner) {
		s.briefer = b
	}
}

// WithLogger sets a logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

func New(feed FeedReader, docs DocumentFetcher, known TickerLoader, ledger Ledger, sink notify.Sink, opts ...Option) *Scanner {
	s := &Scanner{
		feed:   feed,
		docs:   docs,
		known:  known,
		ledger: ledger,
		sink:   sink,
		delay:  DefaultDelay,
		sleep:  sleepContext,
		logger: &log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeFetchFailed
	outcomeNoTicker
	outcomeNoMatch
	outcomeAlerted
)

// Run processes the feed once. It returns an error only for failures that make progress
// impossible: the known tickers, the feed, or the ledger.
func (s *Scanner) Run(ctx context.Context) (types.RunSummary, error) {
	var summary types.RunSummary

	known, err := s.known.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load known tickers: %w", err)
	}
	universe := known.Sorted()

	entries, err := s.feed.ListRecentFilings(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list recent filings: %w", err)
	}

	summary.Entries = len(entries)
	s.logger.Info().Int("filings", len(entries)).Msg("Found recent filings")

	for _, entry := range entries {
		result, alert, err := s.processEntry(ctx, entry, universe)
		if err != nil {
			return summary, err
		}

		switch result {
		case outcomeSkipped:
			summary.Skipped++
		case outcomeFetchFailed:
			summary.FetchFailed++
		case outcomeNoTicker:
			summary.NoTicker++
		case outcomeNoMatch:
			summary.NoMatch++
		case outcomeAlerted:
			summary.Alerted++
			summary.Alerts = append(summary.Alerts, *alert)
		}
	}

	return summary, nil
}

func (s *Scanner) processEntry(ctx context.Context, entry types.FilingEntry, universe []string) (outcome, *types.Alert, error) {
	id := entry.AccessionID()
	if s.ledger.IsProcessed(id) {
		s.logger.Info().Str("accession", id).Msg("Already processed, skipping")
		return outcomeSkipped, nil, nil
	}

	if err := s.sleep(ctx, s.delay); err != nil {
		return 0, nil, err
	}

	s.logger.Info().Str("accession", id).Str("updated", entry.Updated).Msg(entry.Title)

	doc, err := s.docs.FetchPrimaryDocument(ctx, entry.IndexURL)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		if errors.Is(err, edgar.ErrNoPrimaryDocument) {
			s.logger.Warn().Str("accession", id).Err(err).Msg("Could not find filing document")
		} else {
			s.logger.Error().Str("accession", id).Err(err).Msg("Could not fetch filing document")
		}
		return outcomeFetchFailed, nil, nil
	}

	if err := s.ledger.MarkProcessed(id); err != nil {
		return 0, nil, err
	}

	text, err := edgar.PlainText(doc.Body)
	if err != nil {
		s.logger.Warn().Str("accession", id).Err(err).Msg("Could not read filing document text")
		return outcomeNoTicker, nil, nil
	}

	res, ok := extract.Find(text)
	for _, rule := range res.Rejected {
		s.logger.Warn().Str("accession", id).Str("rule", rule).Msg("Discarded known bad ticker capture")
	}
	if !ok {
		s.logger.Warn().Str("accession", id).Msg("Ticker not found")
		return outcomeNoTicker, nil, nil
	}
	s.logger.Info().Str("accession", id).Str("ticker", res.Ticker).Str("rule", res.Rule).Msg("Ticker match found")

	matches := similar.FindNearDuplicates(res.Ticker, universe)
	if len(matches) == 0 {
		s.logger.Info().Str("ticker", res.Ticker).Msg("No close matches")
		return outcomeNoMatch, nil, nil
	}

	alert := &types.Alert{
		Filing:      entry,
		AccessionID: id,
		DocumentURL: doc.URL,
		Proposed:    res.Ticker,
		Matches:     matches,
		Context:     res.Snippet,
	}
	s.logger.Warn().Str("ticker", res.Ticker).Str("similar", strings.Join(matches, ", ")).Msg("Proposed ticker resembles listed tickers")

	if s.briefer != nil {
		brief, err := s.briefer.Brief(ctx, res.Ticker, matches, text)
		if err != nil {
			s.logger.Warn().Str("ticker", res.Ticker).Err(err).Msg("Filing brief failed")
		} else {
			alert.Brief = brief
		}
	}

	if err := s.sink.Send(ctx, *alert); err != nil {
		s.logger.Warn().Str("ticker", res.Ticker).Err(err).Msg("Alert delivery failed")
	}
	return outcomeAlerted, alert, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
