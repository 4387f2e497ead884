package main

import (
	"context"
	"io"

	"github.com/phuslu/log"

	"github.com/shanehull/tickerwatch/internal/ai"
	"github.com/shanehull/tickerwatch/internal/config"
	"github.com/shanehull/tickerwatch/internal/edgar"
	"github.com/shanehull/tickerwatch/internal/history"
	"github.com/shanehull/tickerwatch/internal/httpclient"
	"github.com/shanehull/tickerwatch/internal/notify"
	"github.com/shanehull/tickerwatch/internal/scanner"
	"github.com/shanehull/tickerwatch/internal/store"
	"github.com/shanehull/tickerwatch/internal/tickers"
)

// secClient carries the identifying headers and the fair-access rate cap.
func secClient(cfg *config.Config) *httpclient.Client {
	return httpclient.New(httpclient.Options{
		Headers:           cfg.HeaderMap(),
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	})
}

func tickerProvider(cfg *config.Config, hc *httpclient.Client, logger *log.Logger) *tickers.Provider {
	return tickers.NewProvider(
		store.NewFile(cfg.TickerCachePath),
		hc,
		cfg.TickerSourceURL,
		cfg.CacheMaxAge(),
		tickers.WithLogger(logger),
	)
}

// alertSinks always prints to out; webhook and email are added when configured.
func alertSinks(cfg *config.Config, out io.Writer) notify.Fanout {
	sinks := notify.Fanout{notify.NewConsole(out)}
	if cfg.WebhookURL != "" {
		hc := httpclient.New(httpclient.Options{Timeout: cfg.HTTPTimeout})
		sinks = append(sinks, notify.NewWebhook(hc, cfg.WebhookURL))
	}
	if email := cfg.Email(); email.Enabled() {
		sinks = append(sinks, notify.NewEmailSender(email))
	}
	return sinks
}

// newScanner wires a Scanner for a single run. The ledger is reopened each time so a
// long-lived watch process picks up edits made to the file between runs.
func newScanner(ctx context.Context, cfg *config.Config, out io.Writer, logger *log.Logger) (*scanner.Scanner, error) {
	hc := secClient(cfg)
	filings := edgar.New(hc, cfg.FeedURL, cfg.DocumentType, logger)

	ledger, err := history.Open(store.NewFile(cfg.LedgerPath), logger)
	if err != nil {
		return nil, err
	}

	opts := []scanner.Option{
		scanner.WithDelay(cfg.FetchDelay),
		scanner.WithLogger(logger),
	}
	if cfg.Gemini.APIKey != "" {
		briefer, err := ai.NewBriefer(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scanner.WithBriefer(briefer))
	}

	return scanner.New(
		filings,
		filings,
		tickerProvider(cfg, hc, logger),
		ledger,
		alertSinks(cfg, out),
		opts...,
	), nil
}
