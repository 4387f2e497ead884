/*
Package notify delivers near-duplicate ticker alerts to a chat webhook, email and the
console, and prints the end-of-run report.
*/
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shanehull/tickerwatch/internal/types"
)

// Sink delivers one alert.
type Sink interface {
	Send(ctx context.Context, alert types.Alert) error
}

// Fanout sends every alert to each sink and joins their errors. A failing sink does not
// stop delivery to the others.
type Fanout []Sink

func (f Fanout) Send(ctx context.Context, alert types.Alert) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Console writes alerts to w.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Send(_ context.Context, alert types.Alert) error {
	msg := RenderAlert(alert)
	_, err := fmt.Fprintf(c.w, "\n--- ALERT %s ---\n%s", alert.Proposed, msg.Text)
	return err
}

// ReportSummary prints the outcome of a run.
func ReportSummary(w io.Writer, s types.RunSummary, ledgerPath string) {
	fmt.Fprintln(w, "\n===========================================")
	if s.Alerted == 0 {
		fmt.Fprintln(w, "No similar proposed tickers found.")
	} else {
		fmt.Fprintf(w, "⚠️  %d ALERT(S) RAISED\n", s.Alerted)
		for _, a := range s.Alerts {
			fmt.Fprintf(w, "  %s ~ %s (%s)\n", a.Proposed, strings.Join(a.Matches, ", "), a.Filing.Title)
		}
	}
	fmt.Fprintln(w, "===========================================")
	fmt.Fprintf(w, "Entries: %d | already processed: %d | fetch failed: %d | no ticker: %d | no match: %d | alerted: %d\n",
		s.Entries, s.Skipped, s.FetchFailed, s.NoTicker, s.NoMatch, s.Alerted)
	if ledgerPath != "" {
		fmt.Fprintf(w, "Processed filings recorded in %s.\n", ledgerPath)
	}
}
