package types

import (
	"path"
	"strings"
)

// FilingEntry is one entry of the current-filings feed.
type FilingEntry struct {
	Title    string
	IndexURL string
	Updated  string
}

// AccessionID derives the filing's accession number from its index URL, e.g.
// ".../000123456725000001/0001234567-25-000001-index.htm" -> "0001234567-25-000001".
func AccessionID(indexURL string) string {
	base := indexURL
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = path.Base(base)
	base = strings.TrimSuffix(base, "-index.html")
	return strings.TrimSuffix(base, "-index.htm")
}

// AccessionID of the entry.
func (e FilingEntry) AccessionID() string {
	return AccessionID(e.IndexURL)
}

// Alert is raised when a proposed ticker is a near-duplicate of listed tickers.
type Alert struct {
	Filing      FilingEntry
	AccessionID string
	DocumentURL string
	Proposed    string
	Matches     []string
	Context     string
	Brief       *FilingBrief
}

// FilingBrief is an optional generated summary attached to an alert.
type FilingBrief struct {
	Company      string   `json:"company"`
	Summary      []string `json:"summary"`
	ListingVenue string   `json:"listing_venue"`
}

// RunSummary counts the terminal state of every feed entry seen by one run.
type RunSummary struct {
	Entries     int
	Skipped     int
	FetchFailed int
	NoTicker    int
	NoMatch     int
	Alerted     int
	Alerts      []Alert
}
