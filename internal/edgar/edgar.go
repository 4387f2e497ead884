/*
Package edgar reads the SEC EDGAR current-filings feed and retrieves the primary offering
document of each filing.
*/
package edgar

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/phuslu/log"
	"golang.org/x/net/html/charset"

	"github.com/shanehull/tickerwatch/internal/httpclient"
	"github.com/shanehull/tickerwatch/internal/types"
)

const (
	// DefaultDocumentType is the document type prefix of a registration statement.
	DefaultDocumentType = "S-1"

	documentTableSelector = "table.tableFile"
	inlineViewerMarker    = "ix?doc="
)

// ErrNoPrimaryDocument means the filing index has no document table or no row of the
// wanted type. It is an expected outcome, not a transport failure.
var ErrNoPrimaryDocument = errors.New("no primary document in filing index")

type Client struct {
	http         *httpclient.Client
	feedURL      string
	documentType string
	logger       *log.Logger
}

// New returns a client reading feedURL. documentType defaults to DefaultDocumentType.
func New(hc *httpclient.Client, feedURL, documentType string, logger *log.Logger) *Client {
	if documentType == "" {
		documentType = DefaultDocumentType
	}
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Client{
		http:         hc,
		feedURL:      feedURL,
		documentType: strings.ToUpper(documentType),
		logger:       logger,
	}
}

type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title   string     `xml:"title"`
	Links   []atomLink `xml:"link"`
	Updated string     `xml:"updated"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// ListRecentFilings fetches the feed and returns its entries in feed order. Any network
// or structural problem is an error.
func (c *Client) ListRecentFilings(ctx context.Context) ([]types.FilingEntry, error) {
	body, err := c.http.Get(ctx, c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filings feed: %w", err)
	}
	return ParseFeed(body)
}

// ParseFeed decodes an Atom document into filing entries. EDGAR declares ISO-8859-1, so
// the declared charset is honoured.
func ParseFeed(data []byte) ([]types.FilingEntry, error) {
	var feed atomFeed
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to parse filings feed: %w", err)
	}

	entries := make([]types.FilingEntry, 0, len(feed.Entries))
	for i, e := range feed.Entries {
		href := e.link()
		if href == "" {
			return nil, fmt.Errorf("failed to parse filings feed: entry %d (%q) has no link", i, strings.TrimSpace(e.Title))
		}
		entries = append(entries, types.FilingEntry{
			Title:    strings.TrimSpace(e.Title),
			IndexURL: href,
			Updated:  strings.TrimSpace(e.Updated),
		})
	}
	return entries, nil
}

func (e atomEntry) link() string {
	for _, l := range e.Links {
		if l.Href != "" && (l.Rel == "" || l.Rel == "alternate") {
			return strings.TrimSpace(l.Href)
		}
	}
	for _, l := range e.Links {
		if l.Href != "" {
			return strings.TrimSpace(l.Href)
		}
	}
	return ""
}

// Document is the primary document selected from a filing index.
type Document struct {
	URL  string
	Name string
	Type string
	Body string
}

// FetchPrimaryDocumentText returns the raw text of the filing's primary document.
func (c *Client) FetchPrimaryDocumentText(ctx context.Context, indexURL string) (string, error) {
	doc, err := c.FetchPrimaryDocument(ctx, indexURL)
	if err != nil {
		return "", err
	}
	return doc.Body, nil
}

// FetchPrimaryDocument locates the first document of the configured type on the filing
// index page and downloads it.
func (c *Client) FetchPrimaryDocument(ctx context.Context, indexURL string) (*Document, error) {
	c.logger.Info().Str("url", indexURL).Msg("Fetching filing index page")

	body, err := c.http.Get(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filing index: %w", err)
	}

	doc, err := FindPrimaryDocument(body, indexURL, c.documentType)
	if err != nil {
		return nil, err
	}
	c.logger.Info().Str("document", doc.Name).Str("type", doc.Type).Str("url", doc.URL).Msg("Using primary document")

	text, err := c.http.Get(ctx, doc.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch primary document: %w", err)
	}
	doc.Body = string(text)
	return doc, nil
}

// FindPrimaryDocument scans the document table of an index page for the first row whose
// type starts with documentType and resolves its link against indexURL.
func FindPrimaryDocument(indexPage []byte, indexURL, documentType string) (*Document, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("invalid filing index URL %s: %w", indexURL, err)
	}

	page, err := goquery.NewDocumentFromReader(bytes.NewReader(indexPage))
	if err != nil {
		return nil, fmt.Errorf("failed to parse filing index: %w", err)
	}

	table := page.Find(documentTableSelector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no document table", ErrNoPrimaryDocument)
	}

	prefix := strings.ToUpper(documentType)
	var found *Document
	var resolveErr error

	table.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		// Row 0 is the header.
		if i == 0 {
			return true
		}
		cells := row.Find("td")
		if cells.Length() < 4 {
			return true
		}

		link := cells.Eq(2).Find("a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		docType := strings.ToUpper(strings.TrimSpace(cells.Eq(3).Text()))
		if !strings.HasPrefix(docType, prefix) {
			return true
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			resolveErr = fmt.Errorf("invalid document link %q: %w", href, err)
			return false
		}

		found = &Document{
			URL:  directDocumentURL(base.ResolveReference(ref).String()),
			Name: strings.TrimSpace(link.Text()),
			Type: docType,
		}
		return false
	})

	if resolveErr != nil {
		return nil, resolveErr
	}
	if found == nil {
		return nil, fmt.Errorf("%w: no %s document in table", ErrNoPrimaryDocument, prefix)
	}
	return found, nil
}

// directDocumentURL rewrites an inline XBRL viewer link ("/ix?doc=/Archives/...") to the
// raw document path; the viewer serves a JavaScript wrapper, not the filing text.
func directDocumentURL(u string) string {
	if !strings.Contains(u, inlineViewerMarker) {
		return u
	}
	return strings.Replace(u, inlineViewerMarker+"/", "", 1)
}
