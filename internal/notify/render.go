package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/shanehull/tickerwatch/internal/types"
)

// RenderedMessage is an alert formatted for delivery.
type RenderedMessage struct {
	Subject string
	Text    string
	HTML    string
}

var alertHTML = template.Must(template.New("alert").Parse(alertHTMLTemplate))

// RenderAlert formats an alert as a subject and plain text body.
func RenderAlert(a types.Alert) RenderedMessage {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("⚠️ Proposed ticker: %s - Similar existing tickers: %s\n", a.Proposed, strings.Join(a.Matches, ", ")))
	if a.Filing.Title != "" {
		sb.WriteString(fmt.Sprintf("Filing: %s\n", a.Filing.Title))
	}
	if a.Filing.Updated != "" {
		sb.WriteString(fmt.Sprintf("Updated: %s\n", a.Filing.Updated))
	}
	if a.Filing.IndexURL != "" {
		sb.WriteString(fmt.Sprintf("Index: %s\n", a.Filing.IndexURL))
	}
	if a.DocumentURL != "" {
		sb.WriteString(fmt.Sprintf("Document: %s\n", a.DocumentURL))
	}
	if a.Context != "" {
		sb.WriteString(fmt.Sprintf("Context: %s\n", a.Context))
	}

	if b := a.Brief; b != nil {
		if b.Company != "" {
			sb.WriteString(fmt.Sprintf("Company: %s\n", b.Company))
		}
		if b.ListingVenue != "" {
			sb.WriteString(fmt.Sprintf("Listing venue: %s\n", b.ListingVenue))
		}
		for _, s := range b.Summary {
			sb.WriteString(fmt.Sprintf("• %s\n", s))
		}
	}

	return RenderedMessage{
		Subject: fmt.Sprintf("Ticker Alert: %s resembles %s", a.Proposed, strings.Join(a.Matches, ", ")),
		Text:    sb.String(),
	}
}

// RenderAlertHTML adds an HTML body to the plain text rendering.
func RenderAlertHTML(a types.Alert) (RenderedMessage, error) {
	msg := RenderAlert(a)

	var buf bytes.Buffer
	if err := alertHTML.Execute(&buf, a); err != nil {
		return msg, fmt.Errorf("failed to render HTML template: %w", err)
	}
	msg.HTML = buf.String()
	return msg, nil
}

const alertHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <title>{{.Proposed}}</title>
  <style>
    body { margin: 0; padding: 24px; background-color: #f3f4f6; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; color: #111827; }
    .container { max-width: 640px; margin: 0 auto; background: #ffffff; border-radius: 8px; border: 1px solid #e5e7eb; overflow: hidden; }
    .header { padding: 20px 24px; background: linear-gradient(135deg, #463737 0%, #37393b 100%); color: #ffffff; }
    .ticker { font-size: 24px; font-weight: 700; letter-spacing: 0.05em; }
    .section { padding: 16px 24px; border-top: 1px solid #f3f4f6; font-size: 14px; }
    .section-title { font-size: 11px; font-weight: 700; color: #6b7280; text-transform: uppercase; letter-spacing: 0.1em; margin-bottom: 12px; }
    .match-tag { display: inline-block; padding: 3px 10px; font-size: 12px; font-weight: 600; background: #fef3c7; color: #92400e; border-radius: 4px; }
    a { color: #0b3d91; text-decoration: none; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="ticker">{{.Proposed}}</div>
      <div>{{.Filing.Title}}</div>
    </div>
    <div class="section">
      <div class="section-title">Similar Listed Tickers</div>
      {{range .Matches}}<span class="match-tag">{{.}}</span> {{end}}
    </div>
    <div class="section">
      <div class="section-title">Filing</div>
      <div>Updated: {{.Filing.Updated}}</div>
      <div><a href="{{.Filing.IndexURL}}" target="_blank" rel="noopener">Filing index</a></div>
      {{if .DocumentURL}}<div><a href="{{.DocumentURL}}" target="_blank" rel="noopener">Registration statement</a></div>{{end}}
    </div>
    {{if .Context}}
    <div class="section">
      <div class="section-title">Declared In</div>
      <blockquote>{{.Context}}</blockquote>
    </div>
    {{end}}
    {{if .Brief}}
    <div class="section">
      <div class="section-title">{{if .Brief.Company}}{{.Brief.Company}}{{else}}Summary{{end}}</div>
      <ul>{{range .Brief.Summary}}<li>{{.}}</li>{{end}}</ul>
    </div>
    {{end}}
  </div>
</body>
</html>`
