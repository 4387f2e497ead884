package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shanehull/tickerwatch/internal/httpclient"
	"github.com/shanehull/tickerwatch/internal/types"
)

// Poster sends a JSON body.
type Poster interface {
	PostJSON(ctx context.Context, url string, v any) (*httpclient.Response, error)
}

// Webhook posts {"text": ...} to a Slack-style incoming webhook.
type Webhook struct {
	client Poster
	url    string
}

func NewWebhook(client Poster, url string) *Webhook {
	return &Webhook{client: client, url: url}
}

type webhookPayload struct {
	Text string `json:"text"`
}

// Send returns an error on transport failure or any status other than 200. It never
// retries.
func (w *Webhook) Send(ctx context.Context, alert types.Alert) error {
	msg := RenderAlert(alert)

	resp, err := w.client.PostJSON(ctx, w.url, webhookPayload{Text: msg.Text})
	if err != nil {
		return fmt.Errorf("webhook notification failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook notification failed: %d - %s", resp.StatusCode, resp.Body)
	}
	return nil
}
