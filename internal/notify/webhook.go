package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookConfig configures the webhook notifier.
type WebhookConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// Webhook posts each message as JSON to an HTTP endpoint (a mail relay, chat bot, ...).
type Webhook struct {
	httpClient *resty.Client
	url        string
}

// NewWebhook builds a resty-backed notifier.
func NewWebhook(cfg WebhookConfig) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}
	return &Webhook{httpClient: c, url: cfg.URL}
}

type webhookError struct {
	Error string `json:"error"`
}

// Send posts m to the configured URL.
func (w *Webhook) Send(ctx context.Context, m Message) error {
	apiErr := new(webhookError)
	resp, err := w.httpClient.R().
		SetContext(ctx).
		SetBody(m).
		SetError(apiErr).
		Post(w.url)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notification webhook: status=%d, message=%s", resp.StatusCode(), apiErr.Error)
	}
	return nil
}
