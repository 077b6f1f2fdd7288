// Package notify delivers fire-and-forget outbound notifications: a
// WhatsApp-style message to the applicant's contact number and an
// automation webhook post. Failures are logged by callers, never surfaced
// to the user flow.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"intakebot/pkg/logx"
)

// requestTimeout bounds each outbound delivery attempt.
const requestTimeout = 10 * time.Second

// WhatsAppNotifier sends text messages through a WhatsApp Cloud-style API.
type WhatsAppNotifier struct {
	apiURL   string
	apiToken string
	client   *http.Client
	logger   *logx.Logger
}

// NewWhatsAppNotifier creates a notifier for the given API endpoint. Both
// apiURL and apiToken must be set; use Configured to check before sending.
func NewWhatsAppNotifier(apiURL, apiToken string) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		apiURL:   apiURL,
		apiToken: apiToken,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logx.NewLogger("notify"),
	}
}

// Configured reports whether the notifier has an endpoint and token.
func (w *WhatsAppNotifier) Configured() bool {
	return w.apiURL != "" && w.apiToken != ""
}

// Notify sends a text message to the given phone number.
func (w *WhatsAppNotifier) Notify(ctx context.Context, contact, text string) error {
	if !w.Configured() {
		return fmt.Errorf("whatsapp API not configured, message to %s dropped", contact)
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                contact,
		"type":              "text",
		"text":              map[string]string{"body": text},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("whatsapp API returned %d: %s", resp.StatusCode, respBody)
	}

	w.logger.Info("whatsapp message delivered to %s", contact)
	return nil
}

// WebhookPoster posts JSON payloads to an automation webhook.
type WebhookPoster struct {
	url    string
	client *http.Client
	logger *logx.Logger
}

// NewWebhookPoster creates a poster for the given webhook URL. An empty URL
// disables posting.
func NewWebhookPoster(url string) *WebhookPoster {
	return &WebhookPoster{
		url:    url,
		client: &http.Client{Timeout: requestTimeout},
		logger: logx.NewLogger("webhook"),
	}
}

// Configured reports whether a webhook URL is set.
func (p *WebhookPoster) Configured() bool {
	return p.url != ""
}

// Post sends the payload as JSON to the webhook.
func (p *WebhookPoster) Post(ctx context.Context, payload any) error {
	if !p.Configured() {
		return fmt.Errorf("webhook URL not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}

	p.logger.Info("webhook delivered to %s", p.url)
	return nil
}
