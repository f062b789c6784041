package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"licenseportal/internal/models"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// NotificationTransport pushes a notification to its recipient outside the
// portal (email relay, SMS gateway, webhook).
type NotificationTransport interface {
	Send(ctx context.Context, recipient *models.User, n *models.Notification) error
}

// LogTransport writes deliveries to the log. It is the default for
// development deployments.
type LogTransport struct {
	log zerolog.Logger
}

func NewLogTransport(log zerolog.Logger) *LogTransport {
	return &LogTransport{log: log.With().Str("component", "log_transport").Logger()}
}

func (t *LogTransport) Send(ctx context.Context, recipient *models.User, n *models.Notification) error {
	t.log.Info().
		Str("tenant_id", n.TenantID.String()).
		Str("to", recipient.Email).
		Str("type", string(n.Type)).
		Str("title", n.Title).
		Str("body", n.Message).
		Msg("notification (log only)")
	return nil
}

type webhookPayload struct {
	TenantID        string `json:"tenant_id"`
	NotificationID  string `json:"notification_id"`
	RecipientEmail  string `json:"recipient_email"`
	RecipientName   string `json:"recipient_name"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Message         string `json:"message"`
	EntityReference string `json:"entity_reference,omitempty"`
}

// WebhookTransport POSTs each notification as JSON to a relay endpoint.
// Any non-2xx answer is a delivery failure.
type WebhookTransport struct {
	url        string
	httpClient *http.Client
}

func NewWebhookTransport(url string, timeout time.Duration) *WebhookTransport {
	return &WebhookTransport{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (t *WebhookTransport) Send(ctx context.Context, recipient *models.User, n *models.Notification) error {
	payload := webhookPayload{
		TenantID:       n.TenantID.String(),
		NotificationID: n.ID.String(),
		RecipientEmail: recipient.Email,
		RecipientName:  recipient.FullName(),
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
	}
	if n.EntityReference != nil {
		payload.EntityReference = *n.EntityReference
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", payload.TenantID)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
