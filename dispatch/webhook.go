package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/clusslin/exdicom/config"
	"github.com/clusslin/exdicom/internal/models"
	"github.com/clusslin/exdicom/internal/signature"
)

// Header names of the webhook wire contract.
const (
	SignatureHeader = "X-Webhook-Signature"
	clientName      = "exdicom-upload-gateway/1.0"
)

// WebhookDispatcher delivers signed upload events over HTTP POST. Only
// status 200 and 202 count as delivered; everything else, including transport
// errors, is a delivery failure.
type WebhookDispatcher struct {
	endpoint string
	secret   string
	client   *http.Client
	logger   *log.Logger
}

// NewWebhookDispatcher creates an HTTP dispatcher from configuration.
func NewWebhookDispatcher(cfg config.WebhookConfig, logger *log.Logger) (*WebhookDispatcher, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("webhook dispatcher configuration incomplete: endpoint is required")
	}
	logger.Printf("Webhook dispatcher created, endpoint: %s", cfg.Endpoint)
	return &WebhookDispatcher{
		endpoint: cfg.Endpoint,
		secret:   cfg.Secret,
		client:   &http.Client{Timeout: config.ParseDuration(cfg.Timeout, 10*time.Second, "dispatch.webhook.timeout")},
		logger:   logger,
	}, nil
}

// Dispatch signs the serialized event and posts it. Unsigned delivery is
// refused: an empty signature would be meaningless to the receiver.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, event *models.WebhookEvent) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		return err
	}

	sig := signature.Sign(payload, d.secret)
	if sig == "" {
		return fmt.Errorf("webhook secret not configured, refusing to send unsigned event (identifier: %s)", event.Identifier)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", clientName)
	req.Header.Set(SignatureHeader, sig)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed (identifier: %s): %w", event.Identifier, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook delivery rejected with status %d (identifier: %s): %s",
			resp.StatusCode, event.Identifier, string(body))
	}

	d.logger.Printf("Upload event delivered, identifier: %s, row: %d, status: %d",
		event.Identifier, event.RowNumber, resp.StatusCode)
	return nil
}

// Close is a no-op for the shared HTTP client.
func (d *WebhookDispatcher) Close() error { return nil }

var _ Dispatcher = (*WebhookDispatcher)(nil)
