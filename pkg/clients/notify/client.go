package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/plantops/capaplan/internal/config"
)

// Client exposes outbound callback operations used by the application.
type Client interface {
	SendEvent(ctx context.Context, event Event) error
}

// Event is the payload posted to the configured callback webhook.
type Event struct {
	Kind       string    `json:"kind"`
	ClientID   string    `json:"client_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Summary    string    `json:"summary"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Event kinds posted over the callback webhook.
const (
	EventScheduleCreated   = "schedule.created"
	EventScheduleCommitted = "schedule.committed"
	EventScenarioCompleted = "scenario.completed"
	EventAtRiskDigest      = "digest.at_risk"
)

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	webhookURL string
}

// NewClient builds a callback client using the provided configuration values.
func NewClient(cfg config.CallbackConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	if cfg.AuthToken != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AuthToken))
	}

	return &APIClient{
		httpClient: restyClient,
		webhookURL: cfg.WebhookURL,
	}
}

// apiError represents an error payload from the receiving webhook.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SendEvent posts a completion event to the webhook. A client without a
// configured URL silently drops events.
func (c *APIClient) SendEvent(ctx context.Context, event Event) error {
	if c.webhookURL == "" {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(event).
		SetError(apiErr).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("send callback event: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("callback webhook error: status=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
