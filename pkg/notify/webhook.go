package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const sendTimeout = 10 * time.Second

// WebhookNotifier posts notifications to an HTTP endpoint that fans
// them out to the actual chat channel.
type WebhookNotifier struct {
	endpoint   string
	httpClient *http.Client
}

func NewWebhookNotifier(endpoint string) (*WebhookNotifier, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("notification endpoint is required")
	}

	return &WebhookNotifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: sendTimeout},
	}, nil
}

func (n *WebhookNotifier) Send(ctx context.Context, destination, text string) error {
	payload, err := json.Marshal(map[string]string{
		"destination": destination,
		"text":        text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
