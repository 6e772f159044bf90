package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const contextTimeout = 5 * time.Second

// HTTPContext fetches contextual hints from the context endpoint. It
// is strictly best-effort: any failure is logged and reported as no
// context.
type HTTPContext struct {
	baseURL    string
	callerID   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewContextProvider returns an HTTP provider when a base URL is
// configured, else the noop provider.
func NewContextProvider(baseURL, callerID string, logger *slog.Logger) ContextProvider {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return NoopContext{}
	}

	return &HTTPContext{
		baseURL:    baseURL,
		callerID:   callerID,
		httpClient: &http.Client{Timeout: contextTimeout},
		logger:     logger.With("module", "context"),
	}
}

func (c *HTTPContext) Fetch(ctx context.Context, req ContextRequest) map[string]string {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/context", bytes.NewReader(payload))
	if err != nil {
		return nil
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Caller-Id", c.callerID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("Context fetch failed", "error", err)

		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("Context fetch rejected", "status", resp.StatusCode)

		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var hints map[string]string
	if err := json.Unmarshal(raw, &hints); err != nil {
		c.logger.Debug("Context response not decodable", "error", err)

		return nil
	}

	return hints
}
