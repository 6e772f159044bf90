package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/chainpilot/chainpilot/pkg/models"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxRetries  = 3
	defaultInitialWait = 500 * time.Millisecond
)

// Config describes how to reach the workflow backend.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries uint64
}

// HTTPClient implements Client over the backend's REST API with a
// bounded timeout and retry-with-backoff on retryable failures.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	maxRetries uint64
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a backend client.
func NewHTTPClient(cfg Config, logger *slog.Logger) (*HTTPClient, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("backend base URL is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("module", "backend"),
	}, nil
}

func (c *HTTPClient) CreateWorkflow(ctx context.Context, userID string, workflow *models.Workflow) (string, error) {
	var response struct {
		ID string `json:"id"`
	}

	err := c.do(ctx, http.MethodPost, "/v1/workflows", userID, workflow, &response)
	if err != nil {
		return "", err
	}

	return response.ID, nil
}

func (c *HTTPClient) ExecuteWorkflow(ctx context.Context, userID, workflowID string) (*ExecuteResult, error) {
	var result ExecuteResult

	err := c.do(ctx, http.MethodPost, "/v1/workflows/"+workflowID+"/executions", userID, nil, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *HTTPClient) GetExecution(ctx context.Context, userID, executionID string) (*models.Execution, error) {
	var execution models.Execution

	err := c.do(ctx, http.MethodGet, "/v1/executions/"+executionID, userID, nil, &execution)
	if err != nil {
		return nil, err
	}

	return &execution, nil
}

func (c *HTTPClient) ListExecutions(ctx context.Context, userID, workflowID string) ([]*models.Execution, error) {
	var response struct {
		Executions []*models.Execution `json:"executions"`
	}

	err := c.do(ctx, http.MethodGet, "/v1/workflows/"+workflowID+"/executions", userID, nil, &response)
	if err != nil {
		return nil, err
	}

	return response.Executions, nil
}

func (c *HTTPClient) CreateTimeTrigger(ctx context.Context, userID string, req TimeTriggerRequest) (string, error) {
	var response struct {
		ID string `json:"id"`
	}

	err := c.do(ctx, http.MethodPost, "/v1/time-triggers", userID, req, &response)
	if err != nil {
		return "", err
	}

	return response.ID, nil
}

func (c *HTTPClient) CancelTimeTrigger(ctx context.Context, userID, triggerID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/time-triggers/"+triggerID, userID, nil, nil)
}

// do issues one logical request, retrying retryable failures with
// exponential backoff up to the configured cap.
func (c *HTTPClient) do(ctx context.Context, method, path, userID string, body, out any) error {
	operation := func() error {
		err := c.doOnce(ctx, method, path, userID, body, out)
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}

		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = defaultInitialWait

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, c.maxRetries), ctx))
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	return nil
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path, userID string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Acting-User", userID)

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// decodeAPIError always yields a structured APIError, even when the
// backend's error body is not the documented shape.
func decodeAPIError(statusCode int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(statusCode)
		}
	}

	apiErr.StatusCode = statusCode

	return apiErr
}
