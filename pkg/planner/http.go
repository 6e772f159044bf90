package planner

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultModel   = "planner-large"
	defaultTimeout = 60 * time.Second

	plannerPath = "/v1/plan"
)

// Config describes the planning endpoint.
type Config struct {
	BaseURL       string
	CallerID      string
	SigningSecret string
	Model         string
	Timeout       time.Duration
}

// HTTPPlanner calls the planning endpoint over HTTP, signing each
// request with a timestamp and an HMAC over method, path and body.
type HTTPPlanner struct {
	baseURL       string
	callerID      string
	signingSecret string
	model         string
	httpClient    *http.Client
	logger        *slog.Logger
	now           func() time.Time
}

// NewHTTPPlanner creates a planner client.
func NewHTTPPlanner(cfg Config, logger *slog.Logger) (*HTTPPlanner, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("planner base URL is required")
	}

	if cfg.SigningSecret == "" {
		return nil, errors.New("planner signing secret is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPPlanner{
		baseURL:       baseURL,
		callerID:      cfg.CallerID,
		signingSecret: cfg.SigningSecret,
		model:         model,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger.With("module", "planner"),
		now:           time.Now,
	}, nil
}

type plannerResponse struct {
	Content string `json:"content"`
}

// GeneratePlan sends one planning request and returns the raw model
// response.
func (p *HTTPPlanner) GeneratePlan(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		req.Model = p.model
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding planner request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+plannerPath, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	timestamp := strconv.FormatInt(p.now().Unix(), 10)

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Caller-Id", p.callerID)
	httpReq.Header.Set("X-Timestamp", timestamp)
	httpReq.Header.Set("X-Signature", p.sign(timestamp, http.MethodPost, plannerPath, payload))

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling planner: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("planner returned status %d", resp.StatusCode)
	}

	var decoded plannerResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Some deployments return the content as a bare string body.
		return string(raw), nil
	}

	return decoded.Content, nil
}

// sign computes the request signature: HMAC-SHA256 over
// "<timestamp>\n<method>\n<path>\n<body>".
func (p *HTTPPlanner) sign(timestamp, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(p.signingSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("\n"))
	mac.Write([]byte(method))
	mac.Write([]byte("\n"))
	mac.Write([]byte(path))
	mac.Write([]byte("\n"))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}
