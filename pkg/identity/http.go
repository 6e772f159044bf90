package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const lookupTimeout = 5 * time.Second

// HTTPResolver resolves links through the identity-link service.
type HTTPResolver struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPResolver(baseURL, apiKey string, logger *slog.Logger) (*HTTPResolver, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("identity service base URL is required")
	}

	return &HTTPResolver{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: lookupTimeout},
		logger:     logger.With("module", "identity"),
	}, nil
}

func (r *HTTPResolver) Resolve(ctx context.Context, conversationID string) (*Link, error) {
	endpoint := r.baseURL + "/v1/links/" + url.PathEscape(conversationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resolving identity link: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotLinked
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var link Link
	if err := json.Unmarshal(raw, &link); err != nil {
		return nil, fmt.Errorf("decoding identity link: %w", err)
	}

	if link.UserID == "" {
		return nil, ErrNotLinked
	}

	return &link, nil
}
