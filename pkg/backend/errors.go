package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strconv"
)

// FieldError is one structured validation detail from the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the structured form of a backend failure. Retryability
// and recovery decisions are made on these fields, never by matching
// substrings of the message.
type APIError struct {
	StatusCode int          `json:"status_code"`
	Code       string       `json:"code,omitempty"`
	Message    string       `json:"message"`
	Details    []FieldError `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}

	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err to an APIError, if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsRetryable classifies a backend call failure. Server errors,
// timeouts, throttling, and connection-level failures are retryable;
// client errors (bad request, auth, not found) are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if apiErr, ok := AsAPIError(err); ok {
		switch {
		case apiErr.StatusCode >= http.StatusInternalServerError:
			return true
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return true
		case apiErr.StatusCode == http.StatusRequestTimeout:
			return true
		default:
			return false
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return false
}

var connectionIDDetailPattern = regexp.MustCompile(`^nodes\.(\d+)\.config\.connection_?[iI]d$`)

// MissingConnectionNodes returns the node indexes named by validation
// details of the shape "nodes.<i>.config.connectionId". A non-empty
// result identifies the one failure shape the orchestrator may patch
// and retry.
func (e *APIError) MissingConnectionNodes() []int {
	if e.StatusCode != http.StatusBadRequest {
		return nil
	}

	var indexes []int

	for _, detail := range e.Details {
		match := connectionIDDetailPattern.FindStringSubmatch(detail.Field)
		if match == nil {
			continue
		}

		index, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		indexes = append(indexes, index)
	}

	return indexes
}
