package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/chainpilot/chainpilot/pkg/sessions"
)

var supportedSessionProviders = []string{"memory", "redis", "rediss"}

// NewSessionStore creates a session store based on the URL scheme.
func NewSessionStore(url string, ttl time.Duration) sessions.Store {
	switch parseSessionProvider(url) {
	case "redis", "rediss":
		store, err := sessions.NewRedisStore(url, ttl)
		if err != nil {
			panic(fmt.Errorf("failed to create Redis session store: %w", err))
		}

		return store
	default:
		return sessions.NewMemoryStore()
	}
}

func parseSessionProvider(url string) string {
	provider, _, found := strings.Cut(url, "://")
	if !found {
		return "memory"
	}

	for _, supported := range supportedSessionProviders {
		if provider == supported {
			return provider
		}
	}

	return "memory"
}
