package identity

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticResolver(t *testing.T) {
	t.Parallel()

	resolver := NewStaticResolver()
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, "conv-1")
	assert.ErrorIs(t, err, ErrNotLinked)

	resolver.Set("conv-1", Link{UserID: "wallet-1", ConnectionID: "conn-1"})

	link, err := resolver.Resolve(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", link.UserID)

	// The returned link is a copy of the stored one.
	link.UserID = "mutated"

	again, err := resolver.Resolve(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", again.UserID)
}

func newTestResolver(t *testing.T, handler http.HandlerFunc) *HTTPResolver {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	resolver, err := NewHTTPResolver(server.URL, "test-key", slog.Default())
	require.NoError(t, err)

	return resolver
}

func TestHTTPResolverRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPResolver("  ", "", slog.Default())
	require.Error(t, err)
}

func TestHTTPResolverResolve(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/links/conv-1", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Write([]byte(`{"user_id": "wallet-1", "connection_id": "conn-1", "destination_id": "chat-1"}`))
	})

	link, err := resolver.Resolve(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "wallet-1", link.UserID)
	assert.Equal(t, "conn-1", link.ConnectionID)
	assert.Equal(t, "chat-1", link.DestinationID)
}

func TestHTTPResolverNotFound(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := resolver.Resolve(context.Background(), "conv-1")
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestHTTPResolverEmptyUserIDMeansNotLinked(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"user_id": ""}`))
	})

	_, err := resolver.Resolve(context.Background(), "conv-1")
	assert.ErrorIs(t, err, ErrNotLinked)
}

func TestHTTPResolverServerError(t *testing.T) {
	t.Parallel()

	resolver := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := resolver.Resolve(context.Background(), "conv-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotLinked)
}
