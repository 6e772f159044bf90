package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chainpilot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

const minimalYAML = `
backend:
  base_url: http://backend.local
planner:
  base_url: http://planner.local
  signing_secret: secret
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, minimalYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "memory://", cfg.Sessions.URL)
	assert.Equal(t, "gochannel", cfg.EventBus.Provider)
	assert.Equal(t, 5*time.Second, cfg.TrackerPoll())
	assert.Equal(t, 30*time.Second, cfg.TrackerScheduledPoll())
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
port: 8088
log_level: debug
backend:
  base_url: http://backend.local
  timeout_seconds: 15
  max_retries: 2
planner:
  base_url: http://planner.local
  signing_secret: secret
  model: planner-small
sessions:
  url: redis://cache:6379/0
  ttl_seconds: 600
tracker:
  poll_seconds: 2
  scheduled_poll_seconds: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout())
	assert.Equal(t, uint64(2), cfg.Backend.MaxRetries)
	assert.Equal(t, "planner-small", cfg.Planner.Model)
	assert.Equal(t, "redis://cache:6379/0", cfg.Sessions.URL)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL())
	assert.Equal(t, 2*time.Second, cfg.TrackerPoll())
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	t.Setenv("BACKEND_API_KEY", "env-backend-key")
	t.Setenv("PLANNER_SIGNING_SECRET", "env-secret")

	path := writeConfig(t, `
backend:
  base_url: http://backend.local
  api_key: file-key
planner:
  base_url: http://planner.local
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-backend-key", cfg.Backend.APIKey)
	assert.Equal(t, "env-secret", cfg.Planner.SigningSecret)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing backend url",
			yaml:    "planner:\n  base_url: http://p\n  signing_secret: s\n",
			wantErr: "backend.base_url",
		},
		{
			name:    "missing planner url",
			yaml:    "backend:\n  base_url: http://b\n",
			wantErr: "planner.base_url",
		},
		{
			name:    "missing signing secret",
			yaml:    "backend:\n  base_url: http://b\nplanner:\n  base_url: http://p\n",
			wantErr: "signing_secret",
		},
		{
			name: "kafka without brokers",
			yaml: minimalYAML + `
event_bus:
  provider: kafka
`,
			wantErr: "event_bus.brokers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.yaml)

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "port: [not a number\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	_, err := LoadOrDefault("")
	require.Error(t, err, "defaults alone cannot satisfy validation")
}
