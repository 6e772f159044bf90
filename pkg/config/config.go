// Package config provides configuration loading for the service.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 9090
	defaultLogLevel      = "info"
	defaultEventBus      = "gochannel"
	defaultSessionsURL   = "memory://"
	defaultPollSeconds   = 5
	defaultScheduledPoll = 30
)

// ServiceConfig is the full configuration of the API service, loaded
// from a YAML file with environment-variable overrides for secrets.
type ServiceConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	Backend  BackendConfig  `yaml:"backend"`
	Planner  PlannerConfig  `yaml:"planner"`
	Identity IdentityConfig `yaml:"identity"`
	Context  ContextConfig  `yaml:"context"`
	Sessions SessionsConfig `yaml:"sessions"`
	EventBus EventBusConfig `yaml:"event_bus"`
	Notifier NotifierConfig `yaml:"notifier"`
	Tracker  TrackerConfig  `yaml:"tracker"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// BackendConfig describes the workflow execution backend.
type BackendConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     uint64 `yaml:"max_retries"`
}

// PlannerConfig describes the plan generation endpoint.
type PlannerConfig struct {
	BaseURL       string `yaml:"base_url"`
	CallerID      string `yaml:"caller_id"`
	SigningSecret string `yaml:"signing_secret"`
	Model         string `yaml:"model"`
}

// IdentityConfig describes the account-link resolver. An empty
// BaseURL selects the in-memory static resolver.
type IdentityConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// ContextConfig describes the optional conversation-context endpoint.
type ContextConfig struct {
	BaseURL  string `yaml:"base_url"`
	CallerID string `yaml:"caller_id"`
}

// SessionsConfig describes the session store. URL schemes select the
// implementation: memory:// or redis://.
type SessionsConfig struct {
	URL        string `yaml:"url"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// EventBusConfig selects the lifecycle event transport.
type EventBusConfig struct {
	Provider string `yaml:"provider"`
	Brokers  string `yaml:"brokers"`
}

// NotifierConfig describes where user-facing updates go. An empty
// WebhookURL selects the log notifier.
type NotifierConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// TrackerConfig tunes execution tracking.
type TrackerConfig struct {
	PollSeconds          int    `yaml:"poll_seconds"`
	ScheduledPollSeconds int    `yaml:"scheduled_poll_seconds"`
	SigningBaseURL       string `yaml:"signing_base_url"`
}

// TracingConfig controls the OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Load reads a service configuration from a YAML file, applies
// defaults and environment overrides, and validates it.
func Load(filepath string) (ServiceConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return ServiceConfig{}, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var cfg ServiceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServiceConfig{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return ServiceConfig{}, err
	}

	return cfg, nil
}

// LoadOrDefault loads a config file, falling back to defaults plus
// environment overrides when the file does not exist.
func LoadOrDefault(filepath string) (ServiceConfig, error) {
	if filepath != "" {
		if _, err := os.Stat(filepath); err == nil {
			return Load(filepath)
		}
	}

	var cfg ServiceConfig

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return ServiceConfig{}, err
	}

	return cfg, nil
}

func (c *ServiceConfig) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}

	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	if c.Sessions.URL == "" {
		c.Sessions.URL = defaultSessionsURL
	}

	if c.EventBus.Provider == "" {
		c.EventBus.Provider = defaultEventBus
	}

	if c.Tracker.PollSeconds == 0 {
		c.Tracker.PollSeconds = defaultPollSeconds
	}

	if c.Tracker.ScheduledPollSeconds == 0 {
		c.Tracker.ScheduledPollSeconds = defaultScheduledPoll
	}
}

// applyEnvOverrides lets secrets stay out of the config file.
func (c *ServiceConfig) applyEnvOverrides() {
	if v := os.Getenv("BACKEND_API_KEY"); v != "" {
		c.Backend.APIKey = v
	}

	if v := os.Getenv("PLANNER_SIGNING_SECRET"); v != "" {
		c.Planner.SigningSecret = v
	}

	if v := os.Getenv("IDENTITY_API_KEY"); v != "" {
		c.Identity.APIKey = v
	}

	if v := os.Getenv("SESSIONS_URL"); v != "" {
		c.Sessions.URL = v
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.EventBus.Brokers = v
	}
}

// Validate checks the parts of the configuration that cannot be
// defaulted.
func (c *ServiceConfig) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}

	if c.Planner.BaseURL == "" {
		return errors.New("planner.base_url is required")
	}

	if c.Planner.SigningSecret == "" {
		return errors.New("planner.signing_secret is required (PLANNER_SIGNING_SECRET)")
	}

	if c.EventBus.Provider == "kafka" && c.EventBus.Brokers == "" {
		return errors.New("event_bus.brokers is required for the kafka provider")
	}

	return nil
}

// BackendTimeout returns the configured backend timeout as a duration.
func (c *ServiceConfig) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// SessionTTL returns the configured session TTL as a duration.
func (c *ServiceConfig) SessionTTL() time.Duration {
	return time.Duration(c.Sessions.TTLSeconds) * time.Second
}

// TrackerPoll returns the execution poll interval.
func (c *ServiceConfig) TrackerPoll() time.Duration {
	return time.Duration(c.Tracker.PollSeconds) * time.Second
}

// TrackerScheduledPoll returns the scheduled-workflow poll interval.
func (c *ServiceConfig) TrackerScheduledPoll() time.Duration {
	return time.Duration(c.Tracker.ScheduledPollSeconds) * time.Second
}
