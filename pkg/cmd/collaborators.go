package cmd

import (
	"fmt"
	"log/slog"

	"github.com/chainpilot/chainpilot/pkg/config"
	"github.com/chainpilot/chainpilot/pkg/identity"
	"github.com/chainpilot/chainpilot/pkg/notify"
)

// NewIdentityResolver creates a resolver. Without a configured
// endpoint, links resolve from an (initially empty) in-memory table.
func NewIdentityResolver(cfg config.IdentityConfig, logger *slog.Logger) identity.Resolver {
	if cfg.BaseURL == "" {
		return identity.NewStaticResolver()
	}

	resolver, err := identity.NewHTTPResolver(cfg.BaseURL, cfg.APIKey, logger)
	if err != nil {
		panic(fmt.Errorf("failed to create identity resolver: %w", err))
	}

	return resolver
}

// NewNotifier creates a notifier. Without a webhook endpoint, updates
// land in the service log.
func NewNotifier(cfg config.NotifierConfig, logger *slog.Logger) notify.Notifier {
	if cfg.WebhookURL == "" {
		return notify.NewLogNotifier(logger)
	}

	notifier, err := notify.NewWebhookNotifier(cfg.WebhookURL)
	if err != nil {
		panic(fmt.Errorf("failed to create webhook notifier: %w", err))
	}

	return notifier
}
