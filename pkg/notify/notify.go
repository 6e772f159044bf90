// Package notify is the outbound notification primitive: send text to
// a destination. Delivery failures are logged by callers, never
// treated as fatal.
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends a text message to a destination.
type Notifier interface {
	Send(ctx context.Context, destination, text string) error
}

// LogNotifier writes notifications to the structured log. It is the
// default when no notification channel is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify")}
}

func (n *LogNotifier) Send(_ context.Context, destination, text string) error {
	n.logger.Info("Notification", "destination", destination, "text", text)

	return nil
}
