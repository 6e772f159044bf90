// Package tracker drives the polling state machine that follows an
// execution to a terminal outcome. Its job is to keep tracking:
// transient poll errors and failed notification sends never stop a
// loop, only terminal statuses (or the scheduled window) do.
package tracker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chainpilot/chainpilot/pkg/backend"
	"github.com/chainpilot/chainpilot/pkg/eventbus"
	"github.com/chainpilot/chainpilot/pkg/events"
	"github.com/chainpilot/chainpilot/pkg/models"
	"github.com/chainpilot/chainpilot/pkg/notify"
)

// Polling cadences. The scheduled variant polls coarser, trading
// promptness for load on the status endpoint.
const (
	DefaultPollInterval          = 5 * time.Second
	DefaultScheduledPollInterval = 30 * time.Second
)

const defaultSigningBaseURL = "https://app.chainpilot.io/sign/"

// Config tunes a tracker.
type Config struct {
	PollInterval          time.Duration
	ScheduledPollInterval time.Duration
	SigningBaseURL        string
}

// Tracker polls the backend's execution status endpoint and notifies
// the user about checkpoints and outcomes.
type Tracker struct {
	backend               backend.Client
	notifier              notify.Notifier
	bus                   eventbus.EventPublisher
	logger                *slog.Logger
	pollInterval          time.Duration
	scheduledPollInterval time.Duration
	signingBaseURL        string
}

// New creates a tracker. The event bus is optional.
func New(client backend.Client, notifier notify.Notifier, bus eventbus.EventPublisher, logger *slog.Logger, cfg Config) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.ScheduledPollInterval <= 0 {
		cfg.ScheduledPollInterval = DefaultScheduledPollInterval
	}

	if cfg.SigningBaseURL == "" {
		cfg.SigningBaseURL = defaultSigningBaseURL
	}

	return &Tracker{
		backend:               client,
		notifier:              notifier,
		bus:                   bus,
		logger:                logger.With("module", "tracker"),
		pollInterval:          cfg.PollInterval,
		scheduledPollInterval: cfg.ScheduledPollInterval,
		signingBaseURL:        cfg.SigningBaseURL,
	}
}

// Track follows one execution until it reaches a terminal status. It
// blocks; callers that want fire-and-forget run it in a goroutine.
func (t *Tracker) Track(ctx context.Context, userID, executionID, destination string) {
	t.trackToTerminal(ctx, userID, executionID, destination)
}

// trackToTerminal runs the per-execution state machine and returns the
// terminal execution record, or nil when the context ended first.
func (t *Tracker) trackToTerminal(ctx context.Context, userID, executionID, destination string) *models.Execution {
	logger := t.logger.With("execution_id", executionID)

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	signaturePrompted := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		execution, err := t.backend.GetExecution(ctx, userID, executionID)
		if err != nil {
			// Transient by assumption: the next tick retries.
			logger.Debug("Status poll failed", "error", err)

			continue
		}

		switch execution.Status {
		case models.ExecutionStatusWaitingForSignature:
			if signaturePrompted {
				continue
			}

			signaturePrompted = true

			t.send(ctx, destination,
				"Your automation needs a signature to continue: "+t.signingBaseURL+executionID)
			t.publish(ctx, executionID, events.SignatureRequested{
				BaseEvent:   events.NewBaseEvent(events.SignatureRequestedEvent, "", userID),
				ExecutionID: executionID,
			})

		case models.ExecutionStatusSuccess:
			t.send(ctx, destination, successMessage(execution))
			t.publish(ctx, executionID, events.ExecutionFinished{
				BaseEvent:   events.NewBaseEvent(events.ExecutionFinishedEvent, "", userID),
				ExecutionID: executionID,
				Duration:    execution.Duration(),
			})

			return execution

		case models.ExecutionStatusFailed:
			t.send(ctx, destination, failureMessage(execution))
			t.publish(ctx, executionID, events.ExecutionFailed{
				BaseEvent:   events.NewBaseEvent(events.ExecutionFailedEvent, "", userID),
				ExecutionID: executionID,
				Reason:      execution.ErrorMessage(),
			})

			return execution

		case models.ExecutionStatusPending, models.ExecutionStatusRunning:
			// Keep polling.
		}
	}
}

func successMessage(execution *models.Execution) string {
	message := "Automation run completed successfully."

	if links := transactionLinks(execution); len(links) > 0 {
		message += " Transactions: " + strings.Join(links, ", ")
	}

	return message
}

func failureMessage(execution *models.Execution) string {
	message := "Automation run failed."

	if reason := execution.ErrorMessage(); reason != "" {
		message += " Reason: " + reason
	}

	return message
}

// send delivers a notification; failures are logged, never fatal.
func (t *Tracker) send(ctx context.Context, destination, text string) {
	if err := t.notifier.Send(ctx, destination, text); err != nil {
		t.logger.Warn("Notification send failed", "destination", destination, "error", err)
	}
}

func (t *Tracker) publish(ctx context.Context, key string, event eventbus.Event) {
	if t.bus == nil {
		return
	}

	if err := t.bus.Publish(ctx, key, event); err != nil {
		t.logger.Warn("Event publish failed", "event_type", event.GetType(), "error", err)
	}
}
