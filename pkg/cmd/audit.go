package cmd

import (
	"context"
	"log/slog"

	"github.com/chainpilot/chainpilot/pkg/eventbus"
	"github.com/chainpilot/chainpilot/pkg/events"
)

// lifecycleEventTypes lists every event the service publishes.
var lifecycleEventTypes = []events.EventType{
	events.PlanCreatedEvent,
	events.WorkflowCreatedEvent,
	events.ExecutionStartedEvent,
	events.SignatureRequestedEvent,
	events.ExecutionFinishedEvent,
	events.ExecutionFailedEvent,
	events.ScheduleRegisteredEvent,
	events.ScheduleGoalEvent,
	events.ScheduleTimeoutEvent,
}

// RegisterLifecycleAudit subscribes a structured-log handler to every
// lifecycle event type. The caller still has to start consumption with
// Subscribe.
func RegisterLifecycleAudit(bus eventbus.EventSubscriber, logger *slog.Logger) error {
	audit := logger.With("module", "audit")

	for _, eventType := range lifecycleEventTypes {
		err := bus.Handle(eventType, func(_ context.Context, event any) error {
			audit.Info("Lifecycle event", "type", string(eventType), "event", event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
