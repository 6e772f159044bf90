package tracker

import (
	"context"
	"time"

	"github.com/chainpilot/chainpilot/pkg/events"
	"github.com/chainpilot/chainpilot/pkg/models"
)

// swapDurationHint is the best-effort fallback for deciding whether a
// scheduled run actually performed its action when no swap node record
// is present: runs shorter than this are assumed to have short-circuited
// at the condition. The explicit per-node signal always wins.
const swapDurationHint = 10 * time.Second

// TrackScheduled watches a workflow's executions across a bounded time
// window. Executions are deduplicated by id; the watch ends when a run
// achieves the goal (the recurring trigger is then cancelled) or the
// window elapses, whichever comes first.
func (t *Tracker) TrackScheduled(ctx context.Context, userID, workflowID, timeBlockID, destination string, window time.Duration) {
	logger := t.logger.With("workflow_id", workflowID, "time_block_id", timeBlockID)

	ticker := time.NewTicker(t.scheduledPollInterval)
	defer ticker.Stop()

	deadline := time.NewTimer(window)
	defer deadline.Stop()

	seen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return

		case <-deadline.C:
			logger.Info("Schedule window elapsed without success")
			t.send(ctx, destination,
				"The scheduled automation window ended without the goal being reached.")
			t.publish(ctx, workflowID, events.ScheduleTimeout{
				BaseEvent:  events.NewBaseEvent(events.ScheduleTimeoutEvent, "", userID),
				WorkflowID: workflowID,
			})

			return

		case <-ticker.C:
		}

		executions, err := t.backend.ListExecutions(ctx, userID, workflowID)
		if err != nil {
			logger.Debug("Execution list poll failed", "error", err)

			continue
		}

		for _, execution := range executions {
			if seen[execution.ID] {
				continue
			}

			switch execution.Status {
			case models.ExecutionStatusWaitingForSignature:
				seen[execution.ID] = true

				// Delegate to the single-execution path; a signed and
				// successful run means the goal is achieved.
				terminal := t.trackToTerminal(ctx, userID, execution.ID, destination)
				if terminal != nil && terminal.Status == models.ExecutionStatusSuccess {
					t.finishScheduled(ctx, userID, workflowID, timeBlockID, terminal.ID)

					return
				}

			case models.ExecutionStatusSuccess:
				seen[execution.ID] = true

				if !goalAchieved(execution) {
					// The run completed but the condition short-circuited;
					// later scheduled runs may still get there.
					continue
				}

				t.send(ctx, destination, successMessage(execution))
				t.finishScheduled(ctx, userID, workflowID, timeBlockID, execution.ID)

				return

			case models.ExecutionStatusFailed:
				seen[execution.ID] = true

				// Future scheduled runs may still succeed; notify and
				// keep watching.
				t.send(ctx, destination, failureMessage(execution))

			case models.ExecutionStatusPending, models.ExecutionStatusRunning:
				// Not seen yet: revisit on the next tick.
			}
		}
	}
}

// finishScheduled cancels the recurring trigger and records the goal.
func (t *Tracker) finishScheduled(ctx context.Context, userID, workflowID, timeBlockID, executionID string) {
	if timeBlockID != "" {
		if err := t.backend.CancelTimeTrigger(ctx, userID, timeBlockID); err != nil {
			t.logger.Warn("Failed to cancel recurring trigger", "time_block_id", timeBlockID, "error", err)
		}
	}

	t.publish(ctx, workflowID, events.ScheduleGoal{
		BaseEvent:   events.NewBaseEvent(events.ScheduleGoalEvent, "", userID),
		WorkflowID:  workflowID,
		ExecutionID: executionID,
	})
}

// goalAchieved decides whether a successful run actually performed the
// automation's action rather than short-circuiting at the condition.
func goalAchieved(execution *models.Execution) bool {
	for _, node := range execution.NodeExecutions {
		if node.NodeType == models.NodeTypeSwap {
			return node.Status == models.ExecutionStatusSuccess
		}
	}

	return execution.Duration() >= swapDurationHint
}
