// Package backend is the client for the external workflow execution
// backend. Workflows are created, executed and observed here; nothing
// in this service runs a workflow itself.
package backend

import (
	"context"

	"github.com/chainpilot/chainpilot/pkg/models"
)

// ExecuteResult is the backend's answer to an execute call.
type ExecuteResult struct {
	ExecutionID string `json:"execution_id"`
	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
}

// TimeTriggerRequest registers a recurring trigger ("time block") that
// repeatedly starts executions of a workflow.
type TimeTriggerRequest struct {
	WorkflowID      string `json:"workflow_id"`
	StartAt         string `json:"start_at,omitempty"`
	IntervalSeconds int    `json:"interval_seconds"`
	DurationSeconds int    `json:"duration_seconds"`
	Cron            string `json:"cron,omitempty"`
}

// Client is the full surface this service needs from the backend. All
// implementations must honor context cancellation and carry bounded
// timeouts.
type Client interface {
	CreateWorkflow(ctx context.Context, userID string, workflow *models.Workflow) (string, error)
	ExecuteWorkflow(ctx context.Context, userID, workflowID string) (*ExecuteResult, error)
	GetExecution(ctx context.Context, userID, executionID string) (*models.Execution, error)
	ListExecutions(ctx context.Context, userID, workflowID string) ([]*models.Execution, error)
	CreateTimeTrigger(ctx context.Context, userID string, req TimeTriggerRequest) (string, error)
	CancelTimeTrigger(ctx context.Context, userID, triggerID string) error
}
