package models

import "time"

// ExecutionStatus is the backend-reported lifecycle state of one
// workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusPending             ExecutionStatus = "pending"
	ExecutionStatusRunning             ExecutionStatus = "running"
	ExecutionStatusWaitingForSignature ExecutionStatus = "waiting_for_signature"
	ExecutionStatusSuccess             ExecutionStatus = "success"
	ExecutionStatusFailed              ExecutionStatus = "failed"
)

// IsTerminal reports whether the status ends the execution lifecycle.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionStatusSuccess || s == ExecutionStatusFailed
}

// ExecutionError is the backend-supplied failure detail.
type ExecutionError struct {
	Message string `json:"message"`
}

// NodeExecution is one node's result within an execution.
type NodeExecution struct {
	NodeType   string         `json:"node_type"`
	Status     ExecutionStatus `json:"status"`
	OutputData map[string]any `json:"output_data,omitempty"`
}

// Execution is the status record for one run of a compiled workflow.
// It is produced and owned by the external workflow backend; this
// service only reads it.
type Execution struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflow_id,omitempty"`
	Status         ExecutionStatus `json:"status"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
	Error          *ExecutionError `json:"error,omitempty"`
	NodeExecutions []NodeExecution `json:"node_executions,omitempty"`
}

// Duration returns the wall-clock run time, or zero when either
// timestamp is missing.
func (e *Execution) Duration() time.Duration {
	if e.StartedAt == nil || e.FinishedAt == nil {
		return 0
	}

	return e.FinishedAt.Sub(*e.StartedAt)
}

// ErrorMessage returns the backend failure message, if any.
func (e *Execution) ErrorMessage() string {
	if e.Error == nil {
		return ""
	}

	return e.Error.Message
}
