// Package web provides the HTTP surface for planning and executing
// automations.
package web

import (
	"github.com/chainpilot/chainpilot/pkg/models"
)

// PlanAPIRequest represents the request body for creating a plan from a
// natural-language prompt.
type PlanAPIRequest struct {
	Prompt          string `json:"prompt"           validate:"required,min=1"`
	UserID          string `json:"user_id"          validate:"required"`
	ConversationKey string `json:"conversation_key" validate:"required"`
}

// ExecuteAPIRequest represents the request body for executing a plan.
// Plan and Prompt are both optional; when both are absent the last plan
// stored in the conversation's session is used.
type ExecuteAPIRequest struct {
	Prompt          string       `json:"prompt,omitempty"`
	Plan            *models.Plan `json:"plan,omitempty"`
	UserID          string       `json:"user_id"          validate:"required"`
	ConversationKey string       `json:"conversation_key" validate:"required"`
}

// PlanResponse wraps a sanitized plan together with a readiness flag so
// callers do not re-derive it from missing_inputs.
type PlanResponse struct {
	Plan             *models.Plan `json:"plan"`
	ReadyForApproval bool         `json:"ready_for_approval"`
	MissingFields    []string     `json:"missing_fields,omitempty"`
}

// BlockResponse represents one catalog entry.
type BlockResponse struct {
	ID          string `json:"id"`
	BackendType string `json:"backend_type"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ExecutionResponse represents the state of one execution.
type ExecutionResponse struct {
	ID           string                 `json:"id"`
	WorkflowID   string                 `json:"workflow_id"`
	Status       models.ExecutionStatus `json:"status"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	DurationMS   int64                  `json:"duration_ms,omitempty"`
}

// TransformExecutionResponse flattens an execution for API consumers.
func TransformExecutionResponse(execution *models.Execution) ExecutionResponse {
	response := ExecutionResponse{
		ID:           execution.ID,
		WorkflowID:   execution.WorkflowID,
		Status:       execution.Status,
		ErrorMessage: execution.ErrorMessage(),
	}

	if d := execution.Duration(); d > 0 {
		response.DurationMS = d.Milliseconds()
	}

	return response
}
