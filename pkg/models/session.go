package models

import "time"

// Session is the per-conversation state kept between plan and execute
// calls. It is exclusively owned and mutated by the orchestrator;
// stores persist it as a whole record under the conversation key.
type Session struct {
	UserID          string    `json:"user_id"`
	LastPlan        *Plan     `json:"last_plan,omitempty"`
	LastWorkflowID  string    `json:"last_workflow_id,omitempty"`
	LastExecutionID string    `json:"last_execution_id,omitempty"`
	LastTimeBlockID string    `json:"last_time_block_id,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}
