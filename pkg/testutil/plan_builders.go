// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/chainpilot/chainpilot/pkg/models"
	"github.com/google/uuid"
)

// CreateTestPlan creates a plan with default values that can be
// overridden.
func CreateTestPlan(overrides ...func(*models.Plan)) *models.Plan {
	plan := &models.Plan{
		WorkflowName: "Test Automation",
		Description:  "Watches a price and reports it",
		Steps: []models.Step{
			{
				BlockID: "price_feed",
				Purpose: "Watch the ETH price",
				ConfigHints: map[string]string{
					"pair":  "ETH/USD",
					"chain": "ETHEREUM",
				},
			},
			{
				BlockID: "notify",
				Purpose: "Report the current price",
			},
		},
	}

	for _, override := range overrides {
		override(plan)
	}

	return plan
}

// WithSteps replaces the plan's steps.
func WithSteps(steps ...models.Step) func(*models.Plan) {
	return func(p *models.Plan) {
		p.Steps = steps
	}
}

// WithMissingInput appends a missing input to the plan.
func WithMissingInput(field, question string) func(*models.Plan) {
	return func(p *models.Plan) {
		p.MissingInputs = append(p.MissingInputs, models.MissingInput{
			Field:    field,
			Question: question,
		})
	}
}

// WithNote appends an advisory note to the plan.
func WithNote(noteType models.NoteType, message string) func(*models.Plan) {
	return func(p *models.Plan) {
		p.Notes = append(p.Notes, models.Note{Type: noteType, Message: message})
	}
}

// WithWorkflowName sets the plan's workflow name.
func WithWorkflowName(name string) func(*models.Plan) {
	return func(p *models.Plan) {
		p.WorkflowName = name
	}
}

// ScheduleStep builds a schedule step with the given interval hint.
func ScheduleStep(intervalSeconds string) models.Step {
	return models.Step{
		BlockID: "schedule",
		Purpose: "Run on a timer",
		ConfigHints: map[string]string{
			"interval_seconds": intervalSeconds,
		},
	}
}

// SwapStep builds a token swap step with sensible hint defaults.
func SwapStep(overrides ...func(*models.Step)) models.Step {
	step := models.Step{
		BlockID: "uniswap_swap",
		Purpose: "Swap USDC for WETH",
		ConfigHints: map[string]string{
			"token_in":  "USDC",
			"token_out": "WETH",
			"amount":    "25",
			"chain":     "ETHEREUM",
		},
	}

	for _, override := range overrides {
		override(&step)
	}

	return step
}

// WithHint sets one config hint on a step.
func WithHint(key, value string) func(*models.Step) {
	return func(s *models.Step) {
		if s.ConfigHints == nil {
			s.ConfigHints = map[string]string{}
		}

		s.ConfigHints[key] = value
	}
}

// CreateTestExecution creates an execution with default values that
// can be overridden.
func CreateTestExecution(overrides ...func(*models.Execution)) *models.Execution {
	execution := &models.Execution{
		ID:         uuid.New().String(),
		WorkflowID: uuid.New().String(),
		Status:     models.ExecutionStatusPending,
	}

	for _, override := range overrides {
		override(execution)
	}

	return execution
}

// WithStatus sets the execution status.
func WithStatus(status models.ExecutionStatus) func(*models.Execution) {
	return func(e *models.Execution) {
		e.Status = status
	}
}

// WithError marks the execution failed with the given message.
func WithError(message string) func(*models.Execution) {
	return func(e *models.Execution) {
		e.Status = models.ExecutionStatusFailed
		e.Error = &models.ExecutionError{Message: message}
	}
}

// WithNodeExecution appends one node result to the execution.
func WithNodeExecution(nodeType string, status models.ExecutionStatus, output map[string]any) func(*models.Execution) {
	return func(e *models.Execution) {
		e.NodeExecutions = append(e.NodeExecutions, models.NodeExecution{
			NodeType:   nodeType,
			Status:     status,
			OutputData: output,
		})
	}
}

// WithTimestamps sets started/finished so Duration is non-zero.
func WithTimestamps(started time.Time, elapsed time.Duration) func(*models.Execution) {
	return func(e *models.Execution) {
		finished := started.Add(elapsed)
		e.StartedAt = &started
		e.FinishedAt = &finished
	}
}
