// Package events defines the lifecycle events emitted while plans are
// created, compiled and tracked to completion.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topic for lifecycle events.
const Topic = "chainpilot.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	PlanCreatedEvent        EventType = "plan.created"
	WorkflowCreatedEvent    EventType = "workflow.created"
	ExecutionStartedEvent   EventType = "execution.started"
	SignatureRequestedEvent EventType = "execution.signature_requested"
	ExecutionFinishedEvent  EventType = "execution.finished"
	ExecutionFailedEvent    EventType = "execution.failed"
	ScheduleRegisteredEvent EventType = "schedule.registered"
	ScheduleGoalEvent       EventType = "schedule.goal_reached"
	ScheduleTimeoutEvent    EventType = "schedule.timeout"
)

type BaseEvent struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversation_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope.
func NewBaseEvent(eventType EventType, conversationID, userID string) BaseEvent {
	return BaseEvent{
		ID:             uuid.NewString(),
		Type:           eventType,
		Timestamp:      time.Now().UTC(),
		ConversationID: conversationID,
		UserID:         userID,
	}
}

type PlanCreated struct {
	BaseEvent

	WorkflowName string `json:"workflow_name"`
	Steps        int    `json:"steps"`
	MissingCount int    `json:"missing_count"`
}

func (e PlanCreated) GetType() EventType { return PlanCreatedEvent }

type WorkflowCreated struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
	Nodes      int    `json:"nodes"`
}

func (e WorkflowCreated) GetType() EventType { return WorkflowCreatedEvent }

type ExecutionStarted struct {
	BaseEvent

	WorkflowID  string `json:"workflow_id"`
	ExecutionID string `json:"execution_id"`
}

func (e ExecutionStarted) GetType() EventType { return ExecutionStartedEvent }

type SignatureRequested struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
}

func (e SignatureRequested) GetType() EventType { return SignatureRequestedEvent }

type ExecutionFinished struct {
	BaseEvent

	ExecutionID string        `json:"execution_id"`
	Duration    time.Duration `json:"duration"`
}

func (e ExecutionFinished) GetType() EventType { return ExecutionFinishedEvent }

type ExecutionFailed struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	Reason      string `json:"reason,omitempty"`
}

func (e ExecutionFailed) GetType() EventType { return ExecutionFailedEvent }

type ScheduleRegistered struct {
	BaseEvent

	WorkflowID      string `json:"workflow_id"`
	TimeBlockID     string `json:"time_block_id"`
	IntervalSeconds int    `json:"interval_seconds"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (e ScheduleRegistered) GetType() EventType { return ScheduleRegisteredEvent }

type ScheduleGoal struct {
	BaseEvent

	WorkflowID  string `json:"workflow_id"`
	ExecutionID string `json:"execution_id"`
}

func (e ScheduleGoal) GetType() EventType { return ScheduleGoalEvent }

type ScheduleTimeout struct {
	BaseEvent

	WorkflowID string `json:"workflow_id"`
}

func (e ScheduleTimeout) GetType() EventType { return ScheduleTimeoutEvent }
