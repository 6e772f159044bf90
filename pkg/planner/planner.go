// Package planner is the client for the external planning model
// endpoint. The planner's output is never trusted structurally; the
// sanitizer owns that defense.
package planner

import "context"

// Request is one structured planning call.
type Request struct {
	System    string `json:"system"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
}

// Planner generates a raw planning response. The response may be
// structured JSON or free text; callers must sanitize it either way.
type Planner interface {
	GeneratePlan(ctx context.Context, req Request) (string, error)
}

// ContextRequest asks the context endpoint for hints about a
// conversation.
type ContextRequest struct {
	UserID         string   `json:"user_id"`
	OnBehalfOf     string   `json:"on_behalf_of,omitempty"`
	ConversationID string   `json:"conversation_id"`
	Fields         []string `json:"fields,omitempty"`
	Prompt         string   `json:"prompt"`
}

// ContextProvider fetches best-effort contextual hints. Absence of a
// configured provider and any fetch failure both mean "no context",
// never an error that blocks planning.
type ContextProvider interface {
	Fetch(ctx context.Context, req ContextRequest) map[string]string
}

// NoopContext is the provider used when no context endpoint is
// configured.
type NoopContext struct{}

func (NoopContext) Fetch(context.Context, ContextRequest) map[string]string {
	return nil
}
