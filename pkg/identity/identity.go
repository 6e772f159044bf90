// Package identity resolves a channel-specific conversation to a
// linked backend identity.
package identity

import (
	"context"
	"errors"
	"sync"
)

// ErrNotLinked is returned when no backend identity is linked to the
// conversation. Features that require a link must fail with this so
// the presentation layer can tell the user exactly what to do.
var ErrNotLinked = errors.New("no linked account for this conversation")

// Link is a resolved identity link.
type Link struct {
	UserID        string `json:"user_id"`
	ConnectionID  string `json:"connection_id,omitempty"`
	DestinationID string `json:"destination_id,omitempty"`
}

// Resolver looks up the identity link for a conversation.
type Resolver interface {
	Resolve(ctx context.Context, conversationID string) (*Link, error)
}

// StaticResolver serves links from an in-memory table. Useful for
// tests and single-tenant deployments.
type StaticResolver struct {
	mu    sync.RWMutex
	links map[string]Link
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{links: make(map[string]Link)}
}

// Set registers or replaces the link for a conversation.
func (r *StaticResolver) Set(conversationID string, link Link) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.links[conversationID] = link
}

func (r *StaticResolver) Resolve(_ context.Context, conversationID string) (*Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[conversationID]
	if !ok {
		return nil, ErrNotLinked
	}

	return &link, nil
}
