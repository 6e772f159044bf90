// Package sessions stores per-conversation session records. Writes are
// whole-record replacements under one key; the orchestrator is the
// only writer.
package sessions

import (
	"context"
	"errors"
	"sync"

	"github.com/chainpilot/chainpilot/pkg/models"
)

// ErrNotFound is returned when no session exists for the key.
var ErrNotFound = errors.New("session not found")

// Store is a keyed session store.
type Store interface {
	Get(ctx context.Context, key string) (*models.Session, error)
	Put(ctx context.Context, key string, session *models.Session) error
	Close() error
}

// MemoryStore keeps sessions in process memory for the process
// lifetime. Records are never evicted; deployments that need a bound
// should use the redis store with a TTL.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[key]
	if !ok {
		return nil, ErrNotFound
	}

	return &session, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = *session

	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
