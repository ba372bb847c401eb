package audit

import (
	"context"
	"sync"
)

// Store persists audit events. Append-only; events are never updated or
// deleted by normal flow.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByContainer(ctx context.Context, container string) ([]Event, error)
}

// InMemoryStore keeps events in memory for tests and the dev environment.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Container] = append(s.events[event.Container], event)
	return nil
}

func (s *InMemoryStore) ListByContainer(_ context.Context, container string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[container]...), nil
}
