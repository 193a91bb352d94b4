package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory workspace store for development and testing.
// Safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
}

// NewMemoryStore creates an in-memory workspace store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		workspaces: make(map[string]*Workspace),
	}
}

// Get retrieves a workspace by ID. Expired workspaces are dropped on read.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Workspace, error) {
	s.mu.RLock()
	ws, ok := s.workspaces[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if ws.IsExpired() {
		s.mu.Lock()
		delete(s.workspaces, id)
		s.mu.Unlock()
		return nil, nil
	}

	clone := *ws
	return &clone, nil
}

// Set stores a workspace.
func (s *MemoryStore) Set(ctx context.Context, ws *Workspace) error {
	clone := *ws
	s.mu.Lock()
	s.workspaces[ws.ID] = &clone
	s.mu.Unlock()
	return nil
}

// Delete removes a workspace.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.workspaces, id)
	s.mu.Unlock()
	return nil
}

// List returns the IDs of all live workspaces.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.workspaces))
	for id, ws := range s.workspaces {
		if !ws.IsExpired() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Cleanup removes expired workspaces.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ws := range s.workspaces {
		if ws.IsExpired() {
			delete(s.workspaces, id)
		}
	}
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
