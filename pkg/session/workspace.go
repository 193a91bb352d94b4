// Package session provides workspace storage for the storyshuffle server.
//
// A workspace holds one writer's manuscript and rules between requests, so
// the preview UI can reshuffle repeatedly without re-uploading the text. The
// Store interface supports:
//   - Get/Set/Delete/List operations
//   - Automatic expiration checking
//   - Cleanup of expired workspaces
//
// Two backends are provided:
//   - memory: In-memory storage for development/testing and single-instance use
//   - redis: Redis-backed storage for multi-instance deployments
//
// # Usage
//
// Create a store:
//
//	// Development
//	store := NewMemoryStore()
//
//	// Production
//	store, err := NewRedisStore(ctx, RedisConfig{
//	    Addr: "localhost:6379",
//	})
//
// Manage workspaces:
//
//	ws := session.NewWorkspace("draft-novel", text, rules)
//	store.Set(ctx, ws)
//
//	ws, err := store.Get(ctx, id)
//	if ws == nil {
//	    // not found or expired
//	}
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/storyshuffle/pkg/manuscript"
)

// DefaultTTL is how long an untouched workspace is kept.
const DefaultTTL = 24 * time.Hour

// Workspace stores one writer's manuscript and rules between requests.
type Workspace struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Manuscript string           `json:"manuscript"`
	Rules      manuscript.Rules `json:"rules"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	ExpiresAt  time.Time        `json:"expires_at"`
}

// IsExpired returns true if the workspace has expired.
func (w *Workspace) IsExpired() bool {
	return !w.ExpiresAt.IsZero() && time.Now().After(w.ExpiresAt)
}

// Touch extends the workspace lifetime and bumps the update timestamp.
func (w *Workspace) Touch(ttl time.Duration) {
	now := time.Now()
	w.UpdatedAt = now
	w.ExpiresAt = now.Add(ttl)
}

// NewWorkspace creates a workspace with a fresh UUID and the default TTL.
func NewWorkspace(name, text string, rules manuscript.Rules) *Workspace {
	now := time.Now()
	return &Workspace{
		ID:         uuid.NewString(),
		Name:       name,
		Manuscript: text,
		Rules:      rules,
		CreatedAt:  now,
		UpdatedAt:  now,
		ExpiresAt:  now.Add(DefaultTTL),
	}
}

// Store is the interface for workspace storage backends.
type Store interface {
	// Get retrieves a workspace by ID.
	// Returns nil, nil if the workspace doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Workspace, error)

	// Set stores a workspace.
	Set(ctx context.Context, ws *Workspace) error

	// Delete removes a workspace.
	Delete(ctx context.Context, id string) error

	// List returns all live workspace IDs.
	List(ctx context.Context) ([]string, error)

	// Cleanup removes expired workspaces (may be a no-op for Redis, which
	// expires keys itself).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
