// Package cache provides caching for shuffle results and rendered artifacts.
//
// Shuffling is deterministic: the same manuscript, rules, and seed always
// produce the same ordering. That makes results perfectly cacheable, keyed by
// content hashes. The package follows a small interface pair:
//   - Cache: storage backends (file for the CLI, null to disable)
//   - Keyer: key construction, so every component derives keys the same way
//
// Scoped keyers prefix keys for workspace isolation on the server.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement.
type Cache interface {
	// Get retrieves data for a key. The second return value reports whether
	// the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under a key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Default TTLs per key type. Shuffle results never go stale (the inputs are
// content-addressed), but bounded TTLs keep CLI cache directories from
// growing forever.
const (
	// ShuffleTTL is how long cached shuffle results are kept.
	ShuffleTTL = 30 * 24 * time.Hour

	// RenderTTL is how long rendered constraint graphs are kept.
	RenderTTL = 7 * 24 * time.Hour
)

// ShuffleKeyOpts captures everything besides the manuscript that influences
// a shuffle result.
type ShuffleKeyOpts struct {
	RulesHash string `json:"rules_hash"`
	Seed      uint64 `json:"seed"`
}

// RenderKeyOpts captures the rendering parameters for a constraint graph.
type RenderKeyOpts struct {
	Format string `json:"format"`
}

// Keyer generates cache keys for the different cached artifact types.
type Keyer interface {
	// ShuffleKey generates a key for a shuffle result, derived from the
	// manuscript hash and the options that determine the outcome.
	ShuffleKey(manuscriptHash string, opts ShuffleKeyOpts) string

	// RenderKey generates a key for a rendered constraint graph.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// DefaultKeyer is the standard key generation scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ShuffleKey generates a key of the form "shuffle:hash(...)".
func (k *DefaultKeyer) ShuffleKey(manuscriptHash string, opts ShuffleKeyOpts) string {
	return hashKey("shuffle", manuscriptHash, opts)
}

// RenderKey generates a key of the form "render:hash(...)".
func (k *DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
