package cache

// ScopedKeyer wraps a Keyer with a prefix for workspace isolation.
// The server gives every workspace its own cache namespace so one writer's
// manuscripts never collide with another's.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ws:"+workspaceID+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ShuffleKey generates a prefixed key for a shuffle result.
func (k *ScopedKeyer) ShuffleKey(manuscriptHash string, opts ShuffleKeyOpts) string {
	return k.prefix + k.inner.ShuffleKey(manuscriptHash, opts)
}

// RenderKey generates a prefixed key for a rendered constraint graph.
func (k *ScopedKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(graphHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
