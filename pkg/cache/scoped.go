package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each dataset its own
// namespace in a shared backend.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "bani-harjo:")
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

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(snapshotHash, opts)
}

// RelationshipKey generates a prefixed key for relationship caching.
func (k *ScopedKeyer) RelationshipKey(snapshotHash string, a, b int64) string {
	return k.prefix + k.inner.RelationshipKey(snapshotHash, a, b)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
