package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful in server deployments where different workspaces need
// separate cache namespaces.
//
// Example usage:
//
//	// Workspace-specific keys for private flows
//	wsKeyer := NewScopedKeyer(NewDefaultKeyer(), "ws:abc123:")
//
//	// Global keys for shared flows
//	globalKeyer := NewDefaultKeyer()
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

// GraphKey generates a prefixed key for parsed-graph caching.
func (k *ScopedKeyer) GraphKey(flowHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(flowHash, opts)
}

// FragmentsKey generates a prefixed key for conversion-result caching.
func (k *ScopedKeyer) FragmentsKey(flowHash string, opts FragmentsKeyOpts) string {
	return k.prefix + k.inner.FragmentsKey(flowHash, opts)
}

// ArtifactKey generates a prefixed key for emitted-artifact caching.
func (k *ScopedKeyer) ArtifactKey(flowHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(flowHash, opts)
}
