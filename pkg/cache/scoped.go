package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating namespaces that
// share one backing store. The gallery and the draw endpoint run against
// the same Redis instance with different scopes.
//
// Example usage:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "gallery:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer whose keys carry the given prefix. A
// nil inner keyer falls back to the default.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey prefixes the inner graph key.
func (k *ScopedKeyer) GraphKey(source string) string {
	return k.prefix + k.inner.GraphKey(source)
}

// LayoutKey prefixes the inner layout key.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// ArtifactKey prefixes the inner artifact key.
func (k *ScopedKeyer) ArtifactKey(positionHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(positionHash, opts)
}

var _ Keyer = (*ScopedKeyer)(nil)
