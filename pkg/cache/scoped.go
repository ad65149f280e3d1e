package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-site isolation.
// This lets one cache directory serve several configured blogs without
// key collisions between them.
//
// Example usage:
//
//	// Session-specific keys for a browse session
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:abc123:")
//
//	// Global keys shared across invocations
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// PageKey generates a prefixed key for a fetched page of cards.
func (k *ScopedKeyer) PageKey(site string, page int, opts PageKeyOpts) string {
	return k.prefix + k.inner.PageKey(site, page, opts)
}

// CategoryKey generates a prefixed key for a filtered card set.
func (k *ScopedKeyer) CategoryKey(site, category string) string {
	return k.prefix + k.inner.CategoryKey(site, category)
}

// LayoutKey generates a prefixed key for a computed layout.
func (k *ScopedKeyer) LayoutKey(cardsHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(cardsHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
