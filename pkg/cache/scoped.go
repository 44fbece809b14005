package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// deployments (or a test run) can share one Redis without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "starsky:prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SkyKey generates a prefixed sky key.
func (k *ScopedKeyer) SkyKey(catalogHash string, opts SkyKeyOpts) string {
	return k.prefix + k.inner.SkyKey(catalogHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(skyHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(skyHash, opts)
}

// CatalogKey generates a prefixed catalog key.
func (k *ScopedKeyer) CatalogKey(source string) string {
	return k.prefix + k.inner.CatalogKey(source)
}
