package pipeline

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/starsky/pkg/cache"
	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/observability"
)

// CatalogInfo describes where a loaded catalog came from.
type CatalogInfo struct {
	Source   string
	Fallback bool // the built-in catalog replaced a failed load
	CacheHit bool
}

// LoadCatalog loads the tier catalog from src, falling back to the
// built-in catalog on any failure. Remote sources (HTTP and MongoDB) are
// cached for [cache.TTLCatalog]; refresh skips the cached copy. A nil src
// yields the built-in catalog.
func (r *Runner) LoadCatalog(ctx context.Context, src catalog.Source, refresh bool) (*catalog.Catalog, CatalogInfo) {
	if src == nil {
		return catalog.Default(), CatalogInfo{Source: "default", Fallback: true}
	}
	info := CatalogInfo{Source: src.String()}

	if !remote(src) {
		c, fallback := catalog.LoadOrDefault(ctx, src, r.Logger)
		info.Fallback = fallback
		return c, info
	}

	key := r.Keyer.CatalogKey(src.String())
	if !refresh {
		var cached catalog.Catalog
		if hit, _ := cache.GetJSON(ctx, r.Cache, key, &cached); hit && cached.Validate() == nil {
			observability.Cache().OnCacheHit(ctx, keyTypeCatalog)
			info.CacheHit = true
			return &cached, info
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeCatalog)
	}

	c, fallback := catalog.LoadOrDefault(ctx, src, r.Logger)
	info.Fallback = fallback
	if !fallback {
		if data, err := json.Marshal(c); err == nil && r.Cache.Set(ctx, key, data, cache.TTLCatalog) == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeCatalog, len(data))
		}
	}
	return c, info
}

func remote(src catalog.Source) bool {
	switch src.(type) {
	case catalog.HTTPSource, *catalog.HTTPSource, catalog.MongoSource, *catalog.MongoSource:
		return true
	}
	return false
}
