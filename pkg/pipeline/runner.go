package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starsky/pkg/cache"
	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/observability"
	"github.com/matzehuels/starsky/pkg/sky"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeSky      = "sky"
	keyTypeArtifact = "artifact"
	keyTypeCatalog  = "catalog"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options; each
// call builds its own placement session.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, cat *catalog.Catalog, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Generate
	genStart := time.Now()
	s, skyHit, err := r.GenerateWithCacheInfo(ctx, cat, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Sky = s
	result.Stats.GenerateTime = time.Since(genStart)
	result.Stats.Stars = len(s.Stars)
	result.Stats.Target = cat.Total()
	result.CacheInfo.SkyHit = skyHit
	if h, err := cache.HashJSON(s); err == nil {
		result.SkyHash = h
	}

	r.Logger.Info("generated sky",
		"stars", result.Stats.Stars,
		"target", result.Stats.Target,
		"seed", s.Seed,
		"duration", result.Stats.GenerateTime)

	// Stage 2: Render
	renderStart := time.Now()
	var artifacts map[string][]byte
	var renderHit bool
	if opts.Pinned() {
		artifacts, renderHit, err = r.RenderWithCacheInfo(ctx, s, opts)
	} else {
		artifacts, err = r.renderObserved(ctx, s, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo generates a sky and reports whether it came from
// the cache. Only pinned seeds are cached; a zero seed always runs a fresh
// session.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, cat *catalog.Catalog, opts Options) (*sky.Sky, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	var cacheKey string
	if opts.Pinned() {
		catalogHash, err := cache.HashJSON(cat)
		if err != nil {
			return nil, false, fmt.Errorf("hash catalog: %w", err)
		}
		cacheKey = r.Keyer.SkyKey(catalogHash, opts.SkyKeyOpts())

		if !opts.Refresh {
			var cached sky.Sky
			if hit, _ := cache.GetJSON(ctx, r.Cache, cacheKey, &cached); hit {
				observability.Cache().OnCacheHit(ctx, keyTypeSky)
				return &cached, true, nil
			}
			observability.Cache().OnCacheMiss(ctx, keyTypeSky)
		}
	}

	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, opts.Strategy, opts.Seed)
	start := time.Now()
	s, err := Generate(ctx, cat, opts)
	if err != nil {
		hooks.OnGenerateComplete(ctx, opts.Strategy, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnGenerateComplete(ctx, opts.Strategy, len(s.Stars), time.Since(start), nil)

	if cacheKey != "" {
		if data, err := sky.Marshal(s); err == nil {
			if r.Cache.Set(ctx, cacheKey, data, cache.TTLSky) == nil {
				observability.Cache().OnCacheSet(ctx, keyTypeSky, len(data))
			}
		}
	}
	return s, false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, cat *catalog.Catalog, opts Options) (*sky.Sky, error) {
	s, _, err := r.GenerateWithCacheInfo(ctx, cat, opts)
	return s, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info. Artifacts are keyed by the sky's content hash, so re-rendering
// an unchanged sky document is served from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *sky.Sky, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	skyHash, err := cache.HashJSON(s)
	if err != nil {
		return nil, false, fmt.Errorf("hash sky for cache key: %w", err)
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(skyHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := r.renderObserved(ctx, s, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(skyHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, key, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, s *sky.Sky, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, opts)
	return artifacts, err
}

func (r *Runner) renderObserved(ctx context.Context, s *sky.Sky, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := Render(s, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
