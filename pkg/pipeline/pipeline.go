// Package pipeline provides the core sky pipeline for starsky.
//
// This package implements the complete catalog → placement → render
// pipeline used by the CLI and the HTTP server, so every entry point
// produces the same sky for the same inputs.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Catalog: Load the tier catalog (file, HTTP or MongoDB), falling back
//     to the built-in catalog on any failure
//  2. Generate: Run a placement session and decorate the accepted points
//     into a [sky.Sky]
//  3. Render: Produce artifacts in the requested formats (HTML, SVG, PNG,
//     JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Width:   1920,
//	    Height:  1080,
//	    Seed:    42,
//	    Formats: []string{"html", "png"},
//	}
//	result, err := runner.Execute(ctx, catalog.Default(), opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts["html"]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starsky/pkg/cache"
	"github.com/matzehuels/starsky/pkg/density"
	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/meteor"
	"github.com/matzehuels/starsky/pkg/placement"
	"github.com/matzehuels/starsky/pkg/sky"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1920.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 1080.0

	// DefaultStrategy is the default density strategy.
	DefaultStrategy = density.StrategyNoise

	// DefaultScale is the default PNG pixel ratio.
	DefaultScale = 2.0

	// MaxScale bounds the PNG pixel ratio.
	MaxScale = 4.0
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the sky pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Generate options
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Margin   float64 `json:"margin,omitempty"` // 0 keeps the catalog margin
	Seed     uint64  `json:"seed,omitempty"`   // 0 draws a fresh seed per run
	Strategy string  `json:"strategy,omitempty"`
	Relaxed  bool    `json:"relaxed,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Popups  bool     `json:"popups,omitempty"`
	Meteors bool     `json:"meteors,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Refresh skips cache reads. Results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Engine        placement.Config `json:"-"`
	Density       density.Config   `json:"-"`
	MeteorConfig  meteor.Config    `json:"-"`
	RegenerateURL string           `json:"-"`
	AutoReload    time.Duration    `json:"-"` // HTML page reload interval, 0 disables
	Logger        *log.Logger      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Sky is the generated sky document.
	Sky *sky.Sky

	// SkyHash is the content hash of the sky document.
	SkyHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Stars        int
	Target       int
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SkyHit    bool // Whether the sky came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: html, svg, png, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates the full pipeline
// options. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills zero fields with defaults.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.Engine.Relaxed = o.Engine.Relaxed || o.Relaxed
	o.Engine.SetDefaults()
	o.Density.Strategy = o.Strategy
	if o.Density.Noise == (density.NoiseConfig{}) {
		o.Density.Noise = density.DefaultNoiseConfig()
	}
	o.Density.Noise.SetDefaults()
	o.Density.Constellation.SetDefaults()
	if o.Meteors {
		o.MeteorConfig.SetDefaults()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options without changing them.
func (o *Options) Validate() error {
	if err := errors.ValidateViewport(o.Width, o.Height, o.Margin); err != nil {
		return err
	}
	if err := density.ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if err := o.Engine.Validate(); err != nil {
		return err
	}
	if err := o.Density.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidatePositive(errors.ErrCodeInvalidConfig, "scale", o.Scale); err != nil {
		return err
	}
	if err := o.validateRaster(); err != nil {
		return err
	}
	if o.AutoReload < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "auto reload must be non-negative, got %s", o.AutoReload)
	}
	if o.Meteors {
		if err := o.MeteorConfig.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateRaster bounds the PNG canvas. The scale limit applies to every
// format; the pixel limit only when PNG is requested.
func (o *Options) validateRaster() error {
	if o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidViewport, "scale must be at most %g, got %g", MaxScale, o.Scale)
	}
	if !slices.Contains(o.Formats, FormatPNG) {
		return nil
	}
	if o.Width*o.Scale > errors.MaxViewport || o.Height*o.Scale > errors.MaxViewport {
		return errors.New(errors.ErrCodeInvalidViewport,
			"png of %gx%g at scale %g exceeds %d px", o.Width, o.Height, o.Scale, errors.MaxViewport)
	}
	return nil
}

// Pinned reports whether the seed is fixed, which makes the sky cacheable.
func (o *Options) Pinned() bool { return o.Seed != 0 }

// SkyKeyOpts returns cache key options for sky generation.
func (o *Options) SkyKeyOpts() cache.SkyKeyOpts {
	engine, _ := cache.HashJSON(struct {
		Engine  placement.Config `json:"engine"`
		Density density.Config   `json:"density"`
	}{o.Engine, o.Density})
	return cache.SkyKeyOpts{
		Width:    o.Width,
		Height:   o.Height,
		Margin:   o.Margin,
		Seed:     o.Seed,
		Strategy: o.Strategy,
		Relaxed:  o.Relaxed,
		Engine:   engine,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatSVG:
		k.Popups = o.Popups
	case FormatHTML:
		k.Meteors = o.Meteors
		k.Page, _ = cache.HashJSON(struct {
			Title      string        `json:"title"`
			Regenerate string        `json:"regenerate"`
			Reload     time.Duration `json:"reload"`
			Meteors    meteor.Config `json:"meteors"`
		}{o.Title, o.RegenerateURL, o.AutoReload, o.MeteorConfig})
	}
	return k
}
