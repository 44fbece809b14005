// Package pkg provides the core libraries for Starsky starry-sky generation.
//
// # Overview
//
// Starsky scatters a catalog of star tiers over a viewport. Stars keep a
// minimum distance from each other (Poisson-disk sampling), cluster where a
// density field is strong, and are decorated and rendered as an animated
// web page, SVG, PNG, JSON document or terminal preview.
//
// # Architecture
//
// The typical data flow:
//
//	Tier catalog (built-in, file, HTTP, MongoDB)
//	         ↓
//	    [catalog] package (validated tiers and subscriptions)
//	         ↓
//	    [density] + [noise] packages (acceptance probability per point)
//	         ↓
//	    [placement] package (tiered Poisson-disk session)
//	         ↓
//	    [sky] package (decorated, serialisable star field)
//	         ↓
//	    [render/sink] package (HTML/SVG/PNG/JSON/terminal)
//
// [pipeline] orchestrates the flow with caching, [server] exposes it over
// HTTP and [config] reads the TOML configuration shared by both.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/starsky/pkg/catalog"
//	    "github.com/matzehuels/starsky/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), catalog.Default(), pipeline.Options{
//	    Width:   1920,
//	    Height:  1080,
//	    Formats: []string{pipeline.FormatHTML},
//	})
//	page := res.Artifacts[pipeline.FormatHTML]
//
// # Supporting Packages
//
// [rng] wraps seeded randomness so a seed reproduces a sky. [meteor]
// schedules shooting stars. [cache] stores skies and renders in files or
// Redis. [httputil] fetches remote catalogs with retry. [errors] carries
// machine-readable error codes. [observability] exposes hooks for
// placement, pipeline, cache and HTTP events. [buildinfo] reports the
// version.
package pkg
