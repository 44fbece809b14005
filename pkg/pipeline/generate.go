package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/density"
	"github.com/matzehuels/starsky/pkg/noise"
	"github.com/matzehuels/starsky/pkg/placement"
	"github.com/matzehuels/starsky/pkg/rng"
	"github.com/matzehuels/starsky/pkg/sky"
)

// decorationSalt separates the decoration stream from the placement
// stream so avatar and animation draws never shift star positions.
const decorationSalt = 0x9e3779b97f4a7c15

// Generate runs one placement session over cat and decorates the result
// into a sky. It never consults a cache. A zero seed is replaced with one
// derived from the wall clock; the seed actually used is recorded in the
// returned sky.
func Generate(ctx context.Context, cat *catalog.Catalog, opts Options) (*sky.Sky, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	c := cat.Clone()
	if opts.Margin != 0 {
		c.Margin = opts.Margin
	}
	seed := opts.Seed
	if seed == 0 {
		seed = FreshSeed()
	}

	src := rng.New(seed)
	bounds := density.NewBounds(opts.Width, opts.Height, c.Margin)
	sampler, err := density.New(opts.Density, bounds, src, noise.New(NoiseSeed(seed)))
	if err != nil {
		return nil, err
	}

	session := placement.NewSession(opts.Engine, sampler, bounds, placement.WithLogger(opts.Logger))
	res, err := session.Run(ctx, c)
	if err != nil {
		return nil, err
	}

	return sky.Build(res, c, rng.New(seed^decorationSalt), sky.Options{
		Seed:     seed,
		Strategy: opts.Strategy,
		Width:    opts.Width,
		Height:   opts.Height,
	}), nil
}

// FreshSeed returns a non-zero seed derived from the wall clock.
func FreshSeed() uint64 {
	if s := uint64(time.Now().UnixNano()); s != 0 {
		return s
	}
	return 1
}

// NoiseSeed maps a run seed onto the noise field's real-valued seed. The
// field's generator steps its seed by one per draw, so the value is kept
// well inside the exactly representable integer range.
func NoiseSeed(seed uint64) float64 {
	return float64(seed % (1 << 32))
}
