// Package density draws candidate star positions according to a spatial
// density distribution.
//
// Two strategies are provided behind the [Sampler] interface:
//
//   - [NoiseSampler] rejection-samples against a probability derived from
//     fractal noise, producing organic dense patches and sparse voids.
//   - [ConstellationSampler] scatters points around a few fixed centroids,
//     biased toward each centroid.
//
// The strategy is chosen once per run with [New]. Samplers are not safe for
// concurrent use; each placement session owns its own.
package density

import (
	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/noise"
	"github.com/matzehuels/starsky/pkg/rng"
)

// Strategy names accepted by [New].
const (
	StrategyNoise         = "noise"
	StrategyConstellation = "constellation"
)

// ValidStrategies is the set of supported sampling strategies.
var ValidStrategies = map[string]bool{
	StrategyNoise:         true,
	StrategyConstellation: true,
}

// Candidate is a proposed star position.
type Candidate struct {
	X, Y        float64
	Noise       float64 // noise value at the position (0 for constellation/fallback)
	Probability float64 // acceptance probability that admitted the candidate
	Fallback    bool    // true when the sampler gave up and returned a uniform point
}

// Sampler yields candidate positions inside its bounds. Sample never fails.
type Sampler interface {
	Sample() Candidate
}

// Bounds is the placeable rectangle.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// NewBounds returns the viewport rectangle shrunk by margin on every side.
func NewBounds(width, height, margin float64) Bounds {
	return Bounds{
		MinX: margin,
		MinY: margin,
		MaxX: width - margin,
		MaxY: height - margin,
	}
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Empty reports whether the rectangle has negative extent on either axis.
// A zero-extent rectangle is a single line or point and is not empty.
func (b Bounds) Empty() bool {
	return b.MaxX < b.MinX || b.MaxY < b.MinY
}

// Contains reports whether (x, y) lies inside the closed rectangle.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Uniform draws a uniform point in the rectangle.
func (b Bounds) Uniform(src rng.Source) (float64, float64) {
	x := src.Float64()*b.Width() + b.MinX
	y := src.Float64()*b.Height() + b.MinY
	return x, y
}

// Clamp moves (x, y) to the nearest point of the rectangle.
func (b Bounds) Clamp(x, y float64) (float64, float64) {
	return min(max(x, b.MinX), b.MaxX), min(max(y, b.MinY), b.MaxY)
}

// Config bundles the settings of both strategies.
type Config struct {
	Strategy      string
	Noise         NoiseConfig
	Constellation ConstellationConfig
}

// DefaultConfig returns the noise strategy with default tuning.
func DefaultConfig() Config {
	return Config{
		Strategy:      StrategyNoise,
		Noise:         DefaultNoiseConfig(),
		Constellation: DefaultConstellationConfig(),
	}
}

// Validate checks the strategy and the tuning of both samplers.
func (c Config) Validate() error {
	if c.Strategy != "" {
		if err := ValidateStrategy(c.Strategy); err != nil {
			return err
		}
	}
	if err := c.Noise.Validate(); err != nil {
		return err
	}
	return c.Constellation.Validate()
}

// ValidateStrategy checks that name is a supported strategy.
func ValidateStrategy(name string) error {
	if !ValidStrategies[name] {
		return errors.New(errors.ErrCodeInvalidStrategy, "invalid strategy: %q (must be one of: noise, constellation)", name)
	}
	return nil
}

// New builds the sampler selected by cfg.Strategy. An empty strategy
// selects the noise sampler. field may be nil for the constellation
// strategy.
func New(cfg Config, bounds Bounds, src rng.Source, field *noise.Field) (Sampler, error) {
	switch cfg.Strategy {
	case "", StrategyNoise:
		if field == nil {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "noise strategy requires a noise field")
		}
		return NewNoiseSampler(cfg.Noise, bounds, src, field), nil
	case StrategyConstellation:
		return NewConstellationSampler(cfg.Constellation, bounds, src), nil
	default:
		return nil, ValidateStrategy(cfg.Strategy)
	}
}
