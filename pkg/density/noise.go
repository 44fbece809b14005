package density

import (
	"math"

	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/noise"
	"github.com/matzehuels/starsky/pkg/rng"
)

// Default noise distribution values.
const (
	DefaultScale                = 0.0025
	DefaultOctaves              = 5
	DefaultPersistence          = 0.55
	DefaultDensityThreshold     = -0.1
	DefaultMaxDensity           = 2.2
	DefaultMinDensity           = 0.05
	DefaultClusterStrength      = 0.9
	DefaultSparseness           = 0.2
	DefaultTransitionSmoothness = 1.5
	DefaultMaxRetries           = 100

	// fallbackProbability is reported for candidates returned after the
	// retry budget is exhausted.
	fallbackProbability = 0.5
)

// NoiseConfig tunes the noise-driven distribution.
type NoiseConfig struct {
	Scale                float64 `toml:"scale" json:"scale"`
	Octaves              int     `toml:"octaves" json:"octaves"`
	Persistence          float64 `toml:"persistence" json:"persistence"`
	DensityThreshold     float64 `toml:"density_threshold" json:"density_threshold"`
	MaxDensity           float64 `toml:"max_density" json:"max_density"`
	MinDensity           float64 `toml:"min_density" json:"min_density"`
	ClusterStrength      float64 `toml:"cluster_strength" json:"cluster_strength"`
	Sparseness           float64 `toml:"sparseness" json:"sparseness"`
	TransitionSmoothness float64 `toml:"transition_smoothness" json:"transition_smoothness"`
	MaxRetries           int     `toml:"max_retries" json:"max_retries"`
}

// DefaultNoiseConfig returns the default distribution.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Scale:                DefaultScale,
		Octaves:              DefaultOctaves,
		Persistence:          DefaultPersistence,
		DensityThreshold:     DefaultDensityThreshold,
		MaxDensity:           DefaultMaxDensity,
		MinDensity:           DefaultMinDensity,
		ClusterStrength:      DefaultClusterStrength,
		Sparseness:           DefaultSparseness,
		TransitionSmoothness: DefaultTransitionSmoothness,
		MaxRetries:           DefaultMaxRetries,
	}
}

// SetDefaults fills zero fields with defaults. DensityThreshold is left
// alone because zero is a meaningful threshold.
func (c *NoiseConfig) SetDefaults() {
	d := DefaultNoiseConfig()
	if c.Scale == 0 {
		c.Scale = d.Scale
	}
	if c.Octaves == 0 {
		c.Octaves = d.Octaves
	}
	if c.Persistence == 0 {
		c.Persistence = d.Persistence
	}
	if c.MaxDensity == 0 {
		c.MaxDensity = d.MaxDensity
	}
	if c.MinDensity == 0 {
		c.MinDensity = d.MinDensity
	}
	if c.ClusterStrength == 0 {
		c.ClusterStrength = d.ClusterStrength
	}
	if c.Sparseness == 0 {
		c.Sparseness = d.Sparseness
	}
	if c.TransitionSmoothness == 0 {
		c.TransitionSmoothness = d.TransitionSmoothness
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
}

// Validate checks the distribution tuning.
func (c NoiseConfig) Validate() error {
	if c.Octaves < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "distribution octaves must be at least 1, got %d", c.Octaves)
	}
	if c.MaxRetries <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "distribution max_retries must be positive, got %d", c.MaxRetries)
	}
	if !(c.Persistence > 0 && c.Persistence < 1) {
		return errors.New(errors.ErrCodeInvalidConfig, "distribution persistence must be in (0,1), got %v", c.Persistence)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"scale", c.Scale},
		{"max_density", c.MaxDensity},
		{"min_density", c.MinDensity},
		{"sparseness", c.Sparseness},
		{"transition_smoothness", c.TransitionSmoothness},
	} {
		if err := errors.ValidatePositive(errors.ErrCodeInvalidConfig, "distribution "+f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// Dense reports whether a noise value falls in the dense regime.
func (c NoiseConfig) Dense(n float64) bool {
	return n > c.DensityThreshold
}

// Probability maps a noise value to an acceptance probability. Values above
// 1 are possible and simply always accept.
func (c NoiseConfig) Probability(n float64) float64 {
	normalized := (n + 1) / 2

	if c.Dense(n) {
		enhanced := math.Pow(normalized, 1/c.TransitionSmoothness)
		p := math.Pow(enhanced, 1-c.ClusterStrength) * c.MaxDensity
		if n > 0.3 {
			p *= 1.5
		}
		return p
	}

	p := normalized * c.MinDensity * c.Sparseness * math.Exp(n*2)
	if n < -0.4 {
		p *= 0.3
	}
	return p
}

// NoiseSampler rejection-samples positions against noise-derived density.
type NoiseSampler struct {
	cfg    NoiseConfig
	bounds Bounds
	src    rng.Source
	field  *noise.Field
}

// NewNoiseSampler creates a noise-driven sampler. Zero config fields take
// their defaults.
func NewNoiseSampler(cfg NoiseConfig, bounds Bounds, src rng.Source, field *noise.Field) *NoiseSampler {
	cfg.SetDefaults()
	return &NoiseSampler{cfg: cfg, bounds: bounds, src: src, field: field}
}

// Sample draws up to MaxRetries uniform candidates and accepts the first
// whose independent draw falls below its probability. If none is accepted
// it returns a uniform point flagged as a fallback.
func (s *NoiseSampler) Sample() Candidate {
	for range s.cfg.MaxRetries {
		x, y := s.bounds.Uniform(s.src)
		n := s.field.Fractal(x, y, s.cfg.Octaves, s.cfg.Persistence, s.cfg.Scale)
		p := s.cfg.Probability(n)
		if s.src.Float64() < p {
			return Candidate{X: x, Y: y, Noise: n, Probability: p}
		}
	}

	x, y := s.bounds.Uniform(s.src)
	return Candidate{X: x, Y: y, Probability: fallbackProbability, Fallback: true}
}

// Config returns the effective configuration.
func (s *NoiseSampler) Config() NoiseConfig { return s.cfg }
