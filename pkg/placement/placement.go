// Package placement scatters star points over the viewport, tier by tier,
// keeping every new point clear of all points accepted before it.
//
// A [Session] owns the accepted set for one run. Each tier gets a bounded
// attempt budget; visually important tiers also get a ladder of shrinking
// spacings that the engine steps down when candidates keep colliding, and
// a forced post-pass that retries with a small clamped spacing if the tier
// is still short. Shortfalls are reported, never returned as errors.
//
// Placement produces data only. Rendering consumes the resulting
// [Result] afterwards.
package placement

import (
	"math"
	"time"

	"github.com/matzehuels/starsky/pkg/density"
	"github.com/matzehuels/starsky/pkg/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	DefaultBaseSize             = 18.0
	DefaultMaxAttempts          = 2000
	DefaultImportantMaxAttempts = 5000
	DefaultRelaxedDistance      = 20.0
	DefaultForcedRounds         = 3
	DefaultForcedAttempts       = 3000
	DefaultForcedFloor          = 15.0

	// progressInterval is how often (in attempts) progress is logged.
	progressInterval = 500
)

// Config tunes the engine.
type Config struct {
	BaseSize             float64 `toml:"base_size" json:"base_size"`
	MaxAttempts          int     `toml:"max_attempts" json:"max_attempts"`
	ImportantMaxAttempts int     `toml:"important_max_attempts" json:"important_max_attempts"`
	RelaxedDistance      float64 `toml:"relaxed_distance" json:"relaxed_distance"`
	ForcedRounds         int     `toml:"forced_rounds" json:"forced_rounds"`
	ForcedAttempts       int     `toml:"forced_attempts" json:"forced_attempts"`
	ForcedFloor          float64 `toml:"forced_floor" json:"forced_floor"`

	// Relaxed places ordinary tiers at RelaxedDistance instead of their own
	// minimum spacing.
	Relaxed bool `toml:"relaxed" json:"relaxed,omitempty"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		BaseSize:             DefaultBaseSize,
		MaxAttempts:          DefaultMaxAttempts,
		ImportantMaxAttempts: DefaultImportantMaxAttempts,
		RelaxedDistance:      DefaultRelaxedDistance,
		ForcedRounds:         DefaultForcedRounds,
		ForcedAttempts:       DefaultForcedAttempts,
		ForcedFloor:          DefaultForcedFloor,
	}
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.BaseSize == 0 {
		c.BaseSize = d.BaseSize
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.ImportantMaxAttempts == 0 {
		c.ImportantMaxAttempts = d.ImportantMaxAttempts
	}
	if c.RelaxedDistance == 0 {
		c.RelaxedDistance = d.RelaxedDistance
	}
	if c.ForcedRounds == 0 {
		c.ForcedRounds = d.ForcedRounds
	}
	if c.ForcedAttempts == 0 {
		c.ForcedAttempts = d.ForcedAttempts
	}
	if c.ForcedFloor == 0 {
		c.ForcedFloor = d.ForcedFloor
	}
}

// Validate rejects budgets and spacings that would leave the sky empty.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"max_attempts", c.MaxAttempts},
		{"important_max_attempts", c.ImportantMaxAttempts},
		{"forced_rounds", c.ForcedRounds},
		{"forced_attempts", c.ForcedAttempts},
	} {
		if f.v <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "engine %s must be positive, got %d", f.name, f.v)
		}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"base_size", c.BaseSize},
		{"relaxed_distance", c.RelaxedDistance},
		{"forced_floor", c.ForcedFloor},
	} {
		if err := errors.ValidatePositive(errors.ErrCodeInvalidConfig, "engine "+f.name, f.v); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Results
// =============================================================================

// ForcedStep marks points placed by the forced post-pass.
const ForcedStep = -1

// Point is an accepted star position. Points are never mutated once
// accepted.
type Point struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Tier        string  `json:"tier"`
	TierIndex   int     `json:"tier_index"`
	Scale       float64 `json:"scale"`
	Noise       float64 `json:"noise"`
	Probability float64 `json:"probability"`
	Spacing     float64 `json:"spacing"`
	Step        int     `json:"step"`
	Forced      bool    `json:"forced,omitempty"`
}

// Distance returns the Euclidean distance between p and (x, y).
func (p Point) Distance(x, y float64) float64 {
	return math.Hypot(p.X-x, p.Y-y)
}

// TierReport summarises one tier's placement.
type TierReport struct {
	Name           string    `json:"name"`
	Target         int       `json:"target"`
	Placed         int       `json:"placed"`
	Forced         int       `json:"forced"`
	Attempts       int       `json:"attempts"`
	ForcedAttempts int       `json:"forced_attempts,omitempty"`
	Steps          []float64 `json:"steps"`
	FinalSpacing   float64   `json:"final_spacing"`
	Short          bool      `json:"short,omitempty"`
}

// Missing returns how many stars the tier is short by.
func (r TierReport) Missing() int {
	return max(r.Target-r.Placed, 0)
}

// Stats describes the noise distribution of accepted points.
type Stats struct {
	Count           int     `json:"count"`
	NoiseMin        float64 `json:"noise_min"`
	NoiseMax        float64 `json:"noise_max"`
	NoiseMean       float64 `json:"noise_mean"`
	ProbabilityMean float64 `json:"probability_mean"`
	Dense           int     `json:"dense"`
	Sparse          int     `json:"sparse"`
	DenseRatio      float64 `json:"dense_ratio"`
}

// ComputeStats summarises points against threshold, the noise value above
// which a point counts as dense.
func ComputeStats(points []Point, threshold float64) Stats {
	s := Stats{Count: len(points)}
	if len(points) == 0 {
		return s
	}

	s.NoiseMin, s.NoiseMax = math.Inf(1), math.Inf(-1)
	var noiseSum, probSum float64
	for _, p := range points {
		s.NoiseMin = min(s.NoiseMin, p.Noise)
		s.NoiseMax = max(s.NoiseMax, p.Noise)
		noiseSum += p.Noise
		probSum += p.Probability
		if p.Noise > threshold {
			s.Dense++
		} else {
			s.Sparse++
		}
	}
	n := float64(len(points))
	s.NoiseMean = noiseSum / n
	s.ProbabilityMean = probSum / n
	s.DenseRatio = float64(s.Dense) / n
	return s
}

// Result is the outcome of a full run.
type Result struct {
	RunID    string        `json:"run_id"`
	Points   []Point       `json:"points"`
	Reports  []TierReport  `json:"reports"`
	Stats    Stats         `json:"stats"`
	Duration time.Duration `json:"duration"`
}

// Placed returns the number of accepted points.
func (r *Result) Placed() int { return len(r.Points) }

// Target returns the sum of tier targets.
func (r *Result) Target() int {
	n := 0
	for _, rep := range r.Reports {
		n += rep.Target
	}
	return n
}

// ByTier groups points by tier name.
func (r *Result) ByTier() map[string][]Point {
	out := make(map[string][]Point)
	for _, p := range r.Points {
		out[p.Tier] = append(out[p.Tier], p)
	}
	return out
}

// statsThreshold returns the dense/sparse threshold for stats, taken from
// the noise sampler when there is one.
func statsThreshold(s density.Sampler) float64 {
	if ns, ok := s.(*density.NoiseSampler); ok {
		return ns.Config().DensityThreshold
	}
	return density.DefaultDensityThreshold
}
