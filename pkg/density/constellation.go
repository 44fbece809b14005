package density

import (
	"math"

	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/rng"
)

const (
	DefaultCentroids     = 6
	DefaultClusterRadius = 180.0
)

// ConstellationConfig tunes centroid clustering.
type ConstellationConfig struct {
	Centroids     int     `toml:"centroids" json:"centroids"`
	ClusterRadius float64 `toml:"cluster_radius" json:"cluster_radius"`
}

// SetDefaults fills zero fields.
func (c *ConstellationConfig) SetDefaults() {
	if c.Centroids == 0 {
		c.Centroids = DefaultCentroids
	}
	if c.ClusterRadius == 0 {
		c.ClusterRadius = DefaultClusterRadius
	}
}

// Validate checks the clustering.
func (c ConstellationConfig) Validate() error {
	if c.Centroids <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "constellation centroids must be positive, got %d", c.Centroids)
	}
	return errors.ValidatePositive(errors.ErrCodeInvalidConfig, "constellation cluster_radius", c.ClusterRadius)
}

// DefaultConstellationConfig returns the default clustering.
func DefaultConstellationConfig() ConstellationConfig {
	return ConstellationConfig{Centroids: DefaultCentroids, ClusterRadius: DefaultClusterRadius}
}

// Point is a fixed cluster centre.
type Point struct {
	X, Y float64
}

// ConstellationSampler scatters candidates around fixed centroids. The
// squared-uniform radius biases candidates toward each centre.
type ConstellationSampler struct {
	cfg       ConstellationConfig
	bounds    Bounds
	src       rng.Source
	centroids []Point
}

// NewConstellationSampler draws the centroids uniformly over bounds.
func NewConstellationSampler(cfg ConstellationConfig, bounds Bounds, src rng.Source) *ConstellationSampler {
	if cfg.Centroids <= 0 {
		cfg.Centroids = DefaultCentroids
	}
	if cfg.ClusterRadius <= 0 {
		cfg.ClusterRadius = DefaultClusterRadius
	}

	centroids := make([]Point, cfg.Centroids)
	for i := range centroids {
		x, y := bounds.Uniform(src)
		centroids[i] = Point{X: x, Y: y}
	}
	return &ConstellationSampler{cfg: cfg, bounds: bounds, src: src, centroids: centroids}
}

// Sample picks a centroid and offsets it by a random radius and angle,
// clamping the result into bounds.
func (s *ConstellationSampler) Sample() Candidate {
	c := s.centroids[rng.Intn(s.src, len(s.centroids))]

	u := s.src.Float64()
	r := u * u * s.cfg.ClusterRadius
	angle := s.src.Float64() * 2 * math.Pi

	x, y := s.bounds.Clamp(c.X+r*math.Cos(angle), c.Y+r*math.Sin(angle))
	return Candidate{X: x, Y: y, Probability: 1}
}

// Centroids returns a copy of the cluster centres.
func (s *ConstellationSampler) Centroids() []Point {
	return append([]Point(nil), s.centroids...)
}
