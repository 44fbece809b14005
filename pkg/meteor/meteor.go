// Package meteor generates the shooting stars that cross the sky.
//
// Each meteor is drawn from a weighted table of [Type] values and flies a
// 45° path from the top-left of the viewport far enough to leave the
// opposite corner. A [Scheduler] emits meteors at random intervals until it
// is stopped.
package meteor

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/rng"
)

// Speed classes shape the tail's opacity ramp.
const (
	SpeedFast     = "fast"
	SpeedMedium   = "medium"
	SpeedVariable = "variable"
	SpeedBurst    = "burst"
)

// Type is one kind of meteor.
type Type struct {
	Name       string        `toml:"name" json:"name"`
	Weight     float64       `toml:"weight" json:"weight"`
	Duration   time.Duration `toml:"-" json:"duration"`
	TailLength float64       `toml:"tail_length" json:"tail_length"`
	Speed      string        `toml:"speed" json:"speed"`
}

// Config controls meteor frequency and kinds.
type Config struct {
	// SpawnRate is the chance that a scheduler tick produces a meteor.
	SpawnRate  float64       `json:"spawn_rate"`
	MinDelay   time.Duration `json:"min_delay"`
	MaxDelay   time.Duration `json:"max_delay"`
	StartDelay time.Duration `json:"start_delay"`
	Types      []Type        `json:"types"`
}

// DefaultTypes returns the built-in meteor table. Weights sum to 100.
func DefaultTypes() []Type {
	return []Type{
		{Name: "small", Weight: 50, Duration: 1500 * time.Millisecond, TailLength: 60, Speed: SpeedFast},
		{Name: "medium", Weight: 30, Duration: 2000 * time.Millisecond, TailLength: 80, Speed: SpeedMedium},
		{Name: "large", Weight: 12, Duration: 2500 * time.Millisecond, TailLength: 100, Speed: SpeedVariable},
		{Name: "burst", Weight: 5, Duration: 2200 * time.Millisecond, TailLength: 90, Speed: SpeedBurst},
		{Name: "golden", Weight: 2.5, Duration: 2800 * time.Millisecond, TailLength: 120, Speed: SpeedBurst},
		{Name: "blue", Weight: 0.5, Duration: 3000 * time.Millisecond, TailLength: 110, Speed: SpeedVariable},
	}
}

// DefaultConfig returns the default meteor configuration.
func DefaultConfig() Config {
	return Config{
		SpawnRate:  0.3,
		MinDelay:   2 * time.Second,
		MaxDelay:   8 * time.Second,
		StartDelay: 3 * time.Second,
		Types:      DefaultTypes(),
	}
}

// SetDefaults fills unset fields. A zero SpawnRate is kept only when Types
// is also set, so an explicit config can disable meteors.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if len(c.Types) == 0 {
		c.Types = d.Types
		if c.SpawnRate == 0 {
			c.SpawnRate = d.SpawnRate
		}
	}
	if c.MinDelay == 0 {
		c.MinDelay = d.MinDelay
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = d.MaxDelay
	}
	if c.StartDelay == 0 {
		c.StartDelay = d.StartDelay
	}
}

// Validate checks rates, delays and weights.
func (c Config) Validate() error {
	if c.SpawnRate < 0 || c.SpawnRate > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "meteor spawn rate %v outside [0,1]", c.SpawnRate)
	}
	if c.MinDelay <= 0 || c.MaxDelay < c.MinDelay {
		return errors.New(errors.ErrCodeInvalidConfig, "meteor delay range [%s,%s] is invalid", c.MinDelay, c.MaxDelay)
	}
	if TotalWeight(c.Types) <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "meteor types need a positive total weight")
	}
	for _, t := range c.Types {
		if t.Weight < 0 || t.Duration <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "meteor type %q has invalid weight or duration", t.Name)
		}
	}
	return nil
}

// TotalWeight sums the weights of types.
func TotalWeight(types []Type) float64 {
	var w float64
	for _, t := range types {
		w += t.Weight
	}
	return w
}

// Pick selects a type by cumulative weight. It falls back to the first type
// if rounding leaves the draw past the last bucket, and returns the zero
// Type for an empty table.
func Pick(types []Type, src rng.Source) Type {
	if len(types) == 0 {
		return Type{}
	}
	r := src.Float64() * TotalWeight(types)
	var cum float64
	for _, t := range types {
		cum += t.Weight
		if r <= cum {
			return t
		}
	}
	return types[0]
}

// TailOpacity returns the start and end opacity of a tail for a speed
// class. End values above 1 over-saturate the tail head.
func TailOpacity(speed string) (start, end float64) {
	switch speed {
	case SpeedFast:
		return 0.2, 0.9
	case SpeedVariable:
		return 0.1, 1.0
	case SpeedBurst:
		return 0.3, 1.2
	default:
		return 0.15, 0.8
	}
}

// Meteor is a single shooting star.
type Meteor struct {
	ID               string        `json:"id"`
	Type             string        `json:"type"`
	StartX           float64       `json:"start_x"`
	StartY           float64       `json:"start_y"`
	EndX             float64       `json:"end_x"`
	EndY             float64       `json:"end_y"`
	Duration         time.Duration `json:"duration"`
	TailLength       float64       `json:"tail_length"`
	TailOpacityStart float64       `json:"tail_opacity_start"`
	TailOpacityEnd   float64       `json:"tail_opacity_end"`
	SpawnedAt        time.Time     `json:"spawned_at"`
}

// Spawn creates a meteor for a width×height viewport. It starts somewhere in
// the top-left 30% of the screen, shifted 100px up and left, and travels at
// 45° for the screen diagonal plus 200px.
func Spawn(types []Type, src rng.Source, width, height float64) Meteor {
	t := Pick(types, src)
	startX := src.Float64()*width*0.3 - 100
	startY := src.Float64()*height*0.3 - 100

	dist := math.Hypot(width, height) + 200
	angle := math.Pi / 4
	lo, hi := TailOpacity(t.Speed)

	return Meteor{
		ID:               uuid.NewString(),
		Type:             t.Name,
		StartX:           startX,
		StartY:           startY,
		EndX:             startX + dist*math.Cos(angle),
		EndY:             startY + dist*math.Sin(angle),
		Duration:         t.Duration,
		TailLength:       t.TailLength,
		TailOpacityStart: lo,
		TailOpacityEnd:   hi,
	}
}

// Progress returns how far along its path m is at now, in [0,1].
func (m Meteor) Progress(now time.Time) float64 {
	if m.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(m.SpawnedAt)) / float64(m.Duration)
	return math.Max(0, math.Min(1, p))
}

// Position returns the head position at now.
func (m Meteor) Position(now time.Time) (x, y float64) {
	p := m.Progress(now)
	return m.StartX + p*(m.EndX-m.StartX), m.StartY + p*(m.EndY-m.StartY)
}

// Done reports whether m has finished crossing the sky at now.
func (m Meteor) Done(now time.Time) bool {
	return !now.Before(m.SpawnedAt.Add(m.Duration))
}
