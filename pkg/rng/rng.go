// Package rng provides the injectable uniform random source used by every
// stochastic step of sky generation.
//
// Placement, sampling, decoration and meteor scheduling all draw from a
// [Source] instead of a package-global generator, so a run can be replayed
// exactly from its seed or driven by a fixed sequence in tests.
package rng

import (
	"math/rand/v2"
)

// Source yields uniform values in [0, 1).
type Source interface {
	Float64() float64
}

// New returns a PCG-backed source seeded with seed.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Range returns a uniform value in [lo, hi).
func Range(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Intn returns a uniform integer in [0, n). It returns 0 when n <= 0.
func Intn(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(src.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// =============================================================================
// Test helpers
// =============================================================================

// Sequence replays a fixed list of values, wrapping around at the end.
type Sequence struct {
	values []float64
	pos    int
}

// NewSequence creates a source that cycles through values.
// An empty sequence always yields 0.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next value in the sequence.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// Counting wraps a Source and counts draws.
type Counting struct {
	Source Source
	Draws  int
}

// Float64 delegates to the wrapped source.
func (c *Counting) Float64() float64 {
	c.Draws++
	return c.Source.Float64()
}
