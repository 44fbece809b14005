// Package noise implements seeded two-dimensional gradient noise and its
// fractal (multi-octave) composition.
//
// A [Field] is built once per run from a real-valued seed and is immutable
// afterwards, so it may be shared freely. Identical seeds produce
// bit-identical output on every call.
package noise

import "math"

// Field is a seeded gradient-noise field.
type Field struct {
	perm [512]int
}

// New builds a field whose permutation table is a Fisher-Yates shuffle of
// 0..255 driven by a sine-hash generator started at seed, then duplicated.
func New(seed float64) *Field {
	f := &Field{}
	var p [256]int
	for i := range p {
		p[i] = i
	}

	next := sineHash(seed)
	for i := 255; i > 0; i-- {
		j := int(math.Floor(next() * float64(i+1)))
		p[i], p[j] = p[j], p[i]
	}

	for i := range f.perm {
		f.perm[i] = p[i&255]
	}
	return f
}

// sineHash returns the generator frac(sin(s)*10000) with s incremented
// after every draw.
func sineHash(seed float64) func() float64 {
	s := seed
	return func() float64 {
		x := math.Sin(s) * 10000
		s++
		return x - math.Floor(x)
	}
}

// Sample returns the noise value at (x, y), roughly within [-1, 1].
func (f *Field) Sample(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	X := int(fx) & 255
	Y := int(fy) & 255
	x -= fx
	y -= fy

	u, v := fade(x), fade(y)
	p := &f.perm

	a := p[X] + Y
	aa, ab := p[a], p[a+1]
	b := p[X+1] + Y
	ba, bb := p[b], p[b+1]

	return lerp(
		lerp(grad(p[aa], x, y), grad(p[ba], x-1, y), u),
		lerp(grad(p[ab], x, y-1), grad(p[bb], x-1, y-1), u),
		v,
	)
}

// Fractal sums octaves layers of Sample, doubling frequency and scaling
// amplitude by persistence per layer, normalised by the amplitude sum.
// It returns 0 for octaves <= 0.
func (f *Field) Fractal(x, y float64, octaves int, persistence, baseFrequency float64) float64 {
	var value, maxValue float64
	amplitude, frequency := 1.0, baseFrequency

	for range octaves {
		value += f.Sample(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	if maxValue == 0 {
		return 0
	}
	return value / maxValue
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func grad(hash int, x, y float64) float64 {
	h := hash & 15
	u := y
	if h < 8 {
		u = x
	}
	var v float64
	switch {
	case h < 4:
		v = y
	case h == 12 || h == 14:
		v = x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
