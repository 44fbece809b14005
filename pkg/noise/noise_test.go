package noise

import (
	"math"
	"testing"
)

func TestPermutationIsShuffledIdentity(t *testing.T) {
	f := New(12345.678)

	seen := make(map[int]bool)
	for i := 0; i < 256; i++ {
		v := f.perm[i]
		if v < 0 || v > 255 {
			t.Fatalf("perm[%d] = %d out of range", i, v)
		}
		if seen[v] {
			t.Fatalf("perm value %d repeated", v)
		}
		seen[v] = true
		if f.perm[i+256] != v {
			t.Errorf("perm[%d] = %d, want duplicate %d", i+256, f.perm[i+256], v)
		}
	}
}

func TestSampleDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	points := [][2]float64{{0.5, 0.5}, {13.37, -2.4}, {200.1, 300.9}, {-77.7, 0.01}}
	for _, p := range points {
		if x, y := a.Sample(p[0], p[1]), b.Sample(p[0], p[1]); x != y {
			t.Errorf("Sample(%v) = %v and %v, want identical", p, x, y)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a, b := New(1), New(2)
	diff := false
	for i := 0; i < 32; i++ {
		x := float64(i)*0.37 + 0.13
		if a.Sample(x, x*1.7) != b.Sample(x, x*1.7) {
			diff = true
			break
		}
	}
	if !diff {
		t.Error("seeds 1 and 2 produced identical fields")
	}
}

func TestSampleZeroAtLatticePoints(t *testing.T) {
	f := New(99)
	for x := -3; x <= 3; x++ {
		for y := -3; y <= 3; y++ {
			if v := f.Sample(float64(x), float64(y)); v != 0 {
				t.Errorf("Sample(%d,%d) = %v, want 0", x, y, v)
			}
		}
	}
}

func TestFractalBounds(t *testing.T) {
	f := New(2024)
	for octaves := 1; octaves <= 8; octaves++ {
		for _, persistence := range []float64{0.1, 0.55, 0.9} {
			for i := 0; i < 200; i++ {
				x := float64(i)*7.3 + 0.25
				y := float64(i)*3.1 + 0.75
				v := f.Fractal(x, y, octaves, persistence, 0.0025)
				if math.Abs(v) > 1.05 {
					t.Fatalf("Fractal(octaves=%d, p=%v) = %v, outside [-1.05,1.05]", octaves, persistence, v)
				}
			}
		}
	}
}

func TestFractalZeroOctaves(t *testing.T) {
	if v := New(1).Fractal(10, 10, 0, 0.5, 1); v != 0 {
		t.Errorf("Fractal with 0 octaves = %v, want 0", v)
	}
}

func TestFade(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{0.5, 0.5},
	}
	for _, tt := range tests {
		if got := fade(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("fade(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGrad(t *testing.T) {
	tests := []struct {
		hash int
		x, y float64
		want float64
	}{
		{0, 1, 2, 3},   // x + y
		{1, 1, 2, 1},   // -x + y
		{2, 1, 2, -1},  // x - y
		{3, 1, 2, -3},  // -x - y
		{4, 1, 2, 1},   // x + 0
		{8, 1, 2, 2},   // y + 0
		{12, 1, 2, 3},  // y + x
		{14, 1, 2, 1},  // y - x
		{13, 1, 2, -2}, // -y + 0
		{16, 1, 2, 3},  // masked to 0
	}
	for _, tt := range tests {
		if got := grad(tt.hash, tt.x, tt.y); got != tt.want {
			t.Errorf("grad(%d, %v, %v) = %v, want %v", tt.hash, tt.x, tt.y, got, tt.want)
		}
	}
}
