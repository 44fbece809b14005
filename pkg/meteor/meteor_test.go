package meteor

import (
	"math"
	"testing"
	"time"

	"github.com/matzehuels/starsky/pkg/rng"
)

func TestPick(t *testing.T) {
	types := DefaultTypes()
	tests := []struct {
		draw float64
		want string
	}{
		{0, "small"},
		{0.5, "small"},
		{0.51, "medium"},
		{0.9, "large"},
		{0.95, "burst"},
		{0.99, "golden"},
		{0.999, "blue"},
	}
	for _, tt := range tests {
		if got := Pick(types, rng.NewSequence(tt.draw)); got.Name != tt.want {
			t.Errorf("Pick(%v) = %s, want %s", tt.draw, got.Name, tt.want)
		}
	}

	if got := Pick(nil, rng.NewSequence(0.5)); got.Name != "" {
		t.Errorf("Pick(nil) = %+v", got)
	}
}

func TestPickFrequencies(t *testing.T) {
	types := DefaultTypes()
	src := rng.New(11)
	counts := map[string]int{}
	const n = 100000
	for range n {
		counts[Pick(types, src).Name]++
	}
	for _, typ := range types {
		got := float64(counts[typ.Name]) / n * 100
		if math.Abs(got-typ.Weight) > 1.5 {
			t.Errorf("%s frequency = %.2f%%, want ~%v%%", typ.Name, got, typ.Weight)
		}
	}
}

func TestDefaultWeights(t *testing.T) {
	if w := TotalWeight(DefaultTypes()); w != 100 {
		t.Errorf("TotalWeight = %v, want 100", w)
	}
}

func TestTailOpacity(t *testing.T) {
	tests := []struct {
		speed      string
		start, end float64
	}{
		{SpeedFast, 0.2, 0.9},
		{SpeedVariable, 0.1, 1.0},
		{SpeedBurst, 0.3, 1.2},
		{SpeedMedium, 0.15, 0.8},
		{"", 0.15, 0.8},
	}
	for _, tt := range tests {
		start, end := TailOpacity(tt.speed)
		if start != tt.start || end != tt.end {
			t.Errorf("TailOpacity(%q) = %v,%v want %v,%v", tt.speed, start, end, tt.start, tt.end)
		}
	}
}

func TestSpawn(t *testing.T) {
	m := Spawn(DefaultTypes(), rng.NewSequence(0, 0.5, 0.5), 1000, 800)

	if m.Type != "small" || m.Duration != 1500*time.Millisecond || m.TailLength != 60 {
		t.Errorf("meteor = %+v", m)
	}
	if m.StartX != 50 || m.StartY != 20 {
		t.Errorf("start = (%v,%v), want (50,20)", m.StartX, m.StartY)
	}
	dx, dy := m.EndX-m.StartX, m.EndY-m.StartY
	if math.Abs(dx-dy) > 1e-9 {
		t.Errorf("trajectory is not 45°: dx=%v dy=%v", dx, dy)
	}
	if want := math.Hypot(1000, 800) + 200; math.Abs(math.Hypot(dx, dy)-want) > 1e-9 {
		t.Errorf("length = %v, want %v", math.Hypot(dx, dy), want)
	}
	if m.TailOpacityStart != 0.2 || m.TailOpacityEnd != 0.9 {
		t.Errorf("tail opacity = %v/%v", m.TailOpacityStart, m.TailOpacityEnd)
	}
	if m.ID == "" {
		t.Error("meteor has no ID")
	}
}

func TestSpawnStartRegion(t *testing.T) {
	src := rng.New(4)
	for range 200 {
		m := Spawn(DefaultTypes(), src, 1200, 900)
		if m.StartX < -100 || m.StartX >= 260 || m.StartY < -100 || m.StartY >= 170 {
			t.Fatalf("start (%v,%v) outside the top-left region", m.StartX, m.StartY)
		}
	}
}

func TestProgress(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := Meteor{StartX: 0, StartY: 0, EndX: 100, EndY: 100, Duration: 2 * time.Second, SpawnedAt: t0}

	tests := []struct {
		at   time.Duration
		want float64
		done bool
	}{
		{-time.Second, 0, false},
		{0, 0, false},
		{time.Second, 0.5, false},
		{2 * time.Second, 1, true},
		{5 * time.Second, 1, true},
	}
	for _, tt := range tests {
		now := t0.Add(tt.at)
		if got := m.Progress(now); got != tt.want {
			t.Errorf("Progress(%v) = %v, want %v", tt.at, got, tt.want)
		}
		if got := m.Done(now); got != tt.done {
			t.Errorf("Done(%v) = %v, want %v", tt.at, got, tt.done)
		}
	}
	if x, y := m.Position(t0.Add(time.Second)); x != 50 || y != 50 {
		t.Errorf("Position = (%v,%v), want (50,50)", x, y)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"rate above one", func(c *Config) { c.SpawnRate = 1.5 }, true},
		{"negative rate", func(c *Config) { c.SpawnRate = -0.1 }, true},
		{"inverted delays", func(c *Config) { c.MinDelay, c.MaxDelay = 5*time.Second, time.Second }, true},
		{"zero weights", func(c *Config) { c.Types = []Type{{Name: "x", Duration: time.Second}} }, true},
		{"zero duration", func(c *Config) { c.Types = []Type{{Name: "x", Weight: 1}} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.SpawnRate != 0.3 || len(cfg.Types) != 6 || cfg.StartDelay != 3*time.Second {
		t.Errorf("SetDefaults() = %+v", cfg)
	}

	off := Config{Types: []Type{{Name: "only", Weight: 1, Duration: time.Second}}}
	off.SetDefaults()
	if off.SpawnRate != 0 {
		t.Errorf("explicit zero spawn rate overwritten: %v", off.SpawnRate)
	}
}
