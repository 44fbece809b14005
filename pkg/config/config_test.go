package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/starsky/pkg/cache"
	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/pipeline"
	"github.com/matzehuels/starsky/pkg/placement"
)

const sampleConfig = `
[viewport]
width = 1280
height = 720
margin = 30
seed = 99
strategy = "constellation"

[engine]
max_attempts = 1500
relaxed = true

[distribution]
octaves = 5
density_threshold = 0.2

[constellation]
centroids = 7
cluster_radius = 150

[meteor]
enabled = true
spawn_rate = 0.5
min_delay = "1s"
max_delay = "4s"

[[meteor.types]]
name = "streak"
weight = 1
duration = "1500ms"
tail_length = 70
speed = "fast"

[cache]
disabled = true

[server]
addr = ":9090"
title = "Night"
refresh = "5m"

[[tiers]]
name = "dust"
scale = 0.2
count = 12
min_distance = 18

[[tiers]]
name = "beacon"
label = "超星"
scale = 1.0
count = 2
min_distance = 50
`

func TestParse(t *testing.T) {
	c, err := Parse(sampleConfig)
	if err != nil {
		t.Fatal(err)
	}

	if c.Viewport.Width != 1280 || c.Viewport.Height != 720 || c.Viewport.Margin != 30 {
		t.Errorf("viewport = %+v", c.Viewport)
	}
	if c.Engine.MaxAttempts != 1500 || !c.Engine.Relaxed {
		t.Errorf("engine = %+v", c.Engine)
	}
	if c.Engine.ImportantMaxAttempts != placement.DefaultImportantMaxAttempts {
		t.Errorf("unset engine fields should default, got %d", c.Engine.ImportantMaxAttempts)
	}
	if c.Distribution.Octaves != 5 || c.Distribution.DensityThreshold != 0.2 {
		t.Errorf("distribution = %+v", c.Distribution)
	}
	if c.Constellation.Centroids != 7 || c.Constellation.ClusterRadius != 150 {
		t.Errorf("constellation = %+v", c.Constellation)
	}
	if c.Server.Addr != ":9090" || c.Server.Refresh.Duration != 5*time.Minute {
		t.Errorf("server = %+v", c.Server)
	}
	if len(c.Tiers) != 2 || c.Tiers[1].Label != "超星" {
		t.Errorf("tiers = %+v", c.Tiers)
	}
}

func TestMeteorConfig(t *testing.T) {
	c, err := Parse(sampleConfig)
	if err != nil {
		t.Fatal(err)
	}
	mc := c.MeteorConfig()
	if mc.SpawnRate != 0.5 || mc.MinDelay != time.Second || mc.MaxDelay != 4*time.Second {
		t.Errorf("meteor config = %+v", mc)
	}
	if mc.StartDelay != 3*time.Second {
		t.Errorf("StartDelay should default to 3s, got %s", mc.StartDelay)
	}
	if len(mc.Types) != 1 || mc.Types[0].Duration != 1500*time.Millisecond {
		t.Errorf("types = %+v", mc.Types)
	}

	if d := Default().MeteorConfig(); len(d.Types) != 6 || d.SpawnRate != 0.3 {
		t.Errorf("default meteor config = %+v", d)
	}
}

func TestPipelineOptions(t *testing.T) {
	c, err := Parse(sampleConfig)
	if err != nil {
		t.Fatal(err)
	}
	opts := c.PipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Seed != 99 || opts.Strategy != "constellation" || !opts.Relaxed || !opts.Meteors {
		t.Errorf("options = %+v", opts)
	}
	if opts.Density.Strategy != "constellation" || opts.Density.Constellation.Centroids != 7 {
		t.Errorf("density = %+v", opts.Density)
	}
	if opts.Title != "Night" {
		t.Errorf("Title = %q", opts.Title)
	}
}

func TestCatalogSource(t *testing.T) {
	c, err := Parse(sampleConfig)
	if err != nil {
		t.Fatal(err)
	}
	src, ok := c.CatalogSource().(catalog.StaticSource)
	if !ok {
		t.Fatalf("source = %T, want StaticSource", c.CatalogSource())
	}
	cat, err := catalog.Load(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Total() != 14 || cat.Margin != 30 {
		t.Errorf("catalog total=%d margin=%v", cat.Total(), cat.Margin)
	}
	if beacon, _ := cat.Tier("超星"); !beacon.Important {
		t.Error("largest tier should be marked important")
	}

	tests := []struct {
		cfg  Catalog
		want string
	}{
		{Catalog{File: "stars.json"}, "file:stars.json"},
		{Catalog{URL: "https://example.com/subs.json"}, "https://example.com/subs.json"},
		{Catalog{MongoURI: "mongodb://localhost", MongoDatabase: "blogs"}, "mongodb:blogs.subscriptions"},
	}
	for _, tt := range tests {
		c := Default()
		c.Catalog = tt.cfg
		if got := c.CatalogSource().String(); got != tt.want {
			t.Errorf("source = %q, want %q", got, tt.want)
		}
	}

	if Default().CatalogSource() != nil {
		t.Error("default config should use the built-in catalog")
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Viewport.Width != pipeline.DefaultWidth || c.Viewport.Strategy != pipeline.DefaultStrategy {
		t.Errorf("viewport = %+v", c.Viewport)
	}
	if c.Server.Addr != DefaultAddr {
		t.Errorf("Addr = %q", c.Server.Addr)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"syntax", "[viewport\nwidth = 1", errors.ErrCodeInvalidConfig},
		{"unknown key", "[viewport]\ncolour = 3", errors.ErrCodeInvalidConfig},
		{"bad duration", "[meteor]\nmin_delay = \"soon\"", errors.ErrCodeInvalidConfig},
		{"bad strategy", "[viewport]\nstrategy = \"spiral\"", errors.ErrCodeInvalidStrategy},
		{"bad viewport", "[viewport]\nwidth = -10", errors.ErrCodeInvalidViewport},
		{"two sources", "[catalog]\nfile = \"a.json\"\nurl = \"https://x\"", errors.ErrCodeInvalidConfig},
		{"bad url", "[catalog]\nurl = \"ftp://x\"", errors.ErrCodeInvalidInput},
		{"bad tier", "[[tiers]]\nname = \"x\"\nscale = 0\ncount = 1\nmin_distance = 10", errors.ErrCodeInvalidTier},
		{"bad spawn rate", "[meteor]\nspawn_rate = 2.0", errors.ErrCodeInvalidConfig},
		{"negative attempts", "[engine]\nmax_attempts = -5", errors.ErrCodeInvalidConfig},
		{"negative forced attempts", "[engine]\nforced_attempts = -3", errors.ErrCodeInvalidConfig},
		{"negative retries", "[distribution]\nmax_retries = -1", errors.ErrCodeInvalidConfig},
		{"bad persistence", "[distribution]\npersistence = -2.0", errors.ErrCodeInvalidConfig},
		{"bad centroids", "[constellation]\ncentroids = -1", errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Viewport.Seed != 99 {
		t.Errorf("Seed = %d", c.Viewport.Seed)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit file error = %v", err)
	}
}

func TestLoadDefaultPathMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("absent default file should not fail: %v", err)
	}
	if c.Viewport.Width != pipeline.DefaultWidth {
		t.Errorf("expected defaults, got %+v", c.Viewport)
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	c := Default()
	c.Cache.Disabled = true
	got, err := c.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(cache.NullCache); !ok {
		t.Errorf("disabled cache = %T", got)
	}

	c = Default()
	c.Cache.Dir = t.TempDir()
	got, err = c.OpenCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := got.(*cache.FileCache); !ok || fc.Dir() != c.Cache.Dir {
		t.Errorf("file cache = %T", got)
	}

	c = Default()
	c.Cache.RedisAddr = "127.0.0.1:1"
	if _, err := c.OpenCache(ctx); err == nil {
		t.Error("unreachable redis should fail")
	}
}
