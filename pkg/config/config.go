// Package config loads starsky's TOML configuration file.
//
// Every field has a built-in default, so an absent file is not an error
// when the default path is used. CLI flags and query parameters override
// the loaded values. An example file:
//
//	[viewport]
//	width = 1920
//	height = 1080
//
//	[distribution]
//	octaves = 4
//	density_threshold = 0.15
//
//	[meteor]
//	spawn_rate = 0.3
//	min_delay = "2s"
//
//	[cache]
//	redis_addr = "localhost:6379"
//
//	[[tiers]]
//	name = "micro"
//	scale = 0.2
//	count = 10
//	min_distance = 20
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/starsky/pkg/cache"
	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/density"
	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/meteor"
	"github.com/matzehuels/starsky/pkg/pipeline"
	"github.com/matzehuels/starsky/pkg/placement"
)

// DefaultAddr is the default HTTP listen address.
const DefaultAddr = ":8080"

// Config is the decoded configuration file.
type Config struct {
	Viewport      Viewport                    `toml:"viewport"`
	Engine        placement.Config            `toml:"engine"`
	Distribution  density.NoiseConfig         `toml:"distribution"`
	Constellation density.ConstellationConfig `toml:"constellation"`
	Meteor        Meteor                      `toml:"meteor"`
	Catalog       Catalog                     `toml:"catalog"`
	Cache         Cache                       `toml:"cache"`
	Server        Server                      `toml:"server"`
	Tiers         []catalog.Tier              `toml:"tiers"`
}

// Viewport holds the default sky geometry and strategy.
type Viewport struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	Margin   float64 `toml:"margin"`
	Seed     uint64  `toml:"seed"`
	Strategy string  `toml:"strategy"`
}

// Meteor mirrors [meteor.Config] with human-readable durations.
type Meteor struct {
	Enabled    bool         `toml:"enabled"`
	SpawnRate  float64      `toml:"spawn_rate"`
	MinDelay   Duration     `toml:"min_delay"`
	MaxDelay   Duration     `toml:"max_delay"`
	StartDelay Duration     `toml:"start_delay"`
	Types      []MeteorType `toml:"types"`
}

// MeteorType mirrors [meteor.Type].
type MeteorType struct {
	Name       string   `toml:"name"`
	Weight     float64  `toml:"weight"`
	Duration   Duration `toml:"duration"`
	TailLength float64  `toml:"tail_length"`
	Speed      string   `toml:"speed"`
}

// Catalog selects the tier catalog source. At most one of File, URL and
// MongoURI may be set; [[tiers]] in the file take effect when none is.
// BaseSize only applies to [[tiers]] catalogs.
type Catalog struct {
	File            string  `toml:"file"`
	URL             string  `toml:"url"`
	MongoURI        string  `toml:"mongo_uri"`
	MongoDatabase   string  `toml:"mongo_database"`
	MongoCollection string  `toml:"mongo_collection"`
	BaseSize        float64 `toml:"base_size"`
}

// Cache selects the cache backend.
type Cache struct {
	Disabled      bool   `toml:"disabled"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// Server configures `starsky serve`.
type Server struct {
	Addr    string   `toml:"addr"`
	Title   string   `toml:"title"`
	Refresh Duration `toml:"refresh"`
}

// Duration decodes TOML strings such as "2s" or "1500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{Distribution: density.DefaultNoiseConfig()}
	c.SetDefaults()
	return c
}

// DefaultPath returns ~/.config/starsky/config.toml (or the platform
// equivalent).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "starsky", "config.toml"), nil
}

// Load reads the configuration at path. An empty path means the default
// path, which may be absent. An explicitly named file must exist. Unknown
// keys are rejected.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes configuration from a TOML string.
func Parse(data string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(data, c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key: %s", undecoded[0])
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.Viewport.Width == 0 {
		c.Viewport.Width = pipeline.DefaultWidth
	}
	if c.Viewport.Height == 0 {
		c.Viewport.Height = pipeline.DefaultHeight
	}
	if c.Viewport.Strategy == "" {
		c.Viewport.Strategy = pipeline.DefaultStrategy
	}
	c.Engine.SetDefaults()
	c.Distribution.SetDefaults()
	c.Constellation.SetDefaults()
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := errors.ValidateViewport(c.Viewport.Width, c.Viewport.Height, c.Viewport.Margin); err != nil {
		return err
	}
	if err := density.ValidateStrategy(c.Viewport.Strategy); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Distribution.Validate(); err != nil {
		return err
	}
	if err := c.Constellation.Validate(); err != nil {
		return err
	}

	sources := 0
	for _, s := range []string{c.Catalog.File, c.Catalog.URL, c.Catalog.MongoURI} {
		if s != "" {
			sources++
		}
	}
	if sources > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "catalog: set only one of file, url and mongo_uri")
	}
	if c.Catalog.URL != "" {
		if err := errors.ValidateURL(c.Catalog.URL); err != nil {
			return err
		}
	}
	if len(c.Tiers) > 0 {
		if _, err := c.tierDocument().Build(); err != nil {
			return err
		}
	}

	mc := c.MeteorConfig()
	if err := mc.Validate(); err != nil {
		return err
	}
	if c.Server.Refresh.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server refresh must be non-negative")
	}
	return nil
}

// MeteorConfig converts the [meteor] section, filling defaults.
func (c *Config) MeteorConfig() meteor.Config {
	mc := meteor.Config{
		SpawnRate:  c.Meteor.SpawnRate,
		MinDelay:   c.Meteor.MinDelay.Duration,
		MaxDelay:   c.Meteor.MaxDelay.Duration,
		StartDelay: c.Meteor.StartDelay.Duration,
	}
	for _, t := range c.Meteor.Types {
		mc.Types = append(mc.Types, meteor.Type{
			Name:       t.Name,
			Weight:     t.Weight,
			Duration:   t.Duration.Duration,
			TailLength: t.TailLength,
			Speed:      t.Speed,
		})
	}
	mc.SetDefaults()
	return mc
}

// CatalogSource returns the configured catalog source, or nil for the
// built-in catalog.
func (c *Config) CatalogSource() catalog.Source {
	switch {
	case c.Catalog.File != "":
		return catalog.FileSource{Path: c.Catalog.File}
	case c.Catalog.URL != "":
		return catalog.HTTPSource{URL: c.Catalog.URL}
	case c.Catalog.MongoURI != "":
		return catalog.MongoSource{
			URI:        c.Catalog.MongoURI,
			Database:   c.Catalog.MongoDatabase,
			Collection: c.Catalog.MongoCollection,
		}
	case len(c.Tiers) > 0:
		return catalog.StaticSource{Doc: c.tierDocument()}
	}
	return nil
}

func (c *Config) tierDocument() *catalog.Document {
	return &catalog.Document{
		Tiers:    slices.Clone(c.Tiers),
		BaseSize: c.Catalog.BaseSize,
		Margin:   c.Viewport.Margin,
	}
}

// PipelineOptions returns pipeline options seeded from the file.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Width:    c.Viewport.Width,
		Height:   c.Viewport.Height,
		Margin:   c.Viewport.Margin,
		Seed:     c.Viewport.Seed,
		Strategy: c.Viewport.Strategy,
		Relaxed:  c.Engine.Relaxed,
		Meteors:  c.Meteor.Enabled,
		Title:    c.Server.Title,
		Engine:   c.Engine,
		Density: density.Config{
			Strategy:      c.Viewport.Strategy,
			Noise:         c.Distribution,
			Constellation: c.Constellation,
		},
		MeteorConfig: c.MeteorConfig(),
		AutoReload:   c.Server.Refresh.Duration,
	}
}

// OpenCache opens the configured cache backend. Disabled yields a
// [cache.NullCache]; a Redis address selects Redis; otherwise entries go
// to Dir or the user cache directory.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch {
	case c.Cache.Disabled:
		return cache.NewNullCache(), nil
	case c.Cache.RedisAddr != "":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.Prefix,
		})
	}
	dir := c.Cache.Dir
	if dir == "" {
		d, err := cache.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("cache dir: %w", err)
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}
