// Package cli implements the starsky command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/starsky/pkg/buildinfo"
	"github.com/matzehuels/starsky/pkg/cache"
	"github.com/matzehuels/starsky/pkg/catalog"
	"github.com/matzehuels/starsky/pkg/config"
	"github.com/matzehuels/starsky/pkg/observability"
	"github.com/matzehuels/starsky/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "starsky"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Starsky scatters subscriptions across a starry sky",
		Long:          `Starsky places stars of several size tiers on a canvas with Poisson-disk spacing over a Perlin-noise density field, then renders the sky as an animated web page, SVG, PNG, JSON or a live terminal preview.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetPlacementHooks(newDiagnostics(c.Logger))
			observability.SetCacheHooks(newDiagnostics(c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/starsky/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config returns the loaded configuration, or defaults when commands run
// without the root pre-run.
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags select the cache backend for one command.
type cacheFlags struct {
	noCache bool
	redis   string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&f.redis, "redis", "", "use the Redis cache at this address")
}

// newRunner creates a pipeline runner for CLI use. Keys are scoped by
// version so an upgrade never serves renders from an older build. An
// unreachable Redis falls back to running uncached.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) *pipeline.Runner {
	cfg := *c.config()
	if f.noCache {
		cfg.Cache.Disabled = true
	}
	if f.redis != "" {
		cfg.Cache.RedisAddr = f.redis
	}
	ch, err := cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, running uncached", "error", err)
		ch = cache.NewNullCache()
	}
	return pipeline.NewRunner(ch, cache.NewScopedKeyer(nil, buildinfo.Version+":"), c.Logger)
}

// =============================================================================
// Catalog Source
// =============================================================================

// sourceFlags override the configured catalog source.
type sourceFlags struct {
	file     string
	url      string
	mongoURI string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "catalog", "", "tier catalog JSON file")
	cmd.Flags().StringVar(&f.url, "catalog-url", "", "fetch the tier catalog from this URL")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "load the tier catalog from MongoDB")
}

// source resolves the catalog source: flags first, then the config file.
func (c *CLI) source(f sourceFlags) catalog.Source {
	cfg := c.config()
	switch {
	case f.file != "":
		return catalog.FileSource{Path: f.file}
	case f.url != "":
		return catalog.HTTPSource{URL: f.url}
	case f.mongoURI != "":
		return catalog.MongoSource{
			URI:        f.mongoURI,
			Database:   cfg.Catalog.MongoDatabase,
			Collection: cfg.Catalog.MongoCollection,
		}
	}
	return cfg.CatalogSource()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatHTML}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
