package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starsky/pkg/errors"
	"github.com/matzehuels/starsky/pkg/pipeline"
)

// skyFlags are the placement and render flags shared by generate, preview
// and serve. They override the config file only when set.
type skyFlags struct {
	width    float64
	height   float64
	margin   float64
	seed     uint64
	strategy string
	relaxed  bool
	meteors  bool
	popups   bool
	scale    float64
	title    string
}

func (f *skyFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.width, "width", pipeline.DefaultWidth, "viewport width in pixels")
	fs.Float64Var(&f.height, "height", pipeline.DefaultHeight, "viewport height in pixels")
	fs.Float64Var(&f.margin, "margin", 0, "keep stars this far from the edges (default from catalog)")
	fs.Uint64Var(&f.seed, "seed", 0, "random seed (0 for a fresh sky)")
	fs.StringVar(&f.strategy, "strategy", pipeline.DefaultStrategy, "density strategy: noise or constellation")
	fs.BoolVar(&f.relaxed, "relaxed", false, "relax spacing further before forcing stars")
	fs.BoolVar(&f.meteors, "meteors", false, "animate meteors")
	fs.BoolVar(&f.popups, "popups", false, "embed hover details in SVG output")
	fs.Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG pixel scale")
	fs.StringVar(&f.title, "title", "", "page title")
}

// apply copies the flags the user set onto opts.
func (f *skyFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	fs := cmd.Flags()
	if fs.Changed("width") {
		opts.Width = f.width
	}
	if fs.Changed("height") {
		opts.Height = f.height
	}
	if fs.Changed("margin") {
		opts.Margin = f.margin
	}
	if fs.Changed("seed") {
		opts.Seed = f.seed
	}
	if fs.Changed("strategy") {
		opts.Strategy = f.strategy
	}
	if fs.Changed("relaxed") {
		opts.Relaxed = f.relaxed
		opts.Engine.Relaxed = f.relaxed
	}
	if fs.Changed("meteors") {
		opts.Meteors = f.meteors
	}
	if fs.Changed("popups") {
		opts.Popups = f.popups
	}
	if fs.Changed("scale") {
		opts.Scale = f.scale
	}
	if fs.Changed("title") {
		opts.Title = f.title
	}
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		sky     skyFlags
		src     sourceFlags
		caching cacheFlags
		formats string
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a starry sky",
		Long: `Generate places every catalog tier on the viewport and writes the
rendered sky. With several formats, output is used as the base name and each
file gets its format extension.`,
		Example: `  starsky generate -o sky.html
  starsky generate --seed 42 --format svg,png,json -o night
  starsky generate --strategy constellation --meteors --catalog tiers.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.config().PipelineOptions()
			sky.apply(cmd, &opts)
			opts.Formats = parseFormats(formats)
			opts.Refresh = refresh
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runGenerate(cmd, src, caching, opts, output)
		},
	}

	sky.register(cmd)
	src.register(cmd)
	caching.register(cmd)
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatHTML, "output formats: html,svg,png,json")
	cmd.Flags().StringVarP(&output, "output", "o", "sky", "output file or base name")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, src sourceFlags, caching cacheFlags, opts pipeline.Options, output string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	runner := c.newRunner(ctx, caching)
	defer runner.Close()

	timer := startPlacement(logger)
	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), "Loading catalog...")
	spinner.Start()

	source := c.source(src)
	cat, info := runner.LoadCatalog(ctx, source, opts.Refresh)
	logger.Debug("catalog loaded", "source", info.Source, "cached", info.CacheHit, "stars", cat.Total())

	spinner.Update(fmt.Sprintf("Placing %d stars...", cat.Total()))
	res, err := runner.Execute(ctx, cat, opts)
	spinner.Stop()
	if info.Fallback && source != nil {
		printWarning("Could not load %s, using the built-in catalog", source)
	}
	if err != nil {
		return err
	}
	timer.done(res.Stats.Stars, res.Stats.Target)

	forced := 0
	for _, r := range res.Sky.Reports {
		forced += r.Forced
	}
	printSuccess("Generated sky %s", StyleHighlight.Render(fmt.Sprintf("seed=%d", res.Sky.Seed)))
	printStats(res.Stats.Stars, res.Stats.Target, forced, res.CacheInfo.SkyHit)
	fmt.Println(tierTable(res.Sky.Reports))
	printDistribution(res.Sky.Stats)
	printNewline()

	paths, err := writeArtifacts(res.Artifacts, opts.Formats, output)
	if err != nil {
		return err
	}
	for _, p := range paths {
		printFile(p)
	}
	if !opts.Pinned() {
		printNextStep("Reproduce this sky", fmt.Sprintf("%s generate --seed %d", appName, res.Sky.Seed))
	}
	return nil
}

// writeArtifacts writes each rendered format and returns the paths written,
// in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := outputPath(output, f, len(formats) > 1)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath returns the file for format. A single format keeps an output
// that already carries an extension; otherwise the format's extension
// replaces any extension output has.
func outputPath(output, format string, multi bool) string {
	ext := filepath.Ext(output)
	if !multi && ext != "" {
		return output
	}
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		output = strings.TrimSuffix(output, ext)
	}
	return output + "." + format
}
