package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/starsky/pkg/pipeline"
	"github.com/matzehuels/starsky/pkg/sky"
)

// renderCommand creates the render command, which re-renders a sky saved
// with --format json.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		caching cacheFlags
		formats string
		output  string
		popups  bool
		meteors bool
		scale   float64
		title   string
	)

	cmd := &cobra.Command{
		Use:   "render <sky.json>",
		Short: "Render a saved sky document",
		Example: `  starsky generate --seed 7 -f json -o night
  starsky render night.json -f svg,png -o night`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := sky.ReadFile(args[0])
			if err != nil {
				return err
			}

			opts := c.config().PipelineOptions()
			opts.Formats = parseFormats(formats)
			opts.Popups = popups
			opts.Meteors = opts.Meteors || meteors
			opts.Scale = scale
			if cmd.Flags().Changed("title") {
				opts.Title = title
			}
			opts.Width, opts.Height = s.Width, s.Height
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner := c.newRunner(ctx, caching)
			defer runner.Close()

			artifacts, cached, err := runner.RenderWithCacheInfo(ctx, s, opts)
			if err != nil {
				return err
			}
			printSuccess("Rendered %d stars from %s", len(s.Stars), args[0])
			printStats(len(s.Stars), len(s.Stars), 0, cached)

			paths, err := writeArtifacts(artifacts, opts.Formats, output)
			if err != nil {
				return err
			}
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}

	caching.register(cmd)
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats: html,svg,png,json")
	cmd.Flags().StringVarP(&output, "output", "o", "sky", "output file or base name")
	cmd.Flags().BoolVar(&popups, "popups", false, "embed hover details in SVG output")
	cmd.Flags().BoolVar(&meteors, "meteors", false, "animate meteors")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG pixel scale")
	cmd.Flags().StringVar(&title, "title", "", "page title")

	return cmd
}
