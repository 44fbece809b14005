package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starsky/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		sky     skyFlags
		src     sourceFlags
		caching cacheFlags
		addr    string
		refresh time.Duration
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve fresh skies over HTTP",
		Long: `Serve starts an HTTP server that places a fresh sky for every request.
Query parameters (seed, width, height, strategy, meteors, ...) override the
defaults given here.`,
		Example: `  starsky serve --addr :8080 --meteors
  starsky serve --catalog-url https://example.com/tiers.json --refresh 5m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.config()

			opts := cfg.PipelineOptions()
			sky.apply(cmd, &opts)
			if cmd.Flags().Changed("refresh") {
				opts.AutoReload = refresh
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner := c.newRunner(ctx, caching)
			defer runner.Close()

			srv := server.New(runner, c.source(src), opts,
				server.WithLogger(c.Logger),
				server.WithTimeout(timeout),
			)
			printSuccess("Serving skies on %s", StyleLink.Render(addr))
			printDetail("Press Ctrl+C to stop")
			return srv.ListenAndServe(ctx, addr)
		},
	}

	sky.register(cmd)
	src.register(cmd)
	caching.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&refresh, "refresh", 0, "reload the page with a new sky at this interval (0 disables)")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultRequestTimeout, "per-request timeout")

	return cmd
}
