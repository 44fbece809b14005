package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starsky/pkg/catalog"
)

// catalogCommand creates the catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect tier catalogs",
	}

	cmd.AddCommand(c.catalogShowCommand())
	cmd.AddCommand(c.catalogValidateCommand())

	return cmd
}

// catalogShowCommand creates the "catalog show" subcommand.
func (c *CLI) catalogShowCommand() *cobra.Command {
	var (
		src     sourceFlags
		caching cacheFlags
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active tier catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner := c.newRunner(ctx, caching)
			defer runner.Close()

			source := c.source(src)
			cat, info := runner.LoadCatalog(ctx, source, false)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cat.Document())
			}

			if info.Fallback && source != nil {
				printWarning("Could not load %s, using the built-in catalog", source)
			}
			fmt.Println(StyleTitle.Render("Catalog") + " " + StyleDim.Render(info.Source))
			fmt.Println(catalogTable(cat))
			printKeyValue("Stars", fmt.Sprintf("%d", cat.Total()))
			printKeyValue("Base size", fmt.Sprintf("%.0fpx", cat.BaseSize))
			printKeyValue("Margin", fmt.Sprintf("%.0fpx", cat.Margin))
			if len(cat.Subscriptions) > 0 {
				printKeyValue("Blogs", fmt.Sprintf("%d", len(cat.Subscriptions)))
				printLevels(catalog.Distribution(cat.Subscriptions))
			}
			return nil
		},
	}

	src.register(cmd)
	caching.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog document as JSON")

	return cmd
}

// catalogValidateCommand creates the "catalog validate" subcommand. Unlike
// generate, it reports load errors instead of falling back.
func (c *CLI) catalogValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.json>",
		Short: "Check a tier catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(cmd.Context(), catalog.FileSource{Path: args[0]})
			if err != nil {
				printError("%s", args[0])
				return err
			}
			printSuccess("%s is valid", args[0])
			printDetail("%d tiers, %d stars", len(cat.Tiers), cat.Total())
			return nil
		},
	}
}

// printLevels prints the subscription count per level, sorted by name.
func printLevels(dist map[string]int) {
	levels := make([]string, 0, len(dist))
	for l := range dist {
		levels = append(levels, l)
	}
	sort.Strings(levels)
	for _, l := range levels {
		printDetail("%s: %d", l, dist[l])
	}
}
