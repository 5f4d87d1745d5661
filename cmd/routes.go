package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/conneroisu/docmux/internal/routes"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show which URL prefix serves which build directory",
	Long: `Print the route table a running server uses. With --refresh the table is
rebuilt from the index document first.

Examples:
  docmux routes                    # Print the stored table
  docmux routes --refresh          # Rebuild from the index, then print
  docmux routes --format json      # Print as JSON`,
	Args: cobra.NoArgs,
	RunE: runRoutes,
}

var (
	routesRefresh bool
	routesFormat  = newChoiceValue("text", "text", "json")
)

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().BoolVar(&routesRefresh, "refresh", false, "Rebuild the table from the index document")
	routesCmd.Flags().Var(routesFormat, "format", "Output format (text, json)")
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	var table routes.Table
	if routesRefresh {
		table, err = routes.Refresh(cmd.Context(), a.store, a.routeSource())
	} else {
		table, err = a.store.Current()
	}
	if err != nil {
		return err
	}

	if routesFormat.String() == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(table)
	}

	if len(table) == 0 {
		a.out.Info("No routes. Everything is served from %s", a.cfg.SitePath())
		return nil
	}

	for _, route := range table {
		a.out.Plain("%-20s %s", route.Prefix, route.Dir)
	}
	a.out.Plain("%-20s %s", "(default)", a.cfg.SitePath())

	return nil
}
