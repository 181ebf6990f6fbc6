package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List configured sites, routing targets, and external links",
	RunE: func(cmd *cobra.Command, args []string) error {
		sites := make([]string, 0, len(cfg.Sites.RoutingAccounts))
		for site := range cfg.Sites.RoutingAccounts {
			sites = append(sites, site)
		}
		sort.Strings(sites)

		for _, site := range sites {
			account := cfg.Sites.RoutingAccounts[site]
			line := fmt.Sprintf("%-6s account=%s", site, account)
			if ext, ok := cfg.Sites.LinkedExternal(site); ok {
				line += fmt.Sprintf(" external=%s", ext)
			}
			if view, ok := cfg.Sites.FMCViews[site]; ok {
				line += fmt.Sprintf(" fmc_view=%s", view)
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
