package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/giygas/pharmacy-inventory-api/query"
)

func newStatsCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the inventory counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.load(cmd.Context())
			if err != nil {
				return err
			}

			stats := query.NewService(store, query.OptionsFromConfig(c.cfg)).Stats()
			out := cmd.OutOrStdout()

			if asJSON {
				return json.NewEncoder(out).Encode(stats)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "total items\t%d\n", stats.TotalItems)
			fmt.Fprintf(w, "low stock\t%d\n", stats.LowStockItems)
			fmt.Fprintf(w, "out of stock\t%d\n", stats.OutOfStock)
			fmt.Fprintf(w, "expiring soon\t%d\n", stats.ExpiringSoon)
			fmt.Fprintf(w, "expired\t%d\n", stats.Expired)
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
