package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/query"
)

func newSearchCmd(c *cli) *cobra.Command {
	var (
		asJSON    bool
		topK      int
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find the closest catalog names to a query",
		Long: `search runs the same fuzzy name match as the search endpoint against a freshly
loaded snapshot. Scores are in [0,1]; matches under --threshold (0-100) are
dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.load(cmd.Context())
			if err != nil {
				return err
			}

			opts := query.OptionsFromConfig(c.cfg)
			if cmd.Flags().Changed("top") {
				opts.SearchTopK = topK
			}
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = threshold
			}

			results, err := query.NewService(store, opts).FindBest(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enriched := make([]entities.EnrichedRecord, len(results))
				for i := range results {
					enriched[i] = entities.EnrichMatch(results[i])
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(enriched)
			}

			if len(results) == 0 {
				fmt.Fprintln(out, query.NoMatchMessage)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tID\tNAME\tQTY\tPRICE")
			for _, r := range results {
				fmt.Fprintf(w, "%.3f\t%d\t%s\t%d\t%s\n",
					r.SimilarityScore, r.Record.ID, r.Record.Name, r.Record.QuantityAvailable, r.Record.Price.StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	cmd.Flags().IntVar(&topK, "top", 3, "maximum number of results")
	cmd.Flags().Float64Var(&threshold, "threshold", 50, "minimum score, 0-100")
	return cmd
}
