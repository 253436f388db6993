package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/validation"
)

// validationOutput is the --json shape of the validate command.
type validationOutput struct {
	Load    interfaces.LoadReport         `json:"load"`
	Quality *interfaces.DataQualityReport `json:"quality"`
}

func newValidateCmd(c *cli) *cobra.Command {
	var asJSON, strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the catalog and print the data quality report",
		Long: `validate loads every row the way a reload does and reports what had to be
coerced or skipped, then summarises the loaded records. With --strict the
command fails when any row was skipped or any id was duplicated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, report, err := c.load(cmd.Context())
			if err != nil {
				return err
			}

			quality := validation.NewDataValidator().ReportDataQuality(store.GetSnapshot().Records())
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(validationOutput{Load: report, Quality: quality}); err != nil {
					return err
				}
			} else {
				printValidation(out, report, quality)
			}

			if strict && (report.SkippedRows > 0 || len(report.DuplicateIDs) > 0) {
				return fmt.Errorf("catalog has %d skipped rows and %d duplicate ids", report.SkippedRows, len(report.DuplicateIDs))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output the reports as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on skipped rows or duplicate ids")
	return cmd
}

func printValidation(out io.Writer, report interfaces.LoadReport, quality *interfaces.DataQualityReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "source\t%s\n", report.Source)
	fmt.Fprintf(w, "rows\t%d\n", report.Rows)
	fmt.Fprintf(w, "loaded\t%d\n", report.Loaded)
	fmt.Fprintf(w, "skipped rows\t%d\n", report.SkippedRows)
	fmt.Fprintf(w, "duplicate ids\t%d\n", len(report.DuplicateIDs))
	fmt.Fprintf(w, "coerced prices\t%d\n", report.CoercedPrices)
	fmt.Fprintf(w, "coerced quantities\t%d\n", report.CoercedQuantities)
	fmt.Fprintf(w, "unparsed expiry\t%d\n", report.UnparsedExpiry)
	fmt.Fprintf(w, "missing expiry\t%d\n", quality.MissingExpiry)
	fmt.Fprintf(w, "without substitutes\t%d\n", quality.WithoutSubstitutes)
	fmt.Fprintf(w, "without composition\t%d\n", quality.WithoutComposition)
	fmt.Fprintf(w, "zero price\t%d\n", quality.ZeroPrice)
	fmt.Fprintf(w, "out of stock\t%d\n", quality.OutOfStock)
	if len(quality.DuplicateNames) > 0 {
		fmt.Fprintf(w, "duplicate names\t%s\n", strings.Join(quality.DuplicateNames, ", "))
	}
	_ = w.Flush()
}
