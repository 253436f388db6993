// Package main is the catalogctl operator CLI. It loads the catalog the same
// way the server does and runs one query against it, which is handy to check
// a new export before pointing the service at it.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/giygas/pharmacy-inventory-api/catalog"
	"github.com/giygas/pharmacy-inventory-api/catalogloader"
	"github.com/giygas/pharmacy-inventory-api/config"
	"github.com/giygas/pharmacy-inventory-api/data"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/logging"
)

// version is set at build time via ldflags.
var version = "dev"

const loadTimeout = 10 * time.Minute

// cli carries the flags shared by every subcommand.
type cli struct {
	driver  string
	dsn     string
	verbose bool
	cfg     *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Inspect and query a medicine catalog",
		Long: `catalogctl loads the medicine catalog from the configured backing store
(CATALOG_DRIVER and CATALOG_DSN, or the --driver and --dsn flags) and runs a
single operation against it: a data quality report, a name search or the
inventory counters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			if c.driver != "" {
				os.Setenv("CATALOG_DRIVER", c.driver)
			}
			if c.dsn != "" {
				os.Setenv("CATALOG_DSN", c.dsn)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg

			level := "warn"
			if c.verbose {
				level = "debug"
			}
			logging.InitLoggerWithOptions(logging.Options{Env: cfg.Env, Level: level})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.driver, "driver", "", "catalog driver: postgres, sqlite3 or file (overrides CATALOG_DRIVER)")
	root.PersistentFlags().StringVar(&c.dsn, "dsn", "", "connection string, path or URL (overrides CATALOG_DSN)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log loader details")

	root.AddCommand(
		newValidateCmd(c),
		newSearchCmd(c),
		newStatsCmd(c),
		newVersionCmd(),
	)
	return root
}

// load reads the catalog once into a fresh store.
func (c *cli) load(ctx context.Context) (*data.DataContainer, interfaces.LoadReport, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	loader, err := catalogloader.NewLoader(c.cfg.CatalogDriver, c.cfg.CatalogDSN)
	if err != nil {
		return nil, interfaces.LoadReport{}, err
	}
	defer loader.Close()

	records, report, err := loader.LoadRecords(ctx)
	if err != nil {
		return nil, report, err
	}

	store := data.NewDataContainer()
	store.UpdateSnapshot(catalog.NewSnapshot(records, 1))
	return store, report, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
