// Command xsplot browses a catalog of nuclear cross-section datasets, plots
// the selected ones and exports them.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xsplot/internal/config"
	"xsplot/internal/observability"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "xsplot",
		Short: "Search, plot and export neutron cross-section data",
		Long: `xsplot serves a searchable catalog of nuclear reaction datasets.

Selected datasets are fetched from the configured libraries (ENDF/B-VIII.0 and
FENDL-3.2c by default), plotted on log or linear axes and exported as JSON,
CSV or PNG.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ./"+config.DefaultPath+" when present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging to the console")

	root.AddCommand(
		c.serveCmd(),
		c.searchCmd(),
		c.fetchCmd(),
		c.exportCmd(),
		c.catalogCmd(),
		c.configCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(c.configPath, explicit)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Logging = config.LoggingConfig{Level: "debug", Format: "console"}
	}
	logger, err := observability.NewLogger(observability.LogOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
