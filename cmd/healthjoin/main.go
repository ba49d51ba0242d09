// Command healthjoin joins the life expectancy and healthcare expenditure
// tables for one year and writes, serves or stores the combined table.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/healthjoin/internal/config"
	"github.com/JonMunkholm/healthjoin/internal/core"
	"github.com/JonMunkholm/healthjoin/internal/logging"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfg *config.Config

	// Global flags
	year    string
	dataDir string
	output  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		msg := core.MapError(err)
		slog.Error("healthjoin failed", "error", err, "code", msg.Code)
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "healthjoin",
		Short: "Join life expectancy and healthcare expenditure by country",
		Long: `healthjoin reads the life expectancy and healthcare expenditure tables,
keeps the rows of one year, joins them on the country code and writes the
result sorted by country name.

Run without a subcommand to write the combined CSV (same as "join").`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runJoin,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.year, "year", "", "target year (overrides JOIN_YEAR)")
	flags.StringVar(&a.dataDir, "data-dir", "", "base directory holding data/ (overrides DATA_DIR)")
	flags.StringVar(&a.output, "output", "", "output CSV path (overrides JOIN_OUTPUT_PATH)")

	root.AddCommand(
		newJoinCmd(a),
		newServeCmd(a),
		newLoadCmd(a),
	)
	return root
}

// setup loads .env and the configuration, applies flag overrides and
// configures logging.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	// Overload overwrites existing env vars
	if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if a.applyFlags(cmd, cfg) {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	a.cfg = cfg
	return nil
}

// applyFlags copies explicitly set flags over cfg and reports whether any were set.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) bool {
	changed := false
	flags := cmd.Flags()

	if flags.Changed("year") {
		cfg.Join.Year = a.year
		changed = true
	}
	if flags.Changed("data-dir") {
		cfg.Join.DataDir = a.dataDir
		changed = true
	}
	if flags.Changed("output") {
		cfg.Join.OutputPath = a.output
		changed = true
	}
	return changed
}

// service builds a core.Service from the loaded configuration.
func (a *app) service() (*core.Service, error) {
	return core.NewService(core.Options{
		Year:  a.cfg.Join.Year,
		Paths: a.cfg.Join.Paths(),
	})
}
