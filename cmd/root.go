// =============================================================================
// Ventas Ledger - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ventas)
//   ├── processCmd (ventas process)
//   ├── summaryCmd (ventas summary)
//   ├── exportCmd  (ventas export)
//   ├── serveCmd   (ventas serve)
//   └── versionCmd (ventas version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/ventas-ledger/internal/config"
	"github.com/ginjaninja78/ventas-ledger/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and logger are set by loadConfig before any subcommand runs.
var (
	appConfig *config.Config
	logger    *slog.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ventas",
	Short: "Ventas Ledger - Clean and summarize restaurant sales ledgers",
	Long: `Ventas Ledger reads the daily sales ledger of a restaurant (CSV or XLSX),
drops malformed, invalid and duplicate rows, and computes the dashboard
metrics: total revenue, total units, revenue per product, per meal slot
(franja) and per product family (familia), and the best-selling products.

Example Usage:
  ventas process                        # Clean every ledger in the input directory
  ventas summary --file ventas_raw.csv  # Print the metrics of one ledger
  ventas export --file ventas_raw.csv   # Write ventas_clean.csv
  ventas serve                          # Start the dashboard API`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// loadConfig reads the configuration and sets up logging.
func loadConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}

	appConfig = cfg
	logger = logging.Setup(level, cfg.Logging.Format)
	logger.Debug("configuration loaded", slog.String("path", cfgFile))

	return nil
}
