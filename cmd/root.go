// =============================================================================
// HS Code Reconciler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// (reconcile, describe, preview, serve, config, version) is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reconciler)
//   ├── reconcileCmd (reconciler reconcile)
//   ├── describeCmd  (reconciler describe)
//   ├── previewCmd   (reconciler preview)
//   ├── serveCmd     (reconciler serve)
//   ├── configCmd    (reconciler config init|show)
//   └── versionCmd   (reconciler version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-level, --log-format)
//   2. Loading the configuration before any subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/hscode-reconciler/internal/config"
	"github.com/ginjaninja78/hscode-reconciler/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// Empty means ./reconciler.yaml if present, defaults otherwise.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logLevel and logFormat override the configured logging settings.
var (
	logLevel  string
	logFormat string
)

// appConfig is the configuration loaded before each command runs.
var appConfig *config.Config

// logger is the configured application logger.
var logger zerolog.Logger

// skipConfigAnnotation marks commands that must run without a valid config.
const skipConfigAnnotation = "skip-config"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "HS Code Reconciler - Reconcile invoices with packing lists by HS code",
	Long: `HS Code Reconciler pairs the lines of a commercial invoice with the lines of
its packing list, then totals amounts, weights and cartons per HS code.

Key Features:
  - Reads .xlsx, .xls and .csv exports
  - Configurable column mapping with multi-column fallbacks
  - Multi-value weight and carton cells ("12.5 + 3", "4, 6")
  - Extraction of the invoice's free-text description block
  - Excel and CSV reports, or an HTTP API

Example Usage:
  reconciler reconcile --invoice inv.xlsx --packing-list pl.xlsx
  reconciler describe invoices/
  reconciler preview inv.xlsx --kind invoice
  reconciler serve --port 8080`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			logger = logging.Configure(logging.Config{Level: levelFlag(""), Format: logFormat})
			return nil
		}
		return initConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
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
		"",
		"Path to the configuration file (default is ./reconciler.yaml if present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (auto, json, console)")
}

// initConfig loads the configuration and configures logging from it.
func initConfig() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	format := logFormat
	if format == "" {
		format = cfg.LogFormat
	}
	logger = logging.Configure(logging.Config{
		Level:  levelFlag(cfg.LogLevel),
		Format: format,
	})

	logger.Debug().Str("config", cfgFile).Str("output_dir", cfg.OutputDir).Msg("Configuration loaded")
	return nil
}

// levelFlag resolves the effective log level: --verbose, then --log-level,
// then the configured level.
func levelFlag(configured string) string {
	switch {
	case verbose:
		return "debug"
	case logLevel != "":
		return logLevel
	default:
		return configured
	}
}
