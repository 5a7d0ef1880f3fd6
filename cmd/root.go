// =============================================================================
// Catalogue XML to XLSX Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (catconv)
//   ├── convertCmd (catconv convert <input.xml> <output>)
//   ├── inspectCmd (catconv inspect <output.xlsx>)
//   └── versionCmd (catconv version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads the configuration file (--config, optional at its default path)
//   2. Sets up logging (--verbose, --log-format override the file)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logFormat overrides the log format of the configuration file.
var logFormat string

// appConfig is the configuration loaded by the root command.
var appConfig *config.MainConfig

// log is the application logger.
var log = logrus.New()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "catconv",
	Short: "Catalogue XML to XLSX Converter - Turn a catalogue XML into related tables",

	Long: `Catalogue XML to XLSX Converter converts one catalogue XML document
(terms organised into hierarchies, each term carrying attributes and
per-hierarchy placement) into five related tables:

  catalogue     catalogue metadata and release note information
  hierarchy     the hierarchies, preceded by the master hierarchy
  attribute     the attribute definitions
  term          one row per term, columns derived from attributes and hierarchies
  releaseNotes  one row per operation info

Tables are written as sheets of one workbook, or as CSV files.

Example Usage:
  catconv convert catalogue.xml catalogue.xlsx
  catconv convert catalogue.xml ./out --config ./my.yaml
  catconv inspect catalogue.xlsx`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
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
		config.DefaultPath,
		"Path to the configuration file (optional when left at its default)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVar(
		&logFormat,
		"log-format",
		"",
		`Log format, "text" or "json" (overrides log_format)`,
	)
}

// initConfig loads the configuration and configures the logger.
func initConfig(cmd *cobra.Command) error {
	optional := !cmd.Flags().Changed("config")
	cfg, err := config.Load(cfgFile, optional)
	if err != nil {
		return err
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupLogging(log, cfg)
	appConfig = cfg
	return nil
}

// setupLogging applies level and format to a logger.
func setupLogging(l *logrus.Logger, cfg *config.MainConfig) {
	l.SetOutput(os.Stderr)

	// Validate already checked the level.
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		l.SetLevel(level)
	}

	if cfg.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
