// =============================================================================
// Catalogue XML to XLSX Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, the main command of the
// application. It runs one conversion and prints a per-table report.
//
// COMMAND USAGE:
//   catconv convert <input.xml> <output> [flags]
//
// FLAGS:
//   --format           : "xlsx" or "csv" (default: from the output extension)
//   --max-concurrency  : Tables built at the same time (1 = sequential)
//   --keep-filtered    : Keep the filtered per-table XML in the work directory
//   --summary          : Write a summary.log in the work directory
//   --strict           : Fail when any table had a conversion problem
//
// EXIT STATUS:
//   Non-zero when the input is missing, the output cannot be written, or
//   (with --strict) a table could not be fully converted.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/config"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/converter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	outputFormat   string
	maxConcurrency int
	keepFiltered   bool
	writeSummary   bool
	strict         bool
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert <input.xml> <output>",
	Short: "Convert a catalogue XML into tables",
	Long: `The convert command reads a catalogue XML and writes the catalogue,
hierarchy, attribute, term and releaseNotes tables.

The output is a workbook when it ends in .xlsx (one sheet per table),
otherwise a directory receiving one CSV file per table. Use --format to
choose explicitly.

A table whose part of the document is malformed is left empty (the
hierarchy table keeps its master row) and the other tables are still
produced. Only output failures abort the run.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVar(&outputFormat, "format", "", `Output format, "xlsx" or "csv"`)
	convertCmd.Flags().IntVar(&maxConcurrency, "max-concurrency", 0, "Number of tables built at the same time (1 = sequential)")
	convertCmd.Flags().BoolVar(&keepFiltered, "keep-filtered", false, "Keep the filtered per-table XML in the work directory")
	convertCmd.Flags().BoolVar(&writeSummary, "summary", false, "Write a summary.log in the work directory")
	convertCmd.Flags().BoolVar(&strict, "strict", false, "Fail when any table could not be fully converted")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runConvert(cmd *cobra.Command, input, output string) error {
	cfg, err := convertConfig(cmd)
	if err != nil {
		return err
	}

	conv := converter.New(cfg, log)
	result, err := conv.Convert(cmd.Context(), input, output)
	if result != nil {
		printReport(cmd.OutOrStdout(), result)
	}
	if err != nil {
		if converter.IsFatal(err) {
			return fmt.Errorf("output not written: %w", err)
		}
		return err
	}

	if strict {
		var errs []error
		for _, t := range result.Tables {
			if t.Err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", t.Name, t.Err))
			}
		}
		if len(errs) > 0 {
			return errors.Join(errs...)
		}
	}
	return nil
}

// convertConfig applies the command flags over the loaded configuration.
func convertConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	cfg := appConfig
	if cfg == nil {
		cfg = config.Default()
	}
	copied := *cfg

	flags := cmd.Flags()
	if flags.Changed("format") {
		copied.OutputFormat = outputFormat
	}
	if flags.Changed("max-concurrency") {
		copied.MaxConcurrency = maxConcurrency
	}
	if flags.Changed("keep-filtered") {
		copied.KeepFiltered = keepFiltered
	}
	if flags.Changed("summary") {
		copied.WriteSummary = writeSummary
	}

	if err := copied.Validate(); err != nil {
		return nil, err
	}
	return &copied, nil
}

// printReport prints one line per table.
func printReport(w io.Writer, result *converter.Result) {
	fmt.Fprintf(w, "=== Catalogue conversion %s ===\n", result.RunID)
	for _, t := range result.Tables {
		status := "ok"
		if t.Err != nil {
			status = t.Err.Error()
		}
		fmt.Fprintf(w, "  %-14s %8d row(s) %5d column(s)  %s\n", t.Name, t.Rows, t.Columns, status)
	}
	fmt.Fprintf(w, "Output:       %s (%s)\n", result.Output, result.Format)
	if result.SummaryPath != "" {
		fmt.Fprintf(w, "Summary:      %s\n", result.SummaryPath)
	}
	fmt.Fprintf(w, "Time elapsed: %s\n", result.Duration.Round(time.Millisecond))
}
