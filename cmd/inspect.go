// =============================================================================
// Catalogue XML to XLSX Converter - Inspect Command
// =============================================================================
//
// COMMAND USAGE:
//   catconv inspect <output.xlsx> [--columns]
//
// OUTPUT:
//   One line per sheet with its data row count and column count, and with
//   --columns the header row of each sheet.
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/xlsx"
)

var showColumns bool

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect <output.xlsx>",
	Short: "Summarise a converted workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := xlsx.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		out := cmd.OutOrStdout()
		for _, sheet := range r.Sheets() {
			v, err := r.ReadTable(sheet)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-14s %8d row(s) %5d column(s)\n", sheet, v.Len(), v.Header().Len())
			if showColumns {
				fmt.Fprintf(out, "  %s\n", strings.Join(v.Labels(), ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&showColumns, "columns", false, "Print the header row of each sheet")
}
