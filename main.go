// =============================================================================
// Catalogue XML to XLSX Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   catconv convert <input.xml> <output>  - Convert a catalogue
//   catconv inspect <output.xlsx>         - Summarise a converted workbook
//   catconv version                       - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Conversion engine, table state machines, sinks, config
//   - pkg/       : Shared file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/cmd"
)

func main() {
	cmd.Execute()
}
