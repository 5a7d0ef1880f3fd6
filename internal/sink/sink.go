// =============================================================================
// Catalogue XML to XLSX Converter - Output Sink
// =============================================================================
//
// A Sink persists finished tables. It is a single-writer, append-only
// resource: tables are created, rows appended and cells written in order,
// then Save is called once.
//
// IMPLEMENTATIONS:
//   - xlsx.Workbook    one workbook, one sheet per table
//   - csvsink.Dir      one directory, one CSV file per table
//
// =============================================================================

package sink

import (
	"fmt"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// TableHandle identifies a table created in a sink.
type TableHandle int

// RowHandle identifies a row of a table. Row 0 is the header row.
type RowHandle struct {
	Table TableHandle
	Row   int
}

// Sink is the output side of a conversion.
type Sink interface {
	// CreateTable creates an empty table.
	CreateTable(name string) (TableHandle, error)

	// AppendRow appends an empty row to a table.
	AppendRow(t TableHandle) (RowHandle, error)

	// WriteCell writes a text or date value into a row.
	WriteCell(r RowHandle, col int, cell table.Cell) error

	// Save persists everything written so far.
	Save() error
}

// Export writes a frozen table into a sink: the header row first, then every
// data row. Empty cells are not written.
func Export(s Sink, v *table.View) (int, error) {
	h, err := s.CreateTable(v.Name())
	if err != nil {
		return 0, fmt.Errorf("create table %s: %w", v.Name(), err)
	}

	header, err := s.AppendRow(h)
	if err != nil {
		return 0, fmt.Errorf("append header row to %s: %w", v.Name(), err)
	}
	for col, label := range v.Labels() {
		if err := s.WriteCell(header, col, table.Cell{Kind: types.Text, Value: label}); err != nil {
			return 0, fmt.Errorf("write header of %s: %w", v.Name(), err)
		}
	}

	for i := 0; i < v.Len(); i++ {
		r, err := s.AppendRow(h)
		if err != nil {
			return i, fmt.Errorf("append row %d to %s: %w", i+1, v.Name(), err)
		}
		for col, cell := range v.Row(i) {
			if cell.Empty() {
				continue
			}
			if err := s.WriteCell(r, col, cell); err != nil {
				return i, fmt.Errorf("write row %d of %s: %w", i+1, v.Name(), err)
			}
		}
	}
	return v.Len(), nil
}
