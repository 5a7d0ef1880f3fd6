// =============================================================================
// Catalogue XML to XLSX Converter - In-Memory Table
// =============================================================================
//
// A Table is the in-memory form of one output sheet: a HeaderMap plus an
// ordered list of data rows. The header row (row 0 of the sheet) is derived
// from the HeaderMap and is never stored as data.
//
// LIFECYCLE:
//   1. Created once per conversion run with its HeaderMap.
//   2. Populated by exactly one converter (single writer, append only).
//   3. Frozen. After Freeze every mutation panics, and the table can be
//      handed out as a read-only View to later converters and to sinks.
//
// =============================================================================

package table

import (
	"fmt"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// Cell is one stored value. The zero Cell is empty.
type Cell struct {
	Kind  types.ValueKind
	Value string
}

// Empty reports whether nothing was written into the cell.
func (c Cell) Empty() bool {
	return c.Value == ""
}

// Row is an array of cells indexed by column.
type Row struct {
	cells []Cell
}

// Cell returns the cell at a column index. Out-of-range columns are empty.
func (r *Row) Cell(col int) Cell {
	if r == nil || col < 0 || col >= len(r.cells) {
		return Cell{}
	}
	return r.cells[col]
}

// Cells returns a copy of the row cells.
func (r *Row) Cells() []Cell {
	out := make([]Cell, len(r.cells))
	copy(out, r.cells)
	return out
}

// Text returns the row as plain strings, one per column.
func (r *Row) Text() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.Value
	}
	return out
}

func (r *Row) set(col int, c Cell) {
	r.cells[col] = c
}

// Table is one output table.
type Table struct {
	name   string
	header *HeaderMap
	rows   []*Row
	frozen bool
}

// New creates an empty table.
func New(name string, header *HeaderMap) *Table {
	if header == nil {
		header = &HeaderMap{}
	}
	return &Table{name: name, header: header}
}

// Name is the table (sheet) name.
func (t *Table) Name() string { return t.name }

// Header returns the table HeaderMap.
func (t *Table) Header() *HeaderMap { return t.header }

// Len is the number of data rows (the header row is not counted).
func (t *Table) Len() int { return len(t.rows) }

// Row returns a data row by 0-based data index.
func (t *Table) Row(i int) *Row {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i]
}

// NewRow allocates a detached row sized for this table. It becomes part of
// the table only once passed to Commit.
func (t *Table) NewRow() *Row {
	return &Row{cells: make([]Cell, t.header.Len())}
}

// Commit appends a row allocated with NewRow.
func (t *Table) Commit(r *Row) {
	t.mustBeOpen()
	t.rows = append(t.rows, r)
}

// AppendRow allocates and commits a new row in one step.
func (t *Table) AppendRow() *Row {
	r := t.NewRow()
	t.Commit(r)
	return r
}

// Apply performs writes on a row. Writes whose field identifier is not in the
// HeaderMap are skipped; the number of skipped writes is returned.
func (t *Table) Apply(r *Row, writes ...types.Write) (skipped int) {
	t.mustBeOpen()
	for _, w := range writes {
		col, ok := t.header.Lookup(w.Field)
		if !ok {
			skipped++
			continue
		}
		r.set(col, Cell{Kind: w.Kind, Value: w.Value})
	}
	return skipped
}

// Truncate drops data rows beyond n. Used to roll back a failed parse.
func (t *Table) Truncate(n int) {
	t.mustBeOpen()
	if n < 0 {
		n = 0
	}
	if n < len(t.rows) {
		t.rows = t.rows[:n]
	}
}

// Freeze makes the table read-only and returns a View over it.
func (t *Table) Freeze() *View {
	t.frozen = true
	return &View{t: t}
}

// Frozen reports whether Freeze was called.
func (t *Table) Frozen() bool { return t.frozen }

func (t *Table) mustBeOpen() {
	if t.frozen {
		panic(fmt.Sprintf("table %q is frozen", t.name))
	}
}
