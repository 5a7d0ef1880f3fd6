// =============================================================================
// Catalogue XML to XLSX Converter - Cross-Table Read View
// =============================================================================
//
// A View is a read-only accessor over a completed (frozen) table. Later
// converters use it to read columns of earlier tables:
//   - hierarchy reads the single catalogue row to build the master hierarchy
//   - term reads attribute and hierarchy codes to compute its columns
//
// CONTRACT:
//   - Column(label) is an exact-match lookup by header label, O(rows).
//   - Values are returned in row order, header excluded.
//   - Cells never written come back as "".
//   - An unknown label yields an empty (nil) list, never an error.
//
// =============================================================================

package table

// View is a read-only view over a frozen table.
type View struct {
	t *Table
}

// Name is the table name.
func (v *View) Name() string {
	if v == nil {
		return ""
	}
	return v.t.name
}

// Len is the number of data rows.
func (v *View) Len() int {
	if v == nil {
		return 0
	}
	return v.t.Len()
}

// Header returns the table HeaderMap. Callers must not modify it.
func (v *View) Header() *HeaderMap {
	if v == nil {
		return nil
	}
	return v.t.header
}

// Labels is the header row.
func (v *View) Labels() []string {
	return v.Header().Labels()
}

// Row returns a data row as cells, or nil when out of range.
func (v *View) Row(i int) []Cell {
	if v == nil {
		return nil
	}
	r := v.t.Row(i)
	if r == nil {
		return nil
	}
	return r.Cells()
}

// Column returns the text of every data row in the column labelled label.
func (v *View) Column(label string) []string {
	if v == nil {
		return nil
	}
	col := v.t.header.IndexOfLabel(label)
	if col < 0 {
		return nil
	}
	return v.columnAt(col)
}

// FieldColumn is Column addressed by field identifier instead of label.
// It survives label overrides in the configuration.
func (v *View) FieldColumn(id string) []string {
	if v == nil {
		return nil
	}
	col, ok := v.t.header.Lookup(id)
	if !ok {
		return nil
	}
	return v.columnAt(col)
}

// First returns the first value of a field column, if the table has rows.
func (v *View) First(id string) (string, bool) {
	values := v.FieldColumn(id)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (v *View) columnAt(col int) []string {
	values := make([]string, 0, v.t.Len())
	for _, r := range v.t.rows {
		values = append(values, r.Cell(col).Value)
	}
	return values
}
