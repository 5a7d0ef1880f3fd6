// =============================================================================
// Catalogue XML to XLSX Converter - XLSX Workbook Sink
// =============================================================================
//
// This module writes the converted tables into a single workbook, one sheet
// per table, through excelize stream writers (catalogues hold tens of
// thousands of terms; the stream writer keeps memory flat).
//
// SHEET LAYOUT:
//   Row 1 is the header row, data rows follow in conversion order.
//   Date cells are real spreadsheet dates displayed as yyyy/mm/dd.
//
// WRITE ORDER:
//   A stream writer only accepts rows in ascending order, so cells written
//   with WriteCell are buffered until the next AppendRow, CreateTable or Save.
//   Only the last created table accepts writes.
//
// =============================================================================

package xlsx

import (
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/sink"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/transform"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// DateFormat is the number format of date cells.
const DateFormat = "yyyy/mm/dd"

// Workbook is a sink.Sink backed by an excelize file.
type Workbook struct {
	path      string
	file      *excelize.File
	dateStyle int

	sheets  []string
	current *excelize.StreamWriter
	handle  sink.TableHandle
	row     int
	pending []interface{}
	dirty   bool
	closed  bool
}

var _ sink.Sink = (*Workbook)(nil)

// Create starts a new workbook saved to path by Save.
func Create(path string) (*Workbook, error) {
	f := excelize.NewFile()

	format := DateFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create date style: %w", err)
	}

	return &Workbook{path: path, file: f, dateStyle: style, handle: -1}, nil
}

// CreateTable adds a sheet.
func (w *Workbook) CreateTable(name string) (sink.TableHandle, error) {
	if err := w.finishSheet(); err != nil {
		return -1, err
	}

	if len(w.sheets) == 0 {
		// A new file always has one default sheet; reuse it.
		if err := w.file.SetSheetName(w.file.GetSheetName(0), name); err != nil {
			return -1, fmt.Errorf("failed to name sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return -1, fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	sw, err := w.file.NewStreamWriter(name)
	if err != nil {
		return -1, fmt.Errorf("failed to open sheet %s: %w", name, err)
	}

	w.sheets = append(w.sheets, name)
	w.current = sw
	w.handle = sink.TableHandle(len(w.sheets) - 1)
	w.row = -1
	w.pending = nil
	w.dirty = false
	return w.handle, nil
}

// AppendRow starts the next row of a table.
func (w *Workbook) AppendRow(t sink.TableHandle) (sink.RowHandle, error) {
	if err := w.checkTable(t); err != nil {
		return sink.RowHandle{}, err
	}
	if err := w.flushRow(); err != nil {
		return sink.RowHandle{}, err
	}
	w.row++
	return sink.RowHandle{Table: t, Row: w.row}, nil
}

// WriteCell writes a value into the current row.
func (w *Workbook) WriteCell(r sink.RowHandle, col int, cell table.Cell) error {
	if err := w.checkTable(r.Table); err != nil {
		return err
	}
	if r.Row != w.row {
		return fmt.Errorf("row %d of %s is no longer writable", r.Row, w.sheets[r.Table])
	}
	if col < 0 {
		return fmt.Errorf("invalid column %d", col)
	}

	for len(w.pending) <= col {
		w.pending = append(w.pending, nil)
	}
	w.pending[col] = w.value(cell)
	w.dirty = true
	return nil
}

// Save writes the workbook to its path and releases it. The workbook is
// released even when saving fails.
func (w *Workbook) Save() (err error) {
	if w.closed {
		return fmt.Errorf("workbook %s already released", w.path)
	}
	defer func() {
		w.closed = true
		if cerr := w.file.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to release workbook %s: %w", w.path, cerr))
		}
	}()

	if err := w.finishSheet(); err != nil {
		return err
	}
	if len(w.sheets) > 0 {
		w.file.SetActiveSheet(0)
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	return nil
}

// Sheets lists the sheets created so far.
func (w *Workbook) Sheets() []string {
	out := make([]string, len(w.sheets))
	copy(out, w.sheets)
	return out
}

func (w *Workbook) value(cell table.Cell) interface{} {
	if cell.Kind == types.Date {
		if t, ok := transform.ParseDate(cell.Value); ok {
			return excelize.Cell{StyleID: w.dateStyle, Value: t.UTC().Truncate(24 * time.Hour)}
		}
	}
	return cell.Value
}

func (w *Workbook) checkTable(t sink.TableHandle) error {
	if w.current == nil {
		return errors.New("no table created")
	}
	if t != w.handle {
		return fmt.Errorf("table %d is no longer writable", t)
	}
	return nil
}

func (w *Workbook) flushRow() error {
	if !w.dirty {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, w.row+1)
	if err != nil {
		return err
	}
	if err := w.current.SetRow(cell, w.pending); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", w.row+1, w.sheets[w.handle], err)
	}
	w.pending = w.pending[:0]
	w.dirty = false
	return nil
}

func (w *Workbook) finishSheet() error {
	if w.current == nil {
		return nil
	}
	if err := w.flushRow(); err != nil {
		return err
	}
	if err := w.current.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet %s: %w", w.sheets[w.handle], err)
	}
	w.current = nil
	return nil
}
