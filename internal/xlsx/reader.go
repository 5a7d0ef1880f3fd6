package xlsx

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/table"
	"github.com/ginjaninja78/catalogue-xml-to-xlsx/internal/types"
)

// Reader reads back a converted workbook.
type Reader struct {
	file *excelize.File
}

// Open opens a workbook for reading.
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &Reader{file: f}, nil
}

// Close releases the workbook.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Sheets lists the sheets in workbook order.
func (r *Reader) Sheets() []string {
	return r.file.GetSheetList()
}

// ReadTable loads a sheet as a frozen table. The first row is the header;
// its labels become the field identifiers (a repeated label gets a "#n"
// suffix). Values come back as displayed, so dates read as yyyy/mm/dd.
func (r *Reader) ReadTable(sheet string) (*table.View, error) {
	rows, err := r.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	header := &table.HeaderMap{}
	var ids []string
	if len(rows) > 0 {
		for i, label := range rows[0] {
			id := label
			if !header.Add(table.Field{ID: id, Label: label}) {
				id = label + "#" + strconv.Itoa(i)
				header.Add(table.Field{ID: id, Label: label})
			}
			ids = append(ids, id)
		}
	}

	t := table.New(sheet, header)
	for _, values := range rows[min(1, len(rows)):] {
		row := t.NewRow()
		for col, v := range values {
			if col < len(ids) && v != "" {
				t.Apply(row, types.TextWrite(ids[col], v))
			}
		}
		t.Commit(row)
	}
	return t.Freeze(), nil
}

// ReadColumn returns the values of the column labelled label in a sheet,
// header excluded.
func (r *Reader) ReadColumn(sheet, label string) ([]string, error) {
	v, err := r.ReadTable(sheet)
	if err != nil {
		return nil, err
	}
	return v.Column(label), nil
}
