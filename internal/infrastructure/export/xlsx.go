// Package export renders displayed list rows as spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of the workbook written by WriteXLSX.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column extracts one spreadsheet column from a row.
type Column[T any] struct {
	Header string
	Value  func(T) any
}

// Table is a sheet of already-extracted cell values.
type Table struct {
	Sheet   string
	Headers []string
	Rows    [][]any
}

// Build extracts cols from every item, in order.
func Build[T any](sheet string, cols []Column[T], items []T) Table {
	t := Table{Sheet: sheet, Headers: make([]string, len(cols)), Rows: make([][]any, 0, len(items))}
	for i, c := range cols {
		t.Headers[i] = c.Header
	}
	for _, item := range items {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = c.Value(item)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Filename returns a download name for the table, e.g. "sales-orders.xlsx".
func (t Table) Filename() string {
	name := strings.ToLower(strings.TrimSpace(t.Sheet))
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		name = "export"
	}
	return name + ".xlsx"
}

// WriteXLSX writes t as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}
	// Excel caps sheet names at 31 characters.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, 18); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
