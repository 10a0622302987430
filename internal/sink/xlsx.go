package sink

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"otocrawl/internal/models"
)

const defaultSheet = "Sheet1"

// XLSXWriter writes records to a single worksheet with a styled header.
type XLSXWriter struct {
	path  string
	sheet string
}

// NewXLSXWriter creates a writer for path. A blank sheet name uses the
// workbook default.
func NewXLSXWriter(path, sheet string) *XLSXWriter {
	if sheet == "" {
		sheet = defaultSheet
	}

	return &XLSXWriter{path: path, sheet: sheet}
}

// Write implements Writer.
func (w *XLSXWriter) Write(records []*models.Record) error {
	if err := ensureDir(w.path); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	f.SetActiveSheet(index)

	if w.sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("failed to remove default sheet: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header, data := rows(records)

	for i, name := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}

		if err := f.SetCellValue(w.sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}

		if err := f.SetCellStyle(w.sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for r, row := range data {
		for c, value := range row {
			if value == "" {
				continue
			}

			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}

			if err := f.SetCellValue(w.sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}

	for i := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(w.sheet, col, col, 20)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}
