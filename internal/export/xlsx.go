package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jinwsy/blood-pressure/internal/domain"
)

// SheetName is the worksheet holding exported readings
const SheetName = "BP Records"

var columnWidths = []float64{20, 12, 12, 10, 12, 30}

// WriteXLSX writes a single-sheet workbook. Pressure and pulse columns are
// numeric cells.
func WriteXLSX(w io.Writer, rows []domain.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(domain.ExportHeader))
	for i, h := range domain.ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		var pulse interface{} = ""
		if row.Pulse != nil {
			pulse = *row.Pulse
		}
		values := []interface{}{row.Timestamp, row.Systolic, row.Diastolic, pulse, row.Category, row.Note}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
