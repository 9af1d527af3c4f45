package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jinwsy/blood-pressure/internal/domain"
)

// WriteCSV writes the header and one line per row
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(domain.ExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(Cells(row)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
