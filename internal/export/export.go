// Package export renders the store's derived views into downloadable files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jinwsy/blood-pressure/internal/domain"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name case-insensitively
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or xlsx)", s)
}

// FileName returns the default download name for an export made at now
func FileName(now time.Time, format Format) string {
	return fmt.Sprintf("bp-records_%s.%s", now.Format("2006-01-02"), format)
}

// Write renders rows in the given format
func Write(w io.Writer, format Format, rows []domain.ExportRow) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Cells flattens a row into the header's column order. A missing pulse is
// an empty cell.
func Cells(row domain.ExportRow) []string {
	pulse := ""
	if row.Pulse != nil {
		pulse = strconv.Itoa(*row.Pulse)
	}
	return []string{
		row.Timestamp,
		strconv.Itoa(row.Systolic),
		strconv.Itoa(row.Diastolic),
		pulse,
		row.Category,
		row.Note,
	}
}
