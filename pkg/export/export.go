// Package export renders tabular reports as CSV or PDF documents.
package export

import (
	"fmt"
	"strings"
)

// Format identifies an output encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat normalises a user supplied format, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Table is the document body shared by every renderer.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Render encodes the table in the requested format.
func Render(format Format, table Table) ([]byte, error) {
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("export requires at least one column")
	}
	switch format {
	case FormatCSV:
		return renderCSV(table)
	case FormatPDF:
		return renderPDF(table)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
