// Package sheet extracts a header and string-typed rows from spreadsheet sources.
// It performs format-level conversion only; validation belongs to dataquality.
package sheet

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/smallbiznis/reviewvault/internal/record"
)

// Format identifies a supported source format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Sheet is the tabular content of one source.
type Sheet struct {
	// Header holds trimmed column names in source order. Blank header cells are
	// kept as "".
	Header []string
	// HeaderRow is the 1-based source row of the header.
	HeaderRow int
	// Rows holds every row after the header, blank rows included.
	Rows []record.Raw
}

// RowNumber returns the 1-based source row of Rows[i].
func (s Sheet) RowNumber(i int) int {
	return s.HeaderRow + i + 1
}

// FormatOf maps a file extension to its Format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Read parses data according to the extension of path.
func Read(path string, data []byte) (Sheet, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Sheet{}, err
	}
	switch format {
	case FormatCSV:
		return ReadCSV(bytes.NewReader(data))
	default:
		return ReadXLSX(bytes.NewReader(data))
	}
}

// build turns a grid of cells into a Sheet. The first row with any non-blank cell
// is the header; cells beyond the header width are dropped and missing trailing
// cells leave their keys absent.
func build(grid [][]string) Sheet {
	headerIdx := -1
	for i, cells := range grid {
		if !blank(cells) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return Sheet{}
	}

	header := make([]string, len(grid[headerIdx]))
	for i, cell := range grid[headerIdx] {
		header[i] = strings.TrimSpace(cell)
	}

	rows := make([]record.Raw, 0, len(grid)-headerIdx-1)
	for _, cells := range grid[headerIdx+1:] {
		raw := make(record.Raw, len(header))
		for i, cell := range cells {
			if i >= len(header) {
				break
			}
			raw[header[i]] = cell
		}
		rows = append(rows, raw)
	}

	return Sheet{Header: header, HeaderRow: headerIdx + 1, Rows: rows}
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
