package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV reads a comma-separated source. Rows may have differing widths.
func ReadCSV(r io.Reader) (Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var grid [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Sheet{}, fmt.Errorf("read csv: %w", err)
		}
		grid = append(grid, trimTrailingEmpty(rec))
	}
	return build(stripBOM(grid)), nil
}

// trimTrailingEmpty mirrors the spreadsheet behaviour of omitting trailing
// empty cells.
func trimTrailingEmpty(rec []string) []string {
	end := len(rec)
	for end > 0 && rec[end-1] == "" {
		end--
	}
	return rec[:end]
}

func stripBOM(grid [][]string) [][]string {
	if len(grid) > 0 && len(grid[0]) > 0 {
		grid[0][0] = strings.TrimPrefix(grid[0][0], "\ufeff")
	}
	return grid
}
