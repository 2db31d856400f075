package sheet

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// naiveLayout renders date cells, which carry no zone in the workbook.
const naiveLayout = "2006-01-02T15:04:05"

// ReadXLSX reads the active worksheet of a workbook.
func ReadXLSX(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		return Sheet{}, ErrNoSheet
	}

	grid, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Sheet{}, fmt.Errorf("read sheet %q: %w", name, err)
	}

	conv, err := newConverter(f, name)
	if err != nil {
		return Sheet{}, err
	}
	for r, cells := range grid {
		for c, value := range cells {
			if cells[c], err = conv.cell(r+1, c+1, value); err != nil {
				return Sheet{}, err
			}
		}
	}
	return build(grid), nil
}

type converter struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func newConverter(f *excelize.File, sheet string) (*converter, error) {
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("workbook props: %w", err)
	}
	c := &converter{f: f, sheet: sheet, dateStyles: map[int]bool{}}
	if props.Date1904 != nil {
		c.date1904 = *props.Date1904
	}
	return c, nil
}

// cell converts one raw cell value to its string form: booleans as True/False,
// date-formatted serials as naive ISO timestamps, whole numbers without a
// fractional part, everything else verbatim.
func (c *converter) cell(row, col int, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	typ, err := c.f.GetCellType(c.sheet, ref)
	if err != nil {
		return "", fmt.Errorf("cell %s type: %w", ref, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return value, nil
		}
		if b {
			return "True", nil
		}
		return "False", nil

	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value, nil
		}
		isDate, err := c.isDate(ref)
		if err != nil {
			return "", err
		}
		if isDate {
			if t, err := excelize.ExcelDateToTime(n, c.date1904); err == nil {
				return t.Round(time.Second).Format(naiveLayout), nil
			}
		}
		return formatNumber(n), nil

	default:
		return value, nil
	}
}

func (c *converter) isDate(ref string) (bool, error) {
	styleID, err := c.f.GetCellStyle(c.sheet, ref)
	if err != nil {
		return false, fmt.Errorf("cell %s style: %w", ref, err)
	}
	if cached, ok := c.dateStyles[styleID]; ok {
		return cached, nil
	}
	style, err := c.f.GetStyle(styleID)
	if err != nil {
		return false, fmt.Errorf("style %d: %w", styleID, err)
	}
	isDate := isDateFormat(style.NumFmt, style.CustomNumFmt)
	c.dateStyles[styleID] = isDate
	return isDate, nil
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) {
		return strconv.FormatFloat(n, 'f', 0, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// isDateFormat reports whether a number format renders dates or times. Built-in
// ids follow ECMA-376 18.8.30; custom codes count when their first section holds
// a y, d, h or s token outside literals and bracketed modifiers.
func isDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		return isDateCode(*custom)
	}
	switch {
	case numFmt >= 14 && numFmt <= 22,
		numFmt >= 27 && numFmt <= 36,
		numFmt >= 45 && numFmt <= 47,
		numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

func isDateCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\', ch == '_', ch == '*':
			i++
		case ch == ';':
			i = len(code)
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ydhs")
}
