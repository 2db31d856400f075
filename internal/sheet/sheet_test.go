package sheet

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/smallbiznis/reviewvault/internal/record"
)

func workbook(t *testing.T, cells map[string]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadXLSXCoercesCells(t *testing.T) {
	data := workbook(t, map[string]any{
		"A1": " Review Id ", "B1": "Review Rating", "C1": "Score", "D1": "Review Date", "E1": "Verified", "F1": "Review Title",
		"A2": "r-1", "B2": 4, "C2": 3.5, "D2": time.Date(2024, 5, 1, 12, 30, 15, 0, time.UTC), "E2": true, "F2": "Great",
		"A3": "r-2", "B3": float64(5),
	})

	s, err := Read("reviews.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"Review Id", "Review Rating", "Score", "Review Date", "Verified", "Review Title"}, s.Header)
	assert.Equal(t, 1, s.HeaderRow)
	require.Len(t, s.Rows, 2)

	assert.Equal(t, record.Raw{
		"Review Id":     "r-1",
		"Review Rating": "4",
		"Score":         "3.5",
		"Review Date":   "2024-05-01T12:30:15",
		"Verified":      "True",
		"Review Title":  "Great",
	}, s.Rows[0])

	// trailing cells absent, not empty
	assert.Equal(t, record.Raw{"Review Id": "r-2", "Review Rating": "5"}, s.Rows[1])
	assert.Equal(t, 3, s.RowNumber(1))
}

func TestReadXLSXHeaderAfterBlankRows(t *testing.T) {
	data := workbook(t, map[string]any{
		"A3": "Review Id", "B3": "Reviewer Id",
		"A4": "r-1", "C4": "beyond header",
		"B5": "u-2",
	})

	s, err := ReadXLSX(strings.NewReader(string(data)))
	require.NoError(t, err)

	assert.Equal(t, 3, s.HeaderRow)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, record.Raw{"Review Id": "r-1", "Reviewer Id": ""}, s.Rows[0])
	assert.Equal(t, record.Raw{"Review Id": "", "Reviewer Id": "u-2"}, s.Rows[1])
	assert.Equal(t, 4, s.RowNumber(0))
}

func TestReadXLSXEmptyWorkbook(t *testing.T) {
	s, err := Read("empty.xlsx", workbook(t, nil))
	require.NoError(t, err)
	assert.Empty(t, s.Header)
	assert.Empty(t, s.Rows)
}

func TestReadXLSXRejectsGarbage(t *testing.T) {
	_, err := Read("broken.xlsx", []byte("not a zip"))
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	src := "\ufeffReview Id, Review Rating ,Email Address\n" +
		"r-1,5,a@example.com\n" +
		"r-2,4\n" +
		"r-3,3,,extra\n"

	s, err := Read("reviews.CSV", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"Review Id", "Review Rating", "Email Address"}, s.Header)
	require.Len(t, s.Rows, 3)
	assert.Equal(t, record.Raw{"Review Id": "r-1", "Review Rating": "5", "Email Address": "a@example.com"}, s.Rows[0])
	assert.Equal(t, record.Raw{"Review Id": "r-2", "Review Rating": "4"}, s.Rows[1])
	assert.Equal(t, record.Raw{"Review Id": "r-3", "Review Rating": "3", "Email Address": ""}, s.Rows[2])
}

func TestFormatOf(t *testing.T) {
	f, err := FormatOf("data/a.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatOf("data/a.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestIsDateFormat(t *testing.T) {
	code := func(s string) *string { return &s }

	assert.True(t, isDateFormat(14, nil))
	assert.True(t, isDateFormat(22, nil))
	assert.True(t, isDateFormat(47, nil))
	assert.False(t, isDateFormat(0, nil))
	assert.False(t, isDateFormat(2, nil))
	assert.False(t, isDateFormat(49, nil))

	assert.True(t, isDateFormat(164, code("yyyy-mm-dd")))
	assert.True(t, isDateFormat(165, code("hh:mm AM/PM")))
	assert.False(t, isDateFormat(166, code("#,##0.00")))
	assert.False(t, isDateFormat(167, code(`0 "days"`)))
	assert.False(t, isDateFormat(168, code("[Red]0.00;[Blue]-0.00")))
	assert.False(t, isDateFormat(169, code("General")))
}
