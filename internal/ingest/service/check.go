package service

import (
	"fmt"
	"os"

	"github.com/smallbiznis/reviewvault/internal/dataquality"
	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
	"github.com/smallbiznis/reviewvault/internal/sheet"
)

// CheckFile runs the row, batch and dataset checks over one file without
// touching the store.
func CheckFile(path string) (ingestdomain.CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ingestdomain.CheckResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	src, err := sheet.Read(path, data)
	if err != nil {
		return ingestdomain.CheckResult{}, fmt.Errorf("parse %s: %w", path, err)
	}

	dups, batchErrs := dataquality.ValidateBatch(src.Rows)
	result := ingestdomain.CheckResult{
		Path:         path,
		Rows:         len(src.Rows),
		Duplicates:   make([]int, 0, len(dups)),
		Issues:       []ingestdomain.RowIssue{},
		Expectations: dataquality.RunExpectations(src.Header, src.Rows),
	}
	for _, i := range dups {
		result.Duplicates = append(result.Duplicates, src.RowNumber(i))
	}
	for i, raw := range src.Rows {
		ok, errs, _ := dataquality.ValidateRow(raw)
		errs = append(errs, batchErrs[i]...)
		if ok && len(batchErrs[i]) == 0 {
			result.Valid++
			continue
		}
		result.Invalid++
		result.Issues = append(result.Issues, ingestdomain.RowIssue{Line: src.RowNumber(i), Errors: errs})
	}
	return result, nil
}
