package dataquality

import (
	"fmt"
	"slices"
	"strings"

	"github.com/smallbiznis/reviewvault/internal/record"
)

// Expectation names as recorded in reports.
const (
	ExpectColumnsPresent = "expect_table_columns_to_contain_set"
	ExpectNonEmpty       = "expect_column_values_to_be_non_empty"
	ExpectRatingAllowed  = "expect_column_values_to_be_allowed_rating"
	ExpectDateParsable   = "expect_column_values_to_be_parsable_date"
	ExpectUnique         = "expect_column_values_to_be_unique"
	ExpectEmailValid     = "expect_column_values_to_be_valid_email"
	ExpectIPValid        = "expect_column_values_to_be_valid_ip"
)

// ExpectationResult is the outcome of one dataset-level expectation.
type ExpectationResult struct {
	Expectation     string   `json:"expectation"`
	Column          string   `json:"column,omitempty"`
	Success         bool     `json:"success"`
	ElementCount    int      `json:"element_count"`
	UnexpectedCount int      `json:"unexpected_count"`
	MissingColumns  []string `json:"missing_columns,omitempty"`
}

// Report aggregates the expectation suite for one file.
type Report struct {
	Success    bool                `json:"success"`
	Evaluated  int                 `json:"evaluated_expectations"`
	Successful int                 `json:"successful_expectations"`
	Results    []ExpectationResult `json:"results"`
}

// Summary renders the one-line form used in logs and CLI output.
func (r Report) Summary() string {
	return fmt.Sprintf("expectations success=%t (%d/%d expectations passed)", r.Success, r.Successful, r.Evaluated)
}

// Metadata returns a compact form suitable for audit metadata.
func (r Report) Metadata() map[string]any {
	failed := []string{}
	for _, res := range r.Results {
		if !res.Success {
			name := res.Expectation
			if res.Column != "" {
				name += ":" + res.Column
			}
			failed = append(failed, name)
		}
	}
	return map[string]any{
		"success":    r.Success,
		"evaluated":  r.Evaluated,
		"successful": r.Successful,
		"failed":     failed,
		"summary":    r.Summary(),
	}
}

// RunExpectations evaluates the dataset suite over the raw rows of one file.
// columns is the file header; email and IP expectations run only when their column
// is part of it. Blank optional values are not counted as unexpected.
func RunExpectations(columns []string, rows []record.Raw) Report {
	suite := &suiteRun{columns: columns, rows: rows}

	suite.columnsPresent(RequiredColumns)
	for _, col := range []string{ColReviewID, ColReviewerID, ColBusinessID} {
		suite.values(ExpectNonEmpty, col, func(v string, ok bool) bool {
			return ok && strings.TrimSpace(v) != ""
		})
	}
	suite.values(ExpectRatingAllowed, ColReviewRating, func(v string, ok bool) bool {
		return ok && RatingAllowed(CoerceRating(v))
	})
	suite.values(ExpectDateParsable, ColReviewDate, func(v string, ok bool) bool {
		_, parsed := ParseDate(v)
		return ok && parsed
	})
	suite.unique(ColReviewID)

	if slices.Contains(columns, ColEmailAddress) {
		suite.values(ExpectEmailValid, ColEmailAddress, func(v string, ok bool) bool {
			v = strings.TrimSpace(v)
			return !ok || v == "" || ValidEmail(v)
		})
	}
	if slices.Contains(columns, ColReviewIPAddress) {
		suite.values(ExpectIPValid, ColReviewIPAddress, func(v string, ok bool) bool {
			v = strings.TrimSpace(v)
			return !ok || v == "" || ValidIP(v)
		})
	}

	return suite.report()
}

type suiteRun struct {
	columns []string
	rows    []record.Raw
	results []ExpectationResult
}

func (s *suiteRun) columnsPresent(required []string) {
	var missing []string
	for _, col := range required {
		if !slices.Contains(s.columns, col) {
			missing = append(missing, col)
		}
	}
	s.results = append(s.results, ExpectationResult{
		Expectation:    ExpectColumnsPresent,
		Success:        len(missing) == 0,
		ElementCount:   len(s.rows),
		MissingColumns: missing,
	})
}

func (s *suiteRun) values(name, col string, ok func(string, bool) bool) {
	res := ExpectationResult{Expectation: name, Column: col, ElementCount: len(s.rows)}
	for _, row := range s.rows {
		v, present := row.Get(col)
		if !ok(v, present) {
			res.UnexpectedCount++
		}
	}
	res.Success = res.UnexpectedCount == 0
	s.results = append(s.results, res)
}

// unique counts every row whose value occurs more than once, first occurrence
// included. Blank values are ignored.
func (s *suiteRun) unique(col string) {
	counts := make(map[string]int, len(s.rows))
	for _, row := range s.rows {
		if v := value(row.Trimmed(col)); v != "" {
			counts[v]++
		}
	}
	res := ExpectationResult{Expectation: ExpectUnique, Column: col, ElementCount: len(s.rows)}
	for _, n := range counts {
		if n > 1 {
			res.UnexpectedCount += n
		}
	}
	res.Success = res.UnexpectedCount == 0
	s.results = append(s.results, res)
}

func (s *suiteRun) report() Report {
	r := Report{Evaluated: len(s.results), Results: s.results}
	for _, res := range s.results {
		if res.Success {
			r.Successful++
		}
	}
	r.Success = r.Successful == r.Evaluated
	return r
}
