// Package record defines the row shapes shared by the reader, the validators and
// the storage layer.
package record

import "strings"

// Raw is one spreadsheet data row keyed by trimmed header name. A column absent
// from the row (short trailing cells, missing header) has no key at all.
type Raw map[string]string

// Get returns the cell value and whether the column exists in the row.
func (r Raw) Get(column string) (string, bool) {
	value, ok := r[column]
	return value, ok
}

// Trimmed returns the trimmed cell value, or nil when the column is absent.
func (r Raw) Trimmed(column string) *string {
	value, ok := r[column]
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	return &value
}

// Canonical snake_case keys of a normalized row.
const (
	FieldReviewID        = "review_id"
	FieldUserID          = "user_id"
	FieldBusinessID      = "business_id"
	FieldReviewDate      = "review_date"
	FieldReviewRating    = "review_rating"
	FieldReviewTitle     = "review_title"
	FieldReviewContent   = "review_content"
	FieldReviewIPAddress = "review_ip_address"
	FieldEmailAddress    = "email_address"
	FieldUserName        = "user_name"
	FieldReviewerCountry = "reviewer_country"
	FieldBusinessName    = "business_name"
	FieldSourceFile      = "source_file"
	FieldSourceRow       = "source_row"
)

// Normalized is the typed, canonical form of a review row. It is populated even
// when validation fails so rejected rows can be inspected; ReviewDate is empty and
// ReviewRating nil when they could not be coerced.
type Normalized struct {
	ReviewID   string
	UserID     string
	BusinessID string

	ReviewDate   string
	ReviewRating *int

	ReviewTitle     *string
	ReviewContent   *string
	ReviewIPAddress *string

	EmailAddress    *string
	UserName        *string
	ReviewerCountry *string
	BusinessName    *string

	SourceFile string
	SourceRow  int
}

// Field is one named value of a normalized row.
type Field struct {
	Name  string
	Value any
}

// Fields returns the row as canonical key/value pairs. Absent optional values are
// nil; lineage is included only once the row has been tagged.
func (n Normalized) Fields() []Field {
	fields := []Field{
		{FieldUserID, n.UserID},
		{FieldEmailAddress, deref(n.EmailAddress)},
		{FieldUserName, deref(n.UserName)},
		{FieldReviewerCountry, deref(n.ReviewerCountry)},
		{FieldBusinessID, n.BusinessID},
		{FieldBusinessName, deref(n.BusinessName)},
		{FieldReviewID, n.ReviewID},
		{FieldReviewDate, emptyAsNil(n.ReviewDate)},
		{FieldReviewRating, derefInt(n.ReviewRating)},
		{FieldReviewTitle, deref(n.ReviewTitle)},
		{FieldReviewContent, deref(n.ReviewContent)},
		{FieldReviewIPAddress, deref(n.ReviewIPAddress)},
	}
	if n.SourceFile != "" {
		fields = append(fields, Field{FieldSourceFile, n.SourceFile}, Field{FieldSourceRow, n.SourceRow})
	}
	return fields
}

// Map returns Fields as a map.
func (n Normalized) Map() map[string]any {
	fields := n.Fields()
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.Name] = f.Value
	}
	return out
}

// WithLineage returns a copy of n tagged with its source file and 1-based sheet row.
func (n Normalized) WithLineage(sourceFile string, sourceRow int) Normalized {
	n.SourceFile = sourceFile
	n.SourceRow = sourceRow
	return n
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
