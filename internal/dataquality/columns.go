// Package dataquality validates and normalizes raw review rows.
package dataquality

// Raw spreadsheet headers, matched verbatim after trimming.
const (
	ColReviewID        = "Review Id"
	ColReviewerID      = "Reviewer Id"
	ColBusinessID      = "Business Id"
	ColReviewRating    = "Review Rating"
	ColReviewDate      = "Review Date"
	ColEmailAddress    = "Email Address"
	ColReviewIPAddress = "Review IP Address"
	ColReviewerName    = "Reviewer Name"
	ColReviewerCountry = "Reviewer Country"
	ColBusinessName    = "Business Name"
	ColReviewTitle     = "Review Title"
	ColReviewContent   = "Review Content"
)

// RequiredColumns must be present in every row.
var RequiredColumns = []string{
	ColReviewID,
	ColReviewerID,
	ColBusinessID,
	ColReviewRating,
	ColReviewDate,
}

// ErrDuplicateReviewID is the batch error attached to repeated review ids.
const ErrDuplicateReviewID = "Duplicate Review Id within file"
