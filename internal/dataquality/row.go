package dataquality

import (
	"fmt"
	"strconv"

	"github.com/smallbiznis/reviewvault/internal/record"
)

// ValidateRow checks one raw row and returns whether it is valid, every failure
// message in rule order, and the normalized row. The normalized row is populated
// even when the row is invalid.
func ValidateRow(raw record.Raw) (bool, []string, record.Normalized) {
	var errs []string

	for _, col := range RequiredColumns {
		if _, ok := raw.Get(col); !ok {
			errs = append(errs, "missing required column: "+col)
		}
	}

	reviewID := value(raw.Trimmed(ColReviewID))
	userID := value(raw.Trimmed(ColReviewerID))
	businessID := value(raw.Trimmed(ColBusinessID))

	rawRating, hasRating := raw.Get(ColReviewRating)
	rating := CoerceRating(rawRating)

	rawDate, hasDate := raw.Get(ColReviewDate)
	reviewDate, dateOK := ParseDate(rawDate)

	if reviewID == "" {
		errs = append(errs, ColReviewID+" is null/empty")
	}
	if userID == "" {
		errs = append(errs, ColReviewerID+" is null/empty")
	}
	if businessID == "" {
		errs = append(errs, ColBusinessID+" is null/empty")
	}
	if !RatingAllowed(rating) {
		errs = append(errs, fmt.Sprintf("%s invalid: %s", ColReviewRating, quote(rawRating, hasRating)))
	}
	if !dateOK {
		errs = append(errs, fmt.Sprintf("%s unparsable: %s", ColReviewDate, quote(rawDate, hasDate)))
	}

	email := optional(raw, ColEmailAddress)
	if email != nil && !ValidEmail(*email) {
		errs = append(errs, fmt.Sprintf("%s invalid: %s", ColEmailAddress, strconv.Quote(*email)))
	}

	ip := optional(raw, ColReviewIPAddress)
	if ip != nil && !ValidIP(*ip) {
		errs = append(errs, fmt.Sprintf("%s invalid: %s", ColReviewIPAddress, strconv.Quote(*ip)))
	}

	normalized := record.Normalized{
		ReviewID:        reviewID,
		UserID:          userID,
		BusinessID:      businessID,
		ReviewDate:      reviewDate,
		ReviewRating:    rating,
		ReviewTitle:     optional(raw, ColReviewTitle),
		ReviewContent:   optional(raw, ColReviewContent),
		ReviewIPAddress: ip,
		EmailAddress:    email,
		UserName:        optional(raw, ColReviewerName),
		ReviewerCountry: optional(raw, ColReviewerCountry),
		BusinessName:    optional(raw, ColBusinessName),
	}

	return len(errs) == 0, errs, normalized
}

// optional returns the trimmed value, or nil when the column is absent or blank.
func optional(raw record.Raw, col string) *string {
	v := raw.Trimmed(col)
	if v == nil || *v == "" {
		return nil
	}
	return v
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func quote(s string, present bool) string {
	if !present {
		return "null"
	}
	return strconv.Quote(s)
}
