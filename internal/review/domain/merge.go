package domain

import (
	"github.com/smallbiznis/reviewvault/internal/masking"
	"github.com/smallbiznis/reviewvault/internal/record"
)

// CheckRow rejects rows that cannot be persisted.
func CheckRow(row record.Normalized) error {
	if row.ReviewID == "" || row.UserID == "" || row.BusinessID == "" || row.ReviewDate == "" || row.ReviewRating == nil {
		return ErrInvalidRow
	}
	return nil
}

// NewBusiness builds the first-sight business for a row.
func NewBusiness(row record.Normalized) Business {
	date := row.ReviewDate
	b := Business{
		ID:              row.BusinessID,
		FirstReviewDate: &date,
		LastReviewDate:  &date,
		TotalReviews:    1,
	}
	if row.BusinessName != nil {
		b.Name = *row.BusinessName
	}
	return b
}

// Merge folds another review of the business into b. A non-nil name replaces the
// stored one, the date range only widens, and the counter always advances, so
// re-ingesting a review id counts it again.
func (b *Business) Merge(row record.Normalized) {
	if row.BusinessName != nil {
		b.Name = *row.BusinessName
	}
	if date := row.ReviewDate; date != "" {
		if b.FirstReviewDate == nil || date < *b.FirstReviewDate {
			b.FirstReviewDate = &date
		}
		if b.LastReviewDate == nil || date > *b.LastReviewDate {
			b.LastReviewDate = &date
		}
	}
	b.TotalReviews++
}

// NewUser builds the first-sight user for a row, deriving the hash and redaction.
func NewUser(row record.Normalized) User {
	date := row.ReviewDate
	return User{
		ID:              row.UserID,
		EmailAddress:    row.EmailAddress,
		EmailHash:       masking.EmailHash(row.EmailAddress),
		Name:            row.UserName,
		NameRedacted:    masking.RedactName(row.UserName),
		ReviewerCountry: row.ReviewerCountry,
		FirstReviewDate: &date,
		TotalReviews:    1,
	}
}

// Merge folds another review by the user into u. Each personal field takes the
// incoming value only when it is non-nil; the first review date only moves
// earlier.
func (u *User) Merge(row record.Normalized) {
	incoming := NewUser(row)
	u.EmailAddress = coalesce(incoming.EmailAddress, u.EmailAddress)
	u.EmailHash = coalesce(incoming.EmailHash, u.EmailHash)
	u.Name = coalesce(incoming.Name, u.Name)
	u.NameRedacted = coalesce(incoming.NameRedacted, u.NameRedacted)
	u.ReviewerCountry = coalesce(incoming.ReviewerCountry, u.ReviewerCountry)
	if date := row.ReviewDate; date != "" && (u.FirstReviewDate == nil || date < *u.FirstReviewDate) {
		u.FirstReviewDate = &date
	}
	u.TotalReviews++
}

// NewReview builds the stored review for a row.
func NewReview(row record.Normalized) Review {
	r := Review{
		ID:         row.ReviewID,
		UserID:     row.UserID,
		BusinessID: row.BusinessID,
	}
	r.Overwrite(row)
	return r
}

// Overwrite replaces the mutable review fields with the row's values, nil
// included. Owner ids never change.
func (r *Review) Overwrite(row record.Normalized) {
	r.ReviewDate = row.ReviewDate
	if row.ReviewRating != nil {
		r.Rating = *row.ReviewRating
	}
	r.Title = row.ReviewTitle
	r.Content = row.ReviewContent
	r.IPAddress = row.ReviewIPAddress
	r.IPRedacted = masking.RedactIP(row.ReviewIPAddress)
	r.SourceFile = nil
	r.SourceRow = nil
	if row.SourceFile != "" {
		file, line := row.SourceFile, row.SourceRow
		r.SourceFile = &file
		r.SourceRow = &line
	}
}

func coalesce(incoming, existing *string) *string {
	if incoming != nil {
		return incoming
	}
	return existing
}
