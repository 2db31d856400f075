package stage

import "github.com/smallbiznis/reviewvault/internal/record"

// Row is the columnar stage schema. Field order is the stage column order and
// matches the catalog.
type Row struct {
	ReviewID        string  `parquet:"review_id"`
	UserID          string  `parquet:"user_id"`
	BusinessID      string  `parquet:"business_id"`
	ReviewDate      string  `parquet:"review_date"`
	ReviewRating    int32   `parquet:"review_rating"`
	ReviewTitle     *string `parquet:"review_title,optional"`
	ReviewContent   *string `parquet:"review_content,optional"`
	ReviewIPAddress *string `parquet:"review_ip_address,optional"`
	EmailAddress    *string `parquet:"email_address,optional"`
	UserName        *string `parquet:"user_name,optional"`
	ReviewerCountry *string `parquet:"reviewer_country,optional"`
	BusinessName    *string `parquet:"business_name,optional"`
	SourceFile      *string `parquet:"source_file,optional"`
	SourceRow       *int32  `parquet:"source_row,optional"`
}

// FromNormalized converts a validated row to its stage form.
func FromNormalized(n record.Normalized) Row {
	r := Row{
		ReviewID:        n.ReviewID,
		UserID:          n.UserID,
		BusinessID:      n.BusinessID,
		ReviewDate:      n.ReviewDate,
		ReviewTitle:     n.ReviewTitle,
		ReviewContent:   n.ReviewContent,
		ReviewIPAddress: n.ReviewIPAddress,
		EmailAddress:    n.EmailAddress,
		UserName:        n.UserName,
		ReviewerCountry: n.ReviewerCountry,
		BusinessName:    n.BusinessName,
	}
	if n.ReviewRating != nil {
		r.ReviewRating = int32(*n.ReviewRating)
	}
	if n.SourceFile != "" {
		file, line := n.SourceFile, int32(n.SourceRow)
		r.SourceFile = &file
		r.SourceRow = &line
	}
	return r
}
