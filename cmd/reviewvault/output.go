package main

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	reviewdomain "github.com/smallbiznis/reviewvault/internal/review/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReviewsCSV(w io.Writer, views []reviewdomain.ReviewView, projection reviewdomain.Projection) error {
	header := []string{"review_id", "business_id", "user_id", "review_date", "review_rating", "review_title", "review_content"}
	if projection == reviewdomain.ProjectionPrivate {
		header = append(header, "email_address", "user_name", "review_ip_address")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, v := range views {
		line := []string{v.ReviewID, v.BusinessID, v.UserID, v.ReviewDate, strconv.Itoa(v.ReviewRating), deref(v.ReviewTitle), deref(v.ReviewContent)}
		if projection == reviewdomain.ProjectionPrivate {
			line = append(line, deref(v.EmailAddress), deref(v.UserName), deref(v.ReviewIPAddress))
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
