package domain

import (
	"context"

	"github.com/smallbiznis/reviewvault/internal/record"
	"gorm.io/gorm"
)

type Service interface {
	// Upsert merges one valid row into business, user and review, in that order,
	// using tx so the caller controls the unit of work.
	Upsert(ctx context.Context, tx *gorm.DB, row record.Normalized) error
	UpsertBusiness(ctx context.Context, tx *gorm.DB, row record.Normalized) error
	UpsertUser(ctx context.Context, tx *gorm.DB, row record.Normalized) error
	UpsertReview(ctx context.Context, tx *gorm.DB, row record.Normalized) error

	ListReviews(ctx context.Context, req ListReviewsRequest) ([]ReviewView, error)
	GetUserAccount(ctx context.Context, userID string) (*UserAccount, error)
	CountReviews(ctx context.Context) (int64, error)

	RebuildMetrics(ctx context.Context) (int64, error)
	ListMetrics(ctx context.Context, businessID string) ([]MetricsSummary, error)
}

// Projection selects which view answers a read.
type Projection string

const (
	ProjectionPublic  Projection = "public"
	ProjectionPrivate Projection = "private"
)

type ListReviewsRequest struct {
	Projection Projection
	BusinessID string
	UserID     string
	// From and To accept a date or a full timestamp; a date-only To covers the
	// whole day.
	From  string
	To    string
	Limit int
}

// ReviewView is a row of either projection. The private projection fills the
// masked fields with hashed or redacted values; raw PII is never selected.
type ReviewView struct {
	ReviewID        string  `json:"review_id" gorm:"column:review_id"`
	BusinessID      string  `json:"business_id" gorm:"column:business_id"`
	UserID          string  `json:"user_id" gorm:"column:user_id"`
	ReviewDate      string  `json:"review_date" gorm:"column:review_date"`
	ReviewRating    int     `json:"review_rating" gorm:"column:review_rating"`
	ReviewTitle     *string `json:"review_title" gorm:"column:review_title"`
	ReviewContent   *string `json:"review_content" gorm:"column:review_content"`
	EmailAddress    *string `json:"email_address,omitempty" gorm:"column:email_address"`
	UserName        *string `json:"user_name,omitempty" gorm:"column:user_name"`
	ReviewIPAddress *string `json:"review_ip_address,omitempty" gorm:"column:review_ip_address"`
}

// UserAccount is the masked account view of a user.
type UserAccount struct {
	UserID          string  `json:"user_id" gorm:"column:user_id"`
	EmailAddress    *string `json:"email_address" gorm:"column:email_address"`
	UserName        *string `json:"user_name" gorm:"column:user_name"`
	ReviewerCountry *string `json:"reviewer_country" gorm:"column:reviewer_country"`
	FirstReviewDate *string `json:"first_review_date" gorm:"column:first_review_date"`
	TotalReviews    int     `json:"total_reviews" gorm:"column:total_reviews"`
}
