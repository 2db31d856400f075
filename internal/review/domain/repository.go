package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindBusiness(ctx context.Context, db *gorm.DB, id string) (*Business, error)
	InsertBusiness(ctx context.Context, db *gorm.DB, b *Business) error
	UpdateBusiness(ctx context.Context, db *gorm.DB, b *Business) error

	FindUser(ctx context.Context, db *gorm.DB, id string) (*User, error)
	InsertUser(ctx context.Context, db *gorm.DB, u *User) error
	UpdateUser(ctx context.Context, db *gorm.DB, u *User) error

	FindReview(ctx context.Context, db *gorm.DB, id string) (*Review, error)
	InsertReview(ctx context.Context, db *gorm.DB, r *Review) error
	UpdateReview(ctx context.Context, db *gorm.DB, r *Review) error
	CountReviews(ctx context.Context, db *gorm.DB) (int64, error)

	ListReviews(ctx context.Context, db *gorm.DB, view string, filter ListFilter) ([]ReviewView, error)
	FindUserAccount(ctx context.Context, db *gorm.DB, userID string) (*UserAccount, error)

	RebuildMetrics(ctx context.Context, db *gorm.DB) (int64, error)
	ListMetrics(ctx context.Context, db *gorm.DB, businessID string) ([]MetricsSummary, error)
}

// ListFilter selects reviews of one business or one user. Date bounds are
// inclusive and compared against canonical ISO strings.
type ListFilter struct {
	BusinessID string
	UserID     string
	From       string
	To         string
	Limit      int
}
