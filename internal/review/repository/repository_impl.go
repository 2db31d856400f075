package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/reviewvault/internal/review/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBusiness(ctx context.Context, db *gorm.DB, id string) (*domain.Business, error) {
	var b domain.Business
	err := db.WithContext(ctx).Raw(
		`SELECT business_id, business_name, first_review_date, last_review_date, total_reviews
		 FROM businesses
		 WHERE business_id = ?`,
		id,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == "" {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) InsertBusiness(ctx context.Context, db *gorm.DB, b *domain.Business) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO businesses (business_id, business_name, first_review_date, last_review_date, total_reviews)
		 VALUES (?, ?, ?, ?, ?)`,
		b.ID,
		b.Name,
		b.FirstReviewDate,
		b.LastReviewDate,
		b.TotalReviews,
	).Error
}

func (r *repo) UpdateBusiness(ctx context.Context, db *gorm.DB, b *domain.Business) error {
	return db.WithContext(ctx).Exec(
		`UPDATE businesses
		 SET business_name = ?, first_review_date = ?, last_review_date = ?, total_reviews = ?
		 WHERE business_id = ?`,
		b.Name,
		b.FirstReviewDate,
		b.LastReviewDate,
		b.TotalReviews,
		b.ID,
	).Error
}

func (r *repo) FindUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, email_address, email_hash, user_name, user_name_redacted,
		        reviewer_country, first_review_date, total_reviews
		 FROM users
		 WHERE user_id = ?`,
		id,
	).Scan(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	return &u, nil
}

func (r *repo) InsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (
			user_id, email_address, email_hash, user_name, user_name_redacted,
			reviewer_country, first_review_date, total_reviews
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.EmailAddress,
		u.EmailHash,
		u.Name,
		u.NameRedacted,
		u.ReviewerCountry,
		u.FirstReviewDate,
		u.TotalReviews,
	).Error
}

func (r *repo) UpdateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users
		 SET email_address = ?, email_hash = ?, user_name = ?, user_name_redacted = ?,
		     reviewer_country = ?, first_review_date = ?, total_reviews = ?
		 WHERE user_id = ?`,
		u.EmailAddress,
		u.EmailHash,
		u.Name,
		u.NameRedacted,
		u.ReviewerCountry,
		u.FirstReviewDate,
		u.TotalReviews,
		u.ID,
	).Error
}

func (r *repo) FindReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	var rv domain.Review
	err := db.WithContext(ctx).Raw(
		`SELECT review_id, user_id, business_id, review_date, review_rating, review_title,
		        review_content, review_ip_address, review_ip_redacted, source_file, source_row
		 FROM reviews
		 WHERE review_id = ?`,
		id,
	).Scan(&rv).Error
	if err != nil {
		return nil, err
	}
	if rv.ID == "" {
		return nil, nil
	}
	return &rv, nil
}

func (r *repo) InsertReview(ctx context.Context, db *gorm.DB, rv *domain.Review) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO reviews (
			review_id, user_id, business_id, review_date, review_rating, review_title,
			review_content, review_ip_address, review_ip_redacted, source_file, source_row
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rv.ID,
		rv.UserID,
		rv.BusinessID,
		rv.ReviewDate,
		rv.Rating,
		rv.Title,
		rv.Content,
		rv.IPAddress,
		rv.IPRedacted,
		rv.SourceFile,
		rv.SourceRow,
	).Error
}

func (r *repo) UpdateReview(ctx context.Context, db *gorm.DB, rv *domain.Review) error {
	return db.WithContext(ctx).Exec(
		`UPDATE reviews
		 SET review_date = ?, review_rating = ?, review_title = ?, review_content = ?,
		     review_ip_address = ?, review_ip_redacted = ?, source_file = ?, source_row = ?
		 WHERE review_id = ?`,
		rv.ReviewDate,
		rv.Rating,
		rv.Title,
		rv.Content,
		rv.IPAddress,
		rv.IPRedacted,
		rv.SourceFile,
		rv.SourceRow,
		rv.ID,
	).Error
}

func (r *repo) CountReviews(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Review{}).Count(&n).Error
	return n, err
}

func (r *repo) ListReviews(ctx context.Context, db *gorm.DB, view string, filter domain.ListFilter) ([]domain.ReviewView, error) {
	var items []domain.ReviewView
	stmt := db.WithContext(ctx).Table(view)

	if businessID := strings.TrimSpace(filter.BusinessID); businessID != "" {
		stmt = stmt.Where("business_id = ?", businessID)
	}
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		stmt = stmt.Where("user_id = ?", userID)
	}
	if filter.From != "" {
		stmt = stmt.Where("review_date >= ?", filter.From)
	}
	if filter.To != "" {
		stmt = stmt.Where("review_date <= ?", filter.To)
	}

	stmt = stmt.Order("review_date asc, review_id asc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}

	if err := stmt.Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindUserAccount(ctx context.Context, db *gorm.DB, userID string) (*domain.UserAccount, error) {
	var acct domain.UserAccount
	err := db.WithContext(ctx).Raw(
		`SELECT u.user_id,
		        u.email_hash AS email_address,
		        u.user_name_redacted AS user_name,
		        u.reviewer_country,
		        u.first_review_date,
		        u.total_reviews
		 FROM users u
		 WHERE u.user_id = ?`,
		userID,
	).Scan(&acct).Error
	if err != nil {
		return nil, err
	}
	if acct.UserID == "" {
		return nil, nil
	}
	return &acct, nil
}

// RebuildMetrics recomputes metrics_summary from reviews in one transaction and
// returns the number of summary rows written.
func (r *repo) RebuildMetrics(ctx context.Context, db *gorm.DB) (int64, error) {
	var written int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM metrics_summary`).Error; err != nil {
			return err
		}
		res := tx.Exec(
			`INSERT INTO metrics_summary (
				business_id, period_start_date, total_reviews, avg_rating,
				rating_1, rating_2, rating_3, rating_4, rating_5
			)
			SELECT
				r.business_id,
				SUBSTR(r.review_date, 1, 10),
				COUNT(*),
				AVG(r.review_rating),
				SUM(CASE WHEN r.review_rating = 1 THEN 1 ELSE 0 END),
				SUM(CASE WHEN r.review_rating = 2 THEN 1 ELSE 0 END),
				SUM(CASE WHEN r.review_rating = 3 THEN 1 ELSE 0 END),
				SUM(CASE WHEN r.review_rating = 4 THEN 1 ELSE 0 END),
				SUM(CASE WHEN r.review_rating = 5 THEN 1 ELSE 0 END)
			FROM reviews r
			GROUP BY r.business_id, SUBSTR(r.review_date, 1, 10)`,
		)
		if res.Error != nil {
			return res.Error
		}
		written = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (r *repo) ListMetrics(ctx context.Context, db *gorm.DB, businessID string) ([]domain.MetricsSummary, error) {
	var items []domain.MetricsSummary
	stmt := db.WithContext(ctx).Model(&domain.MetricsSummary{})
	if businessID = strings.TrimSpace(businessID); businessID != "" {
		stmt = stmt.Where("business_id = ?", businessID)
	}
	if err := stmt.Order("business_id asc, period_start_date asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
