package domain

// Business accumulates every review that references it.
type Business struct {
	ID              string  `gorm:"column:business_id;primaryKey;type:varchar(191)"`
	Name            string  `gorm:"column:business_name;type:text;not null"`
	FirstReviewDate *string `gorm:"column:first_review_date;type:varchar(32)"`
	LastReviewDate  *string `gorm:"column:last_review_date;type:varchar(32)"`
	TotalReviews    int     `gorm:"column:total_reviews;not null;default:0"`
}

func (Business) TableName() string { return "businesses" }

// User holds raw reviewer PII next to its hashed and redacted forms. Only the
// derived columns may leave the store.
type User struct {
	ID              string  `gorm:"column:user_id;primaryKey;type:varchar(191)"`
	EmailAddress    *string `gorm:"column:email_address;type:text"`
	EmailHash       *string `gorm:"column:email_hash;type:varchar(64);index:idx_users_email_hash"`
	Name            *string `gorm:"column:user_name;type:text"`
	NameRedacted    *string `gorm:"column:user_name_redacted;type:text"`
	ReviewerCountry *string `gorm:"column:reviewer_country;type:text"`
	FirstReviewDate *string `gorm:"column:first_review_date;type:varchar(32)"`
	TotalReviews    int     `gorm:"column:total_reviews;not null;default:0"`
}

func (User) TableName() string { return "users" }

type Review struct {
	ID         string  `gorm:"column:review_id;primaryKey;type:varchar(191)"`
	UserID     string  `gorm:"column:user_id;type:varchar(191);not null;index:idx_reviews_user"`
	BusinessID string  `gorm:"column:business_id;type:varchar(191);not null;index:idx_reviews_business"`
	ReviewDate string  `gorm:"column:review_date;type:varchar(32);not null;index:idx_reviews_date"`
	Rating     int     `gorm:"column:review_rating;not null"`
	Title      *string `gorm:"column:review_title;type:text"`
	Content    *string `gorm:"column:review_content;type:text"`
	IPAddress  *string `gorm:"column:review_ip_address;type:text"`
	IPRedacted *string `gorm:"column:review_ip_redacted;type:text"`
	SourceFile *string `gorm:"column:source_file;type:text"`
	SourceRow  *int    `gorm:"column:source_row"`

	User     *User     `gorm:"constraint:OnDelete:CASCADE"`
	Business *Business `gorm:"constraint:OnDelete:CASCADE"`
}

func (Review) TableName() string { return "reviews" }

// MetricsSummary is a derived daily aggregate per business, rebuilt from reviews.
type MetricsSummary struct {
	BusinessID      string  `gorm:"column:business_id;primaryKey;type:varchar(191)"`
	PeriodStartDate string  `gorm:"column:period_start_date;primaryKey;type:varchar(10)"`
	TotalReviews    int     `gorm:"column:total_reviews;not null"`
	AvgRating       float64 `gorm:"column:avg_rating;not null"`
	Rating1         int     `gorm:"column:rating_1;not null"`
	Rating2         int     `gorm:"column:rating_2;not null"`
	Rating3         int     `gorm:"column:rating_3;not null"`
	Rating4         int     `gorm:"column:rating_4;not null"`
	Rating5         int     `gorm:"column:rating_5;not null"`

	Business *Business `gorm:"constraint:OnDelete:CASCADE"`
}

func (MetricsSummary) TableName() string { return "metrics_summary" }

// Read projections.
const (
	ViewPublic  = "v_reviews_public"
	ViewPrivate = "v_reviews_private"
)
