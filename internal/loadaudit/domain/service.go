package domain

import (
	"context"

	"gorm.io/gorm"
)

type RecordRequest struct {
	File     string
	SHA256   string
	Stats    Stats
	Metadata map[string]any
}

// LoadSummary reports the most recent load and the current review count.
type LoadSummary struct {
	Status       string     `json:"status"`
	LastLoad     *LoadAudit `json:"last_load"`
	TotalReviews *int64     `json:"total_reviews,omitempty"`
}

type Service interface {
	// Processed reports whether file with this fingerprint was already loaded.
	Processed(ctx context.Context, db *gorm.DB, file, sha256 string) (bool, error)
	// Record appends the audit row through tx. A repeated (file, sha256) pair
	// fails with ErrAlreadyProcessed.
	Record(ctx context.Context, tx *gorm.DB, req RecordRequest) (*LoadAudit, error)
	LatestLoad(ctx context.Context) (LoadSummary, error)
	List(ctx context.Context, limit int) ([]LoadAudit, error)
}
