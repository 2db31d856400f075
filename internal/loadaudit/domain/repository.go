package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Exists(ctx context.Context, db *gorm.DB, file, sha256 string) (bool, error)
	Insert(ctx context.Context, db *gorm.DB, entry *LoadAudit) error
	Latest(ctx context.Context, db *gorm.DB) (*LoadAudit, error)
	List(ctx context.Context, db *gorm.DB, limit int) ([]LoadAudit, error)
}
