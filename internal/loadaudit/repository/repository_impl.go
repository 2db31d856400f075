package repository

import (
	"context"

	"github.com/smallbiznis/reviewvault/internal/loadaudit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, file, sha256 string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM load_audit WHERE file = ? AND sha256 = ?`,
		file,
		sha256,
	).Scan(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.LoadAudit) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO load_audit (
			id, file, sha256, rows_in, rows_loaded, rows_rejected, dq_pass, dq_fail, metadata, loaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.File,
		entry.SHA256,
		entry.RowsIn,
		entry.RowsLoaded,
		entry.RowsRejected,
		entry.DQPass,
		entry.DQFail,
		entry.Metadata,
		entry.LoadedAt,
	).Error
}

func (r *repo) Latest(ctx context.Context, db *gorm.DB) (*domain.LoadAudit, error) {
	items, err := r.List(ctx, db, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, limit int) ([]domain.LoadAudit, error) {
	var items []domain.LoadAudit
	stmt := db.WithContext(ctx).Model(&domain.LoadAudit{}).Order("id desc")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
