package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/reviewvault/internal/clock"
	auditdomain "github.com/smallbiznis/reviewvault/internal/loadaudit/domain"
	reviewdomain "github.com/smallbiznis/reviewvault/internal/review/domain"
	"github.com/smallbiznis/reviewvault/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    auditdomain.Repository
	Reviews reviewdomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    auditdomain.Repository
	reviews reviewdomain.Service
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("loadaudit.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		reviews: p.Reviews,
	}
}

func (s *Service) Processed(ctx context.Context, db *gorm.DB, file, sha256 string) (bool, error) {
	if db == nil {
		db = s.db
	}
	return s.repo.Exists(ctx, db, file, sha256)
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, req auditdomain.RecordRequest) (*auditdomain.LoadAudit, error) {
	file := strings.TrimSpace(req.File)
	if file == "" || strings.TrimSpace(req.SHA256) == "" {
		return nil, auditdomain.ErrInvalidFile
	}
	if !req.Stats.Valid() {
		return nil, auditdomain.ErrInvalidStats
	}

	payload := map[string]any{}
	for key, value := range req.Metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := auditdomain.LoadAudit{
		ID:           s.genID.Generate(),
		File:         file,
		SHA256:       req.SHA256,
		RowsIn:       req.Stats.RowsIn,
		RowsLoaded:   req.Stats.RowsLoaded,
		RowsRejected: req.Stats.RowsRejected,
		DQPass:       req.Stats.DQPass,
		DQFail:       req.Stats.DQFail,
		Metadata:     datatypes.JSONMap(payload),
		LoadedAt:     s.clock.Now().UTC(),
	}

	if tx == nil {
		tx = s.db
	}
	if err := s.repo.Insert(ctx, tx, &entry); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, auditdomain.ErrAlreadyProcessed
		}
		s.log.Warn("failed to write load audit", zap.String("file", file), zap.Error(err))
		return nil, err
	}
	return &entry, nil
}

func (s *Service) LatestLoad(ctx context.Context) (auditdomain.LoadSummary, error) {
	summary := auditdomain.LoadSummary{Status: "ok"}

	latest, err := s.repo.Latest(ctx, s.db)
	if err != nil {
		return auditdomain.LoadSummary{}, err
	}
	if latest == nil {
		return summary, nil
	}
	summary.LastLoad = latest

	total, err := s.reviews.CountReviews(ctx)
	if err != nil {
		return auditdomain.LoadSummary{}, err
	}
	summary.TotalReviews = &total
	return summary, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]auditdomain.LoadAudit, error) {
	return s.repo.List(ctx, s.db, limit)
}
