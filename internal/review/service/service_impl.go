package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/reviewvault/internal/dataquality"
	"github.com/smallbiznis/reviewvault/internal/record"
	reviewdomain "github.com/smallbiznis/reviewvault/internal/review/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo reviewdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo reviewdomain.Repository
}

func NewService(p Params) reviewdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("review.service"),
		repo: p.Repo,
	}
}

func (s *Service) Upsert(ctx context.Context, tx *gorm.DB, row record.Normalized) error {
	if err := reviewdomain.CheckRow(row); err != nil {
		return err
	}
	if err := s.UpsertBusiness(ctx, tx, row); err != nil {
		return fmt.Errorf("upsert business %s: %w", row.BusinessID, err)
	}
	if err := s.UpsertUser(ctx, tx, row); err != nil {
		return fmt.Errorf("upsert user %s: %w", row.UserID, err)
	}
	if err := s.UpsertReview(ctx, tx, row); err != nil {
		return fmt.Errorf("upsert review %s: %w", row.ReviewID, err)
	}
	return nil
}

func (s *Service) UpsertBusiness(ctx context.Context, tx *gorm.DB, row record.Normalized) error {
	existing, err := s.repo.FindBusiness(ctx, tx, row.BusinessID)
	if err != nil {
		return err
	}
	if existing == nil {
		b := reviewdomain.NewBusiness(row)
		return s.repo.InsertBusiness(ctx, tx, &b)
	}
	existing.Merge(row)
	return s.repo.UpdateBusiness(ctx, tx, existing)
}

func (s *Service) UpsertUser(ctx context.Context, tx *gorm.DB, row record.Normalized) error {
	existing, err := s.repo.FindUser(ctx, tx, row.UserID)
	if err != nil {
		return err
	}
	if existing == nil {
		u := reviewdomain.NewUser(row)
		return s.repo.InsertUser(ctx, tx, &u)
	}
	existing.Merge(row)
	return s.repo.UpdateUser(ctx, tx, existing)
}

func (s *Service) UpsertReview(ctx context.Context, tx *gorm.DB, row record.Normalized) error {
	existing, err := s.repo.FindReview(ctx, tx, row.ReviewID)
	if err != nil {
		return err
	}
	if existing == nil {
		rv := reviewdomain.NewReview(row)
		return s.repo.InsertReview(ctx, tx, &rv)
	}
	existing.Overwrite(row)
	return s.repo.UpdateReview(ctx, tx, existing)
}

func (s *Service) ListReviews(ctx context.Context, req reviewdomain.ListReviewsRequest) ([]reviewdomain.ReviewView, error) {
	view, err := viewFor(req.Projection)
	if err != nil {
		return nil, err
	}

	filter := reviewdomain.ListFilter{
		BusinessID: strings.TrimSpace(req.BusinessID),
		UserID:     strings.TrimSpace(req.UserID),
		Limit:      req.Limit,
	}
	if filter.BusinessID == "" && filter.UserID == "" {
		return nil, reviewdomain.ErrInvalidFilter
	}
	if filter.From, err = lowerBound(req.From); err != nil {
		return nil, err
	}
	if filter.To, err = upperBound(req.To); err != nil {
		return nil, err
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return nil, reviewdomain.ErrInvalidTimeRange
	}

	items, err := s.repo.ListReviews(ctx, s.db, view, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []reviewdomain.ReviewView{}
	}
	return items, nil
}

func (s *Service) GetUserAccount(ctx context.Context, userID string) (*reviewdomain.UserAccount, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, reviewdomain.ErrInvalidFilter
	}
	acct, err := s.repo.FindUserAccount(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, reviewdomain.ErrNotFound
	}
	return acct, nil
}

func (s *Service) CountReviews(ctx context.Context) (int64, error) {
	return s.repo.CountReviews(ctx, s.db)
}

func (s *Service) RebuildMetrics(ctx context.Context) (int64, error) {
	written, err := s.repo.RebuildMetrics(ctx, s.db)
	if err != nil {
		s.log.Error("metrics rebuild failed", zap.Error(err))
		return 0, err
	}
	s.log.Info("metrics rebuilt", zap.Int64("rows", written))
	return written, nil
}

func (s *Service) ListMetrics(ctx context.Context, businessID string) ([]reviewdomain.MetricsSummary, error) {
	return s.repo.ListMetrics(ctx, s.db, businessID)
}

func viewFor(p reviewdomain.Projection) (string, error) {
	switch p {
	case reviewdomain.ProjectionPublic, "":
		return reviewdomain.ViewPublic, nil
	case reviewdomain.ProjectionPrivate:
		return reviewdomain.ViewPrivate, nil
	default:
		return "", reviewdomain.ErrInvalidProjection
	}
}

// dateOnlyLen is the length of a YYYY-MM-DD bound.
const dateOnlyLen = len("2006-01-02")

func lowerBound(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	iso, ok := dataquality.ParseDate(s)
	if !ok {
		return "", reviewdomain.ErrInvalidTimeRange
	}
	return iso, nil
}

// upperBound widens a date-only bound to the last second of that day.
func upperBound(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	iso, ok := dataquality.ParseDate(s)
	if !ok {
		return "", reviewdomain.ErrInvalidTimeRange
	}
	if len(s) == dateOnlyLen {
		iso = iso[:dateOnlyLen] + "T23:59:59Z"
	}
	return iso, nil
}
