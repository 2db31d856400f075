package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smallbiznis/reviewvault/internal/dataquality"
	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
	auditdomain "github.com/smallbiznis/reviewvault/internal/loadaudit/domain"
	"github.com/smallbiznis/reviewvault/internal/observability/logger"
	"github.com/smallbiznis/reviewvault/internal/observability/metrics"
	"github.com/smallbiznis/reviewvault/internal/sheet"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) ProcessFile(ctx context.Context, path string) (ingestdomain.FileResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ingestdomain.FileResult{}, ingestdomain.ErrEmptyPath
	}

	ctx, span := s.tracer.Start(ctx, "ingest.file")
	defer span.End()
	span.SetAttributes(attribute.String("file.path", path))

	result, err := s.processFile(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordFile(metrics.FileStatusFailed)
		return ingestdomain.FileResult{}, err
	}
	span.SetAttributes(
		attribute.String("file.status", string(result.Status)),
		attribute.Int("rows.in", result.Stats.RowsIn),
		attribute.Int("rows.loaded", result.Stats.RowsLoaded),
		attribute.Int("rows.rejected", result.Stats.RowsRejected),
	)
	return result, nil
}

func (s *Service) processFile(ctx context.Context, path string) (ingestdomain.FileResult, error) {
	log := logger.WithContext(ctx, s.log).With(zap.String("file", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return ingestdomain.FileResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	sum := Fingerprint(data)

	processed, err := s.audit.Processed(ctx, nil, path, sum)
	if err != nil {
		return ingestdomain.FileResult{}, fmt.Errorf("lookup audit for %s: %w", path, err)
	}
	if processed {
		return s.skipped(log, path, sum), nil
	}

	src, err := sheet.Read(path, data)
	if err != nil {
		return ingestdomain.FileResult{}, fmt.Errorf("parse %s: %w", path, err)
	}

	result := ingestdomain.FileResult{
		Path:         path,
		SHA256:       sum,
		Status:       ingestdomain.FileCompleted,
		Expectations: dataquality.RunExpectations(src.Header, src.Rows),
	}

	_, batchErrs := dataquality.ValidateBatch(src.Rows)
	base := filepath.Base(path)
	var rejected []ingestdomain.RejectedRow
	rejections := map[string]int{}

	for i, raw := range src.Rows {
		line := src.RowNumber(i)
		ok, errs, row := dataquality.ValidateRow(raw)
		if extra := batchErrs[i]; len(extra) > 0 {
			errs = append(errs, extra...)
			ok = false
		}

		result.Stats.RowsIn++
		if !ok {
			result.Stats.RowsRejected++
			result.Stats.DQFail++
			rejected = append(rejected, ingestdomain.RejectedRow{Line: line, Raw: raw, Errors: errs})
			for _, msg := range errs {
				rejections[rule(msg)]++
			}
			continue
		}
		result.Stats.RowsLoaded++
		result.Stats.DQPass++
		result.Rows = append(result.Rows, row.WithLineage(base, line))
	}

	if len(rejected) > 0 {
		qpath, err := s.quarantine.Write(path, sum, src.Header, rejected)
		if err != nil {
			return ingestdomain.FileResult{}, fmt.Errorf("quarantine %s: %w", path, err)
		}
		result.QuarantinePath = qpath
		log.Info("rows quarantined", zap.Int("rows", len(rejected)), zap.String("quarantine_path", qpath))
	}

	latency := newLatencyRecorder()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range result.Rows {
			start := time.Now()
			if err := s.reviews.Upsert(ctx, tx, row); err != nil {
				return fmt.Errorf("row %d: %w", row.SourceRow, err)
			}
			latency.Record(time.Since(start))
		}
		_, err := s.audit.Record(ctx, tx, auditdomain.RecordRequest{
			File:     path,
			SHA256:   sum,
			Stats:    result.Stats,
			Metadata: s.auditMetadata(ctx, result, rejections),
		})
		return err
	})
	if errors.Is(err, auditdomain.ErrAlreadyProcessed) {
		// loaded concurrently by another run between lookup and insert
		return s.skipped(log, path, sum), nil
	}
	if err != nil {
		return ingestdomain.FileResult{}, fmt.Errorf("load %s: %w", path, err)
	}
	result.Latency = latency.Summary()

	s.metrics.RecordFile(metrics.FileStatusCompleted)
	s.metrics.RecordRows(result.Stats.RowsLoaded, result.Stats.RowsRejected)
	log.Info("file processed",
		zap.String("sha256", sum),
		zap.Int("rows_in", result.Stats.RowsIn),
		zap.Int("rows_loaded", result.Stats.RowsLoaded),
		zap.Int("rows_rejected", result.Stats.RowsRejected),
		zap.Int("dq_pass", result.Stats.DQPass),
		zap.Int("dq_fail", result.Stats.DQFail),
		zap.String("expectations", result.Expectations.Summary()),
		zap.Duration("upsert_p95", result.Latency.P95),
	)
	return result, nil
}

func (s *Service) skipped(log *zap.Logger, path, sum string) ingestdomain.FileResult {
	s.metrics.RecordFile(metrics.FileStatusSkipped)
	log.Info("file skipped", zap.String("sha256", sum), zap.String("reason", "already_processed"))
	return ingestdomain.FileResult{Path: path, SHA256: sum, Status: ingestdomain.FileSkipped}
}

// auditMetadata never carries cell values; rejections are counted by rule.
func (s *Service) auditMetadata(ctx context.Context, result ingestdomain.FileResult, rejections map[string]int) map[string]any {
	meta := map[string]any{
		"expectations": result.Expectations.Metadata(),
	}
	if runID := logger.RunIDFromContext(ctx); runID != "" {
		meta["run_id"] = runID
	}
	if len(rejections) > 0 {
		meta["rejections"] = rejections
	}
	if result.QuarantinePath != "" {
		meta["quarantine_path"] = result.QuarantinePath
	}
	return meta
}

// rule strips the offending value from a row error, leaving the rule that failed.
func rule(msg string) string {
	if i := strings.Index(msg, ":"); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}
