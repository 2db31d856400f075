package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
	"github.com/smallbiznis/reviewvault/internal/observability/logger"
	"github.com/smallbiznis/reviewvault/internal/record"
	"github.com/smallbiznis/reviewvault/internal/stage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

func (s *Service) Run(ctx context.Context, req ingestdomain.RunRequest) (result ingestdomain.RunResult, err error) {
	started := s.clock.Now()
	result.RunID = uuid.NewString()
	ctx = logger.WithRunID(ctx, result.RunID)

	ctx, span := s.tracer.Start(ctx, "ingest.run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ObserveRun(result.Duration)
		s.metrics.Push(context.WithoutCancel(ctx))
	}()

	log := logger.WithContext(ctx, s.log)

	globs := req.Globs
	if len(globs) == 0 {
		globs = s.cfg.Globs
	}
	result.StagePath = strings.TrimSpace(req.StagePath)
	if result.StagePath == "" {
		result.StagePath = s.cfg.StagePath
	}

	files, err := Discover(globs)
	if err != nil {
		return result, err
	}
	result.Files = len(files)
	log.Info("ingest run started", zap.Int("files", len(files)), zap.Strings("globs", globs))

	var rows []record.Normalized
	for _, path := range files {
		res, err := s.ProcessFile(ctx, path)
		if err != nil {
			if s.cfg.FailFast {
				result.Duration = s.clock.Now().Sub(started)
				return result, err
			}
			log.Error("file failed", zap.String("file", path), zap.Error(err))
			result.FailedFiles++
			result.Failures = append(result.Failures, ingestdomain.FileFailure{Path: path, Error: err.Error()})
			continue
		}
		if res.Status == ingestdomain.FileSkipped {
			result.SkippedFiles++
			continue
		}
		result.Stats.Add(res.Stats)
		rows = append(rows, res.Rows...)
	}

	if len(rows) > 0 {
		written, err := s.stage.Write(ctx, rows, result.StagePath)
		if err != nil {
			result.Duration = s.clock.Now().Sub(started)
			return result, fmt.Errorf("write stage: %w", err)
		}
		result.StageRows = written.Rows
		result.StagePath = written.Path
		result.StageOutcome = written.Outcome
		if written.Outcome == stage.OutcomeFallback {
			s.metrics.RecordStageFallback()
		}
	}

	if result.Stats.RowsLoaded > 0 && s.cfg.RebuildMetrics {
		n, err := s.reviews.RebuildMetrics(ctx)
		if err != nil {
			result.Duration = s.clock.Now().Sub(started)
			return result, fmt.Errorf("rebuild metrics: %w", err)
		}
		result.MetricsRows = n
	}

	result.Duration = s.clock.Now().Sub(started)
	span.SetAttributes(
		attribute.Int("run.files", result.Files),
		attribute.Int("run.rows_loaded", result.Stats.RowsLoaded),
	)
	log.Info("ingest run finished",
		zap.Int("files", result.Files),
		zap.Int("skipped_files", result.SkippedFiles),
		zap.Int("failed_files", result.FailedFiles),
		zap.Int("rows_in", result.Stats.RowsIn),
		zap.Int("rows_loaded", result.Stats.RowsLoaded),
		zap.Int("rows_rejected", result.Stats.RowsRejected),
		zap.Int("stage_rows", result.StageRows),
		zap.String("stage_path", result.StagePath),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}
