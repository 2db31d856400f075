package service

import (
	"github.com/smallbiznis/reviewvault/internal/clock"
	"github.com/smallbiznis/reviewvault/internal/config"
	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
	auditdomain "github.com/smallbiznis/reviewvault/internal/loadaudit/domain"
	"github.com/smallbiznis/reviewvault/internal/observability/metrics"
	"github.com/smallbiznis/reviewvault/internal/observability/tracing"
	reviewdomain "github.com/smallbiznis/reviewvault/internal/review/domain"
	"github.com/smallbiznis/reviewvault/internal/stage"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Config  config.Config
	Clock   clock.Clock
	Reviews reviewdomain.Service
	Audit   auditdomain.Service
	Stage   *stage.Writer
	Metrics *metrics.Metrics      `optional:"true"`
	Tracer  trace.TracerProvider `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        config.IngestConfig
	clock      clock.Clock
	reviews    reviewdomain.Service
	audit      auditdomain.Service
	stage      *stage.Writer
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	quarantine quarantineWriter
}

func NewService(p Params) ingestdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ingest.service"),
		cfg:        p.Config.Ingest,
		clock:      p.Clock,
		reviews:    p.Reviews,
		audit:      p.Audit,
		stage:      p.Stage,
		metrics:    p.Metrics,
		tracer:     tracing.Tracer(p.Tracer),
		quarantine: quarantineWriter{dir: p.Config.Ingest.QuarantineDir, clock: p.Clock},
	}
}
