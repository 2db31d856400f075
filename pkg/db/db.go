package db

import (
	"context"
	"fmt"

	obslogger "github.com/smallbiznis/reviewvault/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("db",
	fx.Provide(ConfigFrom),
	fx.Provide(New),
)

// Open connects to the configured store with the zap-backed gorm logger. Queries
// are traced through the global tracer provider.
func Open(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	return open(cfg, log, otel.GetTracerProvider())
}

func open(cfg Config, log *zap.Logger, tp trace.TracerProvider) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         obslogger.NewGormLogger(log, obslogger.DefaultGormLoggerConfig()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}
	// bound values carry PII and stay out of spans
	if err := conn.Use(otelgorm.NewPlugin(
		otelgorm.WithTracerProvider(tp),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return nil, fmt.Errorf("register gorm tracing: %w", err)
	}
	return conn, nil
}

// New opens the store and closes it when the fx app stops.
func New(lc fx.Lifecycle, cfg Config, log *zap.Logger, tp trace.TracerProvider) (*gorm.DB, error) {
	conn, err := open(cfg, log, tp)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return conn, nil
}

