package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Module provides the process-wide Config, loaded once at startup.
var Module = fx.Module("config",
	fx.Provide(Load),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	LogLevel  string
	LogFormat string

	DBType     string
	DBPath     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	Ingest IngestConfig

	MetricsPushgatewayURL string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

// IngestConfig controls file discovery and artifact locations for a run.
type IngestConfig struct {
	Globs          []string
	StagePath      string
	StageFormat    string
	QuarantineDir  string
	FailFast       bool
	RebuildMetrics bool
}

const (
	StageFormatParquet = "parquet"
	StageFormatCSV     = "csv"
)

// Load loads configuration from a .env file, an optional reviewvault.yml and
// environment variables, in increasing order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("reviewvault")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/reviewvault")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_service", "reviewvault")
	v.SetDefault("app_version", "0.1.0")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("database_type", "sqlite")
	v.SetDefault("database_path", "data/trustpilot_poc.db")
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", "5432")
	v.SetDefault("database_name", "reviewvault")
	v.SetDefault("database_user", "postgres")
	v.SetDefault("database_password", "")
	v.SetDefault("database_sslmode", "disable")

	v.SetDefault("ingest_globs", "data/trustpilot_raw/*.xlsx")
	v.SetDefault("ingest_stage_path", "data/stage/reviews.parquet")
	v.SetDefault("ingest_stage_format", StageFormatParquet)
	v.SetDefault("ingest_quarantine_dir", "data/quarantine")
	v.SetDefault("ingest_fail_fast", true)
	v.SetDefault("ingest_rebuild_metrics", true)

	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_exporter_otlp_endpoint", "localhost:4317")
	v.SetDefault("otel_exporter_otlp_protocol", "grpc")
	v.SetDefault("otel_sampling_ratio", 1.0)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		AppName:     strings.TrimSpace(v.GetString("app_service")),
		AppVersion:  strings.TrimSpace(v.GetString("app_version")),
		Environment: strings.TrimSpace(v.GetString("environment")),
		LogLevel:    strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:   strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),

		DBType:     strings.ToLower(strings.TrimSpace(v.GetString("database_type"))),
		DBPath:     strings.TrimSpace(v.GetString("database_path")),
		DBHost:     v.GetString("database_host"),
		DBPort:     v.GetString("database_port"),
		DBName:     v.GetString("database_name"),
		DBUser:     v.GetString("database_user"),
		DBPassword: v.GetString("database_password"),
		DBSSLMode:  v.GetString("database_sslmode"),

		Ingest: IngestConfig{
			Globs:          parseList(v.GetString("ingest_globs")),
			StagePath:      strings.TrimSpace(v.GetString("ingest_stage_path")),
			StageFormat:    normalizeStageFormat(v.GetString("ingest_stage_format")),
			QuarantineDir:  strings.TrimSpace(v.GetString("ingest_quarantine_dir")),
			FailFast:       v.GetBool("ingest_fail_fast"),
			RebuildMetrics: v.GetBool("ingest_rebuild_metrics"),
		},

		MetricsPushgatewayURL: strings.TrimSpace(v.GetString("metrics_pushgateway_url")),

		OtelEnabled:          v.GetBool("otel_enabled"),
		OtelExporterEndpoint: strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint")),
		OtelExporterProtocol: strings.ToLower(strings.TrimSpace(v.GetString("otel_exporter_otlp_protocol"))),
		OtelSamplingRatio:    v.GetFloat64("otel_sampling_ratio"),
	}
}

// WithGlobs returns a copy of c whose ingest globs are replaced when patterns is non-empty.
func (c Config) WithGlobs(patterns []string) Config {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) > 0 {
		c.Ingest.Globs = cleaned
	}
	return c
}

// WithStagePath returns a copy of c with the stage destination replaced when path is non-empty.
func (c Config) WithStagePath(path string) Config {
	if path = strings.TrimSpace(path); path != "" {
		c.Ingest.StagePath = path
	}
	return c
}

func normalizeStageFormat(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StageFormatCSV:
		return StageFormatCSV
	default:
		return StageFormatParquet
	}
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
