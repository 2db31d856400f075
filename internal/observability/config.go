package observability

import (
	"strings"

	"github.com/smallbiznis/reviewvault/internal/config"
)

// Config holds observability configuration derived from the application Config.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	PushgatewayURL string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "reviewvault"
	}
	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             cfg.LogLevel,
		LogFormat:            cfg.LogFormat,
		PushgatewayURL:       cfg.MetricsPushgatewayURL,
		OtelEnabled:          cfg.OtelEnabled,
		OtelExporterEndpoint: cfg.OtelExporterEndpoint,
		OtelExporterProtocol: cfg.OtelExporterProtocol,
		OtelSamplingRatio:    cfg.OtelSamplingRatio,
	}
}

func (c Config) Debug() bool {
	if strings.EqualFold(strings.TrimSpace(c.LogLevel), "debug") {
		return true
	}
	return isDevEnv(c.Environment)
}

func isDevEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
