package db

import "github.com/smallbiznis/reviewvault/internal/config"

type Config struct {
	Type     string
	Path     string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// ConfigFrom extracts the storage settings from the application config.
func ConfigFrom(cfg config.Config) Config {
	return Config{
		Type:     cfg.DBType,
		Path:     cfg.DBPath,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		SSLMode:  cfg.DBSSLMode,
	}
}
