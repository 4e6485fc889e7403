// Package config loads the process configuration from the environment, the
// way the reference service's config.Load does: fail fast on a missing
// required variable rather than starting half-configured.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nullpulse/sentinel/internal/executor"
)

// Config is the fully-resolved process configuration, per spec.md §6.
type Config struct {
	Env string

	BindAddress string
	DatabaseURL string
	DBMaxConns  int32

	TickInterval time.Duration

	ScriptsDir           string
	ScriptTimeoutSeconds int64

	SMTP executor.SMTPConfig

	OTELEndpoint  string
	EnableTracing bool
}

// Load reads Config from the environment. It returns an error for any
// SMTP_* variable left unset, per spec.md §6 ("required").
func Load() (Config, error) {
	cfg := Config{
		Env:                  getEnv("APP_ENV", "dev"),
		BindAddress:          getEnv("BIND_ADDRESS", "0.0.0.0:3000"),
		DatabaseURL:          getEnv("DATABASE_URL", "sqlite:sentinel.db"),
		DBMaxConns:           int32(getEnvInt("DB_MAX_CONNS", 5)),
		TickInterval:         time.Duration(getEnvInt("TICK_INTERVAL_SECONDS", 10)) * time.Second,
		ScriptsDir:           getEnv("SCRIPTS_DIR", "./scripts"),
		ScriptTimeoutSeconds: int64(getEnvInt("SCRIPT_TIMEOUT_SECONDS", 60)),
		OTELEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		EnableTracing:        getEnv("ENABLE_TRACING", "") == "1",
	}

	smtp, err := loadSMTP()
	if err != nil {
		return Config{}, err
	}
	cfg.SMTP = smtp

	return cfg, nil
}

func loadSMTP() (executor.SMTPConfig, error) {
	required := map[string]string{
		"SMTP_HOST":     "",
		"SMTP_PORT":     "",
		"SMTP_USERNAME": "",
		"SMTP_PASSWORD": "",
		"SMTP_FROM":     "",
	}
	for key := range required {
		v := os.Getenv(key)
		if v == "" {
			return executor.SMTPConfig{}, fmt.Errorf("missing required environment variable %s", key)
		}
		required[key] = v
	}

	port, err := strconv.Atoi(required["SMTP_PORT"])
	if err != nil {
		return executor.SMTPConfig{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	return executor.SMTPConfig{
		Host:     required["SMTP_HOST"],
		Port:     port,
		Username: required["SMTP_USERNAME"],
		Password: required["SMTP_PASSWORD"],
		From:     required["SMTP_FROM"],
	}, nil
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: invalid int for %s: %v, using default\n", key, err)
			return fallback
		}
		return num
	}
	return fallback
}
