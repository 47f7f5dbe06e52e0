// Package config loads application configuration from an optional YAML
// file and environment variables. Env always wins over file values.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// server
	HTTPPort       int      `yaml:"http_port"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// upload limits
	MaxUploadBytes int64   `yaml:"max_upload_bytes"`
	UploadRPS      float64 `yaml:"upload_rps"`
	UploadBurst    int     `yaml:"upload_burst"`

	// task store
	DatabasePath     string `yaml:"database_path"`
	TaskRetentionHrs int    `yaml:"task_retention_hours"`

	// nats (optional, empty disables event publishing)
	NatsURL string `yaml:"nats_url"`

	// logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Load reads configuration with sensible defaults, applying the YAML file
// at path (when it exists) and then environment variables on top. An empty
// path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPPort:         8000,
		AllowedOrigins:   []string{"http://localhost:5000"},
		MaxUploadBytes:   64 << 20,
		UploadRPS:        2.0,
		UploadBurst:      4,
		DatabasePath:     "./tasks.db",
		TaskRetentionHrs: 24,
		LogLevel:         "info",
		LogFile:          "",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.UploadRPS = getEnvFloat("UPLOAD_RPS", cfg.UploadRPS)
	cfg.UploadBurst = getEnvInt("UPLOAD_BURST", cfg.UploadBurst)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.TaskRetentionHrs = getEnvInt("TASK_RETENTION_HOURS", cfg.TaskRetentionHrs)
	cfg.NatsURL = getEnv("NATS_URL", cfg.NatsURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		var parsed []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				parsed = append(parsed, o)
			}
		}
		if len(parsed) > 0 {
			cfg.AllowedOrigins = parsed
		}
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
