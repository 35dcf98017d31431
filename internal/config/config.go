package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"ytgateway/pkg/models"
)

var (
	ErrInvalidPort     = errors.New("invalid port: must be between 1 and 65535")
	ErrInvalidResolver = errors.New("invalid resolver: must be youtube or ytdlp")
	ErrInvalidTimeout  = errors.New("invalid upstream timeout: must be positive")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Environment variables that override file values
const (
	EnvHost            = "YTGATEWAY_HOST"
	EnvPort            = "YTGATEWAY_PORT"
	EnvPortFallback    = "PORT"
	EnvResolver        = "YTGATEWAY_RESOLVER"
	EnvYtdlpPath       = "YTGATEWAY_YTDLP_PATH"
	EnvUpstreamTimeout = "YTGATEWAY_UPSTREAM_TIMEOUT"
	EnvAllowedOrigins  = "YTGATEWAY_ALLOWED_ORIGINS"
	EnvLogLevel        = "YTGATEWAY_LOG_LEVEL"
)

// Load builds the configuration from defaults, the JSON file at path (if any)
// and the environment, in that order, and validates the result.
// A missing file is not an error.
func Load(path string) (*models.Config, error) {
	cfg := models.DefaultConfig()

	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if fileCfg != nil {
			cfg = mergeWithDefaults(fileCfg)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFile reads configuration from disk
func loadFile(path string) (*models.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg models.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// mergeWithDefaults fills in default values for missing fields
func mergeWithDefaults(cfg *models.Config) *models.Config {
	defaults := models.DefaultConfig()

	if cfg.Host == "" {
		cfg.Host = defaults.Host
	}
	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}
	if cfg.Resolver == "" {
		cfg.Resolver = defaults.Resolver
	}
	if cfg.YtdlpPath == "" {
		cfg.YtdlpPath = defaults.YtdlpPath
	}
	if cfg.UpstreamTimeout == 0 {
		cfg.UpstreamTimeout = defaults.UpstreamTimeout
	}
	if cfg.AllowedOrigins == nil {
		cfg.AllowedOrigins = defaults.AllowedOrigins
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	return cfg
}

// applyEnv overrides cfg with any set environment variables
func applyEnv(cfg *models.Config) error {
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}

	port := os.Getenv(EnvPort)
	if port == "" {
		port = os.Getenv(EnvPortFallback)
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPort, port)
		}
		cfg.Port = n
	}

	if v := os.Getenv(EnvResolver); v != "" {
		cfg.Resolver = v
	}
	if v := os.Getenv(EnvYtdlpPath); v != "" {
		cfg.YtdlpPath = v
	}

	if v := os.Getenv(EnvUpstreamTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, v)
		}
		cfg.UpstreamTimeout = models.Duration(d)
	}

	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		cfg.AllowedOrigins = SplitList(v)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	return nil
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks if the configuration is valid
func Validate(cfg *models.Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return ErrInvalidPort
	}

	if cfg.Resolver != models.ResolverYouTube && cfg.Resolver != models.ResolverYtdlp {
		return ErrInvalidResolver
	}

	if cfg.UpstreamTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel)
	}

	return nil
}
