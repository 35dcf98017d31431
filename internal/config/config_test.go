package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgateway/pkg/models"
)

// clearEnv makes sure no override leaks in from the test environment
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvHost, EnvPort, EnvPortFallback, EnvResolver, EnvYtdlpPath,
		EnvUpstreamTimeout, EnvAllowedOrigins, EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultConfig(), cfg)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, models.ResolverYouTube, cfg.Resolver)
	assert.Equal(t, 30*time.Second, cfg.UpstreamTimeout.Std())
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
		check   func(t *testing.T, cfg *models.Config)
	}{
		{
			name: "valid config",
			json: `{
				"port": 8080,
				"resolver": "ytdlp",
				"upstreamTimeout": "10s",
				"allowedOrigins": ["https://app.example.com"]
			}`,
			check: func(t *testing.T, cfg *models.Config) {
				assert.Equal(t, 8080, cfg.Port)
				assert.Equal(t, models.ResolverYtdlp, cfg.Resolver)
				assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout.Std())
				assert.Equal(t, []string{"https://app.example.com"}, cfg.AllowedOrigins)
				assert.Equal(t, "yt-dlp", cfg.YtdlpPath)
			},
		},
		{
			name: "numeric timeout is seconds",
			json: `{"upstreamTimeout": 5}`,
			check: func(t *testing.T, cfg *models.Config) {
				assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout.Std())
			},
		},
		{
			name: "empty config uses defaults",
			json: `{}`,
			check: func(t *testing.T, cfg *models.Config) {
				assert.Equal(t, models.DefaultConfig(), cfg)
			},
		},
		{
			name:    "invalid JSON",
			json:    `{invalid json`,
			wantErr: true,
		},
		{
			name:    "invalid duration",
			json:    `{"upstreamTimeout": "soon"}`,
			wantErr: true,
		},
		{
			name:    "invalid values",
			json:    `{"port": 70000}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			configPath := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.json), 0644))

			cfg, err := Load(configPath)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"port": 8080, "logLevel": "warn"}`), 0644))

	t.Setenv(EnvHost, "127.0.0.1")
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvResolver, "ytdlp")
	t.Setenv(EnvYtdlpPath, "/opt/yt-dlp")
	t.Setenv(EnvUpstreamTimeout, "2m")
	t.Setenv(EnvAllowedOrigins, "https://a.example.com, https://b.example.com,")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, models.ResolverYtdlp, cfg.Resolver)
	assert.Equal(t, "/opt/yt-dlp", cfg.YtdlpPath)
	assert.Equal(t, 2*time.Minute, cfg.UpstreamTimeout.Std())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadPortFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPortFallback, "7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)

	t.Setenv(EnvPort, "7001")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
}

func TestLoadInvalidEnv(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"port not a number", EnvPort, "abc", ErrInvalidPort},
		{"timeout not a duration", EnvUpstreamTimeout, "later", ErrInvalidTimeout},
		{"unknown resolver", EnvResolver, "vlc", ErrInvalidResolver},
		{"unknown log level", EnvLogLevel, "loud", ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load("")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(cfg *models.Config)
		wantErr error
	}{
		{
			name:  "valid config",
			setup: func(cfg *models.Config) {},
		},
		{
			name:    "invalid port - too low",
			setup:   func(cfg *models.Config) { cfg.Port = 0 },
			wantErr: ErrInvalidPort,
		},
		{
			name:    "invalid port - too high",
			setup:   func(cfg *models.Config) { cfg.Port = 70000 },
			wantErr: ErrInvalidPort,
		},
		{
			name:    "unknown resolver",
			setup:   func(cfg *models.Config) { cfg.Resolver = "ffmpeg" },
			wantErr: ErrInvalidResolver,
		},
		{
			name:    "zero timeout",
			setup:   func(cfg *models.Config) { cfg.UpstreamTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "bad log level",
			setup:   func(cfg *models.Config) { cfg.LogLevel = "verbose" },
			wantErr: ErrInvalidLogLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := models.DefaultConfig()
			tt.setup(cfg)

			err := Validate(cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a , ,b "))
	assert.Nil(t, SplitList(" , "))
}
