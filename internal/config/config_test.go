package config

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 0.1, cfg.LoudnessThreshold)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.S3Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LOUDNESS_THRESHOLD", "0.25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.LoudnessThreshold)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_CustomValues(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"LOUDNESS_THRESHOLD":    "0.2",
		"S3_BUCKET":             "my-bucket",
		"S3_REGION":             "us-east-1",
		"S3_PREFIX":             "opensmile/checks",
		"S3_ENDPOINT":           "http://localhost:4566",
		"AWS_ACCESS_KEY_ID":     "access-key",
		"AWS_SECRET_ACCESS_KEY": "secret-key",
		"LOG_FORMAT":            "json",
		"LOG_LEVEL":             "info",
	}))
	require.NoError(t, err)

	assert.Equal(t, 0.2, cfg.LoudnessThreshold)
	assert.Equal(t, "my-bucket", cfg.S3Bucket)
	assert.Equal(t, "us-east-1", cfg.S3Region)
	assert.Equal(t, "opensmile/checks", cfg.S3Prefix)
	assert.Equal(t, "http://localhost:4566", cfg.S3Endpoint)
	assert.Equal(t, "access-key", cfg.AWSAccessKeyID)
	assert.Equal(t, "secret-key", cfg.AWSSecretAccessKey)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.S3Enabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"threshold not a number", map[string]string{"LOUDNESS_THRESHOLD": "loud"}},
		{"negative threshold", map[string]string{"LOUDNESS_THRESHOLD": "-0.5"}},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"endpoint not a url", map[string]string{"S3_ENDPOINT": "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(context.Background(), envconfig.MapLookuper(tt.env))
			require.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{LoudnessThreshold: -1, LogFormat: "text"}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.LoudnessThreshold = 0.1
	assert.NoError(t, cfg.Validate())
}

func TestConfig_S3Enabled(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		region   string
		expected bool
	}{
		{"both set", "bucket", "region", true},
		{"only bucket", "bucket", "", false},
		{"only region", "", "region", false},
		{"neither set", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				S3Bucket: tt.bucket,
				S3Region: tt.region,
			}
			assert.Equal(t, tt.expected, cfg.S3Enabled())
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := &Config{
		LoudnessThreshold:  0.1,
		S3Bucket:           "bucket",
		S3Region:           "region",
		AWSSecretAccessKey: "secret-key",
		LogFormat:          "json",
		LogLevel:           "info",
	}

	str := cfg.String()

	assert.Contains(t, str, "0.1")
	assert.Contains(t, str, "bucket")
	assert.NotContains(t, str, "secret-key")
}

func TestConfig_NewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := (&Config{LogFormat: "json", LogLevel: "info"}).newLogger(&buf)
		logger.Info("test message")

		assert.Contains(t, buf.String(), `"msg":"test message"`)
	})

	t.Run("text respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := (&Config{LogFormat: "text", LogLevel: "warn"}).newLogger(&buf)
		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown")
	})

	t.Run("default writer", func(t *testing.T) {
		require.NotNil(t, (&Config{}).NewLogger())
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelWarn}, // defaults to warn
		{"", slog.LevelWarn},        // defaults to warn
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}
