package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"CONFIG_FILE", "PORT", "ALLOWED_ORIGINS", "MAX_UPLOAD_MB", "DATABASE_URL", "JWT_SECRET",
	"JWT_EXPIRY_HOURS", "ADMIN_EMAIL", "ADMIN_PASSWORD", "ENVIRONMENT", "S3_ENDPOINT",
	"S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL", "S3_REGION", "OCR_LANGUAGE",
	"OCR_GAP_FACTOR", "FUZZY_THRESHOLD", "RECEIPT_RETENTION_DAYS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 90*24*time.Hour, cfg.ReceiptRetention)
	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Equal(t, 1.5, cfg.OCRGapFactor)
	assert.Equal(t, 0.9, cfg.FuzzyThreshold)
	assert.Equal(t, 10*1024*1024, cfg.MaxUploadBytes())
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.S3UseSSL)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("FUZZY_THRESHOLD", "0.85")
	t.Setenv("RECEIPT_RETENTION_DAYS", "7")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("MAX_UPLOAD_MB", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 0.85, cfg.FuzzyThreshold)
	assert.Equal(t, 7*24*time.Hour, cfg.ReceiptRetention)
	assert.True(t, cfg.S3UseSSL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 10, cfg.MaxUploadMB)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_S3_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "7000"
  max_upload_mb: 4
storage:
  bucket: scans
  use_ssl: true
  secret_key: ${TEST_S3_SECRET}
extraction:
  fuzzy_threshold: 0.8
retention:
  days: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("S3_BUCKET", "override")

	cfg := Load()
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 4, cfg.MaxUploadMB)
	assert.Equal(t, "override", cfg.S3Bucket)
	assert.Equal(t, "from-env", cfg.S3SecretKey)
	assert.True(t, cfg.S3UseSSL)
	assert.Equal(t, 0.8, cfg.FuzzyThreshold)
	assert.Equal(t, 30*24*time.Hour, cfg.ReceiptRetention)
}

func TestLoadBadConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)

	_, err := readFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
