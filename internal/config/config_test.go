package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123"

// clearEnv unsets every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "BASE_URL", "DB_PATH", "JWT_SECRET", "JWT_TTL", "MEDIA_DIR",
		"LOG_LEVEL", "LOG_FORMAT", "GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "GITHUB_CALLBACK_URL",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "data/yatube.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "data/media", cfg.Media.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Auth.GitHub.Enabled())
	assert.Equal(t, "http://localhost:8080/auth/github/callback", cfg.Auth.GitHub.CallbackURL)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  port: 9000
  base_url: https://yatube.example.com/
database:
  path: /var/lib/yatube/db.sqlite
auth:
  jwt_secret: from-file-secret-value
  token_ttl: 2h
  github:
    client_id: id
    client_secret: secret
logging:
  level: debug
  format: json
`)
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_TTL", "30m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "env wins over file")
	assert.Equal(t, "https://yatube.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "/var/lib/yatube/db.sqlite", cfg.Database.Path)
	assert.Equal(t, "from-file-secret-value", cfg.Auth.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Auth.GitHub.Enabled())
	assert.Equal(t, "https://yatube.example.com/auth/github/callback", cfg.Auth.GitHub.CallbackURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
	}{
		{name: "missing secret", wantErr: "JWT secret"},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}, wantErr: "JWT secret"},
		{name: "bad port", env: map[string]string{"JWT_SECRET": testSecret, "PORT": "eighty"}, wantErr: "PORT"},
		{name: "port out of range", env: map[string]string{"JWT_SECRET": testSecret, "PORT": "70000"}, wantErr: "out of range"},
		{name: "bad ttl", env: map[string]string{"JWT_SECRET": testSecret, "JWT_TTL": "forever"}, wantErr: "JWT_TTL"},
		{name: "negative ttl", env: map[string]string{"JWT_SECRET": testSecret, "JWT_TTL": "-1h"}, wantErr: "TTL"},
		{name: "bad level", env: map[string]string{"JWT_SECRET": testSecret, "LOG_LEVEL": "loud"}, wantErr: "log level"},
		{name: "bad format", env: map[string]string{"JWT_SECRET": testSecret, "LOG_FORMAT": "xml"}, wantErr: "log format"},
		{name: "bad yaml", env: map[string]string{"JWT_SECRET": testSecret}, file: "server: [", wantErr: "parsing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "none.yaml")
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := LoggingConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "json output expected, got %q", out)
	assert.Contains(t, out, `"key":"value"`)

	_, err = LoggingConfig{Level: "info", Format: "xml"}.NewLogger(&buf)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", " warn ", "Error"} {
		_, err := ParseLevel(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
