package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"GO_ENV", "LOG_LEVEL", "HOST", "PORT", "TLS_CERT_FILE", "TLS_KEY_FILE",
	"STATIC_DIR", "STATUS_INTERVAL", "OUTBOX_SIZE", "MAX_MESSAGE_SIZE",
	"PING_INTERVAL", "WRITE_TIMEOUT", "HEALTHCHECK_URL",
}

func clearEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	config, err := LoadConfig(NewViper())
	require.NoError(t, err)

	assert.False(t, config.Release)
	assert.Equal(t, zerolog.InfoLevel, config.LogLevel)
	assert.Equal(t, "0.0.0.0:8080", config.Addr())
	assert.Equal(t, "http", config.Scheme())
	assert.False(t, config.TLSEnabled())
	assert.Equal(t, "webapp", config.StaticDir)
	assert.Equal(t, 30*time.Second, config.StatusInterval)
	assert.Equal(t, 32, config.OutboxSize)
	assert.Equal(t, int64(16<<20), config.MaxMessageSize)
	assert.Equal(t, 20*time.Second, config.PingInterval)
	assert.Equal(t, 10*time.Second, config.WriteTimeout)
	assert.Equal(t, "http://127.0.0.1:8080/api/status", config.HealthcheckURL)
}

func TestLoadConfigTLS(t *testing.T) {
	clearEnv(t)
	t.Setenv("TLS_CERT_FILE", "cert.pem")
	t.Setenv("TLS_KEY_FILE", "key.pem")
	t.Setenv("GO_ENV", "release")

	config, err := LoadConfig(NewViper())
	require.NoError(t, err)

	assert.True(t, config.Release)
	assert.True(t, config.TLSEnabled())
	assert.Equal(t, "8443", config.Port)
	assert.Equal(t, "https://127.0.0.1:8443/api/status", config.HealthcheckURL)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("STATUS_INTERVAL", "0")
	t.Setenv("OUTBOX_SIZE", "8")

	config, err := LoadConfig(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "9000", config.Port)
	assert.Equal(t, zerolog.DebugLevel, config.LogLevel)
	assert.Equal(t, time.Duration(0), config.StatusInterval)
	assert.Equal(t, 8, config.OutboxSize)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"half tls", map[string]string{"TLS_CERT_FILE": "cert.pem"}},
		{"port not a number", map[string]string{"PORT": "http"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
		{"status interval", map[string]string{"STATUS_INTERVAL": "soon"}},
		{"zero ping interval", map[string]string{"PING_INTERVAL": "0s"}},
		{"negative write timeout", map[string]string{"WRITE_TIMEOUT": "-1s"}},
		{"outbox size", map[string]string{"OUTBOX_SIZE": "0"}},
		{"max message size", map[string]string{"MAX_MESSAGE_SIZE": "big"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := LoadConfig(NewViper())
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOST", "127.0.0.1")
	// clearEnv leaves PORT present but empty, godotenv would not replace it
	require.NoError(t, os.Unsetenv("PORT"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=9100\nHOST=10.0.0.1\n"), 0o600))

	require.NoError(t, LoadEnvFile(path))
	config, err := LoadConfig(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "9100", config.Port)
	assert.Equal(t, "127.0.0.1", config.Host, "variables already set win")

	assert.NoError(t, LoadEnvFile(""))
	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
