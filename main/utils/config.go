package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Release        bool
	LogLevel       zerolog.Level
	Host           string
	Port           string
	TLSCertFile    string
	TLSKeyFile     string
	StaticDir      string
	StatusInterval time.Duration
	OutboxSize     int
	MaxMessageSize int64
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	HealthcheckURL string
}

func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) Scheme() string {
	if c.TLSEnabled() {
		return "https"
	}
	return "http"
}

// LoadEnvFile exports the variables of an env file, existing variables win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	return godotenv.Load(path)
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("GO_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("STATIC_DIR", "webapp")
	v.SetDefault("STATUS_INTERVAL", "30s")
	v.SetDefault("OUTBOX_SIZE", "32")
	v.SetDefault("MAX_MESSAGE_SIZE", "16777216")
	v.SetDefault("PING_INTERVAL", "20s")
	v.SetDefault("WRITE_TIMEOUT", "10s")
	v.AutomaticEnv()
	return v
}

func LoadConfig(v *viper.Viper) (Config, error) {
	config := Config{
		Release:        v.GetString("GO_ENV") == "release",
		Host:           v.GetString("HOST"),
		Port:           v.GetString("PORT"),
		TLSCertFile:    v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:     v.GetString("TLS_KEY_FILE"),
		StaticDir:      v.GetString("STATIC_DIR"),
		HealthcheckURL: v.GetString("HEALTHCHECK_URL"),
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	config.LogLevel = level

	if (config.TLSCertFile == "") != (config.TLSKeyFile == "") {
		return Config{}, fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	if config.Port == "" {
		config.Port = "8080"
		if config.TLSEnabled() {
			config.Port = "8443"
		}
	}
	if _, err := strconv.ParseUint(config.Port, 10, 16); err != nil {
		return Config{}, fmt.Errorf("PORT: %w", err)
	}

	if config.StatusInterval, err = parseDuration(v, "STATUS_INTERVAL", true); err != nil {
		return Config{}, err
	}
	if config.PingInterval, err = parseDuration(v, "PING_INTERVAL", false); err != nil {
		return Config{}, err
	}
	if config.WriteTimeout, err = parseDuration(v, "WRITE_TIMEOUT", false); err != nil {
		return Config{}, err
	}

	outboxSize, err := strconv.Atoi(v.GetString("OUTBOX_SIZE"))
	if err != nil || outboxSize <= 0 {
		return Config{}, fmt.Errorf("OUTBOX_SIZE: must be a positive integer, got %q", v.GetString("OUTBOX_SIZE"))
	}
	config.OutboxSize = outboxSize

	maxMessageSize, err := strconv.ParseInt(v.GetString("MAX_MESSAGE_SIZE"), 10, 64)
	if err != nil || maxMessageSize <= 0 {
		return Config{}, fmt.Errorf("MAX_MESSAGE_SIZE: must be a positive integer, got %q", v.GetString("MAX_MESSAGE_SIZE"))
	}
	config.MaxMessageSize = maxMessageSize

	if config.HealthcheckURL == "" {
		config.HealthcheckURL = fmt.Sprintf("%s://127.0.0.1:%s/api/status", config.Scheme(), config.Port)
	}

	return config, nil
}

func parseDuration(v *viper.Viper, key string, allowZero bool) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, raw)
	}
	return d, nil
}
