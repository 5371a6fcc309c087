package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ClientConfig configures the API client used by aulactl.
type ClientConfig struct {
	APIURL      string
	Timeout     time.Duration
	SessionFile string

	// Background token validation
	ValidationDelay    time.Duration
	ValidationInterval time.Duration
	ValidationTimeout  time.Duration

	LogLevel string
}

// DefaultClientConfig returns the settings used when nothing is configured.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		APIURL:             "http://localhost:8080/api/v1",
		Timeout:            5 * time.Second,
		SessionFile:        defaultSessionFile(),
		ValidationDelay:    5 * time.Minute,
		ValidationInterval: 10 * time.Minute,
		ValidationTimeout:  10 * time.Second,
		LogLevel:           "warn",
	}
}

// LoadClient reads AULA_* environment variables on top of the defaults.
func LoadClient() (ClientConfig, error) {
	def := DefaultClientConfig()

	v := viper.New()
	v.SetEnvPrefix("AULA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("session_file", def.SessionFile)
	v.SetDefault("validation_delay", def.ValidationDelay)
	v.SetDefault("validation_interval", def.ValidationInterval)
	v.SetDefault("validation_timeout", def.ValidationTimeout)
	v.SetDefault("log_level", def.LogLevel)

	cfg := ClientConfig{
		APIURL:             strings.TrimRight(v.GetString("api_url"), "/"),
		Timeout:            v.GetDuration("timeout"),
		SessionFile:        v.GetString("session_file"),
		ValidationDelay:    v.GetDuration("validation_delay"),
		ValidationInterval: v.GetDuration("validation_interval"),
		ValidationTimeout:  v.GetDuration("validation_timeout"),
		LogLevel:           v.GetString("log_level"),
	}

	if cfg.APIURL == "" {
		return cfg, fmt.Errorf("AULA_API_URL must not be empty")
	}
	if cfg.ValidationInterval <= 0 {
		return cfg, fmt.Errorf("AULA_VALIDATION_INTERVAL must be positive")
	}
	return cfg, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "aulactl", "session.json")
}
