package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "sqlite:file::memory:?cache=shared")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("PAYMENT_VALIDITY", "72h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite:file::memory:?cache=shared", cfg.DatabaseURL)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 72*time.Hour, cfg.PaymentValidity)
	assert.Equal(t, int64(5<<20), cfg.MaxVoucherBytes)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadClientDefaults(t *testing.T) {
	t.Setenv("AULA_API_URL", "http://api.test/")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, "http://api.test", cfg.APIURL)
	assert.Equal(t, 5*time.Minute, cfg.ValidationDelay)
	assert.Equal(t, 10*time.Minute, cfg.ValidationInterval)
	assert.NotEmpty(t, cfg.SessionFile)
}

func TestLoadClientOverrides(t *testing.T) {
	t.Setenv("AULA_VALIDATION_DELAY", "1s")
	t.Setenv("AULA_VALIDATION_INTERVAL", "2s")
	t.Setenv("AULA_SESSION_FILE", "/tmp/aula-session.json")

	cfg, err := LoadClient()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.ValidationDelay)
	assert.Equal(t, 2*time.Second, cfg.ValidationInterval)
	assert.Equal(t, "/tmp/aula-session.json", cfg.SessionFile)
}
