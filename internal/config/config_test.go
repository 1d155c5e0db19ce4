package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("IDEMPOTENCY_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("IDEMPOTENCY_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sk_test_123", cfg.StripeSecretKey)
	assert.Equal(t, 30*time.Minute, cfg.IdempotencyTTL)
	assert.NoError(t, cfg.RequireStripe())
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("IDEMPOTENCY_TTL", "-1s")

	_, err := Load()
	assert.Error(t, err)
}

func TestRequireStripe_MissingKey(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireStripe())
}
