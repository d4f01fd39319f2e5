package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demogate/internal/platform/config"
)

const strongSecret = "0123456789abcdef0123456789abcdef"

func Test_Load_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load(config.NewSecrets())
	require.Error(t, err)
}

func Test_Load_RejectsWeakSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	_, err := config.Load(config.NewSecrets())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")
}

func Test_Load_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", strongSecret)
	cfg, err := config.Load(config.NewSecrets())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.CORSOrigins)
	assert.Equal(t, "demogate.db", cfg.DBPath)
}

func Test_Load_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", strongSecret)
	t.Setenv("DEMOGATE_ADDR", ":9000")
	t.Setenv("JWT_EXPIRATION_HOURS", "1")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := config.Load(config.NewSecrets())
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func Test_Secrets_CacheAndClear(t *testing.T) {
	t.Setenv("DEMOGATE_TEST_VALUE", "first")
	s := config.NewSecrets()
	require.Equal(t, "first", s.Get("DEMOGATE_TEST_VALUE", ""))

	// Cached: a changed environment is not observed until the cache clears.
	t.Setenv("DEMOGATE_TEST_VALUE", "second")
	assert.Equal(t, "first", s.Get("DEMOGATE_TEST_VALUE", ""))

	s.ClearCache()
	assert.Equal(t, "second", s.Get("DEMOGATE_TEST_VALUE", ""))
}
