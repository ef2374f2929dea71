package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-accounts/config"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, time.Hour, cfg.GetTokenExpiration())
	assert.Equal(t, "User-Service-RabbitMQ", cfg.GetIssuer())
	assert.Equal(t, 10, cfg.GetDefaultPageSize())
	assert.Equal(t, 1, cfg.GetDefaultPageNumber())
	assert.Equal(t, "users", cfg.GetExchange())
	assert.Equal(t, "user.signup", cfg.GetSignupRoutingKey())
	assert.Equal(t, "user.verified", cfg.GetVerifiedRoutingKey())
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.GetSecureCookies())
}

func TestParse_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	_, err := config.Parse()
	assert.Error(t, err)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("JWT_PREVIOUS_SECRETS", "old1,old2")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.True(t, cfg.GetSecureCookies())
	assert.Equal(t, 30*time.Minute, cfg.GetTokenExpiration())
	assert.Equal(t, []string{"old1", "old2"}, cfg.GetPreviousSigningKeys())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_ReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("JWT_SECRET=from-file\nPHONE_REGION=US\n"), 0o600))

	t.Setenv("PHONE_REGION", "GB")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := config.Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GetSigningKey())
	assert.Equal(t, "GB", cfg.GetPhoneRegion())

	// godotenv sets process env; keep other tests isolated
	os.Unsetenv("JWT_SECRET")
}

func TestLoad_MissingFileIsTolerated(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}
