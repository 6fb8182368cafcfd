package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "service_role", cfg.Database.ServiceRole)
	assert.Equal(t, "anon", cfg.Database.PublicRole)
	assert.Equal(t, ErrorDetailVerbose, cfg.Storefront.ErrorDetail)
	assert.True(t, cfg.Storefront.VerboseErrors())
	assert.Equal(t, time.Minute, cfg.Storefront.CatalogCacheTTL)
	assert.Equal(t, 2*time.Second, cfg.Messaging.Kafka.WriteTimeout)
}

func TestDatabaseURLFallsBackToPublicName(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("PUBLIC_DB_URL", "postgres://db.internal:5432/shop")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "postgres://db.internal:5432/shop", cfg.Database.URL)

	t.Setenv("DB_URL", "postgres://primary:5432/shop")
	cfg, err = New()
	require.NoError(t, err)
	assert.Equal(t, "postgres://primary:5432/shop", cfg.Database.URL)
}

func TestMissingCredentialsAreNotRejectedHere(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("PUBLIC_DB_URL", "")
	t.Setenv("DB_SERVICE_CREDENTIAL", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Database.ServiceCredential)
}

func TestErrorDetailMode(t *testing.T) {
	t.Setenv("HTTP_ERROR_DETAIL", " Redacted ")
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, ErrorDetailRedacted, cfg.Storefront.ErrorDetail)
	assert.False(t, cfg.Storefront.VerboseErrors())

	t.Setenv("HTTP_ERROR_DETAIL", "chatty")
	_, err = New()
	assert.Error(t, err)
}

func TestUnsupportedDatabaseDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := New()
	assert.Error(t, err)
}

func TestDisabledCacheFallsBackToNoop(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MESSAGING_ENABLED", "false")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.Cache.Driver)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
}

func TestGetEnvAsStringSliceTrimsEntries(t *testing.T) {
	t.Setenv("TEST_BROKERS", " a:1 , ,b:2")
	assert.Equal(t, []string{"a:1", "b:2"}, getEnvAsStringSlice("TEST_BROKERS", nil))

	t.Setenv("TEST_BROKERS", " , ")
	assert.Equal(t, []string{"x"}, getEnvAsStringSlice("TEST_BROKERS", []string{"x"}))
}
