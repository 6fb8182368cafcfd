package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/config"
)

func postgresConfig() config.Database {
	return config.Database{
		Driver:                "postgres",
		URL:                   "postgres://db.example.internal:5432/storefront?sslmode=disable",
		ServiceRole:           "service_role",
		ServiceCredential:     "service-secret",
		PublicRole:            "anon",
		PublishableCredential: "anon-key",
	}
}

func TestFactoryFailsFastWithoutURL(t *testing.T) {
	cfg := postgresConfig()
	cfg.URL = ""
	f := NewFactory(cfg, zap.NewNop())

	_, err := f.Privileged()
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = f.Public()
	assert.ErrorIs(t, err, ErrMissingURL)
}

func TestFactoryFailsFastWithoutTierCredential(t *testing.T) {
	cfg := postgresConfig()
	cfg.PublishableCredential = ""
	f := NewFactory(cfg, zap.NewNop())
	t.Cleanup(func() { _ = f.Close() })

	_, err := f.Public()
	assert.ErrorIs(t, err, ErrMissingCredential)

	db, err := f.Privileged()
	require.NoError(t, err)
	assert.NotNil(t, db)
}

func TestFactoryReturnsSameHandlePerTier(t *testing.T) {
	f := NewFactory(postgresConfig(), zap.NewNop())
	t.Cleanup(func() { _ = f.Close() })

	const callers = 16
	handles := make([]*bun.DB, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := f.Privileged()
			assert.NoError(t, err)
			handles[i] = db
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}

	public, err := f.Public()
	require.NoError(t, err)
	assert.NotSame(t, handles[0], public)

	again, err := f.Public()
	require.NoError(t, err)
	assert.Same(t, public, again)
}

func TestFactoryRetriesAfterFailedInit(t *testing.T) {
	f := NewFactory(config.Database{Driver: "postgres"}, zap.NewNop())

	_, err := f.Privileged()
	require.ErrorIs(t, err, ErrMissingURL)

	f.cfg = postgresConfig()
	db, err := f.Privileged()
	require.NoError(t, err)
	assert.NotNil(t, db)
	require.NoError(t, f.Close())
}

func TestBuildDSNInjectsCredentials(t *testing.T) {
	dsn, err := buildDSN("postgres", "postgres://ignored:ignored@db:5432/shop?sslmode=disable", "anon", "p@ss")
	require.NoError(t, err)
	assert.Equal(t, "postgres://anon:p%40ss@db:5432/shop?sslmode=disable", dsn)

	dsn, err = buildDSN("mysql", "tcp(db:3306)/shop", "service_role", "secret")
	require.NoError(t, err)
	assert.Contains(t, dsn, "service_role:secret@tcp(db:3306)/shop")
	assert.Contains(t, dsn, "parseTime=true")

	dsn, err = buildDSN("sqlite", "file:shop.db", "anon", "")
	require.NoError(t, err)
	assert.Equal(t, "file:shop.db", dsn)

	_, err = buildDSN("postgres", "db-without-scheme", "anon", "x")
	assert.Error(t, err)
}

func TestSQLiteNeedsNoCredential(t *testing.T) {
	f := NewFactory(config.Database{Driver: "sqlite", URL: "file:factory-test?mode=memory&cache=shared"}, zap.NewNop())
	t.Cleanup(func() { _ = f.Close() })

	db, err := f.Public()
	require.NoError(t, err)

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestUnsupportedDriver(t *testing.T) {
	f := NewFactory(config.Database{Driver: "oracle", URL: "oracle://db", ServiceCredential: "x"}, zap.NewNop())
	_, err := f.Privileged()
	assert.Error(t, err)
}

func TestLifecyclePingsAndCloses(t *testing.T) {
	var cfg config.Config
	cfg.Database = config.Database{Driver: "sqlite", URL: "file:lifecycle?mode=memory&cache=shared"}

	lc := fxtest.NewLifecycle(t)
	f := New(lc, cfg, zap.NewNop())
	lc.RequireStart()

	f.mu.Lock()
	opened := f.privileged != nil
	f.mu.Unlock()
	assert.True(t, opened)

	lc.RequireStop()
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Nil(t, f.privileged)
}

func TestLifecycleStartFailsWithoutURL(t *testing.T) {
	var cfg config.Config
	cfg.Database = postgresConfig()
	cfg.Database.URL = ""

	lc := fxtest.NewLifecycle(t)
	New(lc, cfg, zap.NewNop())
	assert.ErrorIs(t, lc.Start(context.Background()), ErrMissingURL)
}
