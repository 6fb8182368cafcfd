// Package dbtest builds migrated in-memory SQLite factories for tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/storefront/internal/config"
	"github.com/Additional-Code/storefront/internal/database"
	"github.com/Additional-Code/storefront/internal/migration"
)

// Config returns a database configuration pointing at a private in-memory SQLite database.
func Config() config.Database {
	return config.Database{
		Driver:       "sqlite",
		URL:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// NewFactory returns a factory whose schema has been migrated. It is closed on test cleanup.
func NewFactory(t testing.TB) *database.Factory {
	t.Helper()

	factory := database.NewFactory(Config(), zap.NewNop())
	t.Cleanup(func() {
		_ = factory.Close()
	})

	mig, err := migration.NewForDriver("sqlite", factory, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, mig.Up(context.Background()))

	return factory
}
