package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"nestquest/internal/storage/migrations"
)

// newTestPool starts a PostgreSQL container, applies the embedded migrations
// and returns a pool on it. Container and pool are released by t.Cleanup.
func newTestPool(t *testing.T) *Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("nestquest_test"),
		postgres.WithUsername("nestquest"),
		postgres.WithPassword("nestquest"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres connection string")

	pool, err := NewPool(ctx, dsn, WithMaxConns(2), WithApplicationName("nestquest-test"))
	require.NoError(t, err, "create pool")
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool), "apply migrations")
	// Applying twice must be a no-op.
	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool), "reapply migrations")

	return pool
}
