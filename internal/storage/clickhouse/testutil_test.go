package clickhouse

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"nestquest/internal/storage/migrations"
)

const testDatabase = "nestquest_test"

// newTestConn starts a ClickHouse container, creates testDatabase, applies the
// embedded migrations and returns a connection bound to it. Container and
// connection are released by t.Cleanup.
func newTestConn(t *testing.T) *Conn {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clickhouse/clickhouse-server:24.1-alpine",
			ExposedPorts: []string{"9000/tcp"},
			Env:          map[string]string{"CLICKHOUSE_SKIP_USER_SETUP": "1"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready for connections").WithStartupTimeout(90*time.Second),
				wait.ForListeningPort("9000/tcp"),
			),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start clickhouse container")

	endpoint, err := container.PortEndpoint(ctx, "9000/tcp", "")
	require.NoError(t, err, "clickhouse endpoint")
	dsn := fmt.Sprintf("clickhouse://%s/%s", endpoint, testDatabase)

	admin, err := NewConnWithDatabase(ctx, dsn, "")
	require.NoError(t, err, "connect without database")
	require.NoError(t, migrations.EnsureClickhouseDatabase(ctx, admin, dsn))
	require.NoError(t, admin.Close())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err, "connect to %s", testDatabase)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.RunClickhouseMigrations(ctx, conn), "apply migrations")
	return conn
}
