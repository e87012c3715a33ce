package clickhouse

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a ClickHouse container and returns a connection.
// Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.1-alpine",
		ExposedPorts: []string{"9000/tcp", "8123/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForLog("Application: Ready for connections").
				WithStartupTimeout(60 * time.Second),
			wait.ForListeningPort("9000/tcp"),
		),
		Env: map[string]string{
			"CLICKHOUSE_DB":       "test",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		},
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "9000")
	require.NoError(t, err)

	dsn := fmt.Sprintf("clickhouse://%s:%s/test", host, port.Port())

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	runTestMigrations(t, conn)

	cleanup := func() {
		conn.Close()
		_ = container.Terminate(ctx)
	}

	return conn, cleanup
}

// runTestMigrations applies the feature_records schema. It prefers the
// migration file shipped with the migrations package and falls back to an
// inline copy when the file cannot be found.
func runTestMigrations(t *testing.T, conn *Conn) {
	t.Helper()
	ctx := context.Background()

	paths := []string{
		"../migrations/clickhouse/001_feature_records.sql",
		"internal/storage/migrations/clickhouse/001_feature_records.sql",
	}
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		stmt := strings.TrimSuffix(strings.TrimSpace(string(content)), ";")
		require.NoError(t, conn.Exec(ctx, stmt), "failed to apply %s", p)
		return
	}

	t.Log("migration file not found, using inline schema")
	err := conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS feature_records (
			clickout_id     String,
			user_id         String,
			session_id      String,
			ts              UInt64,
			platform        String,
			current_filters String,
			step            Int32,
			step_from_end   Int32,
			max_step        Int32,
			is_test         UInt8,
			item_id         String,
			rank            Int32,
			price           Int32,
			item_id_clicked String,
			was_clicked     UInt8,
			features        String
		) ENGINE = MergeTree()
		ORDER BY (clickout_id, rank)
		SETTINGS index_granularity = 8192
	`)
	require.NoError(t, err)
}
