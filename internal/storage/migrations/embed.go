package migrations

import "embed"

// PostgresFS embeds the event-log schema migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the feature-table schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
