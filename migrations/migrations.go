// migrations встраивает SQL-схемы хранилища в бинарь.
package migrations

import "embed"

// SQLite — миграции для storage/sqlite (применяются golang-migrate).
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres — миграции для storage/postgres.
//
//go:embed postgres/*.sql
var Postgres embed.FS

// PostgresInit — путь начальной миграции внутри Postgres.
const PostgresInit = "postgres/1_init_kv.up.sql"
