package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", getDialect("sqlite"))
	assert.Equal(t, "postgres", getDialect("pgx"))
	assert.Equal(t, "clickhouse", getDialect("clickhouse"))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN("sqlite", ":memory:"))
	assert.Equal(t, "data/app.db?cache=shared&_pragma=foreign_keys(1)", sqliteDSN("sqlite", "data/app.db?cache=shared"))
	assert.Equal(t, "postgres://localhost/doany", sqliteDSN("pgx", "postgres://localhost/doany"))
}

func TestOpen_MigratesSchema(t *testing.T) {
	d, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { Close(d) })

	var tables []string
	err = d.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'goose%' AND name NOT LIKE 'sqlite%' ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"files", "goals", "offline_queues", "verification_records"}, tables)

	require.NoError(t, MigrateDown(d.DB, "sqlite"))

	var count int
	err = d.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'goals'`)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestVersion(t *testing.T) {
	d, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { Close(d) })

	version, err := Version(d.DB, "sqlite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}
