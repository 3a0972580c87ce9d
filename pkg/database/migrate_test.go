package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/010_late.sql":  {Data: []byte("SELECT 1")},
		"migrations/001_first.sql": {Data: []byte("SELECT 1")},
		"migrations/README.md":     {Data: []byte("notes")},
		"migrations/002_sub/x.sql": {Data: []byte("SELECT 1")},
	}
	names, err := migrationNames(fsys, "migrations")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.sql", "010_late.sql"}, names)
}

func TestEmbeddedSchemaDefinesVoucherConstraints(t *testing.T) {
	names, err := migrationNames(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "001_schema.sql", names[0])

	sql, err := migrationsFS.ReadFile("migrations/001_schema.sql")
	require.NoError(t, err)
	assert.Contains(t, string(sql), "code              TEXT NOT NULL UNIQUE")
	assert.Contains(t, string(sql), "CHECK (validity_start <= validity_end)")
}
