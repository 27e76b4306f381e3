package migrations

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrationsSorted(t *testing.T) {
	source := fstest.MapFS{
		"002_add_index.sql": {Data: []byte("CREATE INDEX x ON t(a);")},
		"001_create_t.sql":  {Data: []byte("CREATE TABLE t (a INTEGER);")},
		"README.md":         {Data: []byte("ignored")},
	}

	migrations, err := NewMigrator(nil, source, nil).LoadMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001", migrations[0].Version)
	assert.Equal(t, "create t", migrations[0].Description)
	assert.Equal(t, "002", migrations[1].Version)
}

func TestLoadMigrationsRejectsBadName(t *testing.T) {
	source := fstest.MapFS{"schema.sql": {Data: []byte("")}}

	_, err := NewMigrator(nil, source, nil).LoadMigrations()
	assert.Error(t, err)
}

func TestEmbeddedHasInitialSchema(t *testing.T) {
	migrations, err := NewMigrator(nil, Embedded(), nil).LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "001", migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "idx_battles_open_pool")
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add votes index")
	require.NoError(t, err)
	assert.Equal(t, "001_add_votes_index.sql", filepath.Base(first))

	second, err := CreateMigration(dir, "more")
	require.NoError(t, err)
	assert.Equal(t, "002_more.sql", filepath.Base(second))

	content, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- Migration: more")
}
