package db

import (
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMigrationTestDB opens a database without running any migration.
func setupMigrationTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), t.Name()+".db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testMigrations() fs.FS {
	return fstest.MapFS{
		"000001_create_test_table.up.sql": {Data: []byte(`
			CREATE TABLE IF NOT EXISTS test_table (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL
			);`)},
		"000001_create_test_table.down.sql": {Data: []byte(`DROP TABLE IF EXISTS test_table;`)},
		"000002_add_test_column.up.sql": {Data: []byte(`
			ALTER TABLE test_table ADD COLUMN description TEXT;`)},
		"000002_add_test_column.down.sql": {Data: []byte(`
			CREATE TABLE test_table_new (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL
			);
			INSERT INTO test_table_new (id, name) SELECT id, name FROM test_table;
			DROP TABLE test_table;
			ALTER TABLE test_table_new RENAME TO test_table;`)},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestMigrateUpDown(t *testing.T) {
	db := setupMigrationTestDB(t)
	migs := testMigrations()

	version, dirty, err := db.MigrateVersion(migs)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp(migs))
	version, dirty, err = db.MigrateVersion(migs)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
	assert.True(t, tableExists(t, db, "test_table"))

	// Up again is a no-op.
	require.NoError(t, db.MigrateUp(migs))

	require.NoError(t, db.MigrateDown(migs))
	version, _, err = db.MigrateVersion(migs)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, db.MigrateDown(migs))
	assert.False(t, tableExists(t, db, "test_table"))
}

func TestMigrateToAndForce(t *testing.T) {
	db := setupMigrationTestDB(t)
	migs := testMigrations()

	require.NoError(t, db.MigrateTo(migs, 1))
	version, _, err := db.MigrateVersion(migs)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	require.NoError(t, db.MigrateForce(migs, 2))
	version, dirty, err := db.MigrateVersion(migs)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}

func TestLatestMigrationVersion(t *testing.T) {
	v, err := LatestMigrationVersion(testMigrations())
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)

	_, err = LatestMigrationVersion(fstest.MapFS{})
	assert.Error(t, err)

	embedded, err := EmbeddedMigrations()
	require.NoError(t, err)
	v, err = LatestMigrationVersion(embedded)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
}

func TestNewDBAppliesEmbeddedSchema(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"field_slices", "detection_runs", "detection_extremes"} {
		assert.True(t, tableExists(t, db, table), table)
	}

	embedded, err := EmbeddedMigrations()
	require.NoError(t, err)
	version, dirty, err := db.MigrateVersion(embedded)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}
