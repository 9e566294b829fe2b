package db

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func migrationsDir() string {
	_, currentFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	defer database.Close()

	first, err := RunMigrations(context.Background(), database, migrationsDir())
	require.NoError(t, err)
	second, err := RunMigrations(context.Background(), database, migrationsDir())
	require.NoError(t, err)
	assert.Empty(t, second)

	var applied int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&applied))
	files, err := migrationFiles(migrationsDir())
	require.NoError(t, err)
	assert.Equal(t, len(files), applied)
	assert.Equal(t, files, first)

	for _, table := range []string{"sessions", "tasks"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestRunMigrationsRollsBackBrokenFile(t *testing.T) {
	database, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer database.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0001_ok.sql"), []byte(`CREATE TABLE a (id TEXT);`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0002_bad.sql"), []byte(`CREATE TABLE (;`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte(`not sql`), 0o644))

	applied, err := RunMigrations(context.Background(), database, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0002_bad.sql")
	assert.Equal(t, []string{"0001_ok.sql"}, applied)

	var recorded int
	require.NoError(t, database.QueryRow(`SELECT COUNT(1) FROM schema_migrations`).Scan(&recorded))
	assert.Equal(t, 1, recorded)

	var name string
	err = database.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'a'`).Scan(&name)
	assert.NoError(t, err)
}
