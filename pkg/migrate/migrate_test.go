package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/eventpos-backend/pkg/config"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		dir, err := DirFor(driver)
		require.NoError(t, err)
		require.NoError(t, ValidateFS(Migrations(), dir), driver)
	}
}

func TestDialectTreesShareVersions(t *testing.T) {
	versions := func(driver string) []string {
		dir, err := DirFor(driver)
		require.NoError(t, err)
		entries, err := fs.ReadDir(Migrations(), dir)
		require.NoError(t, err)
		var out []string
		for _, e := range entries {
			out = append(out, e.Name())
		}
		sort.Strings(out)
		return out
	}
	assert.Equal(t, versions(config.DriverSQLite), versions(config.DriverPostgres))
}

func TestDirForRejectsUnknownDriver(t *testing.T) {
	_, err := DirFor("mysql")
	require.Error(t, err)
}

func TestRunAppliesSQLiteSchema(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, config.DriverSQLite, "up"))

	for _, table := range []string{"events", "product_types", "products", "promos", "transactions", "transaction_items", "exchange_rates"} {
		assert.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}

	require.NoError(t, MigrateToVersion(ctx, sqlDB, config.DriverSQLite, "20260301090000"))
	assert.False(t, conn.Migrator().HasTable("transactions"))
	assert.True(t, conn.Migrator().HasTable("events"))
}

func TestCreateSQLMigrationWritesBothDialects(t *testing.T) {
	base := t.TempDir()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	created, err := createAt(base, "Add Event Notes!", now)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, filepath.Join(base, "sqlite", "20260501120000_add_event_notes.sql"), created[0])
	assert.Equal(t, filepath.Join(base, "postgres", "20260501120000_add_event_notes.sql"), created[1])

	body, err := os.ReadFile(created[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "-- +goose Down"))
	require.NoError(t, ValidateDir(filepath.Join(base, "sqlite")))

	_, err = createAt(base, "add event notes", now)
	require.Error(t, err)

	_, err = createAt(base, "!!!", now)
	require.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestValidateFSReportsEveryProblem(t *testing.T) {
	fsys := fstest.MapFS{
		"m/20260301090000_ok.sql":       {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")},
		"m/20260301090100_reversed.sql": {Data: []byte("-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n")},
		"m/20260301090100_dupe.sql":     {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		"m/notes.txt":                   {Data: []byte("ignored")},
	}
	err := ValidateFS(fsys, "m")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), "Down section before Up")
	assert.Contains(t, err.Error(), "duplicate migration version")
}
