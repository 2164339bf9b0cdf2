package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"rodent-genomes/pkg/migrations"
)

// SetupDB opens a fresh sqlite db in a temporary directory with schema
// applied, it is closed when the test ends.
func SetupDB(t testing.TB, schema string) *sql.DB {
	t.Helper()

	db, err := migrations.OpenAndMigrateDB(schema, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}
