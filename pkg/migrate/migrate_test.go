package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

var testMigrations = fstest.MapFS{
	"sql/001_create_species.up.sql":   {Data: []byte(`CREATE TABLE species (code TEXT PRIMARY KEY);`)},
	"sql/001_create_species.down.sql": {Data: []byte(`DROP TABLE species;`)},
	"sql/002_add_name.up.sql":         {Data: []byte(`ALTER TABLE species ADD COLUMN name TEXT;`)},
	"sql/002_add_name.down.sql":       {Data: []byte(`ALTER TABLE species DROP COLUMN name;`)},
	"sql/README.md":                   {Data: []byte(`ignored`)},
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testMigrations, "sql", "").GetMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "create species" {
		t.Errorf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[1].Up == "" || migrations[1].Down == "" {
		t.Errorf("second migration missing SQL: %+v", migrations[1])
	}
}

func TestMigrateUpAndDown(t *testing.T) {
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testMigrations, "sql", ""))

	var applied []string
	m.Logf = func(template string, args ...interface{}) { applied = append(applied, template) }

	if err := m.MigrateUp(); err != nil {
		t.Fatalf("MigrateUp: %v", err)
	}
	if version, _ := m.GetCurrentVersion(); version != 2 {
		t.Errorf("version after up = %d, expected 2", version)
	}
	if len(applied) != 2 {
		t.Errorf("expected 2 log lines, got %d", len(applied))
	}
	if _, err := db.Exec(`INSERT INTO species (code, name) VALUES ('DF', 'DOUGLAS-FIR')`); err != nil {
		t.Errorf("schema not applied: %v", err)
	}

	pending, err := m.GetPendingMigrations()
	if err != nil || len(pending) != 0 {
		t.Errorf("expected no pending migrations, got %v (%v)", pending, err)
	}

	if err := m.MigrateTo(1); err != nil {
		t.Fatalf("MigrateTo(1): %v", err)
	}
	if version, _ := m.GetCurrentVersion(); version != 1 {
		t.Errorf("version after down = %d, expected 1", version)
	}

	if err := m.MigrateDown(1); err == nil {
		t.Error("expected error migrating down to the current version")
	}
}
