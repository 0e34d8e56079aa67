package db

import (
	"path/filepath"
	"testing"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "selector.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect, got %q", DialectName(conn))
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("second migrate: %v", errMigrate)
	}
	for _, table := range []string{"evaluations", "optimization_runs", "model_usage", "company_settings"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
	if err := Migrate(nil); err == nil {
		t.Fatalf("expected error for nil connection")
	}
}

func TestIsSQLiteDSN(t *testing.T) {
	cases := map[string]bool{
		"file::memory:?cache=shared":             true,
		"/var/lib/selector/selector.db":          true,
		"./data.sqlite":                          true,
		"postgres://u:p@localhost:5432/selector": false,
		"host=localhost user=u dbname=selector":  false,
	}
	for dsn, want := range cases {
		if got := isSQLiteDSN(dsn); got != want {
			t.Fatalf("isSQLiteDSN(%q) = %v, want %v", dsn, got, want)
		}
	}
}
