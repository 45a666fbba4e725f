package db

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestRunMigrations_InvalidDirection(t *testing.T) {
	// direction is checked before the database is touched
	err := RunMigrations(nil, "sideways")
	if err == nil {
		t.Fatal("expected error for invalid direction, got nil")
	}
	if !strings.Contains(err.Error(), "sideways") {
		t.Errorf("error %q should name the direction", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	dsn := "host=127.0.0.1 port=1 user=publink dbname=publink sslmode=disable connect_timeout=1"
	db, err := Connect(context.Background(), dsn, 2, 1)
	if err == nil {
		db.Close()
		t.Fatal("expected error for unreachable database, got nil")
	}
}

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("no embedded migrations found")
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, name := range names {
		base := strings.TrimPrefix(name, "migrations/")
		switch {
		case strings.HasSuffix(base, ".up.sql"):
			ups[strings.TrimSuffix(base, ".up.sql")] = true
		case strings.HasSuffix(base, ".down.sql"):
			downs[strings.TrimSuffix(base, ".down.sql")] = true
		default:
			t.Errorf("unexpected migration file %q", base)
		}
	}
	for version := range ups {
		if !downs[version] {
			t.Errorf("migration %s has no down file", version)
		}
	}
	for version := range downs {
		if !ups[version] {
			t.Errorf("migration %s has no up file", version)
		}
	}
}

func TestEmbeddedMigrations_CreateQueriedIndexes(t *testing.T) {
	data, err := migrationsFS.ReadFile("migrations/000001_initial_schema.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	sql := string(data)
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS audit_log",
		"CREATE TABLE IF NOT EXISTS document_header",
		"(organization_id, created_date, id)",
		"(correlation_id, created_date)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("initial migration missing %q", want)
		}
	}
}
