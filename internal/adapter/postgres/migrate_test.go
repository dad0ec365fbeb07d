package postgres

import (
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(names) == 0 {
		t.Fatalf("no migrations embedded")
	}

	raw, err := fs.ReadFile(migrations, "migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	schema := string(raw)
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS rides", "rides_driver_matches_status", "ride_events"} {
		if !strings.Contains(schema, want) {
			t.Fatalf("schema is missing %q", want)
		}
	}
}
