package storage

import (
	"io/fs"
	"strings"
	"testing"

	"ecom-auditor/internal/storage/migrations"
)

func TestMigrationCommands(t *testing.T) {
	for _, m := range []migration{migrateUp, migrateDown, migrateStatus} {
		if m.run == nil || m.start == "" {
			t.Errorf("expected %s to be fully described, got %+v", m.operation, m)
		}
		if !strings.HasPrefix(m.operation, "storage.") {
			t.Errorf("expected a storage operation name, got %q", m.operation)
		}
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("expected embedded sql migrations")
	}
}
