package migrations

import (
	"io/fs"
	"sort"
	"testing"
)

func TestHistoryMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(HistoryFS, "history")
	if err != nil {
		t.Fatalf("read history migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected history migrations to be embedded")
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if files[0] != "001_history.sql" {
		t.Fatalf("first migration = %s, want 001_history.sql", files[0])
	}
}
