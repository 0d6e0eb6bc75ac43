package sqlite

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mattn/go-sqlite3"
)

func TestOpen(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	if _, err := Open("  "); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestIsReadOnly(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlite code", fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrReadonly}), true},
		{"text", errors.New("attempt to write a readonly database"), true},
		{"other", errors.New("disk I/O error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReadOnly(tt.err); got != tt.want {
				t.Errorf("IsReadOnly(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
