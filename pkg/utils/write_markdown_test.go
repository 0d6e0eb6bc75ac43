package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteMarkdown_Overwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	path, err := WriteMarkdown(dir, "report.md", "# First")
	if err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}
	if path != filepath.Join(dir, "report.md") {
		t.Errorf("path = %s", path)
	}

	if _, err := WriteMarkdown(dir, "report.md", "# Second\n"); err != nil {
		t.Fatalf("second WriteMarkdown failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "# Second\n" {
		t.Errorf("content = %q", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind")
	}
}
