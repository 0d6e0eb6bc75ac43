package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// WriteMarkdown writes content to dir/name, replacing any previous file,
// and returns the written path. A trailing newline is ensured.
func WriteMarkdown(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	path := filepath.Join(dir, name)
	// 先写临时文件再原子替换
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to replace file %s: %w", path, err)
	}
	log.Printf("written to: %s", path)
	return path, nil
}
