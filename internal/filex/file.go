// Package filex has filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path. Paths without a
// directory part, and SQLite URIs such as ":memory:" or "file:...", are left
// alone.
func EnsureParentDir(path string) error {
	if path == "" || path == ":memory:" || len(path) > 5 && path[:5] == "file:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
