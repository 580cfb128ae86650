package post

import (
	"os"
	"path/filepath"
)

// mkdirWithChild creates a non-empty directory at path so removing it as a file fails.
func mkdirWithChild(path string) error {
	return os.MkdirAll(filepath.Join(path, "child"), 0o755)
}
