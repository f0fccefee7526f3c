package workspace

import (
	"path"
	"path/filepath"
	"strings"
)

// cleanPath makes watcher paths and stored file paths comparable.
func cleanPath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	return strings.TrimPrefix(p, "./")
}
