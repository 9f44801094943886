package util

import (
	"path"
	"path/filepath"
	"strings"
)

// SanitizeFileName strips any path components from a display name and falls
// back to the given name when nothing usable remains. Traversal fragments
// never survive: only the final path element is kept.
func SanitizeFileName(name, fallback string) string {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(s)
	if s == "" || s == "." || s == ".." || s == "/" {
		return fallback
	}
	return s
}

// FileExt returns the lower-cased extension of a file name.
func FileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}
