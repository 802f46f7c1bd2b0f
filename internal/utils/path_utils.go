package utils

import (
	"path/filepath"

	"github.com/funvibe/traitmap/internal/config"
)

// ExtractModuleName derives a module name from a file path.
// It takes the base filename and removes any recognized source extension.
func ExtractModuleName(path string) string {
	name := filepath.Base(path)
	return config.TrimSourceExt(name)
}

// RelativeTo returns path relative to base with forward slashes, or the
// cleaned path itself when it cannot be made relative.
func RelativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}

// IsArchive reports whether path names a txtar archive.
func IsArchive(path string) bool {
	return filepath.Ext(path) == ".txtar"
}
