// Package utils holds small filesystem helpers shared by the CLI packages.
package utils

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirPerms is used for directories the tool creates (log parents).
	DefaultDirPerms = 0o750
	// DefaultFilePerms is used for files the tool creates.
	DefaultFilePerms = 0o600
)

// ExpandPath expands a leading ~ and environment variables in path.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return os.ExpandEnv(path), nil
}

// IsPathWithin reports whether target lies inside base (or is base).
func IsPathWithin(base, target string) bool {
	base = filepath.Clean(base)
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
