// Package changeset knows where pending changesets live and how to drive the
// changesets CLI through the project's package manager.
package changeset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/alexanderchan/changeset-release/internal/models"
)

const (
	// DefaultDir is the staging directory the changesets CLI writes to.
	DefaultDir = ".changeset"
	// ReadmeName is the file changesets ships in DefaultDir; it never describes a change.
	ReadmeName = "README.md"
)

// ListPending returns the markdown files directly inside dir, excluding README.md.
// A missing dir, or a path that is not a directory, yields an empty list.
// Results are sorted by name.
func ListPending(dir string) ([]models.Changeset, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) || (err == nil && !info.IsDir()) {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read changeset directory %s: %w", dir, err)
	}

	var pending []models.Changeset
	for _, entry := range entries {
		name := entry.Name()
		if !isPendingChangeset(name) {
			continue
		}
		if entry.IsDir() {
			continue
		}
		pending = append(pending, models.Changeset{
			Name: name,
			Path: filepath.Join(dir, name),
		})
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Name < pending[j].Name
	})
	return pending, nil
}

func isPendingChangeset(name string) bool {
	if name == ReadmeName {
		return false
	}
	return strings.HasSuffix(name, ".md") && len(name) > len(".md")
}
