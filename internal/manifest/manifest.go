// Package manifest reads the package manifest that the changesets CLI rewrites.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderchan/changeset-release/internal/models"
)

// DefaultPath is the manifest location relative to the repository root.
const DefaultPath = "package.json"

// Read loads and decodes the manifest at path. The version is returned as
// written; it is not checked against semver.
func Read(path string) (*models.Manifest, error) {
	// #nosec G304 -- path is the configured manifest inside the repository
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m models.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &m, nil
}

// ReadVersion returns the version field of the manifest at path.
func ReadVersion(path string) (string, error) {
	m, err := Read(path)
	if err != nil {
		return "", err
	}
	return m.Version, nil
}
