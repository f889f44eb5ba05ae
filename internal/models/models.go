// Package models defines the transient values passed between release steps.
package models

import "strings"

// WorktreeStatus is the porcelain output of git status.
type WorktreeStatus struct {
	Raw string
}

// Dirty reports whether the working tree has uncommitted changes.
func (s WorktreeStatus) Dirty() bool {
	return strings.TrimSpace(s.Raw) != ""
}

// Entries returns the non-empty status lines, XY code included.
func (s WorktreeStatus) Entries() []string {
	var entries []string
	for _, line := range strings.Split(s.Raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}

// Changeset is a pending change description staged for the next version bump.
type Changeset struct {
	Name string // base name, e.g. "feature-x.md"
	Path string
}

// Manifest is the part of the package manifest the release reads back.
// Other fields are never decoded, so their shape cannot fail a release.
type Manifest struct {
	Version string `json:"version"`
}

// ReleaseResult summarises a completed release.
type ReleaseResult struct {
	Version       string
	CommitMessage string
	DashboardURL  string
	Pushed        bool
	DryRun        bool
}

// Tag returns the conventional tag name for the released version.
func (r ReleaseResult) Tag() string {
	return "v" + r.Version
}
