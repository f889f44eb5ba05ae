package changeset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PackageManager identifies the binary used to run the changesets CLI.
type PackageManager string

// Supported package managers.
const (
	PNPM PackageManager = "pnpm"
	Yarn PackageManager = "yarn"
	NPM  PackageManager = "npm"
)

// ParsePackageManager normalises a configured package manager name.
func ParsePackageManager(name string) (PackageManager, error) {
	switch pm := PackageManager(strings.ToLower(strings.TrimSpace(name))); pm {
	case PNPM, Yarn, NPM:
		return pm, nil
	default:
		return "", fmt.Errorf("unknown package manager %q (expected pnpm, yarn or npm)", name)
	}
}

// Binary returns the executable that runs package binaries for this manager.
func (pm PackageManager) Binary() string {
	if pm == NPM {
		return "npx"
	}
	return string(pm)
}

// Command returns the argv for `changeset <args...>` run through this manager.
func (pm PackageManager) Command(args ...string) []string {
	return append([]string{pm.Binary(), "changeset"}, args...)
}

var lockFiles = []struct {
	name string
	pm   PackageManager
}{
	{"yarn.lock", Yarn},
	{"pnpm-lock.yaml", PNPM},
	{"package-lock.json", NPM},
}

// DetectPackageManager picks the package manager from lock files in root.
// A package.json without any lock file means pnpm; no manifest at all means npm.
func DetectPackageManager(root string) PackageManager {
	for _, lf := range lockFiles {
		if _, err := os.Stat(filepath.Join(root, lf.name)); err == nil {
			return lf.pm
		}
	}
	if _, err := os.Stat(filepath.Join(root, "package.json")); err == nil {
		return PNPM
	}
	return NPM
}

type commandRunner interface {
	RunCommand(ctx context.Context, args []string) (string, error)
}

// Tool drives the changesets CLI.
type Tool struct {
	runner commandRunner
	pm     PackageManager
}

// NewTool returns a Tool that runs changesets through pm using runner.
func NewTool(runner commandRunner, pm PackageManager) *Tool {
	return &Tool{runner: runner, pm: pm}
}

// PackageManager returns the manager the tool runs through.
func (t *Tool) PackageManager() PackageManager {
	return t.pm
}

// Version consumes pending changesets and bumps the manifest version.
func (t *Tool) Version(ctx context.Context) (string, error) {
	return t.runner.RunCommand(ctx, t.pm.Command("version"))
}

// Tag creates git tags for the versions written by Version.
func (t *Tool) Tag(ctx context.Context) (string, error) {
	return t.runner.RunCommand(ctx, t.pm.Command("tag"))
}
