package cli

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/alexanderchan/changeset-release/internal/changeset"
)

// lookPath and versionOf are swapped in tests so results do not depend on the host.
var (
	lookPath  = exec.LookPath
	versionOf = getVersion
)

// Prerequisite represents a required CLI tool.
type Prerequisite struct {
	Name        string
	Required    bool
	Description string
	InstallURL  string
}

// DefaultPrerequisites returns the tools a release shells out to.
func DefaultPrerequisites(pm changeset.PackageManager) []Prerequisite {
	return []Prerequisite{
		{
			Name:        "git",
			Required:    true,
			Description: "Git version control",
			InstallURL:  "https://git-scm.com/downloads",
		},
		{
			Name:        pm.Binary(),
			Required:    true,
			Description: fmt.Sprintf("%s (runs the changesets CLI)", pm),
			InstallURL:  installURL(pm),
		},
	}
}

func installURL(pm changeset.PackageManager) string {
	switch pm {
	case changeset.PNPM:
		return "https://pnpm.io/installation"
	case changeset.Yarn:
		return "https://yarnpkg.com/getting-started/install"
	default:
		return "https://nodejs.org/en/download"
	}
}

// CheckResult contains the result of checking a prerequisite.
type CheckResult struct {
	Prerequisite Prerequisite
	Found        bool
	Path         string
	Version      string
	Error        error
}

// Check verifies that a CLI tool is available in PATH.
func Check(prereq Prerequisite) CheckResult {
	result := CheckResult{Prerequisite: prereq}

	path, err := lookPath(prereq.Name)
	if err != nil {
		result.Error = fmt.Errorf("%s not found in PATH", prereq.Name)
		return result
	}

	result.Found = true
	result.Path = path
	result.Version = versionOf(path)
	return result
}

// CheckAll verifies all prerequisites and returns results.
func CheckAll(prereqs []Prerequisite) []CheckResult {
	results := make([]CheckResult, len(prereqs))
	for i, prereq := range prereqs {
		results[i] = Check(prereq)
	}
	return results
}

// MissingRequired returns an error naming every required tool that was not found.
func MissingRequired(results []CheckResult) error {
	var missing []string
	for _, r := range results {
		if r.Found || !r.Prerequisite.Required {
			continue
		}
		missing = append(missing, fmt.Sprintf("  - %s (%s)\n    Install: %s",
			r.Prerequisite.Name, r.Prerequisite.Description, r.Prerequisite.InstallURL))
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required CLI tools:\n%s", strings.Join(missing, "\n"))
	}
	return nil
}

// getVersion returns the first line of `<path> --version`, or "" on failure.
func getVersion(path string) string {
	// #nosec G204 -- path comes from exec.LookPath for an allow-listed tool name
	output, err := exec.Command(path, "--version").Output()
	if err != nil {
		return ""
	}
	version := strings.TrimSpace(strings.SplitN(string(output), "\n", 2)[0])
	if len(version) > 100 {
		version = version[:100] + "..."
	}
	return version
}

// FormatCheckResults formats check results for display.
func FormatCheckResults(results []CheckResult) string {
	var sb strings.Builder

	sb.WriteString("CLI Prerequisites:\n")
	for _, r := range results {
		status := "✓"
		if !r.Found {
			status = "✗"
			if !r.Prerequisite.Required {
				status = "○"
			}
		}

		fmt.Fprintf(&sb, "  %s %s", status, r.Prerequisite.Name)
		switch {
		case r.Found && r.Version != "":
			fmt.Fprintf(&sb, " (%s)", r.Version)
		case !r.Found && r.Prerequisite.Required:
			sb.WriteString(" [REQUIRED]")
		case !r.Found:
			sb.WriteString(" [optional]")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
