// Package buildinfo holds the release metadata of the changeset-release binary.
// The linker injects values into cmd/changeset-release; main forwards them with Set.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// Set stores the build metadata received from linker-injected variables.
func Set(v, c, d, b string) {
	version = v
	commit = c
	date = d
	builtBy = b
}

// Version returns the build version string.
func Version() string { return version }

// Commit returns the build commit hash.
func Commit() string { return commit }

// Date returns the build date string.
func Date() string { return date }

// BuiltBy returns the build agent string.
func BuiltBy() string { return builtBy }

// Summary renders the --version output for name.
func Summary(name string) string {
	return fmt.Sprintf("%s version %s\ncommit: %s\nbuilt at: %s\nbuilt by: %s\n",
		name, version, commit, date, builtBy)
}

// Enrich replaces placeholder metadata from the embedded module info:
// the VCS revision for a "none" commit and the Go version for an "unknown" builder.
func Enrich() {
	enrich(debug.ReadBuildInfo)
}

func enrich(read func() (*debug.BuildInfo, bool)) {
	if commit != "none" && builtBy != "unknown" {
		return
	}

	info, ok := read()
	if !ok {
		return
	}

	if commit == "none" {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				commit = setting.Value
			}
		}
	}

	if builtBy == "unknown" {
		builtBy = info.GoVersion
	}
}
