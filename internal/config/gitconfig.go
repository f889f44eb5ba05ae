package config

import (
	"context"
	"fmt"
	"strings"
)

const gitConfigPrefix = "release."

// configKeys maps the folded form of every known key to its canonical name.
// Git lowercases variable names and rejects underscores, so release.changesetDir,
// release.changeset-dir and release.changeset_dir all mean changeset_dir.
var configKeys = map[string]string{
	"changesetdir":   "changeset_dir",
	"manifest":       "manifest",
	"packagemanager": "package_manager",
	"commitprefix":   "commit_prefix",
	"dashboardurl":   "dashboard_url",
	"push":           "push",
	"pushtags":       "push_tags",
	"theme":          "theme",
	"debuglog":       "debug_log",
	"gitconfig":      "git_config",
}

func canonicalKey(key string) string {
	folded := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(key))
	if canonical, ok := configKeys[folded]; ok {
		return canonical
	}
	return key
}

// GitConfigReader lists local git config entries whose names match a pattern,
// one "name value" pair per line.
type GitConfigReader interface {
	ConfigRegexp(ctx context.Context, pattern string) (string, error)
}

const gitConfigPattern = `^release\.`

// parseGitConfigOutput parses git config output into multi-value map.
// Input format: "release.changesetdir .changes\nrelease.push false\n"
func parseGitConfigOutput(output string) map[string][]string {
	configMap := make(map[string][]string)
	if output == "" {
		return configMap
	}

	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}

		// Values may contain spaces ("chore: release v").
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			continue
		}

		key := canonicalKey(strings.TrimPrefix(parts[0], gitConfigPrefix))
		configMap[key] = append(configMap[key], parts[1])
	}

	return configMap
}

// convertGitConfig keeps the last value of multi-valued keys, matching how git
// itself resolves `git config --get` for single-valued settings.
func convertGitConfig(gitCfg map[string][]string) map[string]any {
	result := make(map[string]any)
	for key, values := range gitCfg {
		if len(values) == 0 {
			continue
		}
		result[key] = values[len(values)-1]
	}
	return result
}

// ApplyGitConfig layers the release.* keys of the repository's local git config over cfg.
func (cfg *AppConfig) ApplyGitConfig(ctx context.Context, reader GitConfigReader) error {
	output, err := reader.ConfigRegexp(ctx, gitConfigPattern)
	if err != nil {
		return fmt.Errorf("failed to read git config: %w", err)
	}
	cfg.apply(convertGitConfig(parseGitConfigOutput(output)))
	return nil
}

// parseCLIConfigOverrides parses --config=release.key=value entries.
func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any)

	for _, override := range overrides {
		parts := strings.SplitN(override, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config override: %q, expected format: release.key=value (note: use = not space)", override)
		}

		fullKey := parts[0]
		if !strings.HasPrefix(fullKey, gitConfigPrefix) {
			return nil, fmt.Errorf("config override key must start with '%s': %q", gitConfigPrefix, fullKey)
		}

		key := strings.TrimPrefix(fullKey, gitConfigPrefix)
		if key == "" {
			return nil, fmt.Errorf("empty config key in override: %q", override)
		}

		// Later overrides win.
		result[canonicalKey(key)] = parts[1]
	}

	return result, nil
}

// ApplyCLIOverrides layers --config overrides over cfg (highest precedence).
func (cfg *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	cfg.apply(data)
	return nil
}
