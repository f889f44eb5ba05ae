// Package config loads release configuration from YAML files, git config and CLI overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderchan/changeset-release/internal/changeset"
	"github.com/alexanderchan/changeset-release/internal/manifest"
	"github.com/alexanderchan/changeset-release/internal/theme"
	"github.com/alexanderchan/changeset-release/internal/utils"
	"gopkg.in/yaml.v3"
)

const (
	appName = "changeset-release"

	// RepoConfigFile is the repository-scoped config file, read from the repo root.
	RepoConfigFile = ".changeset-release.yaml"

	// DefaultCommitPrefix is prepended to the new version to build the release commit message.
	DefaultCommitPrefix = "chore: release v"
	// DefaultDashboardURL is the CI page printed after a successful release.
	DefaultDashboardURL = "https://github.com/alexanderchan/alex-runner/actions"
)

// AppConfig defines the release options.
type AppConfig struct {
	ChangesetDir   string // Staging directory for pending changesets, relative to the repo root
	Manifest       string // Package manifest path, relative to the repo root
	PackageManager string // "pnpm", "yarn", "npm", or empty to detect from lock files
	CommitPrefix   string
	DashboardURL   string
	Push           bool // Push the release commit (default: true)
	PushTags       bool // Push tags after the commit (default: true)
	GitConfig      bool // Also read release.* keys from local git config (default: false)
	Theme          string
	DebugLog       string
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		ChangesetDir: changeset.DefaultDir,
		Manifest:     manifest.DefaultPath,
		CommitPrefix: DefaultCommitPrefix,
		DashboardURL: DefaultDashboardURL,
		Push:         true,
		PushTags:     true,
		Theme:        theme.DraculaName,
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		text := strings.ToLower(strings.TrimSpace(v))
		switch text {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func stringValue(data map[string]any, key string) (string, bool) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return "", false
	}
	text, ok := raw.(string)
	if !ok {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// apply layers the keys present in data over cfg. Unknown keys and invalid
// values are ignored so a bad entry never hides a valid lower layer.
func (cfg *AppConfig) apply(data map[string]any) {
	if dir, ok := stringValue(data, "changeset_dir"); ok {
		cfg.ChangesetDir = dir
	}
	if path, ok := stringValue(data, "manifest"); ok {
		cfg.Manifest = path
	}

	if pm, ok := stringValue(data, "package_manager"); ok {
		if strings.EqualFold(pm, "auto") {
			cfg.PackageManager = ""
		} else if parsed, err := changeset.ParsePackageManager(pm); err == nil {
			cfg.PackageManager = string(parsed)
		}
	}

	// The prefix is used verbatim; trailing spaces are significant.
	if raw, ok := data["commit_prefix"].(string); ok && strings.TrimSpace(raw) != "" {
		cfg.CommitPrefix = raw
	}
	if url, ok := stringValue(data, "dashboard_url"); ok {
		cfg.DashboardURL = url
	}

	cfg.Push = coerceBool(data["push"], cfg.Push)
	cfg.PushTags = coerceBool(data["push_tags"], cfg.PushTags)
	cfg.GitConfig = coerceBool(data["git_config"], cfg.GitConfig)

	if themeName, ok := stringValue(data, "theme"); ok {
		if normalized := theme.NormalizeName(themeName); normalized != "" {
			cfg.Theme = normalized
		}
	}
	if debugLog, ok := stringValue(data, "debug_log"); ok {
		cfg.DebugLog = debugLog
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	cfg.apply(data)
	return cfg
}

func getConfigDir() string {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

// LoadConfig reads the user-level configuration. An explicit configPath must
// live inside the config directory; otherwise config.yaml then config.yml are tried.
func LoadConfig(configPath string) (*AppConfig, error) {
	configBase := filepath.Clean(filepath.Join(getConfigDir(), appName))

	var paths []string

	if configPath != "" {
		expanded, err := utils.ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !utils.IsPathWithin(configBase, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", configBase)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(configBase, "config.yaml"),
			filepath.Join(configBase, "config.yml"),
		}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		// #nosec G304 -- path is constrained to the config directory after validation
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
		}

		return parseConfig(yamlData), nil
	}

	return DefaultConfig(), nil
}

// ApplyRepoConfig layers .changeset-release.yaml from repoPath over cfg and
// returns the file path it looked at. A missing file is not an error.
func (cfg *AppConfig) ApplyRepoConfig(repoPath string) (string, error) {
	if repoPath == "" {
		return "", fmt.Errorf("empty repo path")
	}
	cleanRepoPath := filepath.Clean(repoPath)
	cfgPath := filepath.Join(cleanRepoPath, RepoConfigFile)

	dataBytes, err := fs.ReadFile(os.DirFS(cleanRepoPath), RepoConfigFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfgPath, nil
		}
		return cfgPath, fmt.Errorf("failed to read %s: %w", RepoConfigFile, err)
	}

	var yamlData map[string]any
	if err := yaml.Unmarshal(dataBytes, &yamlData); err != nil {
		return cfgPath, fmt.Errorf("failed to parse %s: %w", RepoConfigFile, err)
	}

	cfg.apply(yamlData)
	return cfgPath, nil
}

// ChangesetPath resolves the changeset directory against root.
func (cfg *AppConfig) ChangesetPath(root string) string {
	return resolve(root, cfg.ChangesetDir)
}

// ManifestPath resolves the manifest against root.
func (cfg *AppConfig) ManifestPath(root string) string {
	return resolve(root, cfg.Manifest)
}

func resolve(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}
