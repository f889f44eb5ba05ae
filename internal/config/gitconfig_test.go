package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGitConfig struct {
	output   string
	err      error
	patterns []string
}

func (f *fakeGitConfig) ConfigRegexp(_ context.Context, pattern string) (string, error) {
	f.patterns = append(f.patterns, pattern)
	return f.output, f.err
}

func TestParseGitConfigOutput(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   map[string][]string
	}{
		{name: "empty", output: "", want: map[string][]string{}},
		{
			name:   "single values",
			output: "release.changesetdir .changes\nrelease.push false\n",
			want:   map[string][]string{"changeset_dir": {".changes"}, "push": {"false"}},
		},
		{
			name:   "value with spaces",
			output: "release.commitprefix chore(release): v\n",
			want:   map[string][]string{"commit_prefix": {"chore(release): v"}},
		},
		{
			name:   "multi value",
			output: "release.theme nord\nrelease.theme dracula\n",
			want:   map[string][]string{"theme": {"nord", "dracula"}},
		},
		{
			name:   "key without value skipped",
			output: "release.push\nrelease.manifest package.json\n",
			want:   map[string][]string{"manifest": {"package.json"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseGitConfigOutput(tt.output))
		})
	}
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "changeset_dir", canonicalKey("changesetdir"))
	assert.Equal(t, "changeset_dir", canonicalKey("changeset-dir"))
	assert.Equal(t, "push_tags", canonicalKey("pushTags"))
	assert.Equal(t, "dashboard_url", canonicalKey("dashboard_url"))
	assert.Equal(t, "unknown-key", canonicalKey("unknown-key"))
}

func TestConvertGitConfigKeepsLastValue(t *testing.T) {
	got := convertGitConfig(map[string][]string{
		"theme": {"nord", "dracula"},
		"empty": {},
	})
	assert.Equal(t, map[string]any{"theme": "dracula"}, got)
}

func TestApplyGitConfig(t *testing.T) {
	reader := &fakeGitConfig{output: "release.packagemanager pnpm\nrelease.pushtags off\n"}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyGitConfig(context.Background(), reader))

	assert.Equal(t, []string{`^release\.`}, reader.patterns)
	assert.Equal(t, "pnpm", cfg.PackageManager)
	assert.False(t, cfg.PushTags)
	assert.True(t, cfg.Push)
}

func TestApplyGitConfigNoKeys(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyGitConfig(context.Background(), &fakeGitConfig{}))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestApplyGitConfigError(t *testing.T) {
	err := DefaultConfig().ApplyGitConfig(context.Background(), &fakeGitConfig{err: errors.New("git not found")})
	assert.EqualError(t, err, "failed to read git config: git not found")
}

func TestParseCLIConfigOverrides(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := parseCLIConfigOverrides([]string{"release.push=false", "release.commit_prefix=release v", "release.push=true"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"push": "true", "commit_prefix": "release v"}, got)
	})

	t.Run("value may contain equals", func(t *testing.T) {
		got, err := parseCLIConfigOverrides([]string{"release.dashboard_url=https://ci.example.com/?q=a"})
		require.NoError(t, err)
		assert.Equal(t, "https://ci.example.com/?q=a", got["dashboard_url"])
	})

	t.Run("missing equals", func(t *testing.T) {
		_, err := parseCLIConfigOverrides([]string{"release.push"})
		assert.ErrorContains(t, err, "expected format: release.key=value")
	})

	t.Run("wrong prefix", func(t *testing.T) {
		_, err := parseCLIConfigOverrides([]string{"lw.push=false"})
		assert.ErrorContains(t, err, "must start with 'release.'")
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := parseCLIConfigOverrides([]string{"release.=x"})
		assert.ErrorContains(t, err, "empty config key")
	})
}

func TestApplyCLIOverrides(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyCLIOverrides([]string{"release.changeset_dir=.changes", "release.package_manager=npm"}))
	assert.Equal(t, ".changes", cfg.ChangesetDir)
	assert.Equal(t, "npm", cfg.PackageManager)

	assert.Error(t, cfg.ApplyCLIOverrides([]string{"bogus"}))
}
