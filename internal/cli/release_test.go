package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/alexanderchan/changeset-release/internal/changeset"
	"github.com/alexanderchan/changeset-release/internal/exec"
	"github.com/alexanderchan/changeset-release/internal/git"
	"github.com/alexanderchan/changeset-release/internal/models"
	"github.com/alexanderchan/changeset-release/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDashboard = "https://github.com/example/app/actions"

var (
	statusCmd   = []string{"git", "status", "--porcelain"}
	versionCmd  = []string{"pnpm", "changeset", "version"}
	tagCmd      = []string{"pnpm", "changeset", "tag"}
	addCmd      = []string{"git", "add", "."}
	pushCmd     = []string{"git", "push"}
	pushTagsCmd = []string{"git", "push", "--tags"}
)

type releaseFixture struct {
	root   string
	mock   *exec.MockExecutor
	opts   Options
	out    bytes.Buffer
	errOut bytes.Buffer
}

func newReleaseFixture(t *testing.T, changesets ...string) *releaseFixture {
	t.Helper()

	root := t.TempDir()
	csDir := filepath.Join(root, ".changeset")
	require.NoError(t, os.MkdirAll(csDir, 0o750))
	for _, name := range append([]string{"README.md", "config.json"}, changesets...) {
		require.NoError(t, os.WriteFile(filepath.Join(csDir, name), []byte("---\n'app': patch\n---\n"), 0o600))
	}
	manifestPath := filepath.Join(root, "package.json")
	require.NoError(t, os.WriteFile(manifestPath, []byte(`{"name":"app","version":"2.3.0"}`), 0o600))

	return &releaseFixture{
		root: root,
		mock: exec.NewMockExecutor(nil),
		opts: Options{
			Root:         root,
			ChangesetDir: csDir,
			ManifestPath: manifestPath,
			CommitPrefix: "chore: release v",
			DashboardURL: testDashboard,
			Push:         true,
			PushTags:     true,
		},
	}
}

// bumpTo makes `changeset version` rewrite the manifest, as the real CLI does.
func (f *releaseFixture) bumpTo(t *testing.T, version string) {
	t.Helper()
	manifestPath := f.opts.ManifestPath
	f.mock.AddRule(func(_, name string, args []string) bool {
		if name != "pnpm" || !slices.Equal(args, []string{"changeset", "version"}) {
			return false
		}
		content := `{"name":"app","version":"` + version + `"}`
		require.NoError(t, os.WriteFile(manifestPath, []byte(content), 0o600))
		return true
	}, exec.MockResponse{Stdout: []byte("🦋  All files have been updated.\n")})
}

func (f *releaseFixture) fail(name string, args []string, stderr string) {
	f.mock.AddExactMatch(name, args, exec.MockResponse{Stderr: []byte(stderr), Err: errors.New("exit status 1")})
}

func (f *releaseFixture) run(t *testing.T) (*models.ReleaseResult, error) {
	t.Helper()
	svc := git.NewService(f.mock, f.root)
	tool := changeset.NewTool(svc, changeset.PNPM)
	printer := NewPrinter(&f.out, &f.errOut, theme.NewStyles(&f.out, theme.Dracula(), false))
	return Release(context.Background(), svc, tool, f.opts, printer)
}

func (f *releaseFixture) commands() [][]string {
	calls := f.mock.GetCalls()
	argvs := make([][]string, 0, len(calls))
	for _, c := range calls {
		argvs = append(argvs, c.Argv())
	}
	return argvs
}

func TestReleaseDirtyTreeRunsOnlyStatus(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.mock.AddExactMatch("git", []string{"status", "--porcelain"}, exec.MockResponse{
		Stdout: []byte(" M src/index.ts\n?? scratch.txt\n"),
	})

	result, err := f.run(t)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrDirtyTree)
	var pre *PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.Equal(t, [][]string{statusCmd}, f.commands())

	out := f.out.String()
	assert.Contains(t, out, "You have uncommitted changes:\n M src/index.ts\n?? scratch.txt\nPlease commit or stash them before releasing.")
}

func TestReleaseWithoutChangesetsNeverBumps(t *testing.T) {
	f := newReleaseFixture(t)

	_, err := f.run(t)

	require.ErrorIs(t, err, ErrNoChangesets)
	var pre *PreconditionError
	assert.ErrorAs(t, err, &pre)
	assert.Equal(t, [][]string{statusCmd}, f.commands())
	assert.Contains(t, f.out.String(), "No changesets found. Run 'pnpm changeset' first to create one.")
}

func TestReleaseReadmeAloneIsNotPending(t *testing.T) {
	f := newReleaseFixture(t)
	require.NoError(t, os.Remove(filepath.Join(f.opts.ChangesetDir, "config.json")))

	entries, err := os.ReadDir(f.opts.ChangesetDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "README.md", entries[0].Name())

	_, err = f.run(t)
	assert.ErrorIs(t, err, ErrNoChangesets)
	assert.NotContains(t, f.commands(), versionCmd)
}

func TestReleaseMissingChangesetDirectory(t *testing.T) {
	f := newReleaseFixture(t)
	f.opts.ChangesetDir = filepath.Join(f.root, "does-not-exist")

	_, err := f.run(t)
	assert.ErrorIs(t, err, ErrNoChangesets)
}

func TestReleaseChangesetPathIsAFile(t *testing.T) {
	f := newReleaseFixture(t)
	f.opts.ChangesetDir = filepath.Join(f.root, "package.json")

	_, err := f.run(t)
	assert.ErrorIs(t, err, ErrNoChangesets)
	assert.Equal(t, [][]string{statusCmd}, f.commands())
	assert.Contains(t, f.out.String(), "No changesets found.")
}

func TestReleaseDirtyStatusWithoutTrailingNewline(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.mock.AddExactMatch("git", []string{"status", "--porcelain"}, exec.MockResponse{Stdout: []byte("A  new.go")})

	_, err := f.run(t)

	assert.ErrorIs(t, err, ErrDirtyTree)
	assert.Contains(t, f.out.String(), "\nA  new.go\nPlease commit or stash them before releasing.")
}

func TestReleaseRunsEveryStepOnceInOrder(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.bumpTo(t, "2.3.1")

	result, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		statusCmd,
		versionCmd,
		tagCmd,
		addCmd,
		{"git", "commit", "-m", "chore: release v2.3.1"},
		pushCmd,
		pushTagsCmd,
	}, f.commands())

	for _, call := range f.mock.GetCalls() {
		assert.Equal(t, f.root, call.Dir)
	}

	require.NotNil(t, result)
	assert.Equal(t, "2.3.1", result.Version)
	assert.Equal(t, "chore: release v2.3.1", result.CommitMessage)
	assert.True(t, result.Pushed)
	assert.False(t, result.DryRun)

	out := f.out.String()
	assert.Contains(t, out, "Running changeset version...")
	assert.Contains(t, out, "Creating git tag...")
	assert.Contains(t, out, "Committing release v2.3.1...")
	assert.Contains(t, out, "Pushing to origin...")
	assert.Contains(t, out, "Released v2.3.1!")
	assert.Contains(t, out, "GitHub Actions will now build and publish the binaries.")
	assert.Contains(t, out, "Check: "+testDashboard)
	assert.NotContains(t, out, "All files have been updated", "command output is hidden without --verbose")
	assert.Empty(t, f.errOut.String())
}

func TestReleaseCommitMessageUsesVersionReadAfterBump(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.bumpTo(t, "10.0.0-beta.1")
	f.opts.CommitPrefix = "release: v"

	result, err := f.run(t)
	require.NoError(t, err)

	assert.Contains(t, f.commands(), []string{"git", "commit", "-m", "release: v10.0.0-beta.1"})
	assert.Equal(t, "10.0.0-beta.1", result.Version)
}

func TestReleaseTagFailureStopsBeforeCommit(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.bumpTo(t, "2.3.1")
	f.fail("pnpm", []string{"changeset", "tag"}, "fatal: tag 'v2.3.1' already exists")

	result, err := f.run(t)

	require.Error(t, err)
	assert.Nil(t, result)
	var pre *PreconditionError
	assert.False(t, errors.As(err, &pre), "command failures are not precondition failures")
	assert.EqualError(t, err, "pnpm changeset tag: fatal: tag 'v2.3.1' already exists")
	assert.Equal(t, [][]string{statusCmd, versionCmd, tagCmd}, f.commands())
	assert.NotContains(t, f.out.String(), "Committing release")
}

func TestReleaseVersionFailureStopsBeforeTag(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.fail("pnpm", []string{"changeset", "version"}, "ERR_PNPM_RECURSIVE_EXEC_FIRST_FAIL")

	_, err := f.run(t)

	require.Error(t, err)
	assert.Equal(t, [][]string{statusCmd, versionCmd}, f.commands())
}

func TestReleaseUnreadableManifestAfterBump(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.opts.ManifestPath = filepath.Join(f.root, "missing.json")

	_, err := f.run(t)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, [][]string{statusCmd, versionCmd, tagCmd}, f.commands())
}

func TestReleasePushFailureLeavesCommit(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.bumpTo(t, "2.3.1")
	f.fail("git", []string{"push"}, "! [rejected] main -> main (fetch first)")

	_, err := f.run(t)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "git push: ! [rejected]")
	commands := f.commands()
	assert.Equal(t, pushCmd, commands[len(commands)-1], "push --tags must not run after a failed push")
}

func TestReleaseStatusFailureIsCommandFailure(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.fail("git", []string{"status", "--porcelain"}, "fatal: not a git repository")

	_, err := f.run(t)

	require.Error(t, err)
	var pre *PreconditionError
	assert.False(t, errors.As(err, &pre))
	assert.Equal(t, [][]string{statusCmd}, f.commands())
}

func TestReleaseWithoutPush(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.bumpTo(t, "2.3.1")
	f.opts.Push = false

	result, err := f.run(t)
	require.NoError(t, err)

	assert.NotContains(t, f.commands(), pushCmd)
	assert.NotContains(t, f.commands(), pushTagsCmd)
	assert.False(t, result.Pushed)
	assert.Contains(t, f.out.String(), "Push skipped")
	assert.NotContains(t, f.out.String(), "GitHub Actions")
}

func TestReleaseWithoutPushTags(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.bumpTo(t, "2.3.1")
	f.opts.PushTags = false

	_, err := f.run(t)
	require.NoError(t, err)

	assert.Contains(t, f.commands(), pushCmd)
	assert.NotContains(t, f.commands(), pushTagsCmd)
}

func TestReleaseVerboseEchoesCommandOutput(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md")
	f.bumpTo(t, "2.3.1")
	f.opts.Verbose = true

	_, err := f.run(t)
	require.NoError(t, err)

	assert.Contains(t, f.out.String(), "  🦋  All files have been updated.")
}

func TestReleaseDryRunHasNoSideEffects(t *testing.T) {
	f := newReleaseFixture(t, "feature-x.md", "bright-otter.md")
	f.opts.DryRun = true

	result, err := f.run(t)
	require.NoError(t, err)

	assert.Equal(t, [][]string{statusCmd}, f.commands())
	require.NotNil(t, result)
	assert.True(t, result.DryRun)
	assert.Equal(t, "2.3.0", result.Version)

	out := f.out.String()
	assert.Contains(t, out, "Dry run: 2 pending changeset(s)")
	assert.Contains(t, out, "- bright-otter.md")
	assert.Contains(t, out, "- feature-x.md")
	assert.Contains(t, out, "Would run (current version 2.3.0):")
	assert.Contains(t, out, "pnpm changeset version")
	assert.Contains(t, out, `git commit -m "chore: release v<new version>"`)
	assert.Contains(t, out, "git push --tags")
}

func TestReleaseDryRunStillChecksPreconditions(t *testing.T) {
	f := newReleaseFixture(t)
	f.opts.DryRun = true

	_, err := f.run(t)
	assert.ErrorIs(t, err, ErrNoChangesets)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "❌ Release failed: git push: rejected", Describe(errors.New("git push: rejected")))
}
