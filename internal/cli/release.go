package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderchan/changeset-release/internal/changeset"
	"github.com/alexanderchan/changeset-release/internal/git"
	"github.com/alexanderchan/changeset-release/internal/log"
	"github.com/alexanderchan/changeset-release/internal/manifest"
	"github.com/alexanderchan/changeset-release/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrDirtyTree means git reported uncommitted changes.
	ErrDirtyTree = errors.New("working tree has uncommitted changes")
	// ErrNoChangesets means the staging directory holds no pending changesets.
	ErrNoChangesets = errors.New("no pending changesets")
)

// PreconditionError reports a failed check that ran before any side effect.
// The diagnostic has already been printed when it is returned.
type PreconditionError struct {
	Err error
}

func (e *PreconditionError) Error() string {
	return e.Err.Error()
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

type gitService interface {
	Status(ctx context.Context) (models.WorktreeStatus, error)
	AddAll(ctx context.Context) (string, error)
	Commit(ctx context.Context, message string) (string, error)
	Push(ctx context.Context) (string, error)
	PushTags(ctx context.Context) (string, error)
}

var _ gitService = (*git.Service)(nil)

type changesetTool interface {
	Version(ctx context.Context) (string, error)
	Tag(ctx context.Context) (string, error)
	PackageManager() changeset.PackageManager
}

var _ changesetTool = (*changeset.Tool)(nil)

// Options configures a release run. Paths must already be resolved against the repository root.
type Options struct {
	Root         string
	ChangesetDir string
	ManifestPath string
	CommitPrefix string
	DashboardURL string
	Push         bool
	PushTags     bool
	DryRun       bool
	Verbose      bool
}

// Release checks that the tree is clean and changesets are pending, then bumps
// the version, tags, commits and pushes. Steps run strictly in order and the
// first failure stops the run; nothing already done is rolled back.
func Release(ctx context.Context, gitSvc gitService, tool changesetTool, opts Options, p *Printer) (*models.ReleaseResult, error) {
	runID := uuid.NewString()
	log.Printf("release %s: start (root=%s, dry-run=%t)", runID, opts.Root, opts.DryRun)

	status, err := gitSvc.Status(ctx)
	if err != nil {
		return nil, err
	}
	if status.Dirty() {
		log.Printf("release %s: aborted, %d uncommitted change(s)", runID, len(status.Entries()))
		p.Warn("⚠️  You have uncommitted changes:")
		p.Raw(status.Raw)
		if !strings.HasSuffix(status.Raw, "\n") {
			p.Raw("\n")
		}
		p.Info("Please commit or stash them before releasing.")
		return nil, &PreconditionError{Err: ErrDirtyTree}
	}

	pending, err := changeset.ListPending(opts.ChangesetDir)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		log.Printf("release %s: aborted, no changesets in %s", runID, opts.ChangesetDir)
		createCmd := strings.Join(tool.PackageManager().Command(), " ")
		p.Fail("❌ No changesets found. Run '%s' first to create one.", createCmd)
		return nil, &PreconditionError{Err: ErrNoChangesets}
	}
	log.Printf("release %s: %d pending changeset(s): %s", runID, len(pending), changesetNames(pending))

	if opts.DryRun {
		return planRelease(tool, opts, pending, p), nil
	}

	p.Step("📦 Running changeset version...")
	out, err := tool.Version(ctx)
	if err != nil {
		return nil, err
	}
	echo(p, opts, out)

	p.Step("🏷️  Creating git tag...")
	out, err = tool.Tag(ctx)
	if err != nil {
		return nil, err
	}
	echo(p, opts, out)

	version, err := manifest.ReadVersion(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	message := opts.CommitPrefix + version
	log.Printf("release %s: new version %q", runID, version)

	p.Step("📝 Committing release v%s...", version)
	if out, err = gitSvc.AddAll(ctx); err != nil {
		return nil, err
	}
	echo(p, opts, out)
	if out, err = gitSvc.Commit(ctx, message); err != nil {
		return nil, err
	}
	echo(p, opts, out)

	if opts.Push {
		p.Step("🚀 Pushing to origin...")
		if out, err = gitSvc.Push(ctx); err != nil {
			return nil, err
		}
		echo(p, opts, out)
		if opts.PushTags {
			if out, err = gitSvc.PushTags(ctx); err != nil {
				return nil, err
			}
			echo(p, opts, out)
		}
	}

	result := &models.ReleaseResult{
		Version:       version,
		CommitMessage: message,
		DashboardURL:  opts.DashboardURL,
		Pushed:        opts.Push,
	}
	log.Printf("release %s: done (version=%s, pushed=%t)", runID, version, result.Pushed)
	reportSuccess(p, result)
	return result, nil
}

func echo(p *Printer, opts Options, output string) {
	if opts.Verbose {
		p.Block(output)
	}
}

func reportSuccess(p *Printer, result *models.ReleaseResult) {
	p.Info("")
	p.Success("✅ Released %s!", result.Tag())
	if !result.Pushed {
		p.Info("⏸️  Push skipped. Run 'git push && git push --tags' when ready.")
		return
	}
	p.Info("🔨 GitHub Actions will now build and publish the binaries.")
	if result.DashboardURL != "" {
		p.Link("📋 Check: ", result.DashboardURL)
	}
}

// planRelease prints the commands a real run would execute, using the
// manifest's current version since the bump has not happened.
func planRelease(tool changesetTool, opts Options, pending []models.Changeset, p *Printer) *models.ReleaseResult {
	current := "<version>"
	if v, err := manifest.ReadVersion(opts.ManifestPath); err == nil && v != "" {
		current = v
	}

	p.Info("🔍 Dry run: %d pending changeset(s)", len(pending))
	var list strings.Builder
	for _, cs := range pending {
		list.WriteString("- " + cs.Name + "\n")
	}
	p.Block(list.String())

	pm := tool.PackageManager()
	plan := [][]string{
		pm.Command("version"),
		pm.Command("tag"),
		{"git", "add", "."},
		{"git", "commit", "-m", strconv.Quote(opts.CommitPrefix + "<new version>")},
	}
	if opts.Push {
		plan = append(plan, []string{"git", "push"})
		if opts.PushTags {
			plan = append(plan, []string{"git", "push", "--tags"})
		}
	}

	var steps strings.Builder
	for _, argv := range plan {
		steps.WriteString(strings.Join(argv, " ") + "\n")
	}
	p.Info("Would run (current version %s):", current)
	p.Block(steps.String())

	return &models.ReleaseResult{
		Version:      current,
		DashboardURL: opts.DashboardURL,
		DryRun:       true,
	}
}

func changesetNames(pending []models.Changeset) string {
	names := make([]string, 0, len(pending))
	for _, cs := range pending {
		names = append(names, cs.Name)
	}
	return strings.Join(names, ", ")
}

// Describe renders the failure line printed by the top-level handler.
func Describe(err error) string {
	return fmt.Sprintf("❌ Release failed: %v", err)
}
