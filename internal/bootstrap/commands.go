package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderchan/changeset-release/internal/changeset"
	"github.com/alexanderchan/changeset-release/internal/cli"
	"github.com/alexanderchan/changeset-release/internal/log"
	urfavecli "github.com/urfave/cli/v3"
)

// runRelease is the root action: it performs the release in the resolved repository.
func runRelease(ctx context.Context, cmd *urfavecli.Command) error {
	if cmd.Args().Present() {
		return fmt.Errorf("unexpected argument %q: %s takes no arguments", cmd.Args().First(), appName)
	}

	s, err := loadSession(ctx, cmd)
	if err != nil {
		return err
	}

	tool := changeset.NewTool(s.git, s.pm)

	opts := cli.Options{
		Root:         s.root,
		ChangesetDir: s.cfg.ChangesetPath(s.root),
		ManifestPath: s.cfg.ManifestPath(s.root),
		CommitPrefix: s.cfg.CommitPrefix,
		DashboardURL: s.cfg.DashboardURL,
		Push:         s.cfg.Push,
		PushTags:     s.cfg.PushTags,
		DryRun:       cmd.Bool("dry-run"),
		Verbose:      cmd.Bool("verbose"),
	}

	result, err := cli.Release(ctx, s.git, tool, opts, s.printer)
	if err != nil {
		var pre *cli.PreconditionError
		if errors.As(err, &pre) {
			return err
		}
		return &releaseFailure{err: err}
	}
	log.Printf("released %s", result.Tag())
	return nil
}

func doctorCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "doctor",
		Usage: "Check that git and the package manager used for changesets are installed",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			s, err := loadSession(ctx, cmd)
			if err != nil {
				return err
			}

			if !s.inRepo {
				s.printer.Warn("⚠️  %s is not inside a git repository", s.root)
			}
			s.printer.Info("Package manager: %s", s.pm)

			results := cli.CheckAll(cli.DefaultPrerequisites(s.pm))
			s.printer.Raw(cli.FormatCheckResults(results))
			if err := cli.MissingRequired(results); err != nil {
				s.printer.Error("%v", err)
				return errReported
			}
			return nil
		},
	}
}
