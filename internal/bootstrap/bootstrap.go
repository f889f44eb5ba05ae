package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexanderchan/changeset-release/internal/buildinfo"
	"github.com/alexanderchan/changeset-release/internal/changeset"
	"github.com/alexanderchan/changeset-release/internal/cli"
	"github.com/alexanderchan/changeset-release/internal/config"
	"github.com/alexanderchan/changeset-release/internal/git"
	"github.com/alexanderchan/changeset-release/internal/log"
	"github.com/alexanderchan/changeset-release/internal/theme"
	"github.com/alexanderchan/changeset-release/internal/utils"
	urfavecli "github.com/urfave/cli/v3"
)

const appName = "changeset-release"

var (
	osGetwd              = os.Getwd
	newCLIGitServiceFunc = func(root string) *git.Service {
		return git.NewService(nil, root)
	}
)

// errReported marks a failure whose message has already been printed.
var errReported = errors.New("failure already reported")

// releaseFailure wraps a delegated-command failure from the release steps.
type releaseFailure struct {
	err error
}

func (e *releaseFailure) Error() string { return e.err.Error() }
func (e *releaseFailure) Unwrap() error { return e.err }

// Run builds the command tree, executes it with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	err := app.Run(ctx, args)
	if closeErr := log.Close(); closeErr != nil {
		fmt.Fprintf(stderr, "Error closing debug log: %v\n", closeErr)
	}
	return exitCode(err, stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}

	var pre *cli.PreconditionError
	if errors.As(err, &pre) || errors.Is(err, errReported) {
		return 1
	}

	styles := theme.NewStyles(stderr, theme.Dracula(), theme.ColorEnabled(stderr, false))
	var failure *releaseFailure
	if errors.As(err, &failure) {
		fmt.Fprintln(stderr, styles.Error.Render(cli.Describe(failure.err)))
		return 1
	}

	fmt.Fprintln(stderr, styles.Error.Render(fmt.Sprintf("Error: %v", err)))
	return 1
}

func newApp(stdout, stderr io.Writer) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  appName,
		Usage:                 "Version, tag, commit and push a changesets release",
		Version:               buildinfo.Version(),
		EnableShellCompletion: true,
		Writer:                stdout,
		ErrWriter:             stderr,
		Flags:                 globalFlags(),
		Commands: []*urfavecli.Command{
			doctorCommand(),
		},
		Action: runRelease,
		ExitErrHandler: func(context.Context, *urfavecli.Command, error) {
			// exit codes are decided by Run
		},
	}
}

func init() {
	// -v belongs to --verbose.
	urfavecli.VersionFlag = &urfavecli.BoolFlag{
		Name:        "version",
		Usage:       "print the version",
		HideDefault: true,
		Local:       true,
	}
	urfavecli.VersionPrinter = func(cmd *urfavecli.Command) {
		fmt.Fprint(cmd.Root().Writer, buildinfo.Summary(appName))
	}
}

// session is everything a command needs once flags and configuration are resolved.
type session struct {
	cfg     *config.AppConfig
	root    string
	inRepo  bool
	pm      changeset.PackageManager
	git     *git.Service
	printer *cli.Printer
}

func loadSession(ctx context.Context, cmd *urfavecli.Command) (*session, error) {
	stdout, stderr := cmd.Root().Writer, cmd.Root().ErrWriter

	debugLogFlag := cmd.String("debug-log")
	if debugLogFlag != "" {
		setDebugLog(debugLogFlag, stderr)
	}

	start := cmd.String("dir")
	if start == "" {
		wd, err := osGetwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		start = wd
	} else {
		expanded, err := utils.ExpandPath(start)
		if err != nil {
			return nil, fmt.Errorf("error expanding dir: %w", err)
		}
		start = expanded
	}
	if info, err := os.Stat(start); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", start)
	}

	root, inRepo := git.FindRoot(start)
	log.Printf("root: %s (git repository: %t)", root, inRepo)
	svc := newCLIGitServiceFunc(root)

	cfg, err := loadCLIConfig(ctx, cmd, root, inRepo, svc)
	if err != nil {
		return nil, err
	}

	if debugLogFlag == "" {
		if cfg.DebugLog != "" {
			setDebugLog(cfg.DebugLog, stderr)
		} else {
			// No debug log configured, discard any buffered logs
			_ = log.SetFile("")
		}
	}

	pm := changeset.DetectPackageManager(root)
	if cfg.PackageManager != "" {
		pm = changeset.PackageManager(cfg.PackageManager)
	}
	log.Printf("package manager: %s", pm)

	styles := theme.NewStyles(stdout, theme.GetTheme(cfg.Theme), theme.ColorEnabled(stdout, cmd.Bool("no-color")))
	return &session{
		cfg:     cfg,
		root:    root,
		inRepo:  inRepo,
		pm:      pm,
		git:     svc,
		printer: cli.NewPrinter(stdout, stderr, styles),
	}, nil
}

// loadCLIConfig layers user config, the repository file, git config and CLI overrides.
// Git config is only read when --git-config or the git_config key asks for it.
func loadCLIConfig(ctx context.Context, cmd *urfavecli.Command, root string, inRepo bool, gitCfg config.GitConfigReader) (*config.AppConfig, error) {
	stderr := cmd.Root().ErrWriter

	cfg, err := config.LoadConfig(cmd.String("config-file"))
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	path, err := cfg.ApplyRepoConfig(root)
	if err != nil {
		return nil, err
	}
	log.Printf("repo config: %s", path)

	if inRepo && (cmd.Bool("git-config") || cfg.GitConfig) {
		if err := cfg.ApplyGitConfig(ctx, gitCfg); err != nil {
			log.Printf("ignoring git config: %v", err)
		}
	}

	if overrides := cmd.StringSlice("config"); len(overrides) > 0 {
		if err := cfg.ApplyCLIOverrides(overrides); err != nil {
			return nil, fmt.Errorf("error applying config overrides: %w", err)
		}
	}

	return cfg, nil
}

func setDebugLog(path string, stderr io.Writer) {
	if expanded, err := utils.ExpandPath(path); err == nil {
		path = expanded
	}
	if err := os.MkdirAll(filepath.Dir(path), utils.DefaultDirPerms); err != nil {
		fmt.Fprintf(stderr, "Error creating debug log directory %q: %v\n", filepath.Dir(path), err)
	}
	if err := log.SetFile(path); err != nil {
		fmt.Fprintf(stderr, "Error opening debug log file %q: %v\n", path, err)
	}
}
