// Package git wraps the git and package-manager commands a release runs.
package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderchan/changeset-release/internal/exec"
	log "github.com/alexanderchan/changeset-release/internal/log"
	"github.com/alexanderchan/changeset-release/internal/models"
)

// CommandError is returned when a delegated command cannot be started or exits non-zero.
type CommandError struct {
	Command  string
	Output   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Output)
	}
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Service runs git and helper commands inside a single repository.
type Service struct {
	executor exec.CommandExecutor
	dir      string
}

// NewService constructs a Service rooted at dir. A nil executor runs real processes.
func NewService(executor exec.CommandExecutor, dir string) *Service {
	if executor == nil {
		executor = exec.NewRealExecutor()
	}
	return &Service{executor: executor, dir: dir}
}

func (s *Service) debugf(format string, args ...any) {
	log.Printf(format, args...)
}

func prepareAllowedCommand(args []string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("no command provided")
	}

	switch args[0] {
	case "git", "pnpm", "yarn", "npx":
		return args[0], args[1:], nil
	default:
		return "", nil, fmt.Errorf("unsupported command %q", args[0])
	}
}

// exitCode extracts the process exit status from err (*exec.ExitError or
// anything else reporting one), or 0 when there is none.
func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 0
}

// RunCommand runs an allow-listed command in the repository and returns its
// trimmed combined output. Failures are reported as *CommandError.
func (s *Service) RunCommand(ctx context.Context, args []string) (string, error) {
	command := strings.Join(args, " ")
	if command == "" {
		command = "<empty>"
	}
	s.debugf("run: %s (cwd=%s)", command, s.dir)

	name, rest, err := prepareAllowedCommand(args)
	if err != nil {
		s.debugf("error: %s (unsupported command)", command)
		return "", &CommandError{Command: command, Err: err}
	}

	output, err := s.executor.CombinedOutput(ctx, s.dir, name, rest...)
	out := strings.TrimSpace(string(output))
	log.Output(command, out)
	if err != nil {
		cmdErr := &CommandError{Command: command, Output: out, Err: err}
		cmdErr.ExitCode = exitCode(err)
		s.debugf("error: %s", cmdErr.Error())
		return out, cmdErr
	}

	s.debugf("ok: %s", command)
	return out, nil
}

// Status returns the porcelain working-tree status. Only stdout is considered;
// stderr is used for the error detail when git fails.
func (s *Service) Status(ctx context.Context) (models.WorktreeStatus, error) {
	const command = "git status --porcelain"
	s.debugf("run: %s (cwd=%s)", command, s.dir)

	stdout, stderr, err := s.executor.Run(ctx, s.dir, "git", "status", "--porcelain")
	if err != nil {
		cmdErr := &CommandError{Command: command, Output: strings.TrimSpace(string(stderr)), Err: err}
		cmdErr.ExitCode = exitCode(err)
		s.debugf("error: %s", cmdErr.Error())
		return models.WorktreeStatus{}, cmdErr
	}

	s.debugf("ok: %s", command)
	return models.WorktreeStatus{Raw: string(stdout)}, nil
}

// ConfigRegexp returns the "name value" lines of the repository's local git
// config whose names match pattern. No matching key is an empty result.
func (s *Service) ConfigRegexp(ctx context.Context, pattern string) (string, error) {
	out, err := s.RunCommand(ctx, []string{"git", "config", "--local", "--get-regexp", pattern})
	if err != nil {
		var cmdErr *CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// AddAll stages every change in the working tree.
func (s *Service) AddAll(ctx context.Context) (string, error) {
	return s.RunCommand(ctx, []string{"git", "add", "."})
}

// Commit records the staged changes with message.
func (s *Service) Commit(ctx context.Context, message string) (string, error) {
	return s.RunCommand(ctx, []string{"git", "commit", "-m", message})
}

// Push pushes the current branch to its upstream.
func (s *Service) Push(ctx context.Context) (string, error) {
	return s.RunCommand(ctx, []string{"git", "push"})
}

// PushTags pushes all local tags.
func (s *Service) PushTags(ctx context.Context) (string, error) {
	return s.RunCommand(ctx, []string{"git", "push", "--tags"})
}

// FindRoot walks up from start to the first directory containing a .git entry
// (directory for a normal clone, file for a worktree or submodule). When none
// is found the cleaned start directory is returned with ok=false.
func FindRoot(start string) (root string, ok bool) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return filepath.Clean(start), false
	}

	for dir := abs; ; {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, false
		}
		dir = parent
	}
}
