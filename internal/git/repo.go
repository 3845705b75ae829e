package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const DefaultBinary = "git"

type CommandError struct {
	Argv     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed (exit %d): %v\nStdout: %s\nStderr: %s",
		strings.Join(e.Argv, " "), e.ExitCode, e.Err, e.Stdout, e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type GitRepo struct {
	WorkDir string
	Binary  string
	runner  Runner
}

func New(workDir string, runner Runner) *GitRepo {
	return &GitRepo{WorkDir: workDir, Binary: DefaultBinary, runner: runner}
}

func (repo *GitRepo) Runner() Runner {
	return repo.runner
}

// RemoveArgs stages the removal of path, recursively and forcefully.
func (repo *GitRepo) RemoveArgs(path string) []string {
	return []string{repo.binary(), "rm", "-rf", "--", path}
}

func (repo *GitRepo) CheckoutOursArgs(path string) []string {
	return []string{repo.binary(), "checkout", "--ours", "--", path}
}

func (repo *GitRepo) AddArgs(path string) []string {
	return []string{repo.binary(), "add", "--", path}
}

func (repo *GitRepo) StatusArgs() []string {
	return []string{repo.binary(), "status", "--porcelain=v1"}
}

// Status returns the raw porcelain v1 status of the work tree.
func (repo *GitRepo) Status(ctx context.Context) (string, error) {
	out, err := repo.runner.Run(ctx, repo.StatusArgs())
	if err != nil {
		return "", fmt.Errorf("read status: %w", err)
	}
	return string(out), nil
}

func (repo *GitRepo) TopLevelArgs() []string {
	return []string{repo.binary(), "rev-parse", "--show-toplevel"}
}

// TopLevel returns the root of the work tree containing WorkDir. Status paths
// are relative to it.
func (repo *GitRepo) TopLevel(ctx context.Context) (string, error) {
	out, err := repo.runner.Run(ctx, repo.TopLevelArgs())
	if err != nil {
		return "", fmt.Errorf("find repository root: %w", err)
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return "", fmt.Errorf("find repository root: %s printed nothing", strings.Join(repo.TopLevelArgs(), " "))
	}
	return filepath.FromSlash(root), nil
}

func (repo *GitRepo) binary() string {
	if repo.Binary == "" {
		return DefaultBinary
	}
	return repo.Binary
}
