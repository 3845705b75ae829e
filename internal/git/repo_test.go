package git_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpeningc/reconcile/internal/git"
	"github.com/corpeningc/reconcile/internal/git/gittest"
)

var topLevelArgs = []string{"git", "rev-parse", "--show-toplevel"}

func TestTopLevel_TrimsOutput(t *testing.T) {
	runner := gittest.NewFakeRunner().WithOutput(topLevelArgs, "/home/dev/project\n")
	repo := git.New("/home/dev/project/crates/zeta", runner)

	root, err := repo.TopLevel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/home/dev/project"), root)
	assert.Equal(t, []string{"git rev-parse --show-toplevel"}, runner.Commands())
}

func TestTopLevel_UsesConfiguredBinary(t *testing.T) {
	runner := gittest.NewFakeRunner().WithOutput([]string{"/opt/git", "rev-parse", "--show-toplevel"}, "/repo\n")
	repo := git.New("/repo", runner)
	repo.Binary = "/opt/git"

	root, err := repo.TopLevel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/repo"), root)
}

func TestTopLevel_NotARepository(t *testing.T) {
	runner := gittest.NewFakeRunner().WithExitCode(topLevelArgs, 128, "fatal: not a git repository")
	repo := git.New(".", runner)

	_, err := repo.TopLevel(context.Background())
	require.Error(t, err)

	var cmdErr *git.CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 128, cmdErr.ExitCode)
}

func TestTopLevel_EmptyOutput(t *testing.T) {
	runner := gittest.NewFakeRunner().WithOutput(topLevelArgs, "\n")
	repo := git.New(".", runner)

	_, err := repo.TopLevel(context.Background())
	assert.ErrorContains(t, err, "printed nothing")
}

func TestTopLevel_FromSubdirectory(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	root := t.TempDir()
	require.NoError(t, exec.Command("git", "init", "-q", root).Run())
	sub := filepath.Join(root, "crates", "zeta")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo := git.New(sub, git.NewExecRunner(sub))
	got, err := repo.TopLevel(context.Background())
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err = filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
