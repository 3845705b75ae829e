package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/corpeningc/reconcile/internal/logging"
)

// Runner executes an external command and returns its standard output. A
// non-zero exit is reported as a *CommandError.
type Runner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

type ExecRunner struct {
	Dir string
}

func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{Dir: dir}
}

func (r *ExecRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	logging.LogCommand(argv[0], argv[1:])

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else if ctx.Err() == nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	return stdout.Bytes(), &CommandError{
		Argv:     append([]string(nil), argv...),
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}
}
