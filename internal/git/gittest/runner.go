// Package gittest provides a scripted git.Runner for tests.
package gittest

import (
	"context"
	"strconv"
	"strings"

	"github.com/corpeningc/reconcile/internal/git"
)

// FakeRunner records every command it is asked to run. Responses are keyed by
// the space-joined argv; unknown commands succeed with no output.
type FakeRunner struct {
	Calls   [][]string
	Outputs map[string]string
	Errors  map[string]error
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs: make(map[string]string),
		Errors:  make(map[string]error),
	}
}

func (f *FakeRunner) WithOutput(argv []string, output string) *FakeRunner {
	f.Outputs[strings.Join(argv, " ")] = output
	return f
}

// WithExitCode makes argv fail the way a non-zero exit from the real runner
// does.
func (f *FakeRunner) WithExitCode(argv []string, code int, stderr string) *FakeRunner {
	f.Errors[strings.Join(argv, " ")] = &git.CommandError{
		Argv:     argv,
		ExitCode: code,
		Stderr:   stderr,
		Err:      errExit(code),
	}
	return f
}

func (f *FakeRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.Calls = append(f.Calls, append([]string(nil), argv...))
	key := strings.Join(argv, " ")
	if err, ok := f.Errors[key]; ok {
		return nil, err
	}
	return []byte(f.Outputs[key]), nil
}

// Commands returns the recorded calls as space-joined strings.
func (f *FakeRunner) Commands() []string {
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, strings.Join(c, " "))
	}
	return out
}

type errExit int

func (e errExit) Error() string {
	return "exit status " + strconv.Itoa(int(e))
}
