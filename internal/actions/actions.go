// Package actions holds the units of work a reconcile plan is made of.
//
// Action is a closed set: Delete, RunCommand and Group are its only
// implementations. Each action is immutable once built; Describe can be
// called any number of times and Execute runs the side effect through the
// Runner it is given.
package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/corpeningc/reconcile/internal/git"
)

type Action interface {
	// Describe returns a human readable summary. Groups with more than one
	// child span several lines.
	Describe() string
	Execute(ctx context.Context, runner git.Runner) error

	sealed()
}

// Delete removes a path from the work tree and the index.
type Delete struct {
	Path string
	Argv []string
}

func NewDelete(repo *git.GitRepo, path string) Delete {
	return Delete{Path: path, Argv: repo.RemoveArgs(path)}
}

func (d Delete) Describe() string {
	return "Delete: " + d.Path
}

func (d Delete) Execute(ctx context.Context, runner git.Runner) error {
	if _, err := runner.Run(ctx, d.Argv); err != nil {
		return fmt.Errorf("delete %s: %w", d.Path, err)
	}
	return nil
}

func (Delete) sealed() {}

type RunCommand struct {
	Argv []string
}

func NewRunCommand(argv ...string) RunCommand {
	return RunCommand{Argv: argv}
}

func (c RunCommand) Describe() string {
	return "Run command: " + strings.Join(c.Argv, " ")
}

func (c RunCommand) Execute(ctx context.Context, runner git.Runner) error {
	_, err := runner.Run(ctx, c.Argv)
	return err
}

func (RunCommand) sealed() {}

// Group runs its children in order and stops at the first failure. Nothing
// already applied is rolled back.
type Group struct {
	Title   string
	Actions []Action
}

func NewGroup(title string, children ...Action) Group {
	return Group{Title: title, Actions: children}
}

func (g Group) Describe() string {
	if len(g.Actions) == 1 {
		return g.Actions[0].Describe()
	}

	var b strings.Builder
	b.WriteString(g.Header())
	for _, child := range g.Actions {
		for _, line := range strings.Split(child.Describe(), "\n") {
			b.WriteString("\n  ")
			b.WriteString(line)
		}
	}
	return b.String()
}

func (g Group) Header() string {
	if g.Title != "" {
		return g.Title
	}
	return fmt.Sprintf("Group of %d actions:", len(g.Actions))
}

func (g Group) Execute(ctx context.Context, runner git.Runner) error {
	for _, child := range g.Actions {
		if err := child.Execute(ctx, runner); err != nil {
			return err
		}
	}
	return nil
}

func (Group) sealed() {}

// NewRestoreOurs resolves a conflict in favour of our side. When we deleted
// the file there is nothing to restore, so the deletion is confirmed instead.
func NewRestoreOurs(repo *git.GitRepo, path string, deletedByUs bool) Group {
	title := "Restore: " + path
	if deletedByUs {
		return NewGroup(title, NewDelete(repo, path))
	}
	return NewGroup(title,
		NewRunCommand(repo.CheckoutOursArgs(path)...),
		NewRunCommand(repo.AddArgs(path)...),
	)
}
