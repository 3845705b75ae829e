// Package reconcile drives a single run: build the plan, show it, ask for
// confirmation and apply the actions one after another.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/corpeningc/reconcile/internal/actions"
	"github.com/corpeningc/reconcile/internal/git"
	"github.com/corpeningc/reconcile/internal/logging"
	"github.com/corpeningc/reconcile/internal/ui"
)

var ErrActionFailed = errors.New("action failed")

type Outcome int

const (
	NothingToDo Outcome = iota
	Planned
	Cancelled
	Applied
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NothingToDo:
		return "nothing to do"
	case Planned:
		return "planned"
	case Cancelled:
		return "cancelled"
	case Applied:
		return "applied"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Planner interface {
	Plan(ctx context.Context) ([]actions.Action, error)
}

type Reconciler struct {
	Planner  Planner
	Runner   git.Runner
	Prompter ui.Prompter
	Out      io.Writer
	Styles   ui.Styles

	// AssumeYes skips the confirmation prompt.
	AssumeYes bool
	// Review, when set, is shown the rendered plan before the prompt.
	Review func(rendered string) error

	logger zerolog.Logger
}

func New(planner Planner, runner git.Runner, prompter ui.Prompter, out io.Writer) *Reconciler {
	return &Reconciler{
		Planner:  planner,
		Runner:   runner,
		Prompter: prompter,
		Out:      out,
		Styles:   ui.PlainStyles(),
		logger:   logging.GetLogger("reconcile"),
	}
}

// Preview prints the plan without applying it.
func (r *Reconciler) Preview(ctx context.Context) (Outcome, error) {
	list, err := r.Planner.Plan(ctx)
	if err != nil {
		return NothingToDo, err
	}
	if len(list) == 0 {
		fmt.Fprintln(r.Out, "Nothing to do.")
		return NothingToDo, nil
	}

	fmt.Fprintln(r.Out, "Would perform actions:")
	fmt.Fprint(r.Out, ui.RenderPlan(r.Styles, list))
	return Planned, nil
}

// Apply plans, confirms and executes. Execution stops at the first failed
// action; actions already applied stay applied.
func (r *Reconciler) Apply(ctx context.Context) (Outcome, error) {
	list, err := r.Planner.Plan(ctx)
	if err != nil {
		return NothingToDo, err
	}
	if len(list) == 0 {
		fmt.Fprintln(r.Out, "Nothing to do.")
		return NothingToDo, nil
	}

	rendered := ui.RenderPlan(r.Styles, list)
	fmt.Fprintln(r.Out, "Will perform actions:")
	fmt.Fprint(r.Out, rendered)

	if r.Review != nil {
		if err := r.Review(rendered); err != nil {
			return NothingToDo, fmt.Errorf("review plan: %w", err)
		}
	}

	if !r.AssumeYes {
		ok, err := r.Prompter.Confirm(fmt.Sprintf("Apply %d actions?", len(list)))
		if err != nil {
			return NothingToDo, err
		}
		if !ok {
			fmt.Fprintln(r.Out, "Cancelled")
			return Cancelled, nil
		}
	}

	for i, a := range list {
		summary := firstLine(a.Describe())
		r.logger.Info().Int("index", i+1).Str("action", summary).Msg("Applying action")

		if err := a.Execute(ctx, r.Runner); err != nil {
			r.logger.Error().Err(err).Int("index", i+1).Msg("Action failed")
			return Failed, fmt.Errorf("%w: %d of %d (%s), %d applied before it: %w",
				ErrActionFailed, i+1, len(list), summary, i, err)
		}
	}

	fmt.Fprintf(r.Out, "Applied %d actions.\n", len(list))
	return Applied, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
