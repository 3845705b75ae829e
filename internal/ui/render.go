package ui

import (
	"fmt"
	"strings"

	"github.com/corpeningc/reconcile/internal/actions"
)

// RenderPlan numbers each action. Continuation lines of multi-line actions
// are aligned under the first line's text.
func RenderPlan(s Styles, list []actions.Action) string {
	var b strings.Builder
	for i, a := range list {
		prefix := fmt.Sprintf("%d. ", i+1)
		pad := strings.Repeat(" ", len(prefix))
		for j, line := range RenderAction(s, a) {
			if j == 0 {
				b.WriteString(s.Number.Render(prefix))
			} else {
				b.WriteString(pad)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderAction returns the styled lines of a. The lines carry the same text
// as a.Describe().
func RenderAction(s Styles, a actions.Action) []string {
	switch a := a.(type) {
	case actions.Delete:
		return []string{"Delete: " + s.Delete.Render(a.Path)}
	case actions.RunCommand:
		return []string{s.Command.Render(a.Describe())}
	case actions.Group:
		if len(a.Actions) == 1 {
			return RenderAction(s, a.Actions[0])
		}
		lines := []string{renderHeader(s, a.Header())}
		for _, child := range a.Actions {
			for _, line := range RenderAction(s, child) {
				lines = append(lines, "  "+line)
			}
		}
		return lines
	default:
		return strings.Split(a.Describe(), "\n")
	}
}

func renderHeader(s Styles, header string) string {
	label, target, ok := strings.Cut(header, ": ")
	if !ok {
		return header
	}
	return label + ": " + s.Restore.Render(target)
}
