package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

type Styles struct {
	Title   lipgloss.Style
	Delete  lipgloss.Style
	Restore lipgloss.Style
	Command lipgloss.Style
	Number  lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
}

func NewStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")),

		Delete: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		Restore: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),

		Command: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		Number: lipgloss.NewStyle().
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
	}
}

// PlainStyles renders text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Delete:  plain,
		Restore: plain,
		Command: plain,
		Number:  plain,
		Error:   plain,
		Help:    plain,
	}
}

// StylesFor picks colored styles only when f is a terminal.
func StylesFor(f *os.File) Styles {
	if IsTerminal(f) {
		return NewStyles()
	}
	return PlainStyles()
}

func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
