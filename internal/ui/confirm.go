package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
)

type Prompter interface {
	Confirm(title string) (bool, error)
}

// NewPrompter returns an interactive prompt when in is a terminal and a plain
// line prompt otherwise.
func NewPrompter(in *os.File, out io.Writer) Prompter {
	if IsTerminal(in) {
		return FormPrompter{}
	}
	return NewLinePrompter(in, out)
}

type FormPrompter struct{}

func (FormPrompter) Confirm(title string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	)

	err := form.Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return confirmed, nil
}

type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm accepts "y" or "yes" in any case. Anything else, including end of
// input, declines.
func (p *LinePrompter) Confirm(title string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", title)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}

	response := strings.ToLower(strings.TrimSpace(line))
	return response == "y" || response == "yes", nil
}
