package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PlanViewerModel shows a rendered plan in a scrollable viewport.
type PlanViewerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
	styles   Styles
}

func NewPlanViewerModel(title, content string, styles Styles) PlanViewerModel {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle()

	return PlanViewerModel{
		title:    title,
		content:  content,
		viewport: vp,
		styles:   styles,
	}
}

func (m PlanViewerModel) Init() tea.Cmd {
	return nil
}

func (m PlanViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2 // title + help
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight)
			m.viewport.Style = lipgloss.NewStyle()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight
		}
		m.viewport.SetContent(m.content)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "enter", "ctrl+c":
			return m, tea.Quit

		case "j", "down":
			m.viewport.LineDown(1)

		case "k", "up":
			m.viewport.LineUp(1)

		case "d", "ctrl+d":
			m.viewport.HalfViewDown()

		case "u", "ctrl+u":
			m.viewport.HalfViewUp()

		case "f", "pgdn":
			m.viewport.ViewDown()

		case "b", "pgup":
			m.viewport.ViewUp()

		case "g", "home":
			m.viewport.GotoTop()

		case "G", "end":
			m.viewport.GotoBottom()

		default:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		// Keys handled above must not reach the viewport key map too.
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m PlanViewerModel) View() string {
	if !m.ready {
		return "Loading plan..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render(m.title),
		m.viewport.View(),
		m.styles.Help.Render("j/k: line by line | d/u: half page | f/b: full page | g/G: top/bottom | q/enter: done"),
	)
}

// ShowPlan blocks until the user closes the viewer.
func ShowPlan(title, content string, styles Styles) error {
	m := NewPlanViewerModel(title, content, styles)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
