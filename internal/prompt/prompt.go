// Package prompt provides a one-shot yes/no terminal question.
package prompt

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type model struct {
	question  string
	confirmed bool
	answered  bool
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "enter", "y", "Y":
		m.confirmed = true
		m.answered = true
		return m, tea.Quit
	case "esc", "n", "N", "ctrl+c":
		m.confirmed = false
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	if m.answered {
		answer := "no"
		if m.confirmed {
			answer = "yes"
		}
		return questionStyle.Render(m.question) + " " + answer + "\n"
	}
	return questionStyle.Render(m.question) + " " + hintStyle.Render("[y/n]") + " "
}

// Confirm asks a yes/no question on the terminal and blocks until the
// user answers. Enter and y confirm; esc, n and ctrl+c decline.
func Confirm(question string) (bool, error) {
	final, err := tea.NewProgram(model{question: question}).Run()
	if err != nil {
		return false, err
	}
	return final.(model).confirmed, nil
}
