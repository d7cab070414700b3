package maintenance

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).MarginBottom(1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	abandonedTint = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	bogusTint     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	helpStyle     = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

// confirmModel is the Bubble Tea model behind the interactive sweep: it
// lists every deletion candidate and waits for an explicit confirmation
// before anything is removed.
type confirmModel struct {
	candidates []Candidate
	cursor     int
	confirmed  bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "esc", "ctrl+c", "n":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.candidates)-1 {
			m.cursor++
		}

	case "enter", "y":
		m.confirmed = true
		return m, tea.Quit
	}

	return m, nil
}

func (m confirmModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Sweep: %d feed(s) marked for deletion", len(m.candidates))))
	b.WriteString("\n")

	for i, candidate := range m.candidates {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}

		tint := bogusTint
		if candidate.Reason == ReasonAbandoned {
			tint = abandonedTint
		}

		line := fmt.Sprintf("%s.xml  %s  %d item(s)  idle %s",
			shortID(candidate.OwnerID), tint.Render(candidate.Reason), candidate.ItemCount, formatAge(candidate.Age))
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString(helpStyle.Render("y/enter: delete all listed  •  q/n: abort  •  j/k: move"))
	b.WriteString("\n")

	return b.String()
}

// RunInteractive shows the candidate list and reports whether the operator
// confirmed the deletion.
func RunInteractive(candidates []Candidate) (bool, error) {
	if len(candidates) == 0 {
		return false, nil
	}

	program := tea.NewProgram(confirmModel{candidates: candidates})
	final, err := program.Run()
	if err != nil {
		return false, fmt.Errorf("sweep preview failed: %w", err)
	}

	model, ok := final.(confirmModel)
	if !ok {
		return false, nil
	}
	return model.confirmed, nil
}

func shortID(ownerID string) string {
	if len(ownerID) > 8 {
		return ownerID[:8]
	}
	return ownerID
}

func formatAge(age time.Duration) string {
	days := int(age.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(age.Hours()))
}
