package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/reminders/internal/reminder"
)

// View renders the list.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(headerStyle.Render("Reminder List"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(renderCounts(m.snap.Counts))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Reminders"))
	b.WriteString("\n")
	if len(m.snap.Active) == 0 {
		b.WriteString(dimStyle.Render("  Nothing to do"))
		b.WriteString("\n")
	}
	for i, r := range m.snap.Active {
		b.WriteString(m.renderRow(i, r))
		b.WriteString("\n")
	}

	b.WriteString(sectionStyle.Render("Completed Todos"))
	b.WriteString("\n")
	if len(m.snap.History) == 0 {
		b.WriteString(dimStyle.Render("  None yet"))
		b.WriteString("\n")
	}
	for _, r := range m.snap.History {
		b.WriteString(historyStyle.Render("  ✓ " + r.Text))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return containerStyle.Render(b.String())
}

func renderCounts(c reminder.Counts) string {
	item := func(label string, n int) string {
		return labelStyle.Render(label+": ") + valueStyle.Render(fmt.Sprintf("%d", n))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		item("Total to do", c.Total),
		"   ",
		item("Completed", c.Completed),
		"   ",
		item("Pending", c.Pending),
	)
}

func (m Model) renderRow(i int, r reminder.Reminder) string {
	pointer := "  "
	if m.focus == focusList && i == m.cursor {
		pointer = cursorStyle.Render("> ")
	}

	if r.Completed {
		return pointer + "[x] " + completedStyle.Render(r.Text)
	}
	return pointer + "[ ] " + r.Text + dimStyle.Render("  (d to delete)")
}
