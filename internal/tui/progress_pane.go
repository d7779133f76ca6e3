package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anvilbuild/anvil/internal/events"
)

// ProgressPaneModel summarizes the build: requested targets and task counts
// derived from the event stream.
type ProgressPaneModel struct {
	targets   []string
	running   int
	completed int
	failed    int
	width     int
	height    int
	focused   bool
}

// NewProgressPaneModel creates a new progress pane model.
func NewProgressPaneModel() ProgressPaneModel {
	return ProgressPaneModel{}
}

// Update handles messages for the progress pane.
func (m ProgressPaneModel) Update(msg tea.Msg) (ProgressPaneModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case events.BuildStartedEvent:
		m.targets = m.targets[:0]
		for _, t := range msg.Targets {
			m.targets = append(m.targets, string(t))
		}

	case events.TaskStartedEvent:
		m.running++

	case events.TaskFinishedEvent:
		m.running--
		if msg.Err != nil {
			m.failed++
		} else {
			m.completed++
		}
	}

	return m, nil
}

// View renders the progress pane.
func (m ProgressPaneModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder

	title := StyleTitle.Render("Build Progress")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", lipgloss.Width(title)))
	b.WriteString("\n\n")

	if len(m.targets) == 0 {
		b.WriteString("Targets:   (backend defaults)\n")
	} else {
		b.WriteString(fmt.Sprintf("Targets:   %s\n", strings.Join(m.targets, " ")))
	}
	b.WriteString(fmt.Sprintf("Running:   %s\n", StyleStatusRunning.Render(fmt.Sprintf("%d", m.running))))
	b.WriteString(fmt.Sprintf("Completed: %s\n", StyleStatusComplete.Render(fmt.Sprintf("%d", m.completed))))
	b.WriteString(fmt.Sprintf("Failed:    %s\n", StyleStatusFailed.Render(fmt.Sprintf("%d", m.failed))))

	b.WriteString("\n")

	finished := m.completed + m.failed
	total := finished + m.running
	if total > 0 {
		barWidth := min(m.width-4, 40)
		completedWidth := (m.completed * barWidth) / total
		failedWidth := (m.failed * barWidth) / total
		runningWidth := barWidth - completedWidth - failedWidth

		bar := StyleStatusComplete.Render(strings.Repeat("=", max(0, completedWidth)))
		bar += StyleStatusFailed.Render(strings.Repeat("!", max(0, failedWidth)))
		bar += StyleStatusRunning.Render(strings.Repeat("-", max(0, runningWidth)))

		b.WriteString(fmt.Sprintf("[%s]  %d done\n", bar, finished))
	}

	style := StyleUnfocusedBorder
	if m.focused {
		style = StyleFocusedBorder
	}

	return style.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(b.String())
}

// SetSize updates the pane dimensions.
func (m *ProgressPaneModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused updates the focus state.
func (m *ProgressPaneModel) SetFocused(focused bool) {
	m.focused = focused
}
