// Package tui renders live build progress with Bubble Tea: a task pane with
// per-task output and a summary pane fed by the event bus.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anvilbuild/anvil/internal/events"
)

// PaneID identifies which pane is focused.
type PaneID int

const (
	PaneTasks PaneID = iota
	PaneProgress
)

// quitMsg ends the program after the final frame has been visible briefly.
type quitMsg struct{}

// Model is the root Bubble Tea model for the build progress view.
type Model struct {
	taskPane     TaskPaneModel
	progressPane ProgressPaneModel
	spinner      spinner.Model
	focusedPane  PaneID
	eventSub     <-chan events.Event
	width        int
	height       int
	quitting     bool
	finished     bool
	buildErr     error
}

// New creates a model subscribed to every event on the bus.
func New(bus *events.EventBus) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleStatusRunning
	return Model{
		taskPane:     NewTaskPaneModel(),
		progressPane: NewProgressPaneModel(),
		spinner:      sp,
		focusedPane:  PaneTasks,
		eventSub:     bus.SubscribeAll(256),
	}
}

// Err returns the build's outcome once the program has finished.
func (m Model) Err() error {
	return m.buildErr
}

// Init initializes the model and returns the initial command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.eventSub))
}

// waitForEvent returns a command that waits for the next bus event.
func waitForEvent(sub <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil // bus closed
		}
		return event
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case KeyQuit, KeyCtrlC:
			m.quitting = true
			return m, tea.Quit

		case KeyTab, KeyShiftTab:
			m.focusedPane = (m.focusedPane + 1) % 2
			m.updateFocusStates()

		case KeyPane1:
			m.focusedPane = PaneTasks
			m.updateFocusStates()

		case KeyPane2:
			m.focusedPane = PaneProgress
			m.updateFocusStates()

		default:
			if m.focusedPane == PaneTasks {
				var cmd tea.Cmd
				m.taskPane, cmd = m.taskPane.Update(msg)
				cmds = append(cmds, cmd)
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()

	case spinner.TickMsg:
		if !m.finished {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tickMsg:
		var cmd tea.Cmd
		m.taskPane, cmd = m.taskPane.Update(msg)
		cmds = append(cmds, cmd)

	case events.BuildStartedEvent:
		var cmd tea.Cmd
		m.progressPane, cmd = m.progressPane.Update(msg)
		cmds = append(cmds, cmd, waitForEvent(m.eventSub))

	case events.TaskStartedEvent, events.TaskOutputEvent, events.TaskFinishedEvent:
		var cmd tea.Cmd
		m.taskPane, cmd = m.taskPane.Update(msg)
		cmds = append(cmds, cmd)
		m.progressPane, cmd = m.progressPane.Update(msg)
		cmds = append(cmds, cmd, waitForEvent(m.eventSub))

	case events.BuildFinishedEvent:
		m.finished = true
		m.buildErr = msg.Err
		// Leave the final frame on screen briefly before exiting.
		cmds = append(cmds, tea.Tick(750*time.Millisecond, func(time.Time) tea.Msg {
			return quitMsg{}
		}))

	case quitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}

// View renders the progress view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	header := m.headerView()
	availableHeight := m.height - 2 // header + help bar

	taskHeight := (availableHeight * 70) / 100
	progressHeight := availableHeight - taskHeight

	m.taskPane.SetSize(m.width, taskHeight)
	m.progressPane.SetSize(m.width, progressHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.taskPane.View(),
		m.progressPane.View(),
		HelpView(),
	)
}

func (m Model) headerView() string {
	if !m.finished {
		return m.spinner.View() + StyleTitle.Render("Building...")
	}
	if m.buildErr != nil {
		return StyleStatusFailed.Render("BUILD FAILED") + " " + StyleHelp.Render(m.buildErr.Error())
	}
	return StyleStatusComplete.Render("BUILD SUCCESSFUL")
}

// computeLayout pushes dimensions into the child models.
func (m *Model) computeLayout() {
	availableHeight := m.height - 2
	taskHeight := (availableHeight * 70) / 100

	m.taskPane.SetSize(m.width, taskHeight)
	m.progressPane.SetSize(m.width, availableHeight-taskHeight)
	m.updateFocusStates()
}

// updateFocusStates updates the focus state of all panes.
func (m *Model) updateFocusStates() {
	m.taskPane.SetFocused(m.focusedPane == PaneTasks)
	m.progressPane.SetFocused(m.focusedPane == PaneProgress)
}
