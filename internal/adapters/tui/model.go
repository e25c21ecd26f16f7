package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/vito/progrock"
)

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusCached    = "cached"
	statusFailed    = "failed"
)

// StepState is the displayed state of one install or pack step.
type StepState struct {
	ID     string
	Name   string
	Status string
	Error  string
}

type styles struct {
	running   lipgloss.Style
	completed lipgloss.Style
	cached    lipgloss.Style
	failed    lipgloss.Style
}

// Model is the Bubble Tea model listing the steps of a run.
type Model struct {
	tape    TapeSource
	steps   []StepState
	index   map[string]int
	height  int
	spinner spinner.Model
	styles  styles
}

// NewModel creates a new model reading from the given tape.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))

	return &Model{
		tape:    tape,
		index:   make(map[string]int),
		spinner: s,
		styles: styles{
			running:   lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")),
			completed: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),  // Green
			cached:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // Blue
			failed:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")), // Red
		},
	}
}

// Init starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgTapeUpdate:
		m.apply(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(update *progrock.StatusUpdate) {
	if update == nil {
		return
	}
	for _, v := range update.Vertexes {
		i, ok := m.index[v.Id]
		if !ok {
			i = len(m.steps)
			m.index[v.Id] = i
			m.steps = append(m.steps, StepState{ID: v.Id, Name: v.Name, Status: statusRunning})
		}
		m.steps[i].Status = vertexStatus(v)
		if v.Error != nil {
			m.steps[i].Error = *v.Error
		}
	}
}

func vertexStatus(v *progrock.Vertex) string {
	switch {
	case v.Completed == nil:
		return statusRunning
	case v.Error != nil:
		return statusFailed
	case v.Cached:
		return statusCached
	default:
		return statusCompleted
	}
}

// View renders one line per step. The oldest steps scroll off when the terminal is too short.
func (m *Model) View() string {
	var s strings.Builder

	start := 0
	if m.height > 0 && len(m.steps) > m.height {
		start = len(m.steps) - m.height
	}

	for _, step := range m.steps[start:] {
		var icon string
		var style lipgloss.Style
		suffix := ""
		switch step.Status {
		case statusRunning:
			icon = m.spinner.View()
			style = m.styles.running
		case statusCached:
			icon = "✓"
			style = m.styles.cached
			suffix = " (cached)"
		case statusFailed:
			icon = "✗"
			style = m.styles.failed
			if step.Error != "" {
				suffix = ": " + step.Error
			}
		default:
			icon = "✓"
			style = m.styles.completed
		}

		fmt.Fprintf(&s, "%s %s%s\n", style.Render(icon), step.Name, suffix)
	}

	return s.String()
}
