package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"segprep/internal/processor"
)

const recentMessages = 4

type Model struct {
	title      string
	updates    <-chan processor.Event
	cancel     func()
	width      int
	progress   processor.Snapshot
	failures   int
	recent     []string
	done       bool
	cancelling bool
	quitting   bool
}

type doneMsg struct{}

type eventMsg processor.Event

// NewModel renders events until updates is closed. cancel is invoked on
// Ctrl-C and may be nil.
func NewModel(title string, updates <-chan processor.Event, cancel func()) Model {
	return Model{title: title, updates: updates, cancel: cancel}
}

func (m Model) Init() tea.Cmd {
	return listenForEvents(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		switch msg.Kind {
		case processor.EventProgress:
			m.progress = msg.Progress
		case processor.EventMessage:
			m.failures++
			m.recent = append(m.recent, msg.Message.Text)
			if len(m.recent) > recentMessages {
				m.recent = m.recent[len(m.recent)-recentMessages:]
			}
		case processor.EventSummary:
			m.done = true
		}
		return m, listenForEvents(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	ratio := 0.0
	if m.progress.Total > 0 {
		ratio = float64(m.progress.Completed) / float64(m.progress.Total)
		if ratio > 1 {
			ratio = 1
		}
	}

	bar := renderBar(barWidth, ratio)
	elapsed := m.progress.Elapsed.Round(100 * time.Millisecond)

	lines := []string{
		titleStyle.Render(m.title),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", m.progress.Completed, m.progress.Total)) +
			dimStyle.Render(fmt.Sprintf("  failed:%d", m.failures)),
		barStyle.Render(bar) + " " + labelStyle.Render(fmt.Sprintf("%d%% - %.1fs", m.progress.Percent(), elapsed.Seconds())),
	}
	for _, text := range m.recent {
		lines = append(lines, warnStyle.Render("! "+text))
	}
	if m.cancelling && !m.done {
		lines = append(lines, dimStyle.Render("Cancelling: waiting for files in progress..."))
	}

	return strings.Join(lines, "\n")
}

func listenForEvents(updates <-chan processor.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
)
