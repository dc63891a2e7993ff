// Package ui renders live analysis progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/paiml/decy-sub003/internal/driver"
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []funcItem
	width   int
	done    bool
}

type funcItem struct {
	name  string
	stage driver.Stage
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows one line per
// function and an overall bar. funcs must be in batch order; events are
// matched to rows by Event.Index. It quits when events is closed.
func NewProgressModel(title string, funcs []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]funcItem, 0, len(funcs))
	for _, name := range funcs {
		items = append(items, funcItem{name: name, stage: driver.StageQueued})
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.finished(), len(m.items))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	nameWidth := max(m.width-16, 20)
	for _, item := range m.items {
		status := item.stage.String()
		b.WriteString("  ")
		b.WriteString(styleStatus(item.stage).Render(fmt.Sprintf("%10s", status)))
		b.WriteString(" ")
		b.WriteString(truncate(item.name, nameWidth))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	if ev.Index < 0 || ev.Index >= len(m.items) {
		return nil
	}
	m.items[ev.Index].stage = ev.Stage
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) finished() int {
	n := 0
	for _, item := range m.items {
		if item.stage == driver.StageDone || item.stage == driver.StageCached {
			n++
		}
	}
	return n
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		total += progressFromStage(item.stage)
	}
	return total / float64(len(m.items))
}

func progressFromStage(stage driver.Stage) float64 {
	switch stage {
	case driver.StageDataflow:
		return 0.1
	case driver.StageInfer:
		return 0.35
	case driver.StageGenerate:
		return 0.6
	case driver.StageLifetime:
		return 0.8
	case driver.StageDone, driver.StageCached:
		return 1.0
	default:
		return 0.0
	}
}

func styleStatus(stage driver.Stage) lipgloss.Style {
	switch stage {
	case driver.StageDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case driver.StageCached:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	case driver.StageQueued:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
