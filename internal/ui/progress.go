package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"quill/internal/driver"
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type fileItem struct {
	path   string
	status string
	stage  driver.Stage
	final  bool
	tokens int
	cached bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders tokenization
// progress of files. It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: "queued"})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
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
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
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

	const statusWidth = 12
	nameWidth := max(m.width-statusWidth-16, 20)

	for _, item := range m.items {
		name := truncate(item.path, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%*s", statusWidth, item.status))
		fmt.Fprintf(&b, "  %s %s", statusStyled, name)
		if item.status == "done" {
			suffix := fmt.Sprintf("  %d tokens", item.tokens)
			if item.cached {
				suffix += " (cached)"
			}
			b.WriteString(lipgloss.NewStyle().Faint(true).Render(suffix))
		}
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
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	if label := statusLabel(ev.Stage, ev.Status); label != "" {
		item.status = label
		item.stage = ev.Stage
	}
	switch ev.Status {
	case driver.StatusDone, driver.StatusError:
		item.final = true
		item.tokens = ev.Tokens
		item.cached = ev.Cached
	}
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) finished() int {
	n := 0
	for _, item := range m.items {
		if item.final {
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
		if item.final {
			total += 1.0
		} else {
			total += progressFromStage(item.stage)
		}
	}
	return total / float64(len(m.items))
}

func progressFromStage(stage driver.Stage) float64 {
	switch stage {
	case driver.StageLoad:
		return 0.1
	case driver.StageCache:
		return 0.3
	case driver.StageTokenize:
		return 0.5
	default:
		return 0.0
	}
}

func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusDone:
		return "done"
	case driver.StatusError:
		return "error"
	case driver.StatusWorking:
		return stageLabel(stage)
	default:
		return ""
	}
}

func stageLabel(stage driver.Stage) string {
	switch stage {
	case driver.StageLoad:
		return "loading"
	case driver.StageCache:
		return "cache"
	case driver.StageTokenize:
		return "tokenizing"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "loading", "cache", "tokenizing":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
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
