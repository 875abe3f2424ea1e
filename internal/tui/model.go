package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/Iron-Ham/singleton/internal/tui/styles"
)

// DefaultMaxBatches is used when the model is created with a non-positive
// limit.
const DefaultMaxBatches = 100

// Batch is one forwarded argument batch as shown in the list.
type Batch struct {
	Seq      int
	Args     []string
	Received time.Time
}

// Model is the Bubbletea model for the leader's window. It lists the most
// recent forwarded batches, oldest first.
type Model struct {
	identity   string
	inbox      <-chan tea.Msg
	batches    []Batch
	total      int
	maxBatches int

	status      string
	statusLevel string

	width    int
	height   int
	keys     keyMap
	help     help.Model
	quitting bool
}

// NewModel creates a model for identity that keeps at most maxBatches
// batches on screen.
func NewModel(identity string, maxBatches int) Model {
	if maxBatches <= 0 {
		maxBatches = DefaultMaxBatches
	}
	return Model{
		identity:    identity,
		maxBatches:  maxBatches,
		status:      "Waiting for other instances",
		statusLevel: "info",
		keys:        defaultKeyMap(),
		help:        help.New(),
	}
}

// Batches returns the batches currently kept by the model.
func (m Model) Batches() []Batch {
	return m.batches
}

// Total returns the number of batches received, including those no longer
// kept.
func (m Model) Total() int {
	return m.total
}

// Status returns the status bar level and text.
func (m Model) Status() (level, text string) {
	return m.statusLevel, m.status
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return waitForInbox(m.inbox)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.batches = nil
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		return m, nil

	case BatchMsg:
		m.addBatch(msg)
		return m, waitForInbox(m.inbox)

	case StatusMsg:
		m.status = msg.Text
		m.statusLevel = msg.Level
		return m, waitForInbox(m.inbox)
	}

	return m, nil
}

func (m *Model) addBatch(msg BatchMsg) {
	m.total++
	received := msg.Received
	if received.IsZero() {
		received = time.Now()
	}
	m.batches = append(m.batches, Batch{
		Seq:      m.total,
		Args:     msg.Args,
		Received: received,
	})
	if over := len(m.batches) - m.maxBatches; over > 0 {
		m.batches = append(m.batches[:0:0], m.batches[over:]...)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "singleton" + styles.RoleBadge.Render("leader")
	if m.identity != "" {
		title += styles.Muted.Render("  " + m.identity)
	}
	b.WriteString(styles.Header.Render(title))
	b.WriteString("\n")

	b.WriteString(m.renderBatches())
	b.WriteString("\n")

	status := lipgloss.NewStyle().Foreground(styles.StatusColor(m.statusLevel)).Render(m.status)
	b.WriteString(styles.StatusBar.Render(fmt.Sprintf("%s  %s", status, styles.Muted.Render(fmt.Sprintf("%d received", m.total)))))
	b.WriteString("\n")

	b.WriteString(styles.HelpBar.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderBatches() string {
	if len(m.batches) == 0 {
		return styles.EmptyList.Render("No forwarded arguments yet.")
	}

	visible := m.batches
	if avail := m.height - styles.HeaderFooterReserved - 1; m.height > 0 && avail > 0 && len(visible) > avail {
		visible = visible[len(visible)-avail:]
	}

	lines := make([]string, 0, len(visible))
	for _, batch := range visible {
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			styles.BatchSeq.Render(fmt.Sprintf("#%d", batch.Seq)),
			styles.BatchMeta.Render(batch.Received.Format("15:04:05")),
			" ",
			styles.BatchArgs.Render(FormatArgs(batch.Args)),
		)
		lines = append(lines, fitWidth(line, m.width))
	}
	return strings.Join(lines, "\n")
}

// fitWidth cuts s to width visible columns, ending in an ellipsis when cut.
// Escape sequences are preserved. A non-positive width leaves s unchanged.
func fitWidth(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return ansi.Truncate(s, width, "…")
}

// FormatArgs renders an argument batch on one line. Arguments that are
// empty or contain whitespace or quotes are shown quoted.
func FormatArgs(args []string) string {
	if len(args) == 0 {
		return "(no arguments)"
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			parts[i] = strconv.Quote(arg)
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}
