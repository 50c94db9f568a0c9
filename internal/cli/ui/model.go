package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stackvity/code-transformer/internal/cli/hooks"
	"github.com/stackvity/code-transformer/pkg/transformer"
)

const listHeightMargin = 4

const (
	phaseStarting     = "Extracting..."
	phaseTransforming = "Transforming..."
	phaseComplete     = "Complete"
)

// Model is the Bubble Tea model of an archive run. It lists every archive
// entry with its status and keeps running totals for the footer.
type Model struct {
	list    list.Model
	spinner spinner.Model

	width       int
	height      int
	initialized bool

	version string
	target  string

	items   []listItem
	itemMap map[string]int
	summary Summary

	phaseMessage  string
	fatalError    string
	outputArchive string
	quitting      bool

	// refreshPending is set while an UpdateListMsg is scheduled.
	refreshPending bool
	now            func() time.Time
}

// listItem represents a single archive entry in the list.
type listItem struct {
	path     string
	status   transformer.Status
	message  string
	duration time.Duration
}

// Summary holds the running totals displayed in the footer.
type Summary struct {
	Total          int
	ProcessedCount int
	SkippedCount   int
	ErrorCount     int
	StartTime      time.Time
}

// UpdateListMsg asks the model to push its items into the list component.
type UpdateListMsg struct{}

const listRefreshInterval = 50 * time.Millisecond

// NewModel creates the initial model for an archive run towards target.
func NewModel(version, target string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusStyleProcessing

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorSelectedFg).
		Background(ColorSelectedBg).
		Bold(true).
		Padding(0, 0, 0, 1)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorSelectedDescFg).
		Background(ColorSelectedBg).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(ColorNormalFg).Padding(0, 0, 0, 1)
	delegate.Styles.NormalDesc = delegate.Styles.NormalDesc.Foreground(ColorNormalDescFg).Padding(0, 0, 0, 1)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	if version == "" {
		version = "dev"
	}
	return &Model{
		list:         l,
		spinner:      s,
		version:      version,
		target:       target,
		itemMap:      make(map[string]int),
		summary:      Summary{StartTime: time.Now()},
		phaseMessage: phaseStarting,
		now:          time.Now,
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles terminal events and hook messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width, max(m.height-listHeightMargin, 1))
		m.initialized = true

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		if m.quitting || m.phaseMessage == phaseComplete {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case hooks.FileStatusUpdateMsg:
		m.applyStatus(msg)
		if msg.Status == transformer.StatusProcessing {
			m.phaseMessage = phaseTransforming
		}
		cmds = append(cmds, m.scheduleRefresh())

	case hooks.RunCompleteMsg:
		s := msg.Report.Summary
		m.phaseMessage = phaseComplete
		m.summary.Total = s.TotalFiles
		m.summary.ProcessedCount = s.ProcessedCount
		m.summary.SkippedCount = s.SkippedCount
		m.summary.ErrorCount = s.ErrorCount
		m.outputArchive = s.OutputArchive
		if s.FatalErrorOccurred {
			m.fatalError = "Run halted due to fatal error."
			for _, e := range msg.Report.Errors {
				if e.IsFatal {
					m.fatalError = fmt.Sprintf("Fatal Error: %s (%s)", e.Error, e.Path)
					break
				}
			}
		}
		m.refreshPending = false
		cmds = append(cmds, m.list.SetItems(m.listItems()), tea.Quit)

	case UpdateListMsg:
		m.refreshPending = false
		cmds = append(cmds, m.list.SetItems(m.listItems()))
	}

	return m, tea.Batch(cmds...)
}

// applyStatus records a status change and keeps the footer totals in step
// with transitions into and out of final states.
func (m *Model) applyStatus(msg hooks.FileStatusUpdateMsg) {
	idx, ok := m.itemMap[msg.Path]
	if !ok {
		m.items = append(m.items, listItem{path: msg.Path, status: transformer.StatusPending})
		idx = len(m.items) - 1
		m.itemMap[msg.Path] = idx
		m.summary.Total++
	}
	item := &m.items[idx]
	if isFinalStatus(item.status) {
		m.countStatus(item.status, -1)
	}
	if isFinalStatus(msg.Status) {
		m.countStatus(msg.Status, 1)
	}
	item.status = msg.Status
	item.message = msg.Message
	item.duration = msg.Duration
}

func (m *Model) scheduleRefresh() tea.Cmd {
	if m.refreshPending {
		return nil
	}
	m.refreshPending = true
	return tea.Tick(listRefreshInterval, func(time.Time) tea.Msg { return UpdateListMsg{} })
}

func (m *Model) listItems() []list.Item {
	items := make([]list.Item, len(m.items))
	for i, item := range m.items {
		items[i] = item
	}
	return items
}

func (m *Model) countStatus(status transformer.Status, delta int) {
	switch status {
	case transformer.StatusSuccess:
		m.summary.ProcessedCount += delta
	case transformer.StatusSkipped:
		m.summary.SkippedCount += delta
	case transformer.StatusFailed:
		m.summary.ErrorCount += delta
	}
}

func isFinalStatus(status transformer.Status) bool {
	return status == transformer.StatusSuccess ||
		status == transformer.StatusFailed ||
		status == transformer.StatusSkipped
}

// View renders the header, the file list and the footer.
func (m *Model) View() string {
	if m.quitting {
		return "Exiting...\n"
	}
	if !m.initialized {
		return phaseStarting
	}

	headerLeft := fmt.Sprintf("Code Transformer v%s", m.version)
	if m.target != "" {
		headerLeft += " -> " + m.target
	}
	headerRight := m.phaseMessage
	if m.phaseMessage != phaseComplete {
		headerRight = m.spinner.View() + " " + m.phaseMessage
	}
	header := HeaderStyle.Width(m.width).Render(spread(m.width, headerLeft, headerRight))

	elapsed := m.now().Sub(m.summary.StartTime).Round(time.Millisecond)
	footerLeft := fmt.Sprintf("Transformed: %d | Skipped: %d | Failed: %d | Total: %d | Elapsed: %s",
		m.summary.ProcessedCount, m.summary.SkippedCount, m.summary.ErrorCount, m.summary.Total, elapsed)
	footer := FooterStyle.Width(m.width).Render(spread(m.width, footerLeft, "q: quit"))

	var extra string
	if m.fatalError != "" {
		extra = StatusStyleFailed.Render(m.fatalError) + "\n"
	} else if m.outputArchive != "" {
		extra = StatusStyleSuccess.Render("Output: "+m.outputArchive) + "\n"
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), extra, footer)
}

// spread places left and right at the edges of a line of the given width.
func spread(width int, left, right string) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.PlaceHorizontal(gap, lipgloss.Center, " "), right)
}

// FilterValue implements list.Item.
func (i listItem) FilterValue() string { return i.path }

// Title implements list.Item.
func (i listItem) Title() string { return i.path }

// Description implements list.Item.
func (i listItem) Description() string {
	var style lipgloss.Style
	icon := " "
	switch i.status {
	case transformer.StatusSuccess:
		style, icon = StatusStyleSuccess, "✓"
	case transformer.StatusFailed:
		style, icon = StatusStyleFailed, "✗"
	case transformer.StatusSkipped:
		style, icon = StatusStyleSkipped, "S"
	case transformer.StatusProcessing:
		style, icon = StatusStyleProcessing, "…"
	default:
		style = StatusStylePending
	}

	details := ""
	switch i.status {
	case transformer.StatusFailed, transformer.StatusSkipped:
		details = i.message
	case transformer.StatusSuccess:
		details = i.message
		if d := formatDuration(i.duration); d != "" {
			details += " (" + d + ")"
		}
	}
	return fmt.Sprintf("%s %s", style.Render("["+icon+"]"), details)
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}
