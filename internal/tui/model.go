// Package tui renders the dashboard layout in a terminal. The pollers write
// into a display.Board; the model redraws on every board change and on a
// one second tick so relative ages stay current.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/zsiec/livedash/internal/dashboard"
	"github.com/zsiec/livedash/internal/display"
	"github.com/zsiec/livedash/internal/health"
	"github.com/zsiec/livedash/internal/poller"
	"github.com/zsiec/livedash/internal/tabs"
)

const (
	tickInterval    = time.Second
	changeBuffer    = 64
	maxRecentErrors = 5
	placeholder     = "-"
)

// Messages
type tickMsg time.Time

type changeMsg display.Change

// PollErrorMsg reports a failed poll cycle. Send it with tea.Program.Send
// from a poller's error hook.
type PollErrorMsg struct {
	Poller string
	Err    error
	At     time.Time
}

// StatusFunc reports the current state of every poller.
type StatusFunc func() []poller.Status

// Option configures a Model.
type Option func(*Model)

// WithStatuses shows one status line per poller.
func WithStatuses(fn StatusFunc) Option {
	return func(m *Model) { m.statuses = fn }
}

// WithFreshness runs checker on every tick and shows its verdict in the
// footer.
func WithFreshness(checker health.Checker) Option {
	return func(m *Model) { m.freshness = checker }
}

// WithTitle overrides the header text.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// Model is the bubbletea model for the terminal dashboard.
type Model struct {
	layout    dashboard.Layout
	board     *display.Board
	tabs      *tabs.Set
	changes   <-chan display.Change
	cancel    func()
	statuses  StatusFunc
	freshness health.Checker
	title     string
	now       func() time.Time

	width      int
	height     int
	ready      bool
	quitting   bool
	freshErr   error
	recentErrs []PollErrorMsg
}

// New builds a model over board, which must declare the layout's slots.
func New(layout dashboard.Layout, board *display.Board, opts ...Option) (*Model, error) {
	ts, err := layout.NewTabs()
	if err != nil {
		return nil, fmt.Errorf("failed to build tabs: %w", err)
	}
	for _, slot := range layout.Slots() {
		if !board.Has(slot.ID) {
			return nil, fmt.Errorf("%w: %q", display.ErrUnknownSlot, slot.ID)
		}
	}

	changes, cancel := board.Subscribe(changeBuffer)
	m := &Model{
		layout:  layout,
		board:   board,
		tabs:    ts,
		changes: changes,
		cancel:  cancel,
		title:   "livedash",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.checkFreshness()
	return m, nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickEvery(tickInterval),
		waitForChange(m.changes),
	)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.checkFreshness()
		return m, tickEvery(tickInterval)

	case changeMsg:
		return m, waitForChange(m.changes)

	case PollErrorMsg:
		if msg.At.IsZero() {
			msg.At = m.now()
		}
		m.recentErrs = append(m.recentErrs, msg)
		if len(m.recentErrs) > maxRecentErrors {
			m.recentErrs = m.recentErrs[len(m.recentErrs)-maxRecentErrors:]
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case "tab", "right", "l":
		m.tabs.Next()
	case "shift+tab", "left", "h":
		m.tabs.Prev()
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			// Out of range digits leave the active tab alone.
			_ = m.tabs.SelectIndex(int(key[0] - '1'))
		}
	}
	return m, nil
}

func (m *Model) checkFreshness() {
	if m.freshness == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), tickInterval)
	defer cancel()
	m.freshErr = m.freshness.Check(ctx)
}

// ActiveTab returns the key of the visible panel.
func (m *Model) ActiveTab() string {
	return m.tabs.Active()
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{
		m.renderHeader(),
		m.renderPanel(),
		m.renderFooter(),
	}
	if lines := m.renderStatuses(); lines != "" {
		sections = append(sections, lines)
	}
	if lines := m.renderErrors(); lines != "" {
		sections = append(sections, lines)
	}
	sections = append(sections, helpStyle.Render("1-9 select · tab/←/→ cycle · q quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	controls := m.tabs.Controls()
	rendered := make([]string, 0, len(controls)+1)
	rendered = append(rendered, titleStyle.Render(m.title))
	for i, c := range controls {
		label := fmt.Sprintf("%d %s", i+1, c.Label)
		if c.Active {
			rendered = append(rendered, activeTabStyle.Render(label))
		} else {
			rendered = append(rendered, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderPanel() string {
	panel, ok := m.layout.Panel(m.tabs.Active())
	if !ok {
		return ""
	}

	rows := make([]string, 0, len(panel.Fields))
	for _, f := range panel.Fields {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			labelStyle.Render(f.Label),
			m.renderValue(f.Slot),
		))
	}

	style := panelStyle
	if m.width > 4 {
		style = style.Width(m.width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderValue(slot display.Slot) string {
	v, _ := m.board.Get(slot.ID)
	switch {
	case !v.Set || v.Content == "":
		return mutedStyle.Render(placeholder)
	case slot.Kind == display.KindImage:
		return imageStyle.Render("🖼  " + v.Content)
	default:
		return valueStyle.Render(v.Content)
	}
}

func (m *Model) renderFooter() string {
	last := m.board.LastUpdate()
	var updated string
	if last.IsZero() {
		updated = mutedStyle.Render("waiting for data")
	} else {
		updated = mutedStyle.Render("updated " + humanize.RelTime(last, m.now(), "ago", "from now"))
	}

	if m.freshness == nil {
		return updated
	}
	var verdict string
	switch health.StatusOf(m.freshErr) {
	case health.StatusOK:
		verdict = okStyle.Render("● fresh")
	case health.StatusDegraded:
		verdict = warnStyle.Render("● " + m.freshErr.Error())
	default:
		verdict = errorStyle.Render("● " + m.freshErr.Error())
	}
	return updated + "  " + verdict
}

func (m *Model) renderStatuses() string {
	if m.statuses == nil {
		return ""
	}
	var lines []string
	for _, st := range m.statuses() {
		mark := okStyle.Render("✓")
		switch {
		case !st.Running:
			mark = mutedStyle.Render("○")
		case st.LastErrorAt.After(st.LastSuccess):
			mark = errorStyle.Render("✗")
		}
		line := fmt.Sprintf("%s %-8s every %-4s %s cycles, %s failures",
			mark, st.Name, st.Interval, humanize.Comma(st.Cycles), humanize.Comma(st.Failures))
		if !st.LastSuccess.IsZero() {
			line += ", last ok " + humanize.RelTime(st.LastSuccess, m.now(), "ago", "from now")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderErrors() string {
	if len(m.recentErrs) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.recentErrs))
	for _, e := range m.recentErrs {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("%s %s: %v",
			e.At.Format("15:04:05"), e.Poller, e.Err)))
	}
	return strings.Join(lines, "\n")
}

func tickEvery(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange blocks for the next board change. A closed subscription
// ends the chain.
func waitForChange(ch <-chan display.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return changeMsg(change)
	}
}
