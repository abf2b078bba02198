// Package live provides the Bubble Tea WPM monitor shown by `run --live`.
package live

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hhushhas/fingerpain/internal/daemon"
	"github.com/hhushhas/fingerpain/internal/model"
	"github.com/hhushhas/fingerpain/internal/session"
	"github.com/hhushhas/fingerpain/internal/stats"
)

const (
	// DefaultRefresh is how often the monitor samples the tracker.
	DefaultRefresh = 250 * time.Millisecond
	historyLen     = 120
)

// SessionSource exposes the open typing session.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// CounterSource exposes pipeline counters.
type CounterSource interface {
	Counters() daemon.Counters
}

// ContextSource exposes the application currently in focus.
type ContextSource interface {
	Current() model.ActiveContext
}

// Options configure the monitor. Session is required.
type Options struct {
	Session  SessionSource
	Counters CounterSource
	Context  ContextSource
	// Done closes when the collector stops; the monitor then exits.
	Done    <-chan struct{}
	Refresh time.Duration
	Now     func() time.Time
}

type tickMsg time.Time

type stoppedMsg struct{}

// Model implements the live WPM monitor.
type Model struct {
	opts Options
	keys keyMap
	help help.Model

	snap     session.Snapshot
	counters daemon.Counters
	app      model.ActiveContext
	history  []float64
	now      time.Time
	stopped  bool

	width int
}

// NewModel constructs a monitor model.
func NewModel(opts Options) *Model {
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Model{
		opts: opts,
		keys: defaultKeyMap(),
		help: help.New(),
	}
	m.sample(opts.Now())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitStopped())
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) waitStopped() tea.Cmd {
	if m.opts.Done == nil {
		return nil
	}
	done := m.opts.Done
	return func() tea.Msg {
		<-done
		return stoppedMsg{}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		m.sample(m.opts.Now())
		return m, m.tick()
	case stoppedMsg:
		m.stopped = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reset):
			m.history = m.history[:0]
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) sample(now time.Time) {
	m.now = now
	m.snap = m.opts.Session.Snapshot()
	if m.opts.Counters != nil {
		m.counters = m.opts.Counters.Counters()
	}
	if m.opts.Context != nil {
		m.app = m.opts.Context.Current()
	}
	wpm := 0.0
	if m.snap.Active {
		wpm = m.snap.CurrentWPM
	}
	m.history = append(m.history, wpm)
	if len(m.history) > historyLen {
		m.history = m.history[len(m.history)-historyLen:]
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("fingerpain"))
	b.WriteString("  ")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")
	b.WriteString(m.renderCards())
	b.WriteString("\n")
	b.WriteString(m.renderHistory())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderStatus() string {
	switch {
	case m.stopped:
		return errorStyle.Render("collector stopped")
	case m.snap.Active:
		status := typingStyle.Render("typing")
		if app := m.appLabel(); app != "" {
			status += mutedStyle.Render(" in " + app)
		}
		return status
	default:
		return idleStyle.Render("idle")
	}
}

func (m *Model) appLabel() string {
	if m.app.Name == "" {
		return ""
	}
	if m.app.BrowserDomain != "" {
		return fmt.Sprintf("%s (%s)", m.app.Name, m.app.BrowserDomain)
	}
	return m.app.Name
}

func (m *Model) renderCards() string {
	current, peak := "-", "-"
	duration := "-"
	if m.snap.Active {
		current = fmt.Sprintf("%.0f", m.snap.CurrentWPM)
		peak = fmt.Sprintf("%.0f", m.snap.PeakWPM)
		duration = formatElapsed(m.now.Sub(m.snap.Start))
	}
	cards := []string{
		renderCard("WPM", current),
		renderCard("Peak WPM", peak),
		renderCard("Session", duration),
		renderCard("Chars", stats.FormatCount(m.snap.Chars)),
		renderCard("Words", stats.FormatCount(m.snap.Words)),
	}
	if m.width > 0 && m.width < 60 {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func (m *Model) renderHistory() string {
	values := m.history
	if limit := m.width - 2; limit > 0 && len(values) > limit {
		values = values[len(values)-limit:]
	}
	line := stats.Sparkline(values)
	if strings.TrimSpace(line) == "" {
		return mutedStyle.Render("waiting for keystrokes…")
	}
	return sparkStyle.Render(line)
}

func (m *Model) renderFooter() string {
	c := m.counters
	parts := []string{
		fmt.Sprintf("events %d", c.Events),
		fmt.Sprintf("minutes saved %d", c.Persisted),
	}
	if c.Dropped > 0 {
		parts = append(parts, fmt.Sprintf("dropped %d", c.Dropped))
	}
	if c.Failed > 0 {
		parts = append(parts, fmt.Sprintf("failed writes %d", c.Failed))
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	mnt := int(d%time.Hour) / int(time.Minute)
	sec := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mnt, sec)
	}
	return fmt.Sprintf("%d:%02d", mnt, sec)
}
