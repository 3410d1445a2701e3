package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/econet/internal/econet"
)

// FetchFunc retrieves a fresh parameter record
type FetchFunc func(ctx context.Context) (econet.Params, error)

// Message types for async operations
type fetchResultMsg struct {
	params econet.Params
	err    error
	at     time.Time
}

type pollTickMsg struct {
	gen int
}

// WatchModel polls a controller on an interval and renders its parameters,
// highlighting values that changed on the latest poll.
type WatchModel struct {
	ctx      context.Context
	fetch    FetchFunc
	interval time.Duration

	Controller string // e.g. "boiler (http://192.168.1.50)"

	// Poll state
	Params     econet.Params
	Changed    map[string]bool
	LastUpdate time.Time
	LastErr    error
	Polls      int
	Loading    bool
	Paused     bool
	gen        int

	// UI state
	Width    int
	Height   int
	Offset   int
	ShowHelp bool

	Spinner spinner.Model
	Help    help.Model
	Keys    watchKeyMap
}

// NewWatchModel creates a watch model. fetch is called once at start and
// then every interval.
func NewWatchModel(ctx context.Context, controller string, interval time.Duration, fetch FetchFunc) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return WatchModel{
		ctx:        ctx,
		fetch:      fetch,
		interval:   interval,
		Controller: controller,
		Changed:    map[string]bool{},
		Loading:    true,
		Spinner:    s,
		Help:       help.New(),
		Keys:       newWatchKeyMap(),
	}
}

// Init starts the spinner and the first poll
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.Spinner.Tick, m.fetchCmd())
}

func (m WatchModel) fetchCmd() tea.Cmd {
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		params, err := fetch(ctx)
		return fetchResultMsg{params: params, err: err, at: time.Now()}
	}
}

// scheduleTick arms the next poll. Older ticks are ignored by generation.
func (m *WatchModel) scheduleTick() tea.Cmd {
	m.gen++
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}

// Update handles messages and updates the model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case fetchResultMsg:
		m.Loading = false
		m.Polls++
		if msg.err != nil {
			m.LastErr = msg.err
		} else {
			m.LastErr = nil
			m.Changed = map[string]bool{}
			if m.Params != nil {
				for _, k := range msg.params.Diff(m.Params) {
					m.Changed[k] = true
				}
			}
			m.Params = msg.params
			m.LastUpdate = msg.at
		}
		if m.Paused {
			return m, nil
		}
		cmd := m.scheduleTick()
		return m, cmd

	case pollTickMsg:
		if msg.gen != m.gen || m.Paused || m.Loading {
			return m, nil
		}
		m.Loading = true
		return m, tea.Batch(m.Spinner.Tick, m.fetchCmd())

	case spinner.TickMsg:
		if !m.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m WatchModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Help):
		m.ShowHelp = !m.ShowHelp
		m.Help.ShowAll = m.ShowHelp
		return m, nil

	case key.Matches(msg, m.Keys.Refresh):
		if m.Loading {
			return m, nil
		}
		m.Loading = true
		m.gen++
		return m, tea.Batch(m.Spinner.Tick, m.fetchCmd())

	case key.Matches(msg, m.Keys.Pause):
		m.Paused = !m.Paused
		if m.Paused || m.Loading {
			return m, nil
		}
		cmd := m.scheduleTick()
		return m, cmd

	case key.Matches(msg, m.Keys.Up):
		if m.Offset > 0 {
			m.Offset--
		}
		return m, nil

	case key.Matches(msg, m.Keys.Down):
		if m.Offset < m.maxOffset() {
			m.Offset++
		}
		return m, nil
	}

	return m, nil
}

// visibleRows is the number of parameter rows that fit on screen
func (m WatchModel) visibleRows() int {
	if m.Height <= 0 {
		return len(m.Params)
	}
	rows := m.Height - 9
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m WatchModel) maxOffset() int {
	n := len(m.Params) - m.visibleRows()
	if n < 0 {
		return 0
	}
	return n
}

// View renders the watch screen
func (m WatchModel) View() string {
	width := m.Width
	if width <= 0 {
		width = 80
	}

	sections := []string{
		BuildHeaderContent(m.Controller, width),
		m.renderStatus(),
		"",
		m.renderTable(),
		"",
		m.Help.View(m.Keys),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m WatchModel) renderStatus() string {
	var parts []string

	switch {
	case m.Loading:
		parts = append(parts, m.Spinner.View()+" polling")
	case m.Paused:
		parts = append(parts, "paused")
	default:
		parts = append(parts, fmt.Sprintf("every %s", m.interval))
	}

	if !m.LastUpdate.IsZero() {
		parts = append(parts, "updated "+m.LastUpdate.Format("15:04:05"))
	}
	if len(m.Changed) > 0 {
		parts = append(parts, ChangedValueStyle.Render(fmt.Sprintf("%d changed", len(m.Changed))))
	}

	status := StatusBarStyle.Render(strings.Join(parts, " · "))

	if m.LastErr != nil {
		status += "\n" + ErrorTextStyle.Render("✗ "+econet.GetShortErrorMessage(m.LastErr))
	}
	return status
}

func (m WatchModel) renderTable() string {
	if m.Params == nil {
		return SubtitleStyle.Render("waiting for first poll...")
	}

	keys := m.Params.Keys()
	nameWidth := 0
	for _, k := range keys {
		if len(k) > nameWidth {
			nameWidth = len(k)
		}
	}

	start := m.Offset
	if start > len(keys) {
		start = len(keys)
	}
	end := start + m.visibleRows()
	if end > len(keys) {
		end = len(keys)
	}

	var rows []string
	for _, k := range keys[start:end] {
		name := ParamNameStyle.Render(fmt.Sprintf("%-*s", nameWidth, k))
		valueStyle := ParamValueStyle
		if m.Changed[k] {
			valueStyle = ChangedValueStyle
		}
		rows = append(rows, name+"  "+valueStyle.Render(econet.FormatValue(m.Params[k])))
	}

	footer := SubtitleStyle.Render(fmt.Sprintf("%d-%d of %d parameters", start+1, end, len(keys)))
	if len(keys) == 0 {
		footer = SubtitleStyle.Render("no parameters reported")
	}

	return BoxStyle.Render(strings.Join(rows, "\n")) + "\n" + footer
}

// Run starts the watch program and blocks until the user quits or ctx ends
func Run(ctx context.Context, controller string, interval time.Duration, fetch FetchFunc) error {
	model := NewWatchModel(ctx, controller, interval, fetch)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
