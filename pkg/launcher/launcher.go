// Package launcher is the quick-pick surface: a filterable list of
// bookmarklets in usage order that runs the selection in the active tab.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/bookmarklet"
	"tableflip.dev/marklet/pkg/engine"
	"tableflip.dev/marklet/pkg/store"
)

const (
	msgEmpty   = "No bookmarklets yet. Add one with `marklet add`."
	msgRunning = "Running..."
	helpLine   = "type to filter · ↑/↓ move · enter run · ctrl+o options · esc quit"
)

// Watcher reports store changes so the list can refresh.
type Watcher interface {
	Watch(ctx context.Context) (<-chan store.Event, error)
}

type item struct{ b bookmarklet.Bookmarklet }

func (it item) Title() string {
	if it.b.Favorite {
		return "★ " + it.b.Name
	}
	return it.b.Name
}

func (it item) Description() string {
	if len(it.b.Tags) == 0 {
		return "no tags"
	}
	return strings.Join(it.b.Tags, ", ")
}

func (it item) FilterValue() string { return it.b.Name }

// Model is the launcher UI state.
type Model struct {
	svc     *app.Service
	watcher Watcher
	ctx     context.Context
	theme   Theme

	list  list.Model
	input textinput.Model

	query     string
	confirm   bool
	pendingID string
	status    string
	failed    bool

	watchCh     <-chan store.Event
	watchCancel context.CancelFunc

	width, height int
}

// New builds a launcher over svc. watcher may be nil.
func New(ctx context.Context, svc *app.Service, watcher Watcher) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	d := list.NewDefaultDelegate()
	d.SetSpacing(0)

	l := list.New([]list.Item{}, d, 60, 20)
	l.Title = "Bookmarklets"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "Search name or tag"
	ti.CharLimit = 120
	ti.Prompt = "> "
	ti.Focus()

	return &Model{
		svc:     svc,
		watcher: watcher,
		ctx:     ctx,
		theme:   DefaultTheme(),
		list:    l,
		input:   ti,
	}
}

type loadedMsg struct {
	items   []bookmarklet.Bookmarklet
	confirm bool
}

type errMsg struct{ err error }

type ranMsg struct {
	name    string
	outcome engine.Outcome
}

type watchStartedMsg struct {
	ch     <-chan store.Event
	cancel context.CancelFunc
	err    error
}

type watchEventMsg struct{ event store.Event }

type watchStoppedMsg struct{}

// Init loads the list and starts watching the store.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.startWatch())
}

func (m *Model) load() tea.Cmd {
	svc, ctx, query := m.svc, m.ctx, m.query
	return func() tea.Msg {
		if svc == nil {
			return errMsg{fmt.Errorf("launcher: no service configured")}
		}
		items, err := svc.Launcher(ctx, query)
		if err != nil {
			return errMsg{err}
		}
		current, err := svc.Settings.Get(ctx)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg{items: items, confirm: current.ConfirmBeforeRun}
	}
}

func (m *Model) run(b bookmarklet.Bookmarklet) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return ranMsg{name: b.Name, outcome: svc.RunByID(ctx, b.ID)}
	}
}

func (m *Model) openOptions() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		resp := svc.HandleMessage(ctx, app.Request{Type: app.TypeOpenOptions})
		if !resp.OK {
			return errMsg{errors.New(resp.Message)}
		}
		return nil
	}
}

func (m *Model) startWatch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	parent, w := m.ctx, m.watcher
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(parent)
		ch, err := w.Watch(ctx)
		if err != nil {
			cancel()
			return watchStartedMsg{err: err}
		}
		return watchStartedMsg{ch: ch, cancel: cancel}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func (m *Model) stopWatch() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.watchCh = nil
}

func (m *Model) selected() (bookmarklet.Bookmarklet, bool) {
	sel := m.list.SelectedItem()
	if sel == nil {
		return bookmarklet.Bookmarklet{}, false
	}
	it, ok := sel.(item)
	return it.b, ok
}

func (m *Model) setStatus(text string, failed bool) {
	m.status = text
	m.failed = failed
}

// Update handles messages and keybindings.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := msg.Height - 5
		if h < 3 {
			h = 3
		}
		m.list.SetSize(msg.Width, h)
	case errMsg:
		m.setStatus(msg.err.Error(), true)
	case loadedMsg:
		items := make([]list.Item, 0, len(msg.items))
		for _, b := range msg.items {
			items = append(items, item{b: b})
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(items) > 0 && m.list.Index() >= len(items) {
			m.list.Select(0)
		}
		m.confirm = msg.confirm
		if len(items) == 0 && m.query == "" && !m.failed {
			m.setStatus(msgEmpty, false)
		}
	case ranMsg:
		if !msg.outcome.OK {
			m.setStatus(msg.outcome.Message, true)
			break
		}
		status := "Executed " + msg.name
		if msg.outcome.Mode != "" {
			status += fmt.Sprintf(" (%s)", msg.outcome.Mode)
		}
		m.setStatus(status, false)
		cmds = append(cmds, m.load())
	case watchStartedMsg:
		if msg.err != nil {
			m.setStatus("watch: "+msg.err.Error(), true)
			break
		}
		m.stopWatch()
		m.watchCh = msg.ch
		m.watchCancel = msg.cancel
		if cmd := m.waitForWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case watchEventMsg:
		cmds = append(cmds, m.load())
		if cmd := m.waitForWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case watchStoppedMsg:
		m.stopWatch()
		if m.ctx.Err() == nil {
			cmds = append(cmds, m.startWatch())
		}
	case tea.KeyPressMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()

	if m.pendingID != "" {
		switch key {
		case "y", "enter":
			id := m.pendingID
			m.pendingID = ""
			for _, it := range m.list.Items() {
				if b := it.(item).b; b.ID == id {
					m.setStatus(msgRunning, false)
					return m.run(b)
				}
			}
			m.setStatus("Bookmarklet not found.", true)
		case "n", "esc":
			m.pendingID = ""
			m.setStatus("", false)
		}
		return nil
	}

	switch key {
	case "ctrl+c", "esc":
		m.stopWatch()
		return tea.Quit
	case "up", "ctrl+p":
		m.list.CursorUp()
		return nil
	case "down", "ctrl+n":
		m.list.CursorDown()
		return nil
	case "ctrl+o":
		return m.openOptions()
	case "enter":
		b, ok := m.selected()
		if !ok {
			return nil
		}
		if m.confirm {
			m.pendingID = b.ID
			return nil
		}
		m.setStatus(msgRunning, false)
		return m.run(b)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := strings.TrimSpace(m.input.Value()); q != m.query {
		m.query = q
		m.list.Select(0)
		return tea.Batch(cmd, m.load())
	}
	return cmd
}

// View renders the search box, the list and the status line.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("marklet"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.list.View())

	if m.pendingID != "" {
		name := m.pendingID
		if sel, ok := m.selected(); ok && sel.ID == m.pendingID {
			name = sel.Name
		}
		b.WriteString("\n")
		b.WriteString(m.theme.Confirm.Render(fmt.Sprintf("Run %s? (y/n)", name)))
	}

	status := m.theme.Status
	if m.failed {
		status = m.theme.Error
	}
	b.WriteString("\n")
	b.WriteString(status.Render(m.wrap(m.status)))
	b.WriteString("\n")
	b.WriteString(m.theme.Help.Render(helpLine))
	return lipgloss.NewStyle().Padding(0, 1).Render(b.String())
}

// wrap fits text to the window, leaving room for the padding.
func (m *Model) wrap(text string) string {
	if m.width <= 4 {
		return text
	}
	return wordwrap.String(text, m.width-2)
}

// Run starts the launcher program and blocks until it exits.
func Run(ctx context.Context, svc *app.Service, watcher Watcher) error {
	m := New(ctx, svc, watcher)
	defer m.stopWatch()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
