// Package tui browses a schedule dataset in the terminal. Key events become
// view.Controller triggers; the bubbletea event loop serializes them, so the
// controller needs no locking.
package tui

import (
	"context"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/examgrid/internal/view"
)

// Loader produces the dataset to browse. It runs off the event loop.
type Loader func(ctx context.Context) (*view.Dataset, error)

// loadedMsg carries a finished load back to the event loop.
type loadedMsg struct {
	token uint64
	ds    *view.Dataset
	err   error
}

type inputMode int

const (
	modeBrowse inputMode = iota
	modeFilter
	modeJump
)

// Model is the bubbletea model of the browser.
type Model struct {
	ctx   context.Context
	ctrl  *view.Controller
	load  Loader
	title string
	empty string

	frame   view.Frame
	loading bool
	token   uint64
	err     error

	mode   inputMode
	filter string
	jump   string

	width    int
	height   int
	quitting bool
	styles   styles
}

// New returns a model that loads its dataset with load on Init.
func New(ctx context.Context, title string, opts view.Options, load Loader) *Model {
	empty := opts.Labels.Empty
	if empty == "" {
		empty = view.DefaultLabels.Empty
	}
	return &Model{
		ctx:    ctx,
		ctrl:   view.NewController(opts),
		load:   load,
		title:  title,
		empty:  empty,
		styles: defaultStyles(),
	}
}

// Run opens the browser full screen and blocks until the user quits.
func Run(ctx context.Context, title string, opts view.Options, load Loader) error {
	p := tea.NewProgram(New(ctx, title, opts, load), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init starts the first load.
func (m *Model) Init() tea.Cmd {
	return m.startLoad()
}

// startLoad begins an async load. Only the completion carrying the newest
// token is applied.
func (m *Model) startLoad() tea.Cmd {
	m.token = m.ctrl.BeginLoad()
	m.loading = true
	token, load, ctx := m.token, m.load, m.ctx
	return func() tea.Msg {
		ds, err := load(ctx)
		return loadedMsg{token: token, ds: ds, err: err}
	}
}

// Frame returns the frame currently on screen.
func (m *Model) Frame() view.Frame {
	return m.frame
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case loadedMsg:
		m.handleLoaded(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleLoaded(msg loadedMsg) {
	f, ok, err := m.ctrl.Complete(m.ctx, msg.token, msg.ds, msg.err)
	if !ok {
		return
	}
	m.loading = false
	m.apply(f, err)

	// A query typed while loading applies once the data arrives.
	if m.filter != f.State.FilterQuery && m.ctrl.Dataset() != nil {
		m.apply(m.ctrl.SetFilter(m.ctx, m.filter))
	}
	m.filter = m.frame.State.FilterQuery
}

func (m *Model) apply(f view.Frame, err error) {
	m.err = err
	if err == nil {
		m.frame = f
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case modeFilter:
		m.handleFilterKey(msg)
		return m, nil
	case modeJump:
		m.handleJumpKey(msg)
		return m, nil
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.mode = modeFilter
	case "r":
		return m, m.startLoad()
	case "left", "h", "p":
		m.navigate(view.Prev())
	case "right", "l", "n":
		m.navigate(view.Next())
	case "home", "g":
		m.navigate(view.First())
	case "end", "G":
		m.navigate(view.Last())
	case "esc":
		if m.filter != "" {
			m.setFilter("")
		}
	default:
		if isDigit(msg) {
			m.mode = modeJump
			m.jump = string(msg.Runes)
		}
	}
	return m, nil
}

// handleFilterKey edits the query. Every change re-filters and resets the
// page to 1.
func (m *Model) handleFilterKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBrowse
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.setFilter("")
	case tea.KeyBackspace:
		if r := []rune(m.filter); len(r) > 0 {
			m.setFilter(string(r[:len(r)-1]))
		}
	case tea.KeySpace:
		m.setFilter(m.filter + " ")
	case tea.KeyRunes:
		m.setFilter(m.filter + string(msg.Runes))
	}
}

// handleJumpKey collects a page number; enter jumps to it.
func (m *Model) handleJumpKey(msg tea.KeyMsg) {
	switch {
	case msg.Type == tea.KeyEnter:
		if n, err := strconv.Atoi(m.jump); err == nil {
			m.navigate(view.JumpTo(n))
		}
		m.mode, m.jump = modeBrowse, ""
	case msg.Type == tea.KeyEsc:
		m.mode, m.jump = modeBrowse, ""
	case msg.Type == tea.KeyBackspace:
		if len(m.jump) > 0 {
			m.jump = m.jump[:len(m.jump)-1]
		}
		if m.jump == "" {
			m.mode = modeBrowse
		}
	case isDigit(msg):
		m.jump += string(msg.Runes)
	}
}

func (m *Model) setFilter(q string) {
	m.filter = q
	if m.ctrl.Dataset() == nil {
		return
	}
	m.apply(m.ctrl.SetFilter(m.ctx, q))
}

func (m *Model) navigate(a view.PageAction) {
	if m.ctrl.Dataset() == nil {
		return
	}
	m.apply(m.ctrl.Navigate(m.ctx, a))
}

func isDigit(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 {
		return false
	}
	return msg.Runes[0] >= '0' && msg.Runes[0] <= '9'
}
