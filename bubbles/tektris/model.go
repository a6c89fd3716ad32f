package tektris

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	overlay "github.com/rmhubbert/bubbletea-overlay"
	"github.com/stfacc/tektris/board"
	"github.com/stfacc/tektris/config"
	"github.com/stfacc/tektris/game"
	"github.com/stfacc/tektris/repeat"
	"github.com/stfacc/tektris/timer"
	"github.com/stfacc/tektris/unsafering"
)

const historySize = 16

type tableView struct {
	board string
	side  string
}

var _ table.Data = tableView{}

func (t tableView) At(row, col int) string {
	switch col {
	case 0:
		return t.board
	case 1:
		return t.side
	default:
		return ""
	}
}

func (t tableView) Rows() int    { return 1 }
func (t tableView) Columns() int { return 2 }

// Model plays a single game of tektris in a terminal. Terminals only report
// key presses, so a key counts as held until another key is pressed or no
// press of it arrives within the release timeout.
type Model struct {
	b strings.Builder

	keys   KeyMap
	help   help.Model
	styles *Styles

	canvas  *canvas
	session *game.Session

	repeater  *repeat.Repeater[game.Action]
	gravity   *timer.Timer
	animation *timer.Timer
	release   *timer.Timer

	releaseTimeout time.Duration

	history *unsafering.Buffer[game.Action]

	table *table.Table
	tableView

	player string
	debug  bool

	width, height int
}

var _ tea.Model = &Model{}

type Option func(*Model)

// WithRenderer sets the lipgloss renderer of the session's terminal.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) { m.styles = NewStyles(r) }
}

func WithKeys(k config.Keys) Option {
	return func(m *Model) { m.keys = NewKeyMap(k) }
}

func WithReleaseTimeout(d time.Duration) Option {
	return func(m *Model) { m.releaseTimeout = d }
}

func WithPlayer(name string) Option {
	return func(m *Model) { m.player = name }
}

func WithGameOptions(opts ...game.Option) Option {
	return func(m *Model) { m.session = game.New(m.canvas, opts...) }
}

func New(opts ...Option) *Model {
	m := &Model{
		keys:   NewKeyMap(config.DefaultKeys()),
		help:   help.New(),
		canvas: newCanvas(),

		repeater:  repeat.New[game.Action]("repeat"),
		gravity:   timer.New("gravity"),
		animation: timer.New("animation"),
		release:   timer.New("release"),

		releaseTimeout: config.Default().ReleaseTimeout,
		history:        unsafering.New[game.Action](historySize),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.styles == nil {
		m.styles = NewStyles(nil)
	}
	if m.session == nil {
		m.session = game.New(m.canvas)
	}

	m.table = table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(m.styles.r.NewStyle().Foreground(GridColor))
	return m
}

func (m *Model) Session() *game.Session { return m.session }

func (m *Model) Init() tea.Cmd {
	return m.gravity.After(m.session.DropInterval())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ForceQuit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Debug):
			m.debug = !m.debug
			return m, nil
		}
		return m, m.keyDown(m.keys.Action(msg.String()))

	case timer.Msg:
		return m, m.updateTimers(msg)
	}

	return m, nil
}

// keyDown feeds a press to the repeater. A press of a different key releases
// the held one first.
func (m *Model) keyDown(a game.Action) tea.Cmd {
	if held, ok := m.repeater.Held(); ok && held != a {
		m.repeater.KeyUp()
	}
	// The release timeout is shorter than the repeater's first delay, so a
	// tap dispatches once. A held key keeps its stream only while the
	// terminal's own auto repeat outpaces the timeout.
	return tea.Batch(
		m.repeater.KeyDown(a),
		m.release.After(m.releaseTimeout),
	)
}

func (m *Model) updateTimers(msg timer.Msg) tea.Cmd {
	switch {
	case m.gravity.Fired(msg):
		m.session.Tick()
		return m.gravity.After(m.session.DropInterval())

	case m.animation.Fired(msg):
		if m.session.Animate() {
			return m.animation.After(game.AnimationInterval)
		}
		return nil

	case m.release.Fired(msg):
		m.repeater.KeyUp()
		return nil

	case m.repeater.Owns(msg):
		a, ok, next := m.repeater.Update(msg)
		if !ok {
			return nil
		}
		return m.dispatch(a, next)
	}
	return nil
}

func (m *Model) dispatch(a game.Action, next tea.Cmd) tea.Cmd {
	m.history.Push(a)

	switch m.session.Handle(a) {
	case game.Exit:
		m.repeater.KeyUp()
		m.release.Cancel()
		return tea.Quit
	case game.Animate:
		return tea.Batch(next, m.animation.After(game.AnimationInterval))
	}
	return next
}

func (m *Model) View() string {
	m.b.Reset()
	m.canvas.render(&m.b, m.styles)
	m.tableView.board = m.b.String()

	m.b.Reset()
	m.viewSide(&m.b)
	m.tableView.side = m.b.String()

	m.table.Data(m.tableView)
	v := m.table.Render()

	if m.canvas.message != "" {
		box := m.styles.Message.Render(m.canvas.message)
		// center the box over the board column, inside the table border
		x := 1 + (board.Width*lipgloss.Width(FilledBlock)-lipgloss.Width(box))/2
		v = overlay.New(text(box), text(v), overlay.Left, overlay.Center, max(x, 0), 0).View()
	}

	m.b.Reset()
	m.b.WriteString(v)
	m.b.WriteString("\n")
	m.b.WriteString(m.help.View(m.keys))
	if m.debug {
		m.b.WriteString("\n")
		m.viewDebug(&m.b)
	}

	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.b.String())
	}
	return m.b.String()
}

func (m *Model) viewSide(w io.Writer) {
	s := m.styles

	fmt.Fprintln(w, s.Label.Render("NEXT"))
	renderPreview(w, m.session.Next(), s)
	fmt.Fprintln(w)

	counters := []struct {
		label string
		value int
	}{
		{"LEVEL", m.session.Level()},
		{"LINES", m.session.Lines()},
		{"SCORE", m.session.Score()},
	}
	for _, c := range counters {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Label.Render(c.label))
		fmt.Fprint(w, s.Value.Render(fmt.Sprint(c.value)))
		fmt.Fprintln(w)
	}

	if m.player != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Label.Render("PLAYER"))
		fmt.Fprint(w, s.Value.Render(m.player))
	}
}

func (m *Model) viewDebug(w io.Writer) {
	actions := make([]string, 0, m.history.Len())
	for a := range m.history.All() {
		actions = append(actions, a.String())
	}
	held, ok := m.repeater.Held()
	heldName := "-"
	if ok {
		heldName = held.String()
	}
	fmt.Fprint(w, m.styles.Debug.Render(fmt.Sprintf(
		"state=%s held=%s gravity=%s actions=[%s]",
		m.session.State(), heldName, m.session.DropInterval(), strings.Join(actions, " "),
	)))
}
