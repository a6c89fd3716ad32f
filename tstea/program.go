// tstea runs a bubbletea program per ssh session or gotty websocket. When a
// tailscale client is available the player is identified with WhoIs.
package tstea

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/creack/pty"
	"github.com/ghthor/gotty/v2/server"
	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
	"tailscale.com/client/local"
)

// Profile is the color profile of remote terminals.
const Profile = termenv.ANSI256

// Conn describes the terminal a model is created for.
type Conn struct {
	Player     string
	RemoteAddr net.Addr
	Term       string
	Width      int
	Height     int
	Renderer   *lipgloss.Renderer
}

type NewModel func(context.Context, Conn) tea.Model
type NewTeaProgram func(context.Context, tea.Model, ...tea.ProgramOption) *tea.Program

// NewProgram runs m in the alternate screen until ctx is done.
func NewProgram(ctx context.Context, m tea.Model, opts ...tea.ProgramOption) *tea.Program {
	return tea.NewProgram(m, append(opts, tea.WithContext(ctx), tea.WithAltScreen())...)
}

// playerName returns the tailscale login of addr, or fallback without a
// tailscale client.
func playerName(ctx context.Context, lc *local.Client, addr net.Addr, fallback string) (string, error) {
	if lc == nil {
		return fallback, nil
	}
	who, err := lc.WhoIs(ctx, addr.String())
	if err != nil {
		return "", err
	}
	return who.UserProfile.LoginName, nil
}

// joinContext is done when either ctx1 or ctx2 is.
func joinContext(ctx1, ctx2 context.Context) (context.Context, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(context.Background())

	go func() {
		select {
		case <-ctx1.Done():
			cancel(context.Cause(ctx1))
		case <-ctx2.Done():
			cancel(context.Cause(ctx2))
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// WishMiddleware starts a program for every ssh session with an active pty.
// lc may be nil, the ssh user is the player then.
func WishMiddleware(ctx context.Context, lc *local.Client, newModel NewModel, newProg NewTeaProgram) wish.Middleware {
	teaHandler := func(s ssh.Session) *tea.Program {
		player, err := playerName(s.Context(), lc, s.RemoteAddr(), s.User())
		if err != nil {
			wish.Fatalln(s, "tailscale WhoIs error: ", err)
			return nil
		}

		pty, _, active := s.Pty()
		if !active {
			wish.Fatalln(s, "no active terminal, skipping")
			return nil
		}

		progCtx, _ := joinContext(ctx, s.Context())
		m := newModel(progCtx, Conn{
			Player:     player,
			RemoteAddr: s.RemoteAddr(),
			Term:       pty.Term,
			Width:      pty.Window.Width,
			Height:     pty.Window.Height,
			Renderer:   bubbletea.MakeRenderer(s),
		})
		log.Info("game started", "player", player, "raddr", s.RemoteAddr().String(), "term", pty.Term)
		return newProg(progCtx, m, bubbletea.MakeOptions(s)...)
	}
	return bubbletea.MiddlewareWithProgramHandler(teaHandler, Profile)
}

type TeaTYFactory struct {
	ctx context.Context
	ts  *local.Client

	newModel NewModel
	newProg  NewTeaProgram
}

// NewTeaTYFactory creates gotty slaves running a program on a fresh pty. ts
// may be nil, the remote address is the player then.
func NewTeaTYFactory(ctx context.Context, ts *local.Client, newModel NewModel, newProg NewTeaProgram) *TeaTYFactory {
	return &TeaTYFactory{
		ctx: ctx,
		ts:  ts,

		newModel: newModel,
		newProg:  newProg,
	}
}

var _ server.Factory = &TeaTYFactory{}

func (*TeaTYFactory) Name() string { return "TeaTYFactory" }

func (f *TeaTYFactory) New(ctx context.Context, params map[string][]string, conn *websocket.Conn) (server.Slave, error) {
	ctx, cancel := joinContext(f.ctx, ctx)

	player, err := playerName(ctx, f.ts, conn.RemoteAddr(), conn.RemoteAddr().String())
	if err != nil {
		cancel(err)
		return nil, err
	}

	p, t, err := pty.Open()
	if err != nil {
		cancel(err)
		return nil, fmt.Errorf("failed to pty.Open(): %w", err)
	}

	m := f.newModel(ctx, Conn{
		Player:     player,
		RemoteAddr: conn.RemoteAddr(),
		Term:       "xterm-256color",
		Renderer:   lipgloss.NewRenderer(t, termenv.WithProfile(Profile)),
	})
	prog := f.newProg(ctx, m,
		tea.WithInput(t),
		tea.WithOutput(t),
	)
	log.Info("web game started", "player", player, "raddr", conn.RemoteAddr().String())

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer func() {
			t.Close()
			p.Close()
			conn.Close()
		}()

		_, err := prog.Run()
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, tea.ErrProgramKilled) {
			cancel(err)
			return err
		}

		return nil
	})

	return &TeaTYProgram{
		ctx: grpCtx,
		pty: p,
		tty: t,

		grp:     grp,
		program: prog,
	}, nil
}

type TeaTYProgram struct {
	ctx context.Context

	pty, tty *os.File

	grp     *errgroup.Group
	program *tea.Program
}

var _ server.Slave = &TeaTYProgram{}

func (t *TeaTYProgram) Read(p []byte) (n int, err error) {
	return t.pty.Read(p)
}

func (t *TeaTYProgram) Write(p []byte) (n int, err error) {
	return t.pty.Write(p)
}

func (t *TeaTYProgram) Close() error {
	t.tty.Close()
	t.pty.Close()
	t.program.Quit()
	return t.grp.Wait()
}

func (t *TeaTYProgram) WindowTitleVariables() map[string]any {
	return map[string]any{"command": "tektris"}
}

// ResizeTerminal resizes both ends of the pty, retrying while the program is
// still starting up, then tells the program about the new size.
func (t *TeaTYProgram) ResizeTerminal(width, height int) error {
	size := &pty.Winsize{
		Cols: uint16(width),
		Rows: uint16(height),
	}
	_, err := backoff.Retry(t.ctx, func() (struct{}, error) {
		return struct{}{}, errors.Join(
			pty.Setsize(t.pty, size),
			pty.Setsize(t.tty, size),
		)
	},
		backoff.WithBackOff(resizeBackOff()),
		backoff.WithMaxElapsedTime(2*time.Second),
		backoff.WithNotify(func(err error, d time.Duration) {
			log.Warn("pty resize", "error", err, "retrying", d)
		}),
	)
	if err != nil {
		log.Warn("pty resize retry exhausted", "error", err)
		return err
	}
	t.program.Send(tea.WindowSizeMsg{
		Width:  width,
		Height: height,
	})
	return nil
}

func resizeBackOff() *backoff.ExponentialBackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     10 * time.Millisecond,
		RandomizationFactor: 0.0,
		Multiplier:          1.1,
		MaxInterval:         500 * time.Millisecond,
	}
}
