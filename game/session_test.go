package game

import (
	"bytes"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stfacc/tektris/board"
	"github.com/stfacc/tektris/tetromino"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type messages struct {
	board.Renderer
	shown []string
	text  string
}

func (m *messages) ShowMessage(text string) {
	m.text = text
	m.shown = append(m.shown, text)
}

func (m *messages) ClearMessage() { m.text = "" }

func newSession(t *testing.T) (*Session, *messages) {
	t.Helper()
	r := &messages{Renderer: board.Discard()}
	s := New(r,
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithLogger(log.New(io.Discard)),
	)
	return s, r
}

func TestStart(t *testing.T) {
	s, r := newSession(t)

	assert.Equal(t, Ready, s.State())
	assert.Equal(t, MsgReady, r.text)
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, 0, s.Lines())
	assert.Equal(t, 0, s.Score())
	assert.NotNil(t, s.Next())
	assert.NotNil(t, s.Board().Current())
	assert.NotSame(t, s.Next(), s.Board().Current())
}

func TestReadyAcceptsAnyAction(t *testing.T) {
	for _, a := range []Action{AnyKey, Quit, Pause, Restart, Left, HardDrop} {
		s, r := newSession(t)
		assert.Equal(t, Applied, s.Handle(a), a.String())
		assert.Equal(t, Running, s.State(), a.String())
		assert.Empty(t, r.text)
	}
}

func TestRunningMoves(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(AnyKey)

	p := s.Board().Current()
	x := p.X

	require.Equal(t, Applied, s.Handle(Left))
	assert.Equal(t, x-1, p.X)
	require.Equal(t, Applied, s.Handle(Right))
	require.Equal(t, Applied, s.Handle(Right))
	assert.Equal(t, x+1, p.X)

	require.Equal(t, Applied, s.Handle(SoftDrop))
	assert.Equal(t, 1.0, p.Y)
	s.Tick()
	assert.Equal(t, 2.0, p.Y)

	assert.Equal(t, Ignored, s.Handle(Restart))
	assert.Equal(t, Running, s.State())
}

func TestPause(t *testing.T) {
	s, r := newSession(t)
	s.Handle(AnyKey)
	p := s.Board().Current()

	require.Equal(t, Applied, s.Handle(Pause))
	assert.Equal(t, Paused, s.State())
	assert.Equal(t, MsgPaused, r.text)

	y, x, rot := p.Y, p.X, p.Rotation
	for _, a := range []Action{Left, Right, Rotate, SoftDrop, HardDrop, Restart, AnyKey} {
		assert.Equal(t, Ignored, s.Handle(a), a.String())
	}
	s.Tick()
	assert.Equal(t, y, p.Y)
	assert.Equal(t, x, p.X)
	assert.Equal(t, rot, p.Rotation)
	assert.Equal(t, Paused, s.State())

	assert.Equal(t, Exit, s.Handle(Quit))

	require.Equal(t, Applied, s.Handle(Pause))
	assert.Equal(t, Running, s.State())
	assert.Empty(t, r.text)
}

func TestGravityLocksAndSpawns(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(AnyKey)

	first := s.Board().Current()
	next := s.Next()
	for s.Board().Current() == first {
		s.Tick()
	}

	assert.Same(t, next, s.Board().Current())
	assert.NotSame(t, next, s.Next())
	assert.Equal(t, 0.0, s.Board().Current().Y)
	assert.Equal(t, Running, s.State())
}

func TestHardDrop(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(AnyKey)
	first := s.Board().Current()
	next := s.Next()

	require.Equal(t, Animate, s.Handle(HardDrop))
	assert.Equal(t, Animating, s.State())

	for _, a := range []Action{Left, Right, Rotate, SoftDrop, HardDrop, Pause, Quit} {
		assert.Equal(t, Ignored, s.Handle(a), a.String())
	}
	y := first.Y
	s.Tick()
	assert.Equal(t, y, first.Y, "gravity is ignored while animating")

	frames := 0
	for s.Animate() {
		frames++
		require.Less(t, frames, 2*board.Height)
	}

	assert.Equal(t, Running, s.State())
	assert.Same(t, next, s.Board().Current())
	assert.Equal(t, float64(board.Height-first.Height()), first.Y)
	assert.False(t, s.Animate())
}

func TestFourLines(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(AnyKey)

	b := s.Board()
	for y := board.Height - 4; y < board.Height; y++ {
		for x := range board.Width - 1 {
			b.Fill(x, y, "#fff")
		}
	}

	p := b.Current()
	p.Kind, p.Rotation = tetromino.I, 1
	p.X, p.Y = board.Width-2, 0
	require.True(t, b.CanPlace())

	level := s.Level()
	require.Equal(t, Animate, s.Handle(HardDrop))
	for s.Animate() {
	}

	assert.Equal(t, 4, s.Lines())
	assert.Equal(t, (level+1)*1200, s.Score())
	assert.Equal(t, 1, s.Level())
}

func TestLevelUp(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(AnyKey)
	s.lines = 9

	b := s.Board()
	for x := range board.Width - 2 {
		b.Fill(x, board.Height-1, "#fff")
	}
	p := b.Current()
	p.Kind, p.Rotation = tetromino.O, 0
	p.X, p.Y = board.Width-2, 0
	require.True(t, b.CanPlace())

	s.Handle(HardDrop)
	for s.Animate() {
	}

	assert.Equal(t, 10, s.Lines())
	assert.Equal(t, 2, s.Level())
	assert.Equal(t, 80, s.Score())
	assert.Equal(t, DropInterval(2), s.DropInterval())
}

func TestLossAndRestart(t *testing.T) {
	s, r := newSession(t)
	s.Handle(AnyKey)

	b := s.Board()
	for x := 1; x < board.Width; x++ {
		b.Fill(x, 2, "#fff")
	}

	// pieces stack up in the middle columns until one can't spawn
	for s.State() == Running {
		s.Tick()
	}
	require.Equal(t, Lost, s.State())
	assert.Equal(t, MsgGameOver, r.text)
	assert.Nil(t, b.Current())

	for _, a := range []Action{Left, Right, Rotate, SoftDrop, HardDrop, Pause, AnyKey} {
		assert.Equal(t, Ignored, s.Handle(a), a.String())
	}
	s.Tick()
	assert.Equal(t, Lost, s.State())
	assert.Equal(t, Exit, s.Handle(Quit))

	require.Equal(t, Applied, s.Handle(Restart))
	assert.Equal(t, Ready, s.State())
	assert.Equal(t, MsgReady, r.text)
	assert.Equal(t, 1, s.Level())
	assert.Equal(t, 0, s.Score())
	for x := range board.Width {
		assert.False(t, b.Occupied(x, 2))
	}
}

func TestSessionsWithoutRendererAreIndependent(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := New(nil,
				WithRand(rand.New(rand.NewPCG(uint64(i), 1))),
				WithLogger(log.New(io.Discard)),
			)
			s.Handle(AnyKey)
			for range 200 {
				s.Tick()
			}
		}()
	}
	wg.Wait()
}

func TestLockIsLogged(t *testing.T) {
	var buf bytes.Buffer
	s := New(board.Discard(),
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})),
	)
	s.Handle(AnyKey)

	for s.Board().Current() != nil && !strings.Contains(buf.String(), "locked") {
		s.Tick()
	}
	assert.Contains(t, buf.String(), "locked")
	assert.Contains(t, buf.String(), "kind=")
}
