// game implements the tektris rules: the session state machine, scoring,
// leveling and the next piece pipeline. A Session is driven by discrete,
// non-overlapping calls (actions and timer ticks) and is not safe for
// concurrent use.
package game

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stfacc/tektris/board"
	"github.com/stfacc/tektris/tetromino"
)

const (
	MsgReady    = "Press any key\nto start"
	MsgPaused   = "PAUSE"
	MsgGameOver = "GAME OVER"
)

type Session struct {
	r     board.Renderer
	board *board.Board
	rand  *rand.Rand
	log   *log.Logger

	state State
	level int
	lines int
	score int

	next *tetromino.Piece
}

type Option func(*Session)

func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rand = r }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New creates a session and starts it in the Ready state.
func New(r board.Renderer, opts ...Option) *Session {
	if r == nil {
		r = board.Discard()
	}
	s := &Session{r: r}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if s.log == nil {
		s.log = log.Default()
	}
	s.board = board.New(r)
	s.Start()
	return s
}

func (s *Session) State() State                { return s.state }
func (s *Session) Level() int                  { return s.level }
func (s *Session) Lines() int                  { return s.lines }
func (s *Session) Score() int                  { return s.score }
func (s *Session) Next() *tetromino.Piece      { return s.next }
func (s *Session) Board() *board.Board         { return s.board }
func (s *Session) DropInterval() time.Duration { return DropInterval(s.level) }

// Start resets the board and counters and waits for any key. The first
// piece is spawned right away so it shows behind the start message.
func (s *Session) Start() {
	s.state = Ready

	s.board.Reset()
	s.r.ShowMessage(MsgReady)
	s.level = 1
	s.lines = 0
	s.score = 0

	s.next = s.newPiece()
	s.spawn()
}

func (s *Session) Handle(a Action) Outcome {
	if s.state == Ready {
		s.state = Running
		s.r.ClearMessage()
		return Applied
	}

	switch a {
	case Quit:
		if s.state == Animating {
			return Ignored
		}
		return Exit
	case Pause:
		return s.pause()
	case Restart:
		return s.restart()
	case Left:
		return s.move(-1)
	case Right:
		return s.move(1)
	case Rotate:
		if s.state != Running {
			return Ignored
		}
		s.board.RotateCurrent()
		return Applied
	case SoftDrop:
		return s.drop()
	case HardDrop:
		if s.state != Running {
			return Ignored
		}
		s.state = Animating
		return Animate
	}
	return Ignored
}

// Tick is the gravity step. It is a no-op unless the game is running.
func (s *Session) Tick() {
	s.drop()
}

// Animate advances a hard drop by one frame and reports whether another
// frame is needed.
func (s *Session) Animate() bool {
	if s.state != Animating {
		return false
	}

	if s.board.MoveCurrent(0, AnimationStep) {
		return true
	}

	s.lock()
	s.state = Running
	s.postDrop()
	return false
}

func (s *Session) restart() Outcome {
	if s.state != Lost {
		return Ignored
	}
	s.Start()
	return Applied
}

func (s *Session) pause() Outcome {
	switch s.state {
	case Running:
		s.state = Paused
		s.r.ShowMessage(MsgPaused)
	case Paused:
		s.state = Running
		s.r.ClearMessage()
	default:
		return Ignored
	}
	return Applied
}

func (s *Session) move(dx float64) Outcome {
	if s.state != Running {
		return Ignored
	}
	s.board.MoveCurrent(dx, 0)
	return Applied
}

func (s *Session) drop() Outcome {
	if s.state != Running {
		return Ignored
	}

	if !s.board.MoveCurrent(0, 1) {
		s.lock()
	}
	s.postDrop()
	return Applied
}

func (s *Session) lock() {
	if p := s.board.Current(); p != nil {
		s.log.Debug("locked", "kind", p.Kind, "x", p.X, "y", p.Y, "rotation", p.Rotation)
	}
	s.board.LockCurrent()
}

func (s *Session) postDrop() {
	completed := s.board.RemoveCompleteLines()
	s.lines += completed
	s.score += PointsFor(s.level, completed)

	level := LevelFor(s.lines)
	if completed > 0 {
		s.log.Debug("lines cleared", "count", completed, "lines", s.lines, "score", s.score)
	}
	if level != s.level {
		s.log.Debug("level up", "level", level)
	}
	s.level = level

	if s.board.Current() != nil {
		return
	}
	if !s.spawn() {
		s.state = Lost
		s.r.ShowMessage(MsgGameOver)
		s.log.Debug("game over", "level", s.level, "lines", s.lines, "score", s.score)
	}
}

// spawn makes the next piece current and picks a new next piece.
func (s *Session) spawn() bool {
	if !s.board.SetCurrent(s.next) {
		return false
	}
	s.next = s.newPiece()
	return true
}

func (s *Session) newPiece() *tetromino.Piece {
	return tetromino.New(tetromino.RandomKind(s.rand))
}
