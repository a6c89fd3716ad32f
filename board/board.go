package board

import (
	"github.com/stfacc/tektris/tetromino"
)

const (
	Width  = 10
	Height = 20
)

// Board is the authority on piece placement. It owns the locked cells and
// the piece currently falling, if any.
type Board struct {
	r Renderer

	cells [Width][Height]Handle

	current    *tetromino.Piece
	currentIds []Handle
}

func New(r Renderer) *Board {
	if r == nil {
		r = Discard()
	}
	b := &Board{r: r, currentIds: make([]Handle, 0, 4)}
	b.Reset()
	return b
}

func (b *Board) Reset() {
	for x := range b.cells {
		for y := range b.cells[x] {
			if h := b.cells[x][y]; h != 0 {
				b.r.Erase(h)
			}
			b.cells[x][y] = 0
		}
	}
	b.eraseCurrent()
	b.current = nil
	b.r.DrawGridLines(Width, Height)
}

func (b *Board) Current() *tetromino.Piece {
	return b.current
}

func (b *Board) Occupied(x, y int) bool {
	return b.cells[x][y] != 0
}

// Fill locks a single cell directly, bypassing any piece.
func (b *Board) Fill(x, y int, c tetromino.Color) {
	if b.cells[x][y] != 0 {
		return
	}
	b.cells[x][y] = b.r.DrawCell(float64(x), float64(y), c)
}

// SetCurrent centers p at the top of the board. It reports false, leaving
// the board without a current piece, when p does not fit.
func (b *Board) SetCurrent(p *tetromino.Piece) bool {
	p.X = float64((Width - p.Width()) / 2)
	p.Y = 0

	b.eraseCurrent()
	b.current = p
	if !b.CanPlace() {
		b.current = nil
		return false
	}

	b.drawCurrent()
	return true
}

func (b *Board) CanPlace() bool {
	if b.current == nil {
		return false
	}
	for c := range b.current.Absolute() {
		if c.X < 0 || c.X >= Width || c.Y < 0 || c.Y >= Height {
			return false
		}
		if b.cells[c.X][c.Y] != 0 {
			return false
		}
	}
	return true
}

func (b *Board) MoveCurrent(dx, dy float64) bool {
	if b.current == nil {
		return false
	}

	b.current.Move(dx, dy)
	if !b.CanPlace() {
		b.current.Move(-dx, -dy)
		return false
	}
	b.drawCurrent()
	return true
}

func (b *Board) RotateCurrent() bool {
	if b.current == nil {
		return false
	}

	b.current.Rotate(1)
	if !b.CanPlace() {
		b.current.Rotate(-1)
		return false
	}
	b.drawCurrent()
	return true
}

// LockCurrent commits the current piece to the grid using the handles of its
// last draw. No piece is current afterwards.
func (b *Board) LockCurrent() {
	if b.current == nil {
		return
	}

	i := 0
	for c := range b.current.Absolute() {
		b.cells[c.X][c.Y] = b.currentIds[i]
		i++
	}
	b.current = nil
	b.currentIds = b.currentIds[:0]
}

// RemoveCompleteLines sweeps the rows top to bottom. Each complete row is
// erased and everything above it shifts down one row before the sweep
// continues.
func (b *Board) RemoveCompleteLines() int {
	completed := 0
	for y := range Height {
		if !b.complete(y) {
			continue
		}
		completed++

		for x := range Width {
			b.r.Erase(b.cells[x][y])
			for l := y; l > 0; l-- {
				b.cells[x][l] = b.cells[x][l-1]
				if h := b.cells[x][l]; h != 0 {
					b.r.ShiftDown(h, 1)
				}
			}
			b.cells[x][0] = 0
		}
	}
	return completed
}

func (b *Board) complete(y int) bool {
	for x := range Width {
		if b.cells[x][y] == 0 {
			return false
		}
	}
	return true
}

func (b *Board) drawCurrent() {
	b.eraseCurrent()
	color := b.current.Color()
	for c := range b.current.Cells() {
		id := b.r.DrawCell(b.current.X+float64(c.X), b.current.Y+float64(c.Y), color)
		b.currentIds = append(b.currentIds, id)
	}
}

func (b *Board) eraseCurrent() {
	for _, id := range b.currentIds {
		b.r.Erase(id)
	}
	b.currentIds = b.currentIds[:0]
}
