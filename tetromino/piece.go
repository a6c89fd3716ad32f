package tetromino

import (
	"iter"
	"math"
)

// Piece is a live instance of a shape. X is always integral; Y is only
// fractional while a piece is being hard dropped.
type Piece struct {
	Kind     Kind
	Rotation int
	X, Y     float64
}

func New(k Kind) *Piece {
	return &Piece{Kind: k}
}

func (p *Piece) Move(dx, dy float64) {
	p.X += dx
	p.Y += dy
}

// Rotate advances the rotation state by n, which may be negative.
func (p *Piece) Rotate(n int) {
	count := Rotations(p.Kind)
	p.Rotation = ((p.Rotation+n)%count + count) % count
}

func (p *Piece) Cells() iter.Seq[Cell] {
	return Cells(p.Kind, p.Rotation)
}

// Absolute yields the board cells covered by the piece. Fractional
// coordinates are rounded up, which decides the row a dropping piece
// collides on.
func (p *Piece) Absolute() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for c := range p.Cells() {
			abs := Cell{
				X: int(math.Ceil(p.X + float64(c.X))),
				Y: int(math.Ceil(p.Y + float64(c.Y))),
			}
			if !yield(abs) {
				return
			}
		}
	}
}

func (p *Piece) Width() int  { return Width(p.Kind, p.Rotation) }
func (p *Piece) Height() int { return Height(p.Kind, p.Rotation) }
func (p *Piece) Color() Color {
	return catalog[p.Kind].Color
}
