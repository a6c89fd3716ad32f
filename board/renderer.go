package board

import "github.com/stfacc/tektris/tetromino"

// Handle identifies a drawn cell. The zero Handle is never returned by a
// Renderer and marks an empty board cell.
type Handle uint64

// Renderer is the drawing surface a Board and a game session drive. Cells
// are addressed in board coordinates; y may be fractional during a hard drop.
type Renderer interface {
	DrawCell(x, y float64, c tetromino.Color) Handle
	Erase(h Handle)
	ShiftDown(h Handle, rows int)

	ShowMessage(text string)
	ClearMessage()

	DrawGridLines(width, height int)
}

// Discard returns a Renderer that draws nothing. Its handles are unique
// among the handles it returns.
func Discard() Renderer {
	return &discard{}
}

type discard struct {
	last Handle
}

func (d *discard) DrawCell(float64, float64, tetromino.Color) Handle {
	d.last++
	return d.last
}

func (*discard) Erase(Handle)           {}
func (*discard) ShiftDown(Handle, int)  {}
func (*discard) ShowMessage(string)     {}
func (*discard) ClearMessage()          {}
func (*discard) DrawGridLines(int, int) {}
