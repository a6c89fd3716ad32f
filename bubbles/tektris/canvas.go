package tektris

import (
	"io"
	"math"
	"strings"

	"github.com/stfacc/tektris/board"
	"github.com/stfacc/tektris/tetromino"
)

type sprite struct {
	x, y  float64
	color tetromino.Color
}

// canvas is a retained mode board.Renderer. Drawn cells are kept by handle
// until erased and composed into text by render.
type canvas struct {
	width, height int
	grid          bool

	last    board.Handle
	sprites map[board.Handle]sprite

	message string
}

var _ board.Renderer = &canvas{}

func newCanvas() *canvas {
	return &canvas{
		width:   board.Width,
		height:  board.Height,
		sprites: make(map[board.Handle]sprite, board.Width*board.Height),
	}
}

func (c *canvas) DrawCell(x, y float64, color tetromino.Color) board.Handle {
	c.last++
	c.sprites[c.last] = sprite{x: x, y: y, color: color}
	return c.last
}

func (c *canvas) Erase(h board.Handle) {
	delete(c.sprites, h)
}

func (c *canvas) ShiftDown(h board.Handle, rows int) {
	s, ok := c.sprites[h]
	if !ok {
		return
	}
	s.y += float64(rows)
	c.sprites[h] = s
}

func (c *canvas) ShowMessage(text string) { c.message = text }
func (c *canvas) ClearMessage()           { c.message = "" }

func (c *canvas) DrawGridLines(width, height int) {
	c.width, c.height = width, height
	c.grid = true
}

// cells resolves the sprites into a grid. Fractional rows round up like the
// board's collision checks.
func (c *canvas) cells() [][]tetromino.Color {
	rows := make([][]tetromino.Color, c.height)
	for y := range rows {
		rows[y] = make([]tetromino.Color, c.width)
	}
	for _, s := range c.sprites {
		x, y := int(s.x), int(math.Ceil(s.y))
		if x < 0 || x >= c.width || y < 0 || y >= c.height {
			continue
		}
		rows[y][x] = s.color
	}
	return rows
}

func (c *canvas) render(w io.Writer, styles *Styles) {
	empty, emptyStyle := EmptyBlock, styles.Empty
	if c.grid {
		empty, emptyStyle = GridBlock, styles.Grid
	}

	rows := c.cells()
	for y, row := range rows {
		for _, color := range row {
			if color == "" {
				io.WriteString(w, emptyStyle.Render(empty))
			} else {
				io.WriteString(w, styles.Cell(color).Render(FilledBlock))
			}
		}
		if y+1 != len(rows) {
			io.WriteString(w, "\n")
		}
	}
}

const previewSize = 5

// renderPreview draws p centered in a small box, the way the next piece is
// shown beside the board.
func renderPreview(w io.Writer, p *tetromino.Piece, styles *Styles) {
	var grid [previewSize][previewSize]tetromino.Color
	if p != nil {
		dx := float64(previewSize-p.Width()) / 2
		dy := float64(previewSize-p.Height()) / 2
		for cell := range p.Cells() {
			x := int(math.Floor(float64(cell.X) + dx))
			y := int(math.Floor(float64(cell.Y) + dy))
			grid[y][x] = p.Color()
		}
	}

	rows := make([]string, 0, previewSize)
	var b strings.Builder
	for _, row := range grid {
		b.Reset()
		for _, color := range row {
			if color == "" {
				b.WriteString(styles.Empty.Render(EmptyBlock))
			} else {
				b.WriteString(styles.Cell(color).Render(FilledBlock))
			}
		}
		rows = append(rows, b.String())
	}
	io.WriteString(w, strings.Join(rows, "\n"))
}
