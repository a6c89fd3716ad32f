package tetromino

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"
)

type Kind uint8

const (
	T Kind = iota
	I
	L
	J
	S
	Z
	O

	numKinds = int(O) + 1
)

var kindNames = [numKinds]string{"T", "I", "L", "J", "S", "Z", "O"}

func (k Kind) String() string {
	if int(k) >= numKinds {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Kinds lists every piece kind in catalog order.
var Kinds = [numKinds]Kind{T, I, L, J, S, Z, O}

func RandomKind(r *rand.Rand) Kind {
	return Kinds[r.IntN(numKinds)]
}

// Color is opaque to the engine, renderers interpret it. The catalog uses
// "#rrggbb" strings.
type Color string

type Cell struct {
	X, Y int
}

// State is one rotation of a shape. Rows all have the same length.
type State struct {
	w, h  int
	cells []Cell
}

func (s State) Width() int  { return s.w }
func (s State) Height() int { return s.h }

func (s State) Cells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for _, c := range s.cells {
			if !yield(c) {
				return
			}
		}
	}
}

type Shape struct {
	Kind   Kind
	Color  Color
	States []State
}

var catalog [numKinds]Shape

// Palette is indexed by Kind.
var Palette = [numKinds]Color{
	T: "#638ca6",
	I: "#d93240",
	L: "#6db875",
	J: "#dd7983",
	S: "#0f5959",
	Z: "#17a697",
	O: "#b569b3",
}

func init() {
	visualDefs := [numKinds][]string{
		T: {`
|xxx
|.x.
`, `
|.x
|xx
|.x
`, `
|.x.
|xxx
`, `
|x.
|xx
|x.
`},
		I: {`
|xxxx
`, `
|.x
|.x
|.x
|.x
`},
		L: {`
|xxx
|x..
`, `
|xx
|.x
|.x
`, `
|..x
|xxx
`, `
|x.
|x.
|xx
`},
		J: {`
|xxx
|..x
`, `
|.x
|.x
|xx
`, `
|x..
|xxx
`, `
|xx
|x.
|x.
`},
		S: {`
|.xx
|xx.
`, `
|x.
|xx
|.x
`},
		Z: {`
|xx.
|.xx
`, `
|.x
|xx
|x.
`},
		O: {`
|xx
|xx
`},
	}

	for _, k := range Kinds {
		shape, err := ParseShape(k, Palette[k], visualDefs[k]...)
		if err != nil {
			panic(fmt.Sprintf("failed to parse visual for %s: %v", k, err))
		}
		catalog[k] = shape
	}
}

// ParseShape builds a Shape from visual rotation states. Each state is a set
// of lines that begin with '|'; after the border 'x' marks an occupied cell
// and '.' an empty one. Cells are listed in row-major order.
func ParseShape(k Kind, c Color, states ...string) (Shape, error) {
	if len(states) == 0 {
		return Shape{}, fmt.Errorf("no rotation states")
	}

	shape := Shape{Kind: k, Color: c, States: make([]State, 0, len(states))}
	for i, v := range states {
		s, err := parseVisual(v)
		if err != nil {
			return Shape{}, fmt.Errorf("state %d: %w", i, err)
		}
		shape.States = append(shape.States, s)
	}
	return shape, nil
}

func parseVisual(v string) (State, error) {
	lines := make([]string, 0, 4)
	for ln := range strings.SplitSeq(strings.TrimSpace(v), "\n") {
		if !strings.HasPrefix(ln, "|") {
			continue
		}
		lines = append(lines, ln[1:]) // drop the '|' border char
	}
	if len(lines) == 0 {
		return State{}, fmt.Errorf("empty grid")
	}

	s := State{w: len(lines[0]), h: len(lines)}
	for y, row := range lines {
		if len(row) != s.w {
			return State{}, fmt.Errorf("row %d has width %d, expected %d", y, len(row), s.w)
		}
		for x, ch := range row {
			switch ch {
			case 'x':
				s.cells = append(s.cells, Cell{X: x, Y: y})
			case '.':
			default:
				return State{}, fmt.Errorf("row %d: unexpected %q", y, ch)
			}
		}
	}
	if len(s.cells) == 0 {
		return State{}, fmt.Errorf("no occupied cells")
	}
	return s, nil
}

func Lookup(k Kind) Shape {
	return catalog[k]
}

func Rotations(k Kind) int {
	return len(catalog[k].States)
}

func Width(k Kind, rot int) int {
	return catalog[k].States[rot].Width()
}

func Height(k Kind, rot int) int {
	return catalog[k].States[rot].Height()
}

func Cells(k Kind, rot int) iter.Seq[Cell] {
	return catalog[k].States[rot].Cells()
}
