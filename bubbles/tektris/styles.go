package tektris

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/stfacc/tektris/tetromino"
)

const (
	BackgroundColor = lipgloss.Color("#111111")
	TextColor       = lipgloss.Color("#eeeeee")
	GridColor       = lipgloss.Color("#444444")

	FilledBlock = "  "
	EmptyBlock  = "  "
	GridBlock   = "· "
)

type Styles struct {
	r *lipgloss.Renderer

	Empty   lipgloss.Style
	Grid    lipgloss.Style
	Message lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Debug   lipgloss.Style

	cells map[tetromino.Color]lipgloss.Style
}

// NewStyles builds styles for r, so every ssh session renders with the color
// profile of its own terminal.
func NewStyles(r *lipgloss.Renderer) *Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return &Styles{
		r: r,

		Empty: r.NewStyle().Background(BackgroundColor),
		Grid:  r.NewStyle().Background(BackgroundColor).Foreground(GridColor),
		Message: r.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(BackgroundColor).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(TextColor).
			Padding(1, 2).
			Align(lipgloss.Center),
		Label: r.NewStyle().Bold(true).Foreground(TextColor),
		Value: r.NewStyle().Foreground(TextColor),
		Debug: r.NewStyle().Faint(true),

		cells: make(map[tetromino.Color]lipgloss.Style, len(tetromino.Palette)),
	}
}

func (s *Styles) Cell(c tetromino.Color) lipgloss.Style {
	style, ok := s.cells[c]
	if !ok {
		style = s.r.NewStyle().Background(lipgloss.Color(c))
		s.cells[c] = style
	}
	return style
}
