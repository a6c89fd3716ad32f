package tektris

import tea "github.com/charmbracelet/bubbletea"

// text is a static tea.Model, used as the layers of a message overlay.
type text string

func (m text) Init() tea.Cmd                       { return nil }
func (m text) Update(tea.Msg) (tea.Model, tea.Cmd) { return m, nil }
func (m text) View() string                        { return string(m) }
