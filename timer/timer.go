// timer provides single shot bubbletea timers that can be canceled. A
// bubbletea command can't be stopped once it is running, so every schedule
// carries a generation and only the message of the most recent schedule is
// accepted by Fired.
package timer

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type Msg struct {
	time.Time
	Name string
	Gen  uint64
}

type Timer struct {
	name    string
	gen     uint64
	pending bool
}

func New(name string) *Timer {
	return &Timer{name: name}
}

func (t *Timer) Name() string { return t.name }

// After schedules the timer to fire in d, superseding any pending schedule.
func (t *Timer) After(d time.Duration) tea.Cmd {
	msg := t.next()
	return tea.Tick(d, func(at time.Time) tea.Msg {
		msg.Time = at
		return msg
	})
}

// Now schedules the timer to fire as soon as the program handles commands.
func (t *Timer) Now() tea.Cmd {
	msg := t.next()
	return func() tea.Msg {
		msg.Time = time.Now()
		return msg
	}
}

func (t *Timer) Cancel() {
	t.gen++
	t.pending = false
}

func (t *Timer) Pending() bool {
	return t.pending
}

// Fired reports whether msg is the most recent schedule of this timer. A
// fired timer is no longer pending.
func (t *Timer) Fired(msg Msg) bool {
	if msg.Name != t.name || msg.Gen != t.gen || !t.pending {
		return false
	}
	t.pending = false
	return true
}

func (t *Timer) next() Msg {
	t.gen++
	t.pending = true
	return Msg{Name: t.name, Gen: t.gen}
}
