// repeat turns a held key into a timed stream of dispatches. It doesn't
// depend on the input source repeating keys itself.
package repeat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stfacc/tektris/timer"
)

const (
	DefaultFirstDelay = 250 * time.Millisecond
	DefaultInterval   = 15 * time.Millisecond
)

// Repeater tracks a single stream. Pressing another key while one is held is
// ignored until the held key is released.
type Repeater[K comparable] struct {
	FirstDelay time.Duration
	Interval   time.Duration

	t      *timer.Timer
	key    K
	active bool
	count  int
}

func New[K comparable](name string) *Repeater[K] {
	return &Repeater[K]{
		FirstDelay: DefaultFirstDelay,
		Interval:   DefaultInterval,
		t:          timer.New(name),
	}
}

// KeyDown starts a stream for k with an immediate dispatch, unless a stream
// is already in flight.
func (r *Repeater[K]) KeyDown(k K) tea.Cmd {
	if r.active {
		return nil
	}
	r.key = k
	r.active = true
	r.count = 0
	return r.t.Now()
}

// KeyUp ends the stream and cancels its pending dispatch.
func (r *Repeater[K]) KeyUp() {
	r.t.Cancel()
	r.active = false
	r.count = 0
}

// Held returns the key of the live stream.
func (r *Repeater[K]) Held() (k K, ok bool) {
	return r.key, r.active
}

// Update accepts the timer messages of the repeater. When msg belongs to the
// live stream it returns the key to dispatch along with the next schedule.
func (r *Repeater[K]) Update(msg timer.Msg) (k K, ok bool, cmd tea.Cmd) {
	if !r.active || !r.t.Fired(msg) {
		return k, false, nil
	}

	d := r.Interval
	if r.count == 0 {
		d = r.FirstDelay
	}
	r.count++
	return r.key, true, r.t.After(d)
}

// Owns reports whether msg was scheduled by this repeater.
func (r *Repeater[K]) Owns(msg timer.Msg) bool {
	return msg.Name == r.t.Name()
}
