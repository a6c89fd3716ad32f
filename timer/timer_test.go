package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNow(t *testing.T) {
	tm := New("gravity")
	assert.False(t, tm.Pending())

	cmd := tm.Now()
	require.NotNil(t, cmd)
	assert.True(t, tm.Pending())

	msg, ok := cmd().(Msg)
	require.True(t, ok)
	assert.Equal(t, "gravity", msg.Name)
	assert.False(t, msg.Time.IsZero())

	require.True(t, tm.Fired(msg))
	assert.False(t, tm.Pending())
	assert.False(t, tm.Fired(msg), "a schedule fires once")
}

func TestAfterSupersedes(t *testing.T) {
	tm := New("repeat")

	old := tm.Now()().(Msg)
	_ = tm.After(time.Hour)

	assert.False(t, tm.Fired(old))
	assert.True(t, tm.Pending())
}

func TestCancel(t *testing.T) {
	tm := New("repeat")
	msg := tm.Now()().(Msg)

	tm.Cancel()
	assert.False(t, tm.Pending())
	assert.False(t, tm.Fired(msg))
}

func TestFiredChecksName(t *testing.T) {
	a, b := New("a"), New("b")
	msg := a.Now()().(Msg)
	_ = b.Now()

	assert.False(t, b.Fired(msg))
	assert.True(t, a.Fired(msg))
}
