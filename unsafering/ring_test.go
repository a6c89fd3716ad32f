package unsafering

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	r := New[int](5)
	assert.Equal(t, 5, r.Cap())

	_, ok := r.Latest()
	assert.False(t, ok)
	assert.Empty(t, slices.Collect(r.All()))

	for i := range 7 {
		r.Push(i)
	}

	require.Equal(t, 5, r.Len())
	require.Equal(t, []int{2, 3, 4, 5, 6}, slices.Collect(r.All()))
	require.Equal(t, []int{5, 6}, slices.Collect(r.Recent(2)))
	require.Equal(t, []int{2, 3, 4, 5, 6}, slices.Collect(r.Recent(10)))

	v, ok := r.Latest()
	require.True(t, ok)
	require.Equal(t, 6, v)

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, slices.Collect(r.All()))
}

func TestBufferPartial(t *testing.T) {
	r := New[string](4)
	r.Push("left")
	r.Push("rotate")

	require.Equal(t, []string{"left", "rotate"}, slices.Collect(r.All()))
	require.Equal(t, []string{"rotate"}, slices.Collect(r.Recent(1)))
}
