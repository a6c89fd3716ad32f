package tetromino

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.String(), func(t *testing.T) {
			p := New(k)
			before := slices.Collect(p.Cells())

			for range Rotations(k) {
				p.Rotate(1)
				require.GreaterOrEqual(t, p.Rotation, 0)
				require.Less(t, p.Rotation, Rotations(k))
			}

			assert.Equal(t, 0, p.Rotation)
			assert.Equal(t, before, slices.Collect(p.Cells()))
		})
	}
}

func TestRotateInverse(t *testing.T) {
	for _, k := range Kinds {
		p := New(k)
		p.Rotate(1)
		p.Rotate(-1)
		assert.Equal(t, 0, p.Rotation, k.String())

		p.Rotate(-1)
		assert.Equal(t, Rotations(k)-1, p.Rotation, k.String())
	}
}

func TestMove(t *testing.T) {
	p := New(O)
	p.Move(3, 0)
	p.Move(0, 0.5)
	assert.Equal(t, 3.0, p.X)
	assert.Equal(t, 0.5, p.Y)

	p.Move(-10, -1)
	assert.Equal(t, -7.0, p.X)
	assert.Equal(t, -0.5, p.Y)
}

func TestAbsoluteRoundsUp(t *testing.T) {
	p := &Piece{Kind: O, X: 4, Y: 2.5}
	require.Equal(t,
		[]Cell{{4, 3}, {5, 3}, {4, 4}, {5, 4}},
		slices.Collect(p.Absolute()),
	)

	p.Y = -0.5
	require.Equal(t,
		[]Cell{{4, 0}, {5, 0}, {4, 1}, {5, 1}},
		slices.Collect(p.Absolute()),
	)
}

func TestPieceColor(t *testing.T) {
	for _, k := range Kinds {
		assert.Equal(t, Palette[k], New(k).Color())
	}
}
