package tstea

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinContext(t *testing.T) {
	errLeft := errors.New("left")

	for _, tc := range []struct {
		name   string
		cancel func(l, r context.CancelCauseFunc)
	}{
		{"first", func(l, _ context.CancelCauseFunc) { l(errLeft) }},
		{"second", func(_, r context.CancelCauseFunc) { r(errLeft) }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, lcancel := context.WithCancelCause(context.Background())
			r, rcancel := context.WithCancelCause(context.Background())
			defer lcancel(nil)
			defer rcancel(nil)

			ctx, cancel := joinContext(l, r)
			defer cancel(nil)
			require.NoError(t, ctx.Err())

			tc.cancel(lcancel, rcancel)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
				t.Fatal("joined context not canceled")
			}
			assert.ErrorIs(t, context.Cause(ctx), errLeft)
		})
	}
}

func TestPlayerNameWithoutTailscale(t *testing.T) {
	addr := &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4242}
	name, err := playerName(context.Background(), nil, addr, "gopher")
	require.NoError(t, err)
	assert.Equal(t, "gopher", name)
}
