package tektris

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/wish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestRunSSHNilListener(t *testing.T) {
	grp, ctx := errgroup.WithContext(context.Background())
	_, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	assert.Error(t, RunSSH(ctx, grp, cancel, nil, nil))
	assert.NoError(t, grp.Wait())
}

// waitForBanner returns once the server at addr greets a connection, so it is
// accepting.
func waitForBanner(t *testing.T, addr string) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	banner, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(banner, "SSH-2.0-"), banner)
}

func TestRunAndShutdownSSH(t *testing.T) {
	s, err := wish.NewServer(
		wish.WithHostKeyPath(filepath.Join(t.TempDir(), "id_ed25519")),
	)
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	grp, grpCtx := errgroup.WithContext(ctx)

	require.NoError(t, RunSSH(grpCtx, grp, cancel, l, s))
	waitForBanner(t, l.Addr().String())

	require.NoError(t, ShutdownSSH(s, time.Second))
	assert.NoError(t, grp.Wait())
	assert.NoError(t, context.Cause(ctx))
}
