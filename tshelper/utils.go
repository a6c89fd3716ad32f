// tshelper opens the ssh and http listeners, either on the tailnet through
// tsnet or as plain TCP listeners.
package tshelper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"tailscale.com/client/local"
	"tailscale.com/tsnet"
)

// Listeners holds the ssh and http listeners. Either may be nil when its
// port is 0. Client is only set on the tailnet.
type Listeners struct {
	ts *tsnet.Server

	Ssh, Http net.Listener

	Client *local.Client
}

// NewListeners joins the tailnet as hostname and listens there.
func NewListeners(hostname string, sshPort, httpPort int) (Listeners, error) {
	l := Listeners{}
	l.ts = new(tsnet.Server)
	l.ts.Hostname = hostname

	listen := func(port int) (net.Listener, error) {
		return l.ts.Listen("tcp", net.JoinHostPort("", fmt.Sprint(port)))
	}
	if err := l.listen(listen, sshPort, httpPort); err != nil {
		return l, err
	}

	var err error
	l.Client, err = l.ts.LocalClient()
	if err != nil {
		return l, errors.Join(
			fmt.Errorf("failed to create tsnet LocalClient(): %w", err),
			l.Close(),
		)
	}

	return l, nil
}

// NewTCPListeners listens on host. A port still held by a previous process
// is retried for a few seconds.
func NewTCPListeners(ctx context.Context, host string, sshPort, httpPort int) (Listeners, error) {
	l := Listeners{}

	listen := func(port int) (net.Listener, error) {
		addr := net.JoinHostPort(host, fmt.Sprint(port))
		return backoff.Retry(ctx, func() (net.Listener, error) {
			return net.Listen("tcp", addr)
		},
			backoff.WithBackOff(backoff.NewExponentialBackOff()),
			backoff.WithMaxElapsedTime(5*time.Second),
			backoff.WithNotify(func(err error, d time.Duration) {
				log.Warn("listen", "addr", addr, "error", err, "retrying", d)
			}),
		)
	}
	if err := l.listen(listen, sshPort, httpPort); err != nil {
		return l, err
	}
	return l, nil
}

func (l *Listeners) listen(listen func(port int) (net.Listener, error), sshPort, httpPort int) error {
	var err error
	if sshPort != 0 {
		l.Ssh, err = listen(sshPort)
		if err != nil {
			return errors.Join(
				fmt.Errorf("failed to start ssh listener: %w", err),
				l.Close(),
			)
		}
	}

	if httpPort != 0 {
		l.Http, err = listen(httpPort)
		if err != nil {
			return errors.Join(
				fmt.Errorf("failed to start http listener: %w", err),
				l.Close(),
			)
		}
	}
	return nil
}

func (l Listeners) Tailnet() bool {
	return l.ts != nil
}

func (l Listeners) WaitForTailscaleIP(ctx context.Context) (v4, v6 netip.Addr, err error) {
	if l.ts == nil {
		return v4, v6, errors.New("not listening on a tailnet")
	}

	var (
		t    = time.NewTicker(time.Second)
		done = ctx.Done()
	)
	defer t.Stop()

	for {
		select {
		case <-done:
			return v4, v6, ctx.Err()

		case <-t.C:
			v4, v6 = l.ts.TailscaleIPs()
			if v4.IsValid() {
				return v4, v6, nil
			}
			log.Info("Waiting for tailscale IP")
		}
	}
}

func (l Listeners) Close() error {
	errs := make([]error, 0, 3)
	if l.Ssh != nil {
		errs = append(errs, l.Ssh.Close())
	}
	if l.Http != nil {
		errs = append(errs, l.Http.Close())
	}
	if l.ts != nil {
		errs = append(errs, l.ts.Close())
	}

	return errors.Join(errs...)
}
