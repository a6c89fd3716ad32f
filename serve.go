// tektris serves single player tektris games over ssh and a web terminal.
// Every connection runs its own bubbletea program and game session.
package tektris

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/ghthor/gotty/v2/server"
	"github.com/ghthor/gotty/v2/utils"
	"golang.org/x/sync/errgroup"
)

const DefaultShutdownTimeout = 30 * time.Second

// RunSSH serves s on l in grp. A serve failure cancels the group with its
// cause.
func RunSSH(ctx context.Context, grp *errgroup.Group, cancel context.CancelCauseFunc, l net.Listener, s *ssh.Server) error {
	if l == nil {
		return errors.New("ssh listener is nil")
	}

	grp.Go(func() error {
		if err := s.Serve(l); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			cancel(err)
			return err
		}
		return nil
	})

	return nil
}

// ShutdownSSH waits up to timeout for sessions to end, then closes the
// server.
func ShutdownSSH(s *ssh.Server, timeout time.Duration) error {
	if timeout == 0 {
		timeout = DefaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		if errors.Is(err, context.DeadlineExceeded) {
			return s.Close()
		}
		return err
	}
	return nil
}

// RunHTTP serves a gotty web terminal on l. Every websocket gets a slave from
// fact.
func RunHTTP(ctx context.Context, grp *errgroup.Group, cancel context.CancelCauseFunc, l net.Listener, fact server.Factory, title string) error {
	if l == nil {
		return errors.New("http listener is nil")
	}

	appOptions, err := httpOptions(title)
	if err != nil {
		return err
	}

	gottySrv, err := server.New(fact, appOptions)
	if err != nil {
		return fmt.Errorf("error creating gotty server: %w", err)
	}

	grp.Go(func() error {
		if serr := gottySrv.Run(ctx, server.WithListener(l)); serr != nil && !errors.Is(serr, context.Canceled) {
			cancel(serr)
			return serr
		}
		return nil
	})

	return nil
}

func httpOptions(title string) (*server.Options, error) {
	appOptions := &server.Options{}
	if err := utils.ApplyDefaultValues(appOptions); err != nil {
		return nil, fmt.Errorf("gotty default options failure: %w", err)
	}
	appOptions.Preferences = &server.HtermPrefernces{}
	if err := utils.ApplyDefaultValues(appOptions.Preferences); err != nil {
		return nil, fmt.Errorf("gotty default hterm preferences failure: %w", err)
	}
	appOptions.Preferences.EnableWebGL = true
	appOptions.PermitWrite = true
	if title != "" {
		appOptions.TitleFormat = title
	}

	if err := appOptions.Validate(); err != nil {
		return nil, fmt.Errorf("gotty options validation failure: %w", err)
	}
	return appOptions, nil
}
