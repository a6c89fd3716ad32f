package main

// tektris in the terminal. In local mode the game runs in the current
// terminal, in serve mode every ssh session and web terminal plays its own
// game, optionally on a tailnet where players are identified by tailscale.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/stfacc/tektris"
	tektrisui "github.com/stfacc/tektris/bubbles/tektris"
	"github.com/stfacc/tektris/config"
	"github.com/stfacc/tektris/game"
	"github.com/stfacc/tektris/tshelper"
	"github.com/stfacc/tektris/tstea"
	"golang.org/x/sync/errgroup"
)

var (
	configPath string
	mode       string
	sshPort    int
	httpPort   int
	useTS      bool
	hostname   string
	logFile    string
	logLevel   string
)

func init() {
	switch os.Getenv("LIPGLOSS_LOG_FORMAT") {
	case "json":
		log.SetFormatter(log.JSONFormatter)
	}
}

func main() {
	flag.StringVar(&configPath, "config", "", "path to a yaml config file")
	flag.StringVar(&mode, "mode", config.ModeLocal, "local or serve")
	flag.IntVar(&sshPort, "ssh-port", 23234, "port for ssh listener")
	flag.IntVar(&httpPort, "http-port", 28080, "port for http listener, 0 disables it")
	flag.BoolVar(&useTS, "tailscale", false, "listen on a tailnet instead of all interfaces")
	flag.StringVar(&hostname, "hostname", "tektris", "tailscale device hostname")
	flag.StringVar(&logFile, "log-file", "tektris.log", "log file in local mode")
	flag.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	closeLog, err := setupLog(cfg)
	if err != nil {
		log.Fatal("failed to set up logging", "error", err)
	}
	defer closeLog()

	switch cfg.Mode {
	case config.ModeServe:
		err = serve(cfg)
	default:
		err = play(cfg)
	}
	if err != nil {
		log.Error("tektris", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// loadConfig layers the flags given on the command line over the config
// file and its defaults.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = mode
		case "ssh-port":
			cfg.SSH.Port = sshPort
		case "http-port":
			cfg.HTTP.Port = httpPort
		case "tailscale":
			cfg.Tailscale.Enabled = useTS
		case "hostname":
			cfg.Tailscale.Hostname = hostname
		case "log-file":
			cfg.Log.File = logFile
		case "log-level":
			cfg.Log.Level = logLevel
		}
	})
	if os.Getenv("LIPGLOSS_LOG_FORMAT") == "json" {
		cfg.Log.Format = "json"
	}

	return cfg, cfg.Validate()
}

// setupLog installs the default logger. The game owns the terminal in local
// mode, so logs go to a file there.
func setupLog(cfg config.Config) (func() error, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	var (
		w       io.Writer = os.Stderr
		closeFn           = func() error { return nil }
	)
	if cfg.Mode == config.ModeLocal {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closeFn = f, f.Close
	}

	log.SetDefault(log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       cfg.Log.Formatter(),
	}))
	return closeFn, nil
}

func modelOptions(cfg config.Config) []tektrisui.Option {
	return []tektrisui.Option{
		tektrisui.WithKeys(cfg.Keys),
		tektrisui.WithReleaseTimeout(cfg.ReleaseTimeout),
	}
}

func play(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	m := tektrisui.New(modelOptions(cfg)...)
	log.Info("local game started")
	_, err := tstea.NewProgram(ctx, m).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	s := m.Session()
	log.Info("local game ended", "level", s.Level(), "lines", s.Lines(), "score", s.Score())
	return nil
}

func newModel(cfg config.Config) tstea.NewModel {
	return func(ctx context.Context, c tstea.Conn) tea.Model {
		logger := log.Default().With("player", c.Player)
		return tektrisui.New(append(modelOptions(cfg),
			tektrisui.WithRenderer(c.Renderer),
			tektrisui.WithPlayer(c.Player),
			tektrisui.WithGameOptions(game.WithLogger(logger)),
		)...)
	}
}

func serve(cfg config.Config) error {
	ctx, cancel := context.WithCancelCause(context.Background())
	rootCtx := ctx

	ctx, sigCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer sigCancel()

	grp, grpCtx := errgroup.WithContext(ctx)

	var (
		ls  tshelper.Listeners
		err error
	)
	if cfg.Tailscale.Enabled {
		ls, err = tshelper.NewListeners(cfg.Tailscale.Hostname, cfg.SSH.Port, cfg.HTTP.Port)
	} else {
		ls, err = tshelper.NewTCPListeners(ctx, "", cfg.SSH.Port, cfg.HTTP.Port)
	}
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	defer ls.Close()

	host := "localhost"
	if ls.Tailnet() {
		tsIPv4, _, err := ls.WaitForTailscaleIP(ctx)
		if err != nil {
			return fmt.Errorf("failed to wait for tailscale IP: %w", err)
		}
		host = tsIPv4.String()
	}

	var s *ssh.Server
	if ls.Ssh != nil {
		s, err = wish.NewServer(
			wish.WithHostKeyPath(cfg.SSH.HostKeyPath),
			wish.WithMiddleware(
				tstea.WishMiddleware(ctx, ls.Client, newModel(cfg), tstea.NewProgram),
				activeterm.Middleware(),
				logging.StructuredMiddleware(),
			),
		)
		if err != nil {
			return fmt.Errorf("could not create SSH server: %w", err)
		}

		log.Info("Starting SSH server", "addr", net.JoinHostPort(host, fmt.Sprint(cfg.SSH.Port)))
		if err = tektris.RunSSH(grpCtx, grp, cancel, ls.Ssh, s); err != nil {
			return err
		}
	}

	if ls.Http != nil {
		log.Infof("Starting HTTP server http://%s", net.JoinHostPort(host, fmt.Sprint(cfg.HTTP.Port)))
		err = tektris.RunHTTP(grpCtx, grp, cancel, ls.Http, tstea.NewTeaTYFactory(
			ctx, ls.Client, newModel(cfg), tstea.NewProgram,
		), "tektris")
		if err != nil {
			return err
		}
	}

	<-ctx.Done()
	if err = context.Cause(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server failure", "error", err)
	}

	if s != nil {
		log.Info("Stopping SSH server")
		if err = tektris.ShutdownSSH(s, tektris.DefaultShutdownTimeout); err != nil {
			log.Error("Could not stop server", "error", err)
		}
	}

	if err = grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("error shutting down servers: %w", err)
	}
	return nil
}
