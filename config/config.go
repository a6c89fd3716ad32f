// config loads tektris settings from an optional YAML file layered over
// defaults. Command line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const (
	ModeLocal = "local"
	ModeServe = "serve"
)

type Config struct {
	Mode string `yaml:"mode"`

	SSH       SSH       `yaml:"ssh"`
	HTTP      HTTP      `yaml:"http"`
	Tailscale Tailscale `yaml:"tailscale"`
	Log       Log       `yaml:"log"`

	Keys Keys `yaml:"keys"`

	// ReleaseTimeout is how long a key counts as held after the terminal
	// last reported it.
	ReleaseTimeout time.Duration `yaml:"release_timeout"`
}

type SSH struct {
	Port        int    `yaml:"port"`
	HostKeyPath string `yaml:"host_key_path"`
}

type HTTP struct {
	// Port of the web terminal, 0 disables it.
	Port int `yaml:"port"`
}

type Tailscale struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
}

type Log struct {
	Level string `yaml:"level"`
	// File receives logs in local mode, the terminal belongs to the game.
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Keys maps game actions to bubbletea key names.
type Keys struct {
	Left     []string `yaml:"left"`
	Right    []string `yaml:"right"`
	Rotate   []string `yaml:"rotate"`
	SoftDrop []string `yaml:"soft_drop"`
	HardDrop []string `yaml:"hard_drop"`
	Pause    []string `yaml:"pause"`
	Restart  []string `yaml:"restart"`
	Quit     []string `yaml:"quit"`
}

func Default() Config {
	return Config{
		Mode: ModeLocal,
		SSH: SSH{
			Port:        23234,
			HostKeyPath: ".ssh/id_ed25519",
		},
		HTTP: HTTP{Port: 28080},
		Tailscale: Tailscale{
			Hostname: "tektris",
		},
		Log: Log{
			Level:  "info",
			File:   "tektris.log",
			Format: "text",
		},
		Keys:           DefaultKeys(),
		ReleaseTimeout: 200 * time.Millisecond,
	}
}

func DefaultKeys() Keys {
	return Keys{
		Left:     []string{"left"},
		Right:    []string{"right"},
		Rotate:   []string{"up"},
		SoftDrop: []string{"down"},
		HardDrop: []string{" "},
		Pause:    []string{"p"},
		Restart:  []string{"r"},
		Quit:     []string{"q"},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Mode {
	case ModeLocal, ModeServe:
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}

	if c.Mode == ModeServe {
		if c.SSH.Port <= 0 || c.SSH.Port > 65535 {
			errs = append(errs, fmt.Errorf("ssh port out of range: %d", c.SSH.Port))
		}
		if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
			errs = append(errs, fmt.Errorf("http port out of range: %d", c.HTTP.Port))
		}
		if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
			errs = append(errs, errors.New("tailscale hostname required"))
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if c.ReleaseTimeout <= 0 {
		errs = append(errs, fmt.Errorf("release_timeout must be positive: %s", c.ReleaseTimeout))
	}

	errs = append(errs, c.Keys.validate()...)
	return errors.Join(errs...)
}

func (k Keys) Actions() map[string][]string {
	return map[string][]string{
		"left":      k.Left,
		"right":     k.Right,
		"rotate":    k.Rotate,
		"soft_drop": k.SoftDrop,
		"hard_drop": k.HardDrop,
		"pause":     k.Pause,
		"restart":   k.Restart,
		"quit":      k.Quit,
	}
}

func (k Keys) validate() []error {
	var (
		errs []error
		seen = make(map[string]string)
	)
	for action, keys := range k.Actions() {
		if len(keys) == 0 {
			errs = append(errs, fmt.Errorf("no keys bound to %s", action))
		}
		for _, key := range keys {
			if other, ok := seen[key]; ok {
				errs = append(errs, fmt.Errorf("key %q bound to both %s and %s", key, other, action))
				continue
			}
			seen[key] = action
		}
	}
	return errs
}

// Formatter returns the charmbracelet/log formatter named by Log.Format.
func (l Log) Formatter() log.Formatter {
	switch l.Format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
