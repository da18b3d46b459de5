// Package config loads taskmon settings from defaults, an optional YAML
// file and TASKMON_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ja7ad/taskmon/pkg/system/proc"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config carries runtime options for every taskmon command.
type Config struct {
	Interval time.Duration `yaml:"interval" validate:"min=100ms,max=1h"`
	ProcRoot string        `yaml:"proc_root" validate:"required"`
	Passwd   string        `yaml:"passwd"`
	LogLevel string        `yaml:"log_level" validate:"oneof=debug info warn error"`

	CommandCache CommandCache `yaml:"command_cache"`
	Server       Server       `yaml:"server"`
}

// CommandCache configures reuse of process command lines across scans.
type CommandCache struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl" validate:"min=0"`
}

// Server configures the HTTP API.
type Server struct {
	Listen      string        `yaml:"listen" validate:"required,hostname_port"`
	SignalRate  float64       `yaml:"signal_rate" validate:"gt=0"`
	SignalBurst int           `yaml:"signal_burst" validate:"min=1"`
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"min=0"`
}

func Default() Config {
	return Config{
		Interval: time.Second,
		ProcRoot: proc.DefaultRoot,
		Passwd:   "/etc/passwd",
		LogLevel: "info",
		CommandCache: CommandCache{
			TTL: 5 * time.Second,
		},
		Server: Server{
			Listen:      "127.0.0.1:8080",
			SignalRate:  1,
			SignalBurst: 5,
			ReadTimeout: 10 * time.Second,
		},
	}
}

// Load returns Default overlaid with the YAML file at path (if path is not
// empty) and then with environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

// applyEnv reads TASKMON_INTERVAL, TASKMON_LISTEN, TASKMON_PROC_ROOT and
// TASKMON_LOG_LEVEL. A bare number of seconds is accepted for the interval.
func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("TASKMON_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			if d, err = time.ParseDuration(v + "s"); err != nil {
				return fmt.Errorf("%w: TASKMON_INTERVAL=%q", ErrInvalid, v)
			}
		}
		c.Interval = d
	}
	if v := getenv("TASKMON_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := getenv("TASKMON_PROC_ROOT"); v != "" {
		c.ProcRoot = v
	}
	if v := getenv("TASKMON_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Level returns LogLevel as a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
