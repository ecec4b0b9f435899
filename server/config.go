package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration. Flags override the environment.
type Config struct {
	Addr             string        `env:"GUESS_ADDR" envDefault:"localhost:8080"`
	Console          bool          `env:"GUESS_CONSOLE"`
	LogLevel         string        `env:"GUESS_LOG_LEVEL" envDefault:"info"`
	SubscriberBuffer int           `env:"GUESS_SUBSCRIBER_BUFFER" envDefault:"16"`
	IdleTimeout      time.Duration `env:"GUESS_IDLE_TIMEOUT" envDefault:"30m"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The address to listen on")
	fs.BoolVar(&cfg.Console, "console", cfg.Console, "Play in the terminal instead of serving HTTP")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.IntVar(&cfg.SubscriberBuffer, "subscriber-buffer", cfg.SubscriberBuffer, "Messages queued per subscriber before it is kicked")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "How long an untouched game is kept")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.SubscriberBuffer < 1 {
		return Config{}, errors.New("subscriber-buffer must be at least 1")
	}
	if cfg.IdleTimeout <= 0 {
		return Config{}, errors.New("idle-timeout must be positive")
	}
	if _, err := cfg.Level(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level returns the configured slog level.
func (c Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
}
