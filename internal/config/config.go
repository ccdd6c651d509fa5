package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/benoitkugler/svgflatten/svgclip"
)

// Prefix of the environment variables, as in SVGFLATTEN_TOLERANCE.
const Prefix = "SVGFLATTEN"

type Config struct {
	Tolerance  float64  `envconfig:"TOLERANCE" default:"0.05"`
	Precision  float64  `envconfig:"PRECISION" default:"1000"`
	Trace      bool     `envconfig:"TRACE" default:"true"`
	Backend    string   `envconfig:"BACKEND" default:"clipper"`
	Background []string `envconfig:"BACKGROUND" default:"white"`
	LogLevel   string   `envconfig:"LOG_LEVEL" default:"warn"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ClipOptions validates the intersection settings.
func (cfg *Config) ClipOptions() (svgclip.Options, error) {
	backend, err := svgclip.ParseBackend(cfg.Backend)
	if err != nil {
		return svgclip.Options{}, err
	}
	if cfg.Tolerance <= 0 {
		return svgclip.Options{}, fmt.Errorf("config: tolerance must be positive, got %g", cfg.Tolerance)
	}
	if cfg.Precision <= 0 {
		return svgclip.Options{}, fmt.Errorf("config: precision must be positive, got %g", cfg.Precision)
	}
	return svgclip.Options{
		Tolerance: cfg.Tolerance,
		Precision: cfg.Precision,
		Trace:     cfg.Trace,
		Backend:   backend,
	}, nil
}

// Level returns the slog level named by LogLevel.
func (cfg *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
		return slog.LevelWarn, fmt.Errorf("config: %w", err)
	}
	return l, nil
}
