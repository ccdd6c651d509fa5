package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/svgflatten/svgclip"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.Tolerance)
	assert.Equal(t, 1000., cfg.Precision)
	assert.True(t, cfg.Trace)
	assert.Equal(t, []string{"white"}, cfg.Background)

	opts, err := cfg.ClipOptions()
	require.NoError(t, err)
	assert.Equal(t, svgclip.DefaultOptions(), opts)

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SVGFLATTEN_TOLERANCE", "0.5")
	t.Setenv("SVGFLATTEN_TRACE", "false")
	t.Setenv("SVGFLATTEN_BACKEND", "polyclip")
	t.Setenv("SVGFLATTEN_BACKGROUND", "white,#eee")
	t.Setenv("SVGFLATTEN_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"white", "#eee"}, cfg.Background)

	opts, err := cfg.ClipOptions()
	require.NoError(t, err)
	assert.Equal(t, 0.5, opts.Tolerance)
	assert.False(t, opts.Trace)
	assert.Equal(t, svgclip.BackendPolyclip, opts.Backend)

	l, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, l)
}

func TestInvalid(t *testing.T) {
	t.Setenv("SVGFLATTEN_PRECISION", "abc")
	_, err := Load()
	assert.Error(t, err)

	cfg := Config{Tolerance: 0.1, Precision: 10, Backend: "gpc", LogLevel: "info"}
	_, err = cfg.ClipOptions()
	assert.Error(t, err)

	cfg.Backend, cfg.Tolerance = "clipper", 0
	_, err = cfg.ClipOptions()
	assert.Error(t, err)

	cfg.LogLevel = "loud"
	_, err = cfg.Level()
	assert.Error(t, err)
}
