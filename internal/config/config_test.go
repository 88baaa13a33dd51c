package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/offscreen/internal/core/geom"
	"github.com/zeusync/offscreen/internal/core/indicator"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	src := `
log_level: debug
indicators:
  pool_size: 6
  min_size_distance: 2500
  overrides:
    - slot: 5
      min_size: {x: 10, y: 10}
      max_size: {x: 40, y: 40}
sim:
  tick_interval: 33ms
  palette: ["#ff0000", "#00ff0080"]
`
	c, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 6, c.Indicators.PoolSize)
	assert.Equal(t, 2500.0, c.Indicators.MinSizeDistance)
	assert.Equal(t, geom.Vec2{X: 80, Y: 80}, c.Indicators.MaxSize)
	assert.Equal(t, 33*time.Millisecond, c.Sim.TickInterval)
	assert.Equal(t, []indicator.Color{
		indicator.RGBA(0xff, 0, 0, 0xff),
		indicator.RGBA(0, 0xff, 0, 0x80),
	}, c.Sim.Palette)
	assert.Equal(t, Default().Camera, c.Camera)

	pool := c.Indicators.Pool()
	require.Len(t, pool, 6)
	assert.Equal(t, geom.Vec2{X: 20, Y: 20}, pool[0].Min)
	assert.Equal(t, geom.Vec2{X: 40, Y: 40}, pool[5].Max)
}

func TestDecodeEmptyYieldsDefaults(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("indicators:\n  pool: 3\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"empty pool":      func(c *Config) { c.Indicators.PoolSize = 0 },
		"zero distance":   func(c *Config) { c.Indicators.MinSizeDistance = 0 },
		"inverted sizes":  func(c *Config) { c.Indicators.MinSize = geom.Vec2{X: 100, Y: 100} },
		"override range":  func(c *Config) { c.Indicators.Overrides = []SlotOverride{{Slot: 4}} },
		"zero viewport":   func(c *Config) { c.Camera.Width = 0 },
		"fov":             func(c *Config) { c.Camera.FovY = 180 },
		"tick interval":   func(c *Config) { c.Sim.TickInterval = 0 },
		"negative actors": func(c *Config) { c.Sim.Actors = -1 },
		"empty palette":   func(c *Config) { c.Sim.Palette = nil },
		"missing addr":    func(c *Config) { c.Server.Addr = "" },
		"log level":       func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadAndEncodeRoundTrip(t *testing.T) {
	c := Default()
	c.Indicators.PoolSize = 8

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))
	path := filepath.Join(t.TempDir(), "offscreen.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
