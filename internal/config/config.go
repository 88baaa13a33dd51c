package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/offscreen/internal/core/geom"
	"github.com/zeusync/offscreen/internal/core/indicator"
	"github.com/zeusync/offscreen/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full host configuration, decoded from YAML.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Indicators IndicatorsConfig `yaml:"indicators"`
	Camera     CameraConfig     `yaml:"camera"`
	Sim        SimConfig        `yaml:"sim"`
	Server     ServerConfig     `yaml:"server"`
}

// IndicatorsConfig sizes the widget pool. Every widget uses MinSize/MaxSize
// unless a slot override says otherwise.
type IndicatorsConfig struct {
	PoolSize        int            `yaml:"pool_size"`
	MinSize         geom.Vec2      `yaml:"min_size"`
	MaxSize         geom.Vec2      `yaml:"max_size"`
	MinSizeDistance float64        `yaml:"min_size_distance"`
	Overrides       []SlotOverride `yaml:"overrides,omitempty"`
}

type SlotOverride struct {
	Slot    int       `yaml:"slot"`
	MinSize geom.Vec2 `yaml:"min_size"`
	MaxSize geom.Vec2 `yaml:"max_size"`
}

type CameraConfig struct {
	Width    float64   `yaml:"width"`
	Height   float64   `yaml:"height"`
	FovY     float64   `yaml:"fov_degrees"`
	Position geom.Vec3 `yaml:"position"`
	LookAt   geom.Vec3 `yaml:"look_at"`
}

// SimConfig drives the demo scene.
type SimConfig struct {
	TickInterval       time.Duration     `yaml:"tick_interval"`
	Actors             int               `yaml:"actors"`
	OrbitRadius        float64           `yaml:"orbit_radius"`
	OrbitSpeed         float64           `yaml:"orbit_speed"` // radians per second
	ColorCycleInterval time.Duration     `yaml:"color_cycle_interval"`
	ChurnInterval      time.Duration     `yaml:"churn_interval"`
	Palette            []indicator.Color `yaml:"palette"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Default returns a configuration that runs out of the box.
func Default() Config {
	return Config{
		LogLevel: "info",
		Indicators: IndicatorsConfig{
			PoolSize:        4,
			MinSize:         geom.Vec2{X: 20, Y: 20},
			MaxSize:         geom.Vec2{X: 80, Y: 80},
			MinSizeDistance: 3000,
		},
		Camera: CameraConfig{
			Width:    1920,
			Height:   1080,
			FovY:     60,
			Position: geom.Vec3{X: 0, Y: 25, Z: -60},
			LookAt:   geom.Vec3{},
		},
		Sim: SimConfig{
			TickInterval:       16 * time.Millisecond,
			Actors:             5,
			OrbitRadius:        70,
			OrbitSpeed:         0.6,
			ColorCycleInterval: 5 * time.Second,
			ChurnInterval:      7 * time.Second,
			Palette: []indicator.Color{
				indicator.RGBA(0xe6, 0x39, 0x46, 0xff),
				indicator.RGBA(0x45, 0x7b, 0x9d, 0xff),
				indicator.RGBA(0x2a, 0x9d, 0x8f, 0xff),
				indicator.RGBA(0xf4, 0xa2, 0x61, 0xff),
			},
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			WriteTimeout: time.Second,
		},
	}
}

// Load reads a YAML file on top of Default.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML from r on top of Default and validates the result.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode writes c as YAML.
func (c Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// String renders c as YAML.
func (c Config) String() string {
	var buf bytes.Buffer
	_ = c.Encode(&buf)
	return buf.String()
}

// Validate checks every section.
func (c Config) Validate() error {
	var errs []error
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level %q is not a known level", c.LogLevel))
	}
	ind := c.Indicators
	if ind.PoolSize < 1 {
		errs = append(errs, fmt.Errorf("indicators.pool_size must be at least 1, got %d", ind.PoolSize))
	}
	if ind.MinSizeDistance <= 0 {
		errs = append(errs, fmt.Errorf("indicators.min_size_distance must be positive, got %v", ind.MinSizeDistance))
	}
	for _, b := range ind.Pool() {
		if err := b.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("indicators: %w", err))
			break
		}
	}
	for _, o := range ind.Overrides {
		if o.Slot < 0 || o.Slot >= ind.PoolSize {
			errs = append(errs, fmt.Errorf("indicators.overrides: slot %d outside pool of %d", o.Slot, ind.PoolSize))
		}
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("camera viewport must be positive, got %vx%v", c.Camera.Width, c.Camera.Height))
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov_degrees must be in (0, 180), got %v", c.Camera.FovY))
	}
	if c.Sim.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("sim.tick_interval must be positive, got %v", c.Sim.TickInterval))
	}
	if c.Sim.Actors < 0 {
		errs = append(errs, fmt.Errorf("sim.actors must not be negative, got %d", c.Sim.Actors))
	}
	if len(c.Sim.Palette) == 0 {
		errs = append(errs, errors.New("sim.palette must not be empty"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Pool expands the indicator section into per-widget size bounds.
func (c IndicatorsConfig) Pool() []indicator.SizeBounds {
	if c.PoolSize < 1 {
		return nil
	}
	pool := make([]indicator.SizeBounds, c.PoolSize)
	for i := range pool {
		pool[i] = indicator.SizeBounds{Min: c.MinSize, Max: c.MaxSize}
	}
	for _, o := range c.Overrides {
		if o.Slot >= 0 && o.Slot < len(pool) {
			pool[o.Slot] = indicator.SizeBounds{Min: o.MinSize, Max: o.MaxSize}
		}
	}
	return pool
}
