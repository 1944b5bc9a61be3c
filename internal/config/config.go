package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration read from terra2d.yaml.
type Config struct {
	World      WorldSettings      `yaml:"world"`
	Simulation SimulationSettings `yaml:"simulation"`
	Assets     AssetSettings      `yaml:"assets"`
	Saves      SaveSettings       `yaml:"saves"`
	Log        LogSettings        `yaml:"log"`
}

type WorldSettings struct {
	// Seed is parsed with world.ParseSeed. Empty picks a random seed.
	Seed           string `yaml:"seed"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	// Chunks on each side of the spawn chunk generated before the first tick.
	PregenerateRadius int `yaml:"pregenerate_radius"`
}

type SimulationSettings struct {
	UPS int `yaml:"ups"`
	// MaxCatchUp bounds the updates run in one loop iteration after a stall.
	MaxCatchUp int `yaml:"max_catch_up"`
	// ProfileEvery is how often the tick profile is logged. Zero disables it.
	ProfileEvery time.Duration `yaml:"profile_every"`
}

type AssetSettings struct {
	// Dir holds block definitions. Empty uses the embedded defaults.
	Dir string `yaml:"dir"`
	// Source is a go-getter URL fetched into Dir before loading.
	Source string `yaml:"source"`
}

type SaveSettings struct {
	Dir     string `yaml:"dir"`
	Catalog string `yaml:"catalog"`
}

type LogSettings struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		World: WorldSettings{
			ViewportWidth:     400,
			ViewportHeight:    225,
			PregenerateRadius: 8,
		},
		Simulation: SimulationSettings{
			UPS:          60,
			MaxCatchUp:   5,
			ProfileEvery: 10 * time.Second,
		},
		Saves: SaveSettings{
			Dir:     "saves",
			Catalog: "saves/catalog.db",
		},
		Log: LogSettings{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.World.ViewportWidth <= 0 || c.World.ViewportHeight <= 0 {
		errs = append(errs, fmt.Errorf("world viewport must be positive, got %dx%d", c.World.ViewportWidth, c.World.ViewportHeight))
	}
	if c.World.PregenerateRadius < 0 {
		errs = append(errs, fmt.Errorf("world pregenerate_radius must not be negative"))
	}
	if c.Simulation.UPS <= 0 || c.Simulation.UPS > 1000 {
		errs = append(errs, fmt.Errorf("simulation ups must be in 1..1000, got %d", c.Simulation.UPS))
	}
	if c.Simulation.MaxCatchUp < 1 {
		errs = append(errs, fmt.Errorf("simulation max_catch_up must be at least 1"))
	}
	if c.Simulation.ProfileEvery < 0 {
		errs = append(errs, fmt.Errorf("simulation profile_every must not be negative"))
	}
	if c.Assets.Source != "" && c.Assets.Dir == "" {
		errs = append(errs, fmt.Errorf("assets source requires assets dir"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Overrides are values given explicitly on the command line. Nil fields
// keep the configured value.
type Overrides struct {
	Seed      *string
	AssetsDir *string
	Source    *string
	SavesDir  *string
	Catalog   *string
	LogLevel  *string
	UPS       *int
}

// Merge applies o over c and validates the result.
func (c *Config) Merge(o Overrides) error {
	setString(&c.World.Seed, o.Seed)
	setString(&c.Assets.Dir, o.AssetsDir)
	setString(&c.Assets.Source, o.Source)
	setString(&c.Saves.Dir, o.SavesDir)
	setString(&c.Saves.Catalog, o.Catalog)
	setString(&c.Log.Level, o.LogLevel)
	if o.UPS != nil {
		c.Simulation.UPS = *o.UPS
	}
	return c.Validate()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}
