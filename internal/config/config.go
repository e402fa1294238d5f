// Package config provides Viper-based configuration loading for the geometry
// engine: global geometry defaults, logging, and watch-mode settings.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/planforge/planforge/internal/engine/unit"
)

// GeometryConfig holds global geometry defaults. Values are expressed in the
// default unit and normalized to meters by the pipeline before use.
type GeometryConfig struct {
	// WallThickness is the thickness of generated wall volumes.
	WallThickness float64 `mapstructure:"wall_thickness"`
	// WallHeight is the wall height used for rooms without an explicit
	// room height.
	WallHeight float64 `mapstructure:"wall_height"`
	// DoorWidth and DoorHeight size single-door openings; double doors are
	// twice as wide.
	DoorWidth  float64 `mapstructure:"door_width"`
	DoorHeight float64 `mapstructure:"door_height"`
	// WindowWidth, WindowHeight, and WindowSill size window openings; the
	// sill is the hole bottom's height above the room floor.
	WindowWidth  float64 `mapstructure:"window_width"`
	WindowHeight float64 `mapstructure:"window_height"`
	WindowSill   float64 `mapstructure:"window_sill"`
	// GlassThickness is the thickness of emitted window glass panes.
	GlassThickness float64 `mapstructure:"glass_thickness"`
	// DefaultUnit governs unit-less scalars when the plan document does not
	// declare its own default.
	DefaultUnit string `mapstructure:"default_unit"`
}

// Unit returns the configured default unit.
//
// Precondition: the config has been validated.
func (g GeometryConfig) Unit() unit.Unit {
	u, _ := unit.Parse(g.DefaultUnit)
	return u
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	// Debounce is the quiet period after the last edit before a recompile.
	Debounce time.Duration `mapstructure:"debounce"`
	// Output is the directory compiled artifacts are written to.
	Output string `mapstructure:"output"`
}

// Config is the top-level application configuration.
type Config struct {
	Geometry GeometryConfig `mapstructure:"geometry"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing
// all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateGeometry(c.Geometry); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWatch(c.Watch); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGeometry(g GeometryConfig) error {
	var errs []string
	positive := []struct {
		name  string
		value float64
	}{
		{"geometry.wall_thickness", g.WallThickness},
		{"geometry.wall_height", g.WallHeight},
		{"geometry.door_width", g.DoorWidth},
		{"geometry.door_height", g.DoorHeight},
		{"geometry.window_width", g.WindowWidth},
		{"geometry.window_height", g.WindowHeight},
		{"geometry.glass_thickness", g.GlassThickness},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got %g", p.name, p.value))
		}
	}
	if g.WindowSill < 0 {
		errs = append(errs, fmt.Sprintf("geometry.window_sill must not be negative, got %g", g.WindowSill))
	}
	if _, err := unit.Parse(g.DefaultUnit); err != nil {
		errs = append(errs, fmt.Sprintf("geometry.default_unit: %v", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateWatch(w WatchConfig) error {
	if w.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", w.Debounce)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with PLANFORGE_ prefix
	v.SetEnvPrefix("PLANFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
//
// Postcondition: Returns a Config that passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshalling pure defaults cannot fail: the schema matches setDefaults.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("geometry.wall_thickness", 0.2)
	v.SetDefault("geometry.wall_height", 2.7)
	v.SetDefault("geometry.door_width", 0.9)
	v.SetDefault("geometry.door_height", 2.1)
	v.SetDefault("geometry.window_width", 1.2)
	v.SetDefault("geometry.window_height", 1.2)
	v.SetDefault("geometry.window_sill", 0.9)
	v.SetDefault("geometry.glass_thickness", 0.02)
	v.SetDefault("geometry.default_unit", "m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("watch.debounce", "300ms")
	v.SetDefault("watch.output", "out")
}
