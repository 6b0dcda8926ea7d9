// Package config loads runtime tuning parameters from a YAML file, the
// same os.ReadFile + yaml.Unmarshal pattern the teacher's conformance
// loader uses for its test fixtures.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"forge/clock"
	"forge/runtime"
)

// Config holds the tunables spec.md leaves as implementation-defined
// defaults (max iterations per turn, tick interval), plus trace
// settings. The stack depth bound is the runtime.MaxStackDepth
// constant, not a Config field.
type Config struct {
	MaxIterationsPerTurn int    `yaml:"max_iterations_per_turn"`
	TickIntervalMs       int64  `yaml:"tick_interval_ms"`
	TraceEnabled         bool   `yaml:"trace_enabled"`
	TraceFilters         []string `yaml:"trace_filters"`
}

// Default returns the built-in tunables (spec.md §4.5's defaults: 20
// iterations per turn, 10ms tick — matching the teacher scheduler's own
// 10ms ticker).
func Default() Config {
	return Config{
		MaxIterationsPerTurn: runtime.DefaultMaxIterationsPerTurn,
		TickIntervalMs:       10,
	}
}

// Load reads and parses a YAML config file, falling back to Default()
// for any zero-valued field.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.MaxIterationsPerTurn <= 0 {
		cfg.MaxIterationsPerTurn = runtime.DefaultMaxIterationsPerTurn
	}
	if cfg.TickIntervalMs <= 0 {
		cfg.TickIntervalMs = 10
	}
	return cfg, nil
}

// Clock returns the clock implementation this config implies — always
// the real wall clock outside of tests.
func (c Config) Clock() clock.Clock {
	return clock.Real{}
}
