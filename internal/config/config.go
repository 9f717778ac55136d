// Package config loads the qtbook configuration file.
//
// Values are resolved in order: built-in defaults, the YAML file, then
// QTBOOK_* environment variables. Command-line flags are applied on top by
// the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the full configuration.
type Config struct {
	Build  BuildConfig  `yaml:"build"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// BuildConfig controls opening book generation.
type BuildConfig struct {
	MaxDepth  int    `yaml:"max_depth"`  // Search horizon of the book
	CacheSize uint32 `yaml:"cache_size"` // Solver cache entries, 0 disables
	Workers   int    `yaml:"workers"`    // Concurrent horizon solves, 0 = NumCPU
	OutDir    string `yaml:"out_dir"`    // Directory for the book and checkpoints
	DOT       bool   `yaml:"dot"`        // Also write the tree as Graphviz DOT
}

// ServerConfig controls the lookup server.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	BookPath       string        `yaml:"book_path"` // Empty serves without a book
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxFastWorkers int           `yaml:"max_fast_workers"`
	MaxSlowWorkers int           `yaml:"max_slow_workers"`
	SolverWorkers  int           `yaml:"solver_workers"`
	SolveTimeout   time.Duration `yaml:"solve_timeout"`
	CacheSize      uint32        `yaml:"cache_size"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // zerolog level name
	Format string `yaml:"format"` // "console" or "json"
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Build: BuildConfig{
			MaxDepth:  3,
			CacheSize: 1 << 20,
			Workers:   0,
			OutDir:    ".",
		},
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			BookPath:       "opening_book.bin",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   90 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxFastWorkers: 100,
			MaxSlowWorkers: 2,
			SolveTimeout:   60 * time.Second,
			CacheSize:      1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the configuration at path over the defaults. An empty path
// yields the defaults with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QTBOOK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("QTBOOK_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("QTBOOK_BOOK"); v != "" {
		cfg.Server.BookPath = v
	}
	if v := os.Getenv("QTBOOK_PORT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = i
		}
	}
	if v := os.Getenv("QTBOOK_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Build.Workers = i
			cfg.Server.SolverWorkers = i
		}
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Build.MaxDepth < 0 || c.Build.MaxDepth > 4 {
		return fmt.Errorf("build.max_depth %d out of range [0, 4]", c.Build.MaxDepth)
	}
	if c.Build.Workers < 0 {
		return fmt.Errorf("build.workers must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxFastWorkers < 0 || c.Server.MaxSlowWorkers < 0 || c.Server.SolverWorkers < 0 {
		return fmt.Errorf("server worker limits must not be negative")
	}
	if c.Server.SolveTimeout < 0 {
		return fmt.Errorf("server.solve_timeout must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q: want console or json", c.Log.Format)
	}
	return nil
}

// ZerologLevel returns the configured log level, defaulting to info.
func (c LogConfig) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
