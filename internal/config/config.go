// Package config loads gearmatrix settings.
//
// Settings come from, lowest precedence first: built-in defaults, a YAML
// file, .env files, then GEARMATRIX_* environment variables. Command-line
// flags override all of them and are applied by the CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/roach88/gearmatrix/internal/compiler"
	"github.com/roach88/gearmatrix/internal/units"
)

// Environment variables read by Load.
const (
	EnvLengthUnit = "GEARMATRIX_LENGTH_UNIT"
	EnvTorqueUnit = "GEARMATRIX_TORQUE_UNIT"
	EnvCompat     = "GEARMATRIX_COMPAT"
	EnvFormat     = "GEARMATRIX_FORMAT"
	EnvWorkers    = "GEARMATRIX_WORKERS"
	EnvLogLevel   = "GEARMATRIX_LOG_LEVEL"
)

// DefaultEnvFile is the .env file the CLI loads when present.
const DefaultEnvFile = ".env"

// Config holds settings shared by every command.
type Config struct {
	Units    Units  `yaml:"units"`
	Compat   string `yaml:"compat"`    // off | warn | strict
	Format   string `yaml:"format"`    // text | json
	Workers  int    `yaml:"workers"`   // batch workers, 0 means one per CPU
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// Units are the default units for form input and reports.
type Units struct {
	Length string `yaml:"length"`
	Torque string `yaml:"torque"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load builds a Config from an optional YAML file (path may be empty),
// optional .env files, and the process environment, then applies defaults
// and validates. Missing .env files are skipped; a missing YAML file is an
// error. Variables already set in the process win over .env values.
func Load(path string, envFiles ...string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	}

	env, err := readEnv(envFiles)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readEnv merges .env files (earlier files win, as with godotenv.Load) and
// the process environment (which wins over both).
func readEnv(files []string) (map[string]string, error) {
	env := make(map[string]string)

	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", file, err)
		}
		for k, v := range values {
			if _, ok := env[k]; !ok {
				env[k] = v
			}
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "GEARMATRIX_") {
			env[k] = v
		}
	}

	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	if v := env[EnvLengthUnit]; v != "" {
		c.Units.Length = v
	}
	if v := env[EnvTorqueUnit]; v != "" {
		c.Units.Torque = v
	}
	if v := env[EnvCompat]; v != "" {
		c.Compat = v
	}
	if v := env[EnvFormat]; v != "" {
		c.Format = v
	}
	if v := env[EnvLogLevel]; v != "" {
		c.LogLevel = v
	}
	if v := env[EnvWorkers]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvWorkers, v)
		}
		c.Workers = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Units.Length == "" {
		c.Units.Length = units.BaseLength
	}
	if c.Units.Torque == "" {
		c.Units.Torque = units.BaseTorque
	}
	if c.Compat == "" {
		c.Compat = string(compiler.CompatWarn)
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	var problems []string

	if _, err := units.CanonicalLength(c.Units.Length); err != nil {
		problems = append(problems, "units.length: "+err.Error())
	}
	if _, err := units.CanonicalTorque(c.Units.Torque); err != nil {
		problems = append(problems, "units.torque: "+err.Error())
	}
	if _, err := compiler.ParseCompatMode(c.Compat); err != nil {
		problems = append(problems, "compat: "+err.Error())
	}
	if c.Format != "text" && c.Format != "json" {
		problems = append(problems, fmt.Sprintf("format: %q must be text or json", c.Format))
	}
	if c.Workers < 0 {
		problems = append(problems, "workers must not be negative")
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		problems = append(problems, fmt.Sprintf("log_level: %q is not a log level", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// CompatMode returns the validated compatibility mode.
func (c *Config) CompatMode() compiler.CompatMode {
	mode, err := compiler.ParseCompatMode(c.Compat)
	if err != nil {
		return compiler.CompatWarn
	}
	return mode
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
