// Package config loads wasm-types settings from defaults, an optional YAML
// file and WASMTYPES_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"go/token"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-types/errors"
)

// EnvPrefix prefixes environment overrides; nested keys use '_' for '.',
// e.g. WASMTYPES_OPTIMIZER_ENABLED.
const EnvPrefix = "WASMTYPES"

// Targets lists the binding targets in generation order.
var Targets = []string{"go", "typescript", "wit", "manifest"}

type Config struct {
	OutDir    string          `mapstructure:"out_dir"`
	Name      string          `mapstructure:"name"`
	Targets   []string        `mapstructure:"targets"`
	GoPackage string          `mapstructure:"go_package"`
	LogLevel  string          `mapstructure:"log_level"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Runtime   RuntimeConfig   `mapstructure:"runtime"`
}

// OptimizerConfig controls the external optimizer step.
type OptimizerConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// RuntimeConfig holds wazero runtime limits.
type RuntimeConfig struct {
	// Memory limit per instance in 64KB pages. 0 keeps the wazero default.
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages"`
}

// New returns a viper instance with defaults and environment binding set.
// Callers may bind flags to it before passing it to Decode.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("out_dir", "./bindings")
	v.SetDefault("name", "")
	v.SetDefault("targets", Targets)
	v.SetDefault("go_package", "bindings")
	v.SetDefault("log_level", "info")

	v.SetDefault("optimizer.enabled", false)
	v.SetDefault("optimizer.command", "wasm-opt")
	v.SetDefault("optimizer.args", []string{"-O3"})

	v.SetDefault("runtime.memory_limit_pages", 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path (skipped when empty) over defaults
// and environment, then validates it.
func Load(path string) (*Config, error) {
	v := New()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// ReadFile merges the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.IO(errors.PhaseConfig, "read config "+path, err)
	}
	return nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutDir) == "" {
		return errors.InvalidInput(errors.PhaseConfig, "out_dir must not be empty")
	}
	if len(c.Targets) == 0 {
		return errors.InvalidInput(errors.PhaseConfig, "at least one target is required")
	}
	for _, t := range c.Targets {
		if !slices.Contains(Targets, t) {
			return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Value(t).
				Detail("unknown target %q (want one of %s)", t, strings.Join(Targets, ", ")).
				Build()
		}
	}
	if !token.IsIdentifier(c.GoPackage) {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("go_package %q is not a Go identifier", c.GoPackage))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log_level")
	}
	if c.Optimizer.Enabled && c.Optimizer.Command == "" {
		return errors.InvalidInput(errors.PhaseConfig, "optimizer.command must be set when the optimizer is enabled")
	}
	if c.Runtime.MemoryLimitPages > 65536 {
		return errors.InvalidInput(errors.PhaseConfig, "runtime.memory_limit_pages exceeds 65536")
	}
	return nil
}

// HasTarget reports whether name is among the configured targets.
func (c *Config) HasTarget(name string) bool {
	return slices.Contains(c.Targets, name)
}
