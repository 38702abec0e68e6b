package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-types/bindgen"
	"github.com/wippyai/wasm-types/config"
	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/optimizer"
	"github.com/wippyai/wasm-types/runtime"
)

var version = "0.1.0"

// app holds the state shared by all subcommands.
type app struct {
	configFile string
	logger     *zap.Logger
}

func main() {
	a := &app{}
	err := a.rootCommand().Execute()
	a.sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "wasm-types",
		Short: "Typed bindings for core WebAssembly modules",
		Long: `wasm-types reads the type, function and export sections of a core
WebAssembly module and generates typed bindings for its exported functions.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "path to a YAML config file")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(a.generateCommand())
	root.AddCommand(a.inspectCommand())
	return root
}

// loadConfig layers defaults, the config file, environment and the flags
// named in bindings (config key to flag name), then installs the logger.
func (a *app) loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	v := config.New()
	if err := config.ReadFile(v, a.configFile); err != nil {
		return nil, err
	}

	if err := bindFlag(v, cmd, "log_level", "log-level"); err != nil {
		return nil, err
	}
	for key, name := range bindings {
		if err := bindFlag(v, cmd, key, name); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "build logger")
	}
	a.logger = logger
	runtime.SetLogger(logger)
	bindgen.SetLogger(logger)
	optimizer.SetLogger(logger)
	return cfg, nil
}

func bindFlag(v *viper.Viper, cmd *cobra.Command, key, name string) error {
	f := cmd.Flag(name)
	if f == nil {
		return errors.NotFound(errors.PhaseConfig, "flag", name)
	}
	if err := v.BindPFlag(key, f); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "bind flag "+name)
	}
	return nil
}

// newLogger returns a development logger for debug and a production logger
// at the given level otherwise.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if lvl == zapcore.DebugLevel {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func (a *app) sync() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func expectOneArg(args []string) error {
	if len(args) != 1 {
		return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("expected exactly one module path, got %d arguments", len(args)))
	}
	return nil
}
