package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/wasm"
)

// Config holds configuration for runtime creation
// Config configures a Runtime.
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// Runtime compiles and instantiates core modules. Load may be called from
// multiple goroutines.
type Runtime struct {
	wazero wazero.Runtime
}

// New creates a runtime backed by the wazero compiler or interpreter,
// whichever the platform supports.
func New(ctx context.Context, cfg Config) (*Runtime, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	return &Runtime{
		wazero: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
	}, nil
}

// Close releases all runtime resources, including every module and
// instance created from it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.wazero.Close(ctx)
}

// Load decodes the binary and compiles it. Decode errors are returned
// unchanged so callers can match them against the wasm sentinels.
func (r *Runtime) Load(ctx context.Context, data []byte) (*Module, error) {
	desc, err := wasm.Decode(data)
	if err != nil {
		return nil, err
	}

	compiled, err := r.wazero.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "compile module")
	}

	Logger().Debug("module loaded",
		zap.Int("functions", len(desc.ExportedFunctions)),
		zap.Bool("memory", desc.HasExportedMemory),
	)

	return &Module{
		runtime:  r,
		desc:     desc,
		compiled: compiled,
	}, nil
}
