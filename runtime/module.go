package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/wasm"
)

// Module is a compiled module together with its decoded description.
// It is safe for concurrent use.
type Module struct {
	runtime  *Runtime
	desc     *wasm.Module
	compiled wazero.CompiledModule
}

// Description returns the decoded module description. It must not be modified.
func (m *Module) Description() *wasm.Module {
	return m.desc
}

// Instantiate creates a new anonymous instance. A module may be
// instantiated any number of times.
func (m *Module) Instantiate(ctx context.Context) (*Instance, error) {
	cfg := wazero.NewModuleConfig().WithName("").WithStartFunctions()
	mod, err := m.runtime.wazero.InstantiateModule(ctx, m.compiled, cfg)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	Logger().Debug("module instantiated", zap.Int("functions", len(m.desc.ExportedFunctions)))

	return &Instance{
		module: m,
		wazero: mod,
	}, nil
}

// Close releases the compiled code. Instances already created keep
// running until they are closed.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
