package runtime

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/wasm"
)

// Instance is an instantiated module. It is not safe for concurrent use.
type Instance struct {
	module *Module
	wazero api.Module
}

// Call invokes an exported function. Each argument must match the Go type
// of the corresponding parameter (see GoType); results are returned as
// int32, int64, float32 or float64 in declaration order.
func (i *Instance) Call(ctx context.Context, name string, args ...any) ([]any, error) {
	fn, ok := i.module.desc.Function(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseRuntime, "function", name)
	}
	params := fn.Signature.Params
	if len(args) != len(params) {
		return nil, errors.InvalidInput(errors.PhaseRuntime,
			fmt.Sprintf("%s: want %d argument(s), got %d", name, len(params), len(args)))
	}

	stack := make([]uint64, len(params))
	for idx, arg := range args {
		v, ok := encodeValue(params[idx], arg)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseRuntime,
				fmt.Sprintf("%s argument %d", name, idx), GoType(params[idx]), arg)
		}
		stack[idx] = v
	}

	export := i.wazero.ExportedFunction(name)
	if export == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "function", name)
	}

	Logger().Debug("call", zap.String("function", name), zap.Int("args", len(args)))

	raw, err := export.Call(ctx, stack...)
	if err != nil {
		return nil, errors.Trap(name, err)
	}

	results := make([]any, len(fn.Signature.Results))
	for idx, vt := range fn.Signature.Results {
		results[idx] = decodeValue(vt, raw[idx])
	}
	return results, nil
}

// Functions returns the exported functions with their signatures.
func (i *Instance) Functions() []wasm.ExportedFunction {
	return i.module.desc.ExportedFunctions
}

// Memory returns the instance's exported memory, or nil when the module
// exports none.
// Memory returns the exported linear memory, or nil when the module
// exports none.
func (i *Instance) Memory() api.Memory {
	if !i.module.desc.HasExportedMemory {
		return nil
	}
	return i.wazero.ExportedMemory(i.module.desc.MemoryName)
}

// Close releases the instance and its memory.
func (i *Instance) Close(ctx context.Context) error {
	return i.wazero.Close(ctx)
}
