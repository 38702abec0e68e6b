package bindgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/optimizer"
	"github.com/wippyai/wasm-types/wasm"
)

// BuildOptions configures Build.
type BuildOptions struct {
	Options

	// OutDir receives the bindings and the module binary.
	OutDir string

	// Optimizer, when set, is run before decoding and its output is shipped
	// instead of the input module.
	Optimizer *optimizer.Optimizer
}

// Result describes a completed build.
type Result struct {
	Module   *wasm.Module
	WasmPath string
	Files    []string
}

// Build reads the module at wasmPath, optionally optimizes it, decodes it,
// and writes the bindings and the module binary into opts.OutDir. The
// optimized intermediate only replaces the shipped binary once every
// binding was written; on failure it is removed.
func Build(ctx context.Context, wasmPath string, opts BuildOptions) (*Result, error) {
	start := time.Now()

	if opts.Name == "" {
		opts.Name = strings.TrimSuffix(filepath.Base(wasmPath), filepath.Ext(wasmPath))
	}
	if opts.OutDir == "" {
		opts.OutDir = "./bindings"
	}

	data, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, errors.IO(errors.PhaseLoad, "read "+wasmPath, err)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, errors.IO(errors.PhaseGenerate, "create output directory", err)
	}

	var intermediate string
	if opts.Optimizer != nil {
		intermediate = filepath.Join(opts.OutDir, opts.Name+".opt.wasm")
		if err := opts.Optimizer.Run(ctx, wasmPath, intermediate); err != nil {
			_ = os.Remove(intermediate)
			return nil, err
		}
		data, err = os.ReadFile(intermediate)
		if err != nil {
			_ = os.Remove(intermediate)
			return nil, errors.IO(errors.PhaseOptimize, "read optimized module", err)
		}
	}

	res, err := build(data, intermediate, opts)
	if err != nil {
		if intermediate != "" {
			_ = os.Remove(intermediate)
		}
		return nil, err
	}

	Logger().Info("bindings generated",
		zap.String("module", opts.Name),
		zap.String("out_dir", opts.OutDir),
		zap.Int("functions", len(res.Module.ExportedFunctions)),
		zap.Bool("memory", res.Module.HasExportedMemory),
		zap.Bool("optimized", intermediate != ""),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func build(data []byte, intermediate string, opts BuildOptions) (*Result, error) {
	m, err := wasm.Decode(data)
	if err != nil {
		return nil, err
	}

	files, err := Generate(m, opts.Options)
	if err != nil {
		return nil, err
	}
	paths, err := WriteFiles(opts.OutDir, files)
	if err != nil {
		removeAll(paths)
		return nil, err
	}

	wasmOut := filepath.Join(opts.OutDir, opts.Name+".wasm")
	if intermediate != "" {
		if err := os.Rename(intermediate, wasmOut); err != nil {
			removeAll(paths)
			return nil, errors.IO(errors.PhaseGenerate, "finalize optimized module", err)
		}
	} else if err := os.WriteFile(wasmOut, data, 0o644); err != nil {
		removeAll(paths)
		return nil, errors.IO(errors.PhaseGenerate, "write module", err)
	}

	return &Result{Module: m, WasmPath: wasmOut, Files: paths}, nil
}

// removeAll deletes bindings written by a build that did not complete.
func removeAll(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			Logger().Warn("remove partial output", zap.String("path", p), zap.Error(err))
		}
	}
}
