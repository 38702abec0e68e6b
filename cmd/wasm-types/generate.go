package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wippyai/wasm-types/bindgen"
	"github.com/wippyai/wasm-types/config"
	"github.com/wippyai/wasm-types/optimizer"
)

func (a *app) generateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "generate <file.wasm>",
		Short: "Generate bindings for a module",
		Long: `Generate Go, TypeScript, WIT and manifest bindings for the exported
functions of a core WebAssembly module. The module binary is copied next
to the bindings, optimized first when --optimize is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := expectOneArg(args); err != nil {
				return err
			}
			cfg, err := a.loadConfig(cmd, map[string]string{
				"out_dir":           "out-dir",
				"name":              "name",
				"targets":           "target",
				"go_package":        "go-package",
				"optimizer.enabled": "optimize",
			})
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), args[0], cfg)
		},
	}

	flags := command.Flags()
	flags.StringP("out-dir", "o", "./bindings", "output directory")
	flags.StringP("name", "n", "", "module name (default: file basename)")
	flags.StringSliceP("target", "t", config.Targets, "binding targets to generate")
	flags.String("go-package", "bindings", "package name for the Go bindings")
	flags.Bool("optimize", false, "run the optimizer before decoding")

	return command
}

func runGenerate(ctx context.Context, w io.Writer, wasmFile string, cfg *config.Config) error {
	targets, err := bindgen.ParseTargets(cfg.Targets)
	if err != nil {
		return err
	}

	opts := bindgen.BuildOptions{
		Options: bindgen.Options{
			Name:      cfg.Name,
			Targets:   targets,
			GoPackage: cfg.GoPackage,
		},
		OutDir: cfg.OutDir,
	}
	if cfg.Optimizer.Enabled {
		opts.Optimizer = &optimizer.Optimizer{
			Command: cfg.Optimizer.Command,
			Args:    cfg.Optimizer.Args,
		}
	}

	absPath, err := filepath.Abs(wasmFile)
	if err != nil {
		absPath = wasmFile
	}
	outDir, err := filepath.Abs(cfg.OutDir)
	if err != nil {
		outDir = cfg.OutDir
	}

	fmt.Fprintf(w, "[wasm-types] Parsing %s...\n", absPath)
	if opts.Optimizer != nil {
		fmt.Fprintf(w, "[wasm-types] Optimizing with %s...\n", opts.Optimizer.Command)
	}
	fmt.Fprintf(w, "[wasm-types] Generating bindings in %s...\n", outDir)

	res, err := bindgen.Build(ctx, wasmFile, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "[wasm-types] %d exported functions\n", len(res.Module.ExportedFunctions))
	for _, f := range res.Files {
		fmt.Fprintf(w, "[wasm-types]   %s\n", f)
	}
	fmt.Fprintf(w, "[wasm-types]   %s\n", res.WasmPath)
	fmt.Fprintln(w, "[wasm-types] Done!")
	return nil
}
