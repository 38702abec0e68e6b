// Package wasmtypes generates typed host bindings for core WebAssembly
// modules.
//
// The decoder reads only what bindings need: the function signatures, the
// type index of every defined function, and the export table. Everything
// else in the binary is skipped by its declared length.
//
// # Architecture Overview
//
//	wasmtypes/
//	├── wasm/            Binary decoder: header, type, function and export sections
//	├── errors/          Structured error types with phase, kind and byte offset
//	├── runtime/         wazero-backed loading and typed calls of exported functions
//	├── bindgen/         Go, TypeScript, WIT and YAML manifest generators
//	├── optimizer/       External wasm-opt invocation
//	├── config/          Settings from defaults, YAML file and environment
//	└── cmd/wasm-types/  Command line: generate and inspect
//
// # Quick Start
//
// Decode a module and list its exports:
//
//	m, err := wasm.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range m.ExportedFunctions {
//	    fmt.Printf("%s%s\n", f.Name, f.Signature) // add(i32, i32) -> i32
//	}
//
// Generate bindings into a directory:
//
//	res, err := bindgen.Build(ctx, "demo.wasm", bindgen.BuildOptions{OutDir: "./bindings"})
//
// Or from the command line:
//
//	wasm-types generate demo.wasm -o ./bindings
//	wasm-types inspect demo.wasm --csv
//
// # Thread Safety
//
// wasm.Decode and bindgen.Generate are pure and may run concurrently.
// Runtime and Module are safe for concurrent use. Instance is not and should
// be used by a single goroutine.
package wasmtypes
