// Package wasm decodes the parts of a WebAssembly binary module needed to
// generate typed host bindings.
//
// Only the header and three sections are interpreted:
//
//	Type (1)      function signatures
//	Function (3)  type index of every module-defined function
//	Export (7)    named handles to functions, memories, tables and globals
//
// Every other section, including custom sections and section IDs from later
// revisions of the format, is skipped by its declared length without being
// inspected. Unknown export kinds are skipped the same way.
//
// # Decoding
//
//	data, _ := os.ReadFile("module.wasm")
//	m, err := wasm.Decode(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range m.ExportedFunctions {
//	    fmt.Printf("%s%s\n", f.Name, f.Signature)
//	}
//
// Decode is a pure function of its input: it keeps no global state, performs
// no I/O and may run concurrently on different buffers.
//
// # Value Types
//
// Only the scalar types i32, i64, f32 and f64 are supported. A signature
// using v128 or a reference type fails with ErrUnknownValueType rather than
// being decoded partially.
//
// # Errors
//
// Every failure is an *errors.Error carrying the kind, the byte offset and
// the section being decoded. Match kinds with the sentinels in this package:
//
//	if errors.Is(err, wasm.ErrTruncatedSection) { ... }
//
// # Limitations
//
// Function indices in exports are resolved against module-defined functions
// only. The import section is never read, so a module that imports functions
// and exports by index resolves against the wrong signatures.
//
// # LEB128 Encoding
//
// The package exposes the unsigned LEB128 helpers used throughout:
//
//	n, size, err := wasm.DecodeLEB128u(data)
//	encoded := wasm.EncodeLEB128u(624485) // e5 8e 26
package wasm
