// Package bindgen generates typed host bindings from a decoded module.
//
// # Targets
//
//	go          <name>_bindings.go     methods over runtime.Instance
//	typescript  <name>.d.ts, <name>.js declarations and an ES module loader
//	wit         <name>.wit             a world exporting each function
//	manifest    <name>.bindings.yaml   signatures, memory and raw exports
//
// Value types map as follows:
//
//	WASM   Go       TypeScript  WIT
//	──────────────────────────────────
//	i32    int32    number      s32
//	i64    int64    bigint      s64
//	f32    float32  number      f32
//	f64    float64  number      f64
//
// # Generating
//
//	m, err := wasm.Decode(data)
//	if err != nil {
//	    return err
//	}
//	files, err := bindgen.Generate(m, bindgen.Options{Name: "demo"})
//	if err != nil {
//	    return err
//	}
//	_, err = bindgen.WriteFiles("./bindings", files)
//
// Build runs the whole pipeline from a file on disk, including the optional
// optimizer step.
//
// Export names are converted to the identifier rules of each target.
// Names that collide after conversion get a numeric suffix.
package bindgen
