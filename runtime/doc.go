// Package runtime runs core WebAssembly modules on wazero and calls their
// exports through the signatures recovered by package wasm.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, runtime.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := rt.Load(ctx, wasmBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	inst, err := mod.Instantiate(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer inst.Close(ctx)
//
//	results, err := inst.Call(ctx, "add", int32(2), int32(3))
//	fmt.Println(results[0]) // 5
//
// # Type Mapping
//
// Arguments are checked against the decoded signature before the call:
//
//	WASM Type   Go Type
//	───────────────────
//	i32         int32 (also uint32, or int when it fits)
//	i64         int64 (also uint64 or int)
//	f32         float32
//	f64         float64
//
// A mismatch fails with an error of kind type_mismatch and the guest is
// never entered. Results always use the first Go type of each row.
//
// # Memory
//
// Memory returns the exported linear memory as a wazero api.Memory, or nil
// when the module exports none.
//
// # Thread Safety
//
// Runtime and Module are safe for concurrent use. An Instance must be used
// from one goroutine at a time.
package runtime
