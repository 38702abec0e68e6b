package bindgen

import (
	"bytes"
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/wasm"
)

// witPackage is the namespace of generated WIT packages.
const witPackage = "wasm-types"

// witType maps a core value type to the WIT primitive of the same width.
// Integers are mapped as signed, like the Go bindings.
func witType(vt wasm.ValueType) (wit.Type, error) {
	switch vt {
	case wasm.ValI32:
		return wit.S32{}, nil
	case wasm.ValI64:
		return wit.S64{}, nil
	case wasm.ValF32:
		return wit.F32{}, nil
	case wasm.ValF64:
		return wit.F64{}, nil
	default:
		return nil, errors.Unsupported(errors.PhaseGenerate, "value type "+vt.String())
	}
}

func witTypes(types []wasm.ValueType) ([]wit.Type, error) {
	out := make([]wit.Type, len(types))
	for i, vt := range types {
		t, err := witType(vt)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// witFunction builds a freestanding function. Multiple results become a
// single anonymous tuple.
func witFunction(name string, f wasm.ExportedFunction) (*wit.Function, error) {
	params, err := witTypes(f.Signature.Params)
	if err != nil {
		return nil, err
	}
	results, err := witTypes(f.Signature.Results)
	if err != nil {
		return nil, err
	}

	fn := &wit.Function{Name: name, Kind: &wit.Freestanding{}}
	for i, t := range params {
		fn.Params = append(fn.Params, wit.Param{Name: fmt.Sprintf("p%d", i), Type: t})
	}
	switch len(results) {
	case 0:
	case 1:
		fn.Results = []wit.Param{{Type: results[0]}}
	default:
		fn.Results = []wit.Param{{Type: &wit.TypeDef{Kind: &wit.Tuple{Types: results}}}}
	}
	if name != f.Name {
		fn.Docs.Contents = fmt.Sprintf("core export %q", f.Name)
	}
	return fn, nil
}

// witWorld builds a package holding one world that exports every function.
func witWorld(m *wasm.Module, name string) (*wit.Package, error) {
	pkg := &wit.Package{Name: wit.Ident{Namespace: witPackage, Package: name}}
	world := &wit.World{Name: name, Package: pkg}
	pkg.Worlds.Set(name, world)

	names := newNamer()
	for _, f := range functions(m) {
		fnName := names.unique(kebab(f.Name), "-v")
		fn, err := witFunction(fnName, f)
		if err != nil {
			return nil, err
		}
		world.Exports.Set(fnName, fn)
	}
	return pkg, nil
}

func generateWIT(m *wasm.Module, opts Options) ([]File, error) {
	pkg, err := witWorld(m, kebab(opts.Name))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// %s\n\n", generatedHeader)
	buf.WriteString(pkg.WIT(nil, ""))
	return []File{{Name: opts.Name + ".wit", Data: buf.Bytes()}}, nil
}
