package bindgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wippyai/wasm-types/wasm"
)

// tsType maps a value type to its JavaScript representation. i64 crosses
// the JS boundary as BigInt.
func tsType(vt wasm.ValueType) string {
	if vt == wasm.ValI64 {
		return "bigint"
	}
	return "number"
}

// jsString renders s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// jsProp renders a property key, quoting names that are not identifiers.
func jsProp(name string) string {
	if isJSIdent(name) {
		return name
	}
	return jsString(name)
}

func tsReturn(results []wasm.ValueType) string {
	switch len(results) {
	case 0:
		return "void"
	case 1:
		return tsType(results[0])
	default:
		parts := make([]string, len(results))
		for i, r := range results {
			parts[i] = tsType(r)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
}

func generateTypeScript(m *wasm.Module, opts Options) ([]File, error) {
	typeName := goIdent(opts.Name)
	funcs := functions(m)

	// The loaded object carries rawExports and memory next to the wrappers.
	props := newNamer("rawExports", "memory")
	keys := make([]string, len(funcs))
	for i, f := range funcs {
		keys[i] = jsProp(props.unique(f.Name, ""))
	}

	var dts bytes.Buffer
	fmt.Fprintf(&dts, "// %s\n\n", generatedHeader)
	fmt.Fprintf(&dts, "export interface %sExports {\n", typeName)
	for fi, f := range funcs {
		params := make([]string, len(f.Signature.Params))
		for i, p := range f.Signature.Params {
			params[i] = fmt.Sprintf("a%d: %s", i, tsType(p))
		}
		fmt.Fprintf(&dts, "  /** %s */\n", f.Signature)
		fmt.Fprintf(&dts, "  %s(%s): %s;\n", keys[fi], strings.Join(params, ", "), tsReturn(f.Signature.Results))
	}
	dts.WriteString("}\n\n")

	dts.WriteString("export interface LoaderOptions {\n  importObject?: WebAssembly.Imports;\n}\n\n")

	memType := "null"
	if m.HasExportedMemory {
		memType = "WebAssembly.Memory"
	}
	fmt.Fprintf(&dts, "export type Loaded%s = %sExports & {\n", typeName, typeName)
	dts.WriteString("  rawExports: WebAssembly.Exports;\n")
	fmt.Fprintf(&dts, "  memory: %s;\n", memType)
	dts.WriteString("};\n\n")

	fmt.Fprintf(&dts, "export declare function load%s(\n", typeName)
	dts.WriteString("  source: BufferSource | Response | Promise<Response>,\n")
	dts.WriteString("  options?: LoaderOptions,\n")
	fmt.Fprintf(&dts, "): Promise<Loaded%s>;\n", typeName)

	var js bytes.Buffer
	fmt.Fprintf(&js, "// %s\n\n", generatedHeader)
	fmt.Fprintf(&js, "export async function load%s(source, options = {}) {\n", typeName)
	js.WriteString("  const importObject = options.importObject ?? {};\n")
	js.WriteString("  const streaming = typeof Response !== \"undefined\" &&\n")
	js.WriteString("    (source instanceof Response || source instanceof Promise);\n")
	js.WriteString("  const { instance } = streaming\n")
	js.WriteString("    ? await WebAssembly.instantiateStreaming(source, importObject)\n")
	js.WriteString("    : await WebAssembly.instantiate(source, importObject);\n")
	js.WriteString("  const raw = instance.exports;\n")
	js.WriteString("  return {\n")
	js.WriteString("    rawExports: raw,\n")
	if m.HasExportedMemory {
		fmt.Fprintf(&js, "    memory: raw[%s],\n", jsString(m.MemoryName))
	} else {
		js.WriteString("    memory: null,\n")
	}
	for fi, f := range funcs {
		args := make([]string, len(f.Signature.Params))
		for i := range args {
			args[i] = fmt.Sprintf("a%d", i)
		}
		list := strings.Join(args, ", ")
		fmt.Fprintf(&js, "    %s: (%s) => raw[%s](%s),\n", keys[fi], list, jsString(f.Name), list)
	}
	js.WriteString("  };\n}\n")

	return []File{
		{Name: opts.Name + ".d.ts", Data: dts.Bytes()},
		{Name: opts.Name + ".js", Data: js.Bytes()},
	}, nil
}
