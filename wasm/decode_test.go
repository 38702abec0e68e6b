package wasm_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	werrors "github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/internal/wasmtest"
	"github.com/wippyai/wasm-types/wasm"
)

var (
	i32 = wasm.ValI32
	i64 = wasm.ValI64
	f32 = wasm.ValF32
	f64 = wasm.ValF64
)

func sig(params []wasm.ValueType, results ...wasm.ValueType) wasm.FunctionType {
	if len(results) == 0 {
		results = nil
	}
	return wasm.FunctionType{Params: params, Results: results}
}

func vals(v ...wasm.ValueType) []wasm.ValueType { return v }

func asError(t *testing.T, err error) *werrors.Error {
	t.Helper()
	var e *werrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	return e
}

func TestDecodeHeaderOnly(t *testing.T) {
	m, err := wasm.Decode(wasmtest.Header)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if m.FunctionTypes != nil || m.FunctionTypeIndices != nil || m.ExportedFunctions != nil || m.Exports != nil {
		t.Errorf("expected empty module, got %+v", m)
	}
	if m.HasExportedMemory {
		t.Error("HasExportedMemory should be false")
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		want   error
		offset int
	}{
		{"empty", nil, wasm.ErrUnexpectedEOF, 0},
		{"short magic", []byte{0x00, 0x61, 0x73}, wasm.ErrUnexpectedEOF, 0},
		{"zero magic", []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, wasm.ErrInvalidHeader, 0},
		{"bad magic short", []byte{0x7f, 0x45, 0x4c, 0x46}, wasm.ErrInvalidHeader, 0},
		{"short version", []byte{0x00, 0x61, 0x73, 0x6D, 0x01}, wasm.ErrUnexpectedEOF, 4},
		{"version 2", []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}, wasm.ErrUnsupportedVersion, 4},
		{"component layer", []byte{0x00, 0x61, 0x73, 0x6D, 0x0d, 0x00, 0x01, 0x00}, wasm.ErrUnsupportedVersion, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := wasm.Decode(tt.data)
			if m != nil {
				t.Errorf("expected nil module on error, got %+v", m)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if e := asError(t, err); e.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", e.Offset, tt.offset)
			}
		})
	}
}

func TestDecodeInvalidMagicBeforeSections(t *testing.T) {
	// A broken section after a bad magic must not be what gets reported.
	data := append([]byte{0xde, 0xad, 0xbe, 0xef, 0x01, 0x00, 0x00, 0x00}, 0x01, 0xff)
	_, err := wasm.Decode(data)
	if !errors.Is(err, wasm.ErrInvalidHeader) {
		t.Errorf("got %v, want ErrInvalidHeader", err)
	}
}

func TestDecodeAddModule(t *testing.T) {
	m, err := wasm.Decode(wasmtest.AddModule(false))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := []wasm.ExportedFunction{{
		Name:      "add",
		TypeIndex: 0,
		Signature: sig(vals(i32, i32), i32),
	}}
	if !reflect.DeepEqual(m.ExportedFunctions, want) {
		t.Errorf("ExportedFunctions = %+v, want %+v", m.ExportedFunctions, want)
	}
	if m.HasExportedMemory {
		t.Error("HasExportedMemory should be false")
	}
	if m.MemoryName != "" {
		t.Errorf("MemoryName = %q, want empty", m.MemoryName)
	}
	if got := m.ExportedFunctions[0].Signature.String(); got != "(i32, i32) -> i32" {
		t.Errorf("Signature.String() = %q", got)
	}
}

func TestDecodeAddModuleWithMemory(t *testing.T) {
	plain, err := wasm.Decode(wasmtest.AddModule(false))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m, err := wasm.Decode(wasmtest.AddModule(true))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !m.HasExportedMemory {
		t.Error("HasExportedMemory should be true")
	}
	if m.MemoryName != "memory" {
		t.Errorf("MemoryName = %q, want %q", m.MemoryName, "memory")
	}
	if !reflect.DeepEqual(m.ExportedFunctions, plain.ExportedFunctions) {
		t.Errorf("ExportedFunctions changed: %+v vs %+v", m.ExportedFunctions, plain.ExportedFunctions)
	}
	if len(m.Exports) != 2 || m.Exports[1].Kind != wasm.ExportMemory {
		t.Errorf("Exports = %+v", m.Exports)
	}
}

func TestDecodeDeterministic(t *testing.T) {
	data := wasmtest.Module(true,
		wasmtest.Func{Name: "add", Signature: wasmtest.AddSignature, Body: wasmtest.AddBody},
		wasmtest.Func{Name: "mix", Signature: sig(vals(i32, i64, f32, f64), f64)},
		wasmtest.Func{Name: "tick", Signature: sig(nil)},
	)

	a, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("decodes differ:\n%+v\n%+v", a, b)
	}
}

func TestDecodeSkipsUnknownSections(t *testing.T) {
	types := wasmtest.TypeSection(wasmtest.AddSignature)
	funcs := wasmtest.FunctionSection(0)
	exports := wasmtest.ExportSection(wasm.Export{Name: "add", Kind: wasm.ExportFunc})
	code := wasmtest.CodeSection(wasmtest.AddBody)

	base, err := wasm.Decode(wasmtest.Encode(types, funcs, exports, code))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"id 99 between type and function", wasmtest.Encode(
			types, wasmtest.RawSection(99, []byte{0x01, 0x60, 0xff, 0x00}), funcs, exports, code)},
		{"id 99 at end", wasmtest.Encode(
			types, funcs, exports, code, wasmtest.RawSection(99, []byte{0xde, 0xad}))},
		{"empty unknown section first", wasmtest.Encode(
			wasmtest.RawSection(200, nil), types, funcs, exports, code)},
		{"custom section", wasmtest.Encode(
			wasmtest.CustomSection("name", []byte{0x00, 0x01, 0x02}), types, funcs, exports, code)},
		{"import section not inspected", wasmtest.Encode(
			types, wasmtest.RawSection(wasm.SectionImport, []byte{0xff, 0xff, 0xff}), funcs, exports, code)},
		{"without code section", wasmtest.Encode(types, funcs, exports)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := wasm.Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(m, base) {
				t.Errorf("got %+v, want %+v", m, base)
			}
		})
	}
}

func TestDecodeSectionOrderNotEnforced(t *testing.T) {
	data := wasmtest.Encode(
		wasmtest.ExportSection(wasm.Export{Name: "add", Kind: wasm.ExportFunc}),
		wasmtest.FunctionSection(0),
		wasmtest.TypeSection(wasmtest.AddSignature),
	)
	m, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f, ok := m.Function("add"); !ok || f.Signature.String() != "(i32, i32) -> i32" {
		t.Errorf("Function(add) = %+v, %v", f, ok)
	}
}

func TestDecodeSectionTrailingBytesIgnored(t *testing.T) {
	// A type section whose declared length exceeds its entries: the
	// walker resumes at the declared end.
	types := wasmtest.TypeSection(wasmtest.AddSignature)
	types.Payload = append(types.Payload, 0xff, 0xff, 0xff)

	m, err := wasm.Decode(wasmtest.Encode(
		types,
		wasmtest.FunctionSection(0),
		wasmtest.ExportSection(wasm.Export{Name: "add", Kind: wasm.ExportFunc}),
	))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.ExportedFunctions) != 1 {
		t.Errorf("ExportedFunctions = %+v", m.ExportedFunctions)
	}
}

func TestDecodeSignatures(t *testing.T) {
	funcs := []wasmtest.Func{
		{Name: "add", Signature: sig(vals(i32, i32), i32)},
		{Name: "negate_i64", Signature: sig(vals(i64), i64)},
		{Name: "half_f32", Signature: sig(vals(f32), f32)},
		{Name: "hypotenuse", Signature: sig(vals(f64, f64), f64)},
		{Name: "mix", Signature: sig(vals(i32, i64, f32, f64), f64)},
		{Name: "get_magic_number", Signature: sig(nil, i32)},
		{Name: "reset", Signature: sig(nil)},
		{Name: "pair", Signature: sig(vals(i32), i32, i64)},
	}

	m, err := wasm.Decode(wasmtest.Module(true, funcs...))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.ExportedFunctions) != len(funcs) {
		t.Fatalf("got %d exported functions, want %d", len(m.ExportedFunctions), len(funcs))
	}
	for i, f := range funcs {
		got := m.ExportedFunctions[i]
		if got.Name != f.Name {
			t.Errorf("[%d] name = %q, want %q", i, got.Name, f.Name)
		}
		if got.TypeIndex != uint32(i) {
			t.Errorf("[%d] type index = %d, want %d", i, got.TypeIndex, i)
		}
		if !reflect.DeepEqual(got.Signature, f.Signature) {
			t.Errorf("[%d] signature = %v, want %v", i, got.Signature, f.Signature)
		}
	}
}

func TestDecodeSharedTypeEntry(t *testing.T) {
	data := wasmtest.Encode(
		wasmtest.TypeSection(sig(nil), wasmtest.AddSignature),
		wasmtest.FunctionSection(1, 0, 1),
		wasmtest.ExportSection(
			wasm.Export{Name: "first", Kind: wasm.ExportFunc, Index: 0},
			wasm.Export{Name: "third", Kind: wasm.ExportFunc, Index: 2},
		),
	)
	m, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for _, f := range m.ExportedFunctions {
		if f.TypeIndex != 1 || f.Signature.String() != "(i32, i32) -> i32" {
			t.Errorf("%s: type %d %s", f.Name, f.TypeIndex, f.Signature)
		}
	}
	// Resolved signatures do not alias the type table.
	m.ExportedFunctions[0].Signature.Params[0] = wasm.ValF64
	if m.FunctionTypes[1].Params[0] != wasm.ValI32 {
		t.Error("mutating a resolved signature changed FunctionTypes")
	}
}

func TestDecodeExportKinds(t *testing.T) {
	data := wasmtest.Encode(
		wasmtest.TypeSection(wasmtest.AddSignature),
		wasmtest.FunctionSection(0),
		wasmtest.ExportSection(
			wasm.Export{Name: "table", Kind: wasm.ExportTable, Index: 0},
			wasm.Export{Name: "add", Kind: wasm.ExportFunc, Index: 0},
			wasm.Export{Name: "COUNTER", Kind: wasm.ExportGlobal, Index: 3},
			wasm.Export{Name: "tag", Kind: wasm.ExportKind(0x04), Index: 0},
			wasm.Export{Name: "mem", Kind: wasm.ExportMemory, Index: 0},
			wasm.Export{Name: "mem2", Kind: wasm.ExportMemory, Index: 1},
		),
	)

	m, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.ExportedFunctions) != 1 || m.ExportedFunctions[0].Name != "add" {
		t.Errorf("ExportedFunctions = %+v", m.ExportedFunctions)
	}
	if !m.HasExportedMemory || m.MemoryName != "mem" {
		t.Errorf("memory = %v %q, want true %q", m.HasExportedMemory, m.MemoryName, "mem")
	}
	if len(m.Exports) != 6 {
		t.Fatalf("Exports = %+v", m.Exports)
	}
	if got := m.Exports[3].Kind.String(); got != "unknown" {
		t.Errorf("Exports[3].Kind = %q, want unknown", got)
	}
}

func TestDecodeDuplicateExportNames(t *testing.T) {
	data := wasmtest.Encode(
		wasmtest.TypeSection(sig(nil), wasmtest.AddSignature),
		wasmtest.FunctionSection(0, 1),
		wasmtest.ExportSection(
			wasm.Export{Name: "f", Kind: wasm.ExportFunc, Index: 0},
			wasm.Export{Name: "f", Kind: wasm.ExportFunc, Index: 1},
		),
	)
	m, err := wasm.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.ExportedFunctions) != 2 {
		t.Fatalf("ExportedFunctions = %+v", m.ExportedFunctions)
	}
	if m.ExportedFunctions[0].TypeIndex != 0 || m.ExportedFunctions[1].TypeIndex != 1 {
		t.Errorf("order not preserved: %+v", m.ExportedFunctions)
	}
	f, _ := m.Function("f")
	if f.TypeIndex != 0 {
		t.Errorf("Function returned %+v, want first entry", f)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    error
		section string
		offset  int // checked when non-zero
	}{
		{
			name: "duplicate type section",
			data: wasmtest.Encode(
				wasmtest.TypeSection(wasmtest.AddSignature),
				wasmtest.TypeSection(wasmtest.AddSignature),
			),
			want:    wasm.ErrDuplicateSection,
			section: "type",
		},
		{
			name: "duplicate export section",
			data: wasmtest.Encode(
				wasmtest.ExportSection(),
				wasmtest.ExportSection(),
			),
			want:    wasm.ErrDuplicateSection,
			section: "export",
		},
		{
			name: "duplicate function section",
			data: wasmtest.Encode(
				wasmtest.FunctionSection(0),
				wasmtest.FunctionSection(0),
			),
			want:    wasm.ErrDuplicateSection,
			section: "function",
		},
		{
			name:    "invalid type form",
			data:    wasmtest.Encode(wasmtest.RawSection(wasm.SectionType, []byte{0x01, 0x5f, 0x00, 0x00})),
			want:    wasm.ErrInvalidTypeForm,
			section: "type",
		},
		{
			name:    "v128 param",
			data:    wasmtest.Encode(wasmtest.RawSection(wasm.SectionType, []byte{0x01, 0x60, 0x01, 0x7b, 0x00})),
			want:    wasm.ErrUnknownValueType,
			section: "type",
		},
		{
			name:    "funcref result",
			data:    wasmtest.Encode(wasmtest.RawSection(wasm.SectionType, []byte{0x01, 0x60, 0x00, 0x01, 0x70})),
			want:    wasm.ErrUnknownValueType,
			section: "type",
		},
		{
			name:    "type count past section",
			data:    wasmtest.Encode(wasmtest.RawSection(wasm.SectionType, []byte{0x02, 0x60, 0x00, 0x00})),
			want:    wasm.ErrUnexpectedEOF,
			section: "type",
			offset:  14,
		},
		{
			name:    "function index truncated",
			data:    wasmtest.Encode(wasmtest.RawSection(wasm.SectionFunction, []byte{0x01, 0x80})),
			want:    wasm.ErrUnexpectedEOF,
			section: "function",
			offset:  11,
		},
		{
			name:    "function index overflow",
			data:    wasmtest.Encode(wasmtest.RawSection(wasm.SectionFunction, []byte{0x01, 0xff, 0xff, 0xff, 0xff, 0x7f})),
			want:    wasm.ErrIntegerOverflow,
			section: "function",
			offset:  11,
		},
		{
			name:    "export name not utf-8",
			data:    wasmtest.Encode(wasmtest.RawSection(wasm.SectionExport, []byte{0x01, 0x02, 0xc3, 0x28, 0x00, 0x00})),
			want:    wasm.ErrInvalidUTF8,
			section: "export",
		},
		{
			name:    "export name past section",
			data:    wasmtest.Encode(wasmtest.RawSection(wasm.SectionExport, []byte{0x01, 0x05, 'a', 'b'})),
			want:    wasm.ErrUnexpectedEOF,
			section: "export",
		},
		{
			name: "export function index out of range",
			data: wasmtest.Encode(
				wasmtest.TypeSection(wasmtest.AddSignature),
				wasmtest.FunctionSection(0),
				wasmtest.ExportSection(wasm.Export{Name: "ghost", Kind: wasm.ExportFunc, Index: 1}),
			),
			want:    wasm.ErrInvalidFunctionIndex,
			section: "export",
		},
		{
			name: "export without function section",
			data: wasmtest.Encode(
				wasmtest.TypeSection(wasmtest.AddSignature),
				wasmtest.ExportSection(wasm.Export{Name: "add", Kind: wasm.ExportFunc, Index: 0}),
			),
			want:    wasm.ErrInvalidFunctionIndex,
			section: "export",
		},
		{
			name: "function type index out of range",
			data: wasmtest.Encode(
				wasmtest.TypeSection(wasmtest.AddSignature),
				wasmtest.FunctionSection(5),
				wasmtest.ExportSection(wasm.Export{Name: "add", Kind: wasm.ExportFunc, Index: 0}),
			),
			want:    wasm.ErrInvalidTypeIndex,
			section: "export",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := wasm.Decode(tt.data)
			if m != nil {
				t.Errorf("expected nil module, got %+v", m)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			e := asError(t, err)
			if e.Section != tt.section {
				t.Errorf("section = %q, want %q", e.Section, tt.section)
			}
			// A read that runs off the end reports the offset it started at,
			// which may be one past the last byte.
			if e.Offset < len(wasmtest.Header) || e.Offset > len(tt.data) {
				t.Errorf("offset %d outside module body [%d, %d]", e.Offset, len(wasmtest.Header), len(tt.data))
			}
			if tt.offset != 0 && e.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", e.Offset, tt.offset)
			}
		})
	}
}

func TestDecodeUnreferencedBadFunctionIndex(t *testing.T) {
	// Function entries are only checked when an export resolves through them.
	data := wasmtest.Encode(
		wasmtest.TypeSection(wasmtest.AddSignature),
		wasmtest.FunctionSection(0, 9),
		wasmtest.ExportSection(wasm.Export{Name: "add", Kind: wasm.ExportFunc, Index: 0}),
	)
	if _, err := wasm.Decode(data); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func TestDecodeTruncatedSection(t *testing.T) {
	data := append(append([]byte{}, wasmtest.Header...), wasm.SectionType, 0x0a, 0x01, 0x60)

	_, err := wasm.Decode(data)
	if !errors.Is(err, wasm.ErrTruncatedSection) {
		t.Fatalf("got %v, want ErrTruncatedSection", err)
	}
	e := asError(t, err)
	if e.Offset != len(wasmtest.Header) {
		t.Errorf("offset = %d, want %d", e.Offset, len(wasmtest.Header))
	}
	if id, _ := e.Value.(byte); id != wasm.SectionType {
		t.Errorf("value = %v, want section id %d", e.Value, wasm.SectionType)
	}
}

func TestDecodeTruncatedAnywhere(t *testing.T) {
	sections := []wasmtest.Section{
		wasmtest.TypeSection(wasmtest.AddSignature),
		wasmtest.FunctionSection(0),
		wasmtest.MemorySection(1),
		wasmtest.ExportSection(
			wasm.Export{Name: "add", Kind: wasm.ExportFunc},
			wasm.Export{Name: "memory", Kind: wasm.ExportMemory},
		),
		wasmtest.CodeSection(wasmtest.AddBody),
	}
	// A cut on a section boundary is a smaller valid module.
	boundaries := map[int]bool{}
	for k := range sections {
		boundaries[len(wasmtest.Encode(sections[:k]...))] = true
	}

	data := wasmtest.Encode(sections...)
	for n := len(wasmtest.Header); n < len(data); n++ {
		if boundaries[n] {
			continue
		}
		_, err := wasm.Decode(data[:n])
		if !errors.Is(err, wasm.ErrTruncatedSection) && !errors.Is(err, wasm.ErrUnexpectedEOF) {
			t.Errorf("prefix of %d bytes: got %v", n, err)
		}
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	data := wasmtest.Encode(
		wasmtest.TypeSection(wasmtest.AddSignature),
		wasmtest.FunctionSection(0),
		wasmtest.ExportSection(wasm.Export{Name: "ghost", Kind: wasm.ExportFunc, Index: 4}),
	)
	_, err := wasm.Decode(data)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"[resolve]", "invalid_function_index", "export section", `"ghost"`, "function index 4"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
