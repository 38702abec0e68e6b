// Package wasmtest builds small WebAssembly binaries for tests.
package wasmtest

import (
	"math"

	"github.com/wippyai/wasm-types/internal/binary"
	"github.com/wippyai/wasm-types/wasm"
)

// Header is the 8-byte module preamble: magic followed by version 1.
var Header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// AddBody computes local 0 + local 1 as i32.
var AddBody = []byte{0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B}

// AddSignature is (i32, i32) -> i32.
var AddSignature = wasm.FunctionType{
	Params:  []wasm.ValueType{wasm.ValI32, wasm.ValI32},
	Results: []wasm.ValueType{wasm.ValI32},
}

// Section is one framed section of a module.
type Section struct {
	Payload []byte
	ID      byte
}

// Encode returns the header followed by each section in the given order.
func Encode(sections ...Section) []byte {
	w := binary.NewWriter()
	w.WriteBytes(Header)
	for _, s := range sections {
		w.Byte(s.ID)
		w.WriteU32(uint32(len(s.Payload)))
		w.WriteBytes(s.Payload)
	}
	return w.Bytes()
}

// RawSection returns a section with an arbitrary ID and payload.
func RawSection(id byte, payload []byte) Section {
	return Section{ID: id, Payload: payload}
}

// TypeSection encodes function signatures.
func TypeSection(sigs ...wasm.FunctionType) Section {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(sigs)))
	for _, sig := range sigs {
		w.Byte(wasm.FuncTypeByte)
		writeValueTypes(w, sig.Params)
		writeValueTypes(w, sig.Results)
	}
	return Section{ID: wasm.SectionType, Payload: w.Bytes()}
}

// FunctionSection encodes the type index of each defined function.
func FunctionSection(typeIndices ...uint32) Section {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(typeIndices)))
	for _, idx := range typeIndices {
		w.WriteU32(idx)
	}
	return Section{ID: wasm.SectionFunction, Payload: w.Bytes()}
}

// ExportSection encodes export entries.
func ExportSection(exports ...wasm.Export) Section {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(exports)))
	for _, e := range exports {
		w.WriteName(e.Name)
		w.Byte(byte(e.Kind))
		w.WriteU32(e.Index)
	}
	return Section{ID: wasm.SectionExport, Payload: w.Bytes()}
}

// MemorySection declares one memory with the given minimum page count.
func MemorySection(minPages uint32) Section {
	w := binary.NewWriter()
	w.Byte(0x01) // count
	w.Byte(0x00) // no maximum
	w.WriteU32(minPages)
	return Section{ID: wasm.SectionMemory, Payload: w.Bytes()}
}

// CodeSection encodes function bodies. Each body is the instruction
// sequence including the final end opcode; no locals are declared.
func CodeSection(bodies ...[]byte) Section {
	w := binary.NewWriter()
	w.WriteU32(uint32(len(bodies)))
	for _, body := range bodies {
		w.WriteU32(uint32(len(body) + 1))
		w.Byte(0x00) // local declaration count
		w.WriteBytes(body)
	}
	return Section{ID: wasm.SectionCode, Payload: w.Bytes()}
}

// CustomSection encodes a named custom section.
func CustomSection(name string, data []byte) Section {
	w := binary.NewWriter()
	w.WriteName(name)
	w.WriteBytes(data)
	return Section{ID: wasm.SectionCustom, Payload: w.Bytes()}
}

// ConstBody returns a body that ignores its parameters and returns the
// given constant for every result.
func ConstBody(sig wasm.FunctionType, v float64) []byte {
	w := binary.NewWriter()
	for _, r := range sig.Results {
		switch r {
		case wasm.ValI32:
			w.Byte(0x41)
			w.WriteS64(int64(int32(v)))
		case wasm.ValI64:
			w.Byte(0x42)
			w.WriteS64(int64(v))
		case wasm.ValF32:
			w.Byte(0x43)
			w.WriteU32LE(math.Float32bits(float32(v)))
		case wasm.ValF64:
			w.Byte(0x44)
			w.WriteU64LE(math.Float64bits(v))
		}
	}
	w.Byte(0x0B)
	return w.Bytes()
}

// AddModule returns a module exporting add: (i32, i32) -> i32, and a memory
// named "memory" when withMemory is set.
func AddModule(withMemory bool) []byte {
	exports := []wasm.Export{{Name: "add", Kind: wasm.ExportFunc, Index: 0}}
	sections := []Section{
		TypeSection(AddSignature),
		FunctionSection(0),
	}
	if withMemory {
		sections = append(sections, MemorySection(1))
		exports = append(exports, wasm.Export{Name: "memory", Kind: wasm.ExportMemory, Index: 0})
	}
	sections = append(sections,
		ExportSection(exports...),
		CodeSection(AddBody),
	)
	return Encode(sections...)
}

// Func describes one exported function for Module.
type Func struct {
	Name      string
	Signature wasm.FunctionType
	Body      []byte // nil means ConstBody(Signature, 0)
}

// Module returns a complete module, instantiable by a runtime, that
// defines and exports each function with its own type entry.
func Module(withMemory bool, funcs ...Func) []byte {
	return ModuleWithMemory(memoryName(withMemory), funcs...)
}

// ModuleWithMemory is Module with the memory exported under memName.
// An empty memName exports no memory.
func ModuleWithMemory(memName string, funcs ...Func) []byte {
	sigs := make([]wasm.FunctionType, len(funcs))
	indices := make([]uint32, len(funcs))
	bodies := make([][]byte, len(funcs))
	exports := make([]wasm.Export, 0, len(funcs)+1)
	for i, f := range funcs {
		sigs[i] = f.Signature
		indices[i] = uint32(i)
		bodies[i] = f.Body
		if bodies[i] == nil {
			bodies[i] = ConstBody(f.Signature, 0)
		}
		exports = append(exports, wasm.Export{Name: f.Name, Kind: wasm.ExportFunc, Index: uint32(i)})
	}

	sections := []Section{TypeSection(sigs...), FunctionSection(indices...)}
	if memName != "" {
		sections = append(sections, MemorySection(1))
		exports = append(exports, wasm.Export{Name: memName, Kind: wasm.ExportMemory, Index: 0})
	}
	sections = append(sections, ExportSection(exports...), CodeSection(bodies...))
	return Encode(sections...)
}

func memoryName(withMemory bool) string {
	if withMemory {
		return "memory"
	}
	return ""
}

func writeValueTypes(w *binary.Writer, types []wasm.ValueType) {
	w.WriteU32(uint32(len(types)))
	for _, t := range types {
		w.Byte(byte(t))
	}
}
