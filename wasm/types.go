package wasm

import "strings"

// Module is the decoded description of a module's bindable surface.
// It is built in a single pass by Decode and is not modified afterwards.
type Module struct {
	// FunctionTypes holds the type section entries in declaration order.
	FunctionTypes []FunctionType

	// FunctionTypeIndices maps each module-defined function to its type index.
	FunctionTypeIndices []uint32

	// ExportedFunctions holds every function export, resolved to its
	// signature, in export declaration order.
	ExportedFunctions []ExportedFunction

	// Exports holds every export record of any kind in declaration order.
	Exports []Export

	// MemoryName is the name of the first exported memory.
	MemoryName string

	HasExportedMemory bool
}

// Function returns the first exported function with the given name.
func (m *Module) Function(name string) (ExportedFunction, bool) {
	for _, f := range m.ExportedFunctions {
		if f.Name == name {
			return f, true
		}
	}
	return ExportedFunction{}, false
}

// ValueType represents a WebAssembly scalar value type.
// See constants.go for ValI32, ValI64, ValF32 and ValF64.
type ValueType byte

func (v ValueType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	default:
		return "unknown"
	}
}

// valueTypeFromByte maps a value type encoding to a supported ValueType.
func valueTypeFromByte(b byte) (ValueType, bool) {
	switch v := ValueType(b); v {
	case ValI32, ValI64, ValF32, ValF64:
		return v, true
	default:
		return 0, false
	}
}

// FunctionType represents a function signature with parameter and result types.
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// String renders the signature as "(i32, i32) -> i32".
func (f FunctionType) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") -> ")
	switch len(f.Results) {
	case 0:
		b.WriteString("()")
	case 1:
		b.WriteString(f.Results[0].String())
	default:
		b.WriteByte('(')
		for i, r := range f.Results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(r.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}

// ExportKind identifies the kind of item an export refers to.
type ExportKind byte

// Export kinds. Bytes outside this set are preserved in Export.Kind and ignored.
const (
	ExportFunc   ExportKind = 0
	ExportTable  ExportKind = 1
	ExportMemory ExportKind = 2
	ExportGlobal ExportKind = 3
)

func (k ExportKind) String() string {
	switch k {
	case ExportFunc:
		return "func"
	case ExportTable:
		return "table"
	case ExportMemory:
		return "memory"
	case ExportGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Export describes an exported item.
type Export struct {
	Name  string
	Kind  ExportKind
	Index uint32
}

// ExportedFunction is a function export joined with its signature.
type ExportedFunction struct {
	Name      string
	TypeIndex uint32
	Signature FunctionType
}
