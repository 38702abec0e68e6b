package wasm

import (
	"github.com/willf/bitset"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/internal/binary"
)

// Decoding errors returned by Decode. Match them with errors.Is.
var (
	ErrInvalidHeader        = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidHeader, Offset: errors.NoOffset}
	ErrUnsupportedVersion   = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnsupportedVersion, Offset: errors.NoOffset}
	ErrUnexpectedEOF        = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnexpectedEOF, Offset: errors.NoOffset}
	ErrIntegerOverflow      = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindIntegerOverflow, Offset: errors.NoOffset}
	ErrTruncatedSection     = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindTruncatedSection, Offset: errors.NoOffset}
	ErrDuplicateSection     = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindDuplicateSection, Offset: errors.NoOffset}
	ErrInvalidTypeForm      = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidTypeForm, Offset: errors.NoOffset}
	ErrUnknownValueType     = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnknownValueType, Offset: errors.NoOffset}
	ErrInvalidUTF8          = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidUTF8, Offset: errors.NoOffset}
	ErrInvalidFunctionIndex = &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindInvalidFunctionIndex, Offset: errors.NoOffset}
	ErrInvalidTypeIndex     = &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindInvalidTypeIndex, Offset: errors.NoOffset}
)

// decoder holds the state of one Decode call.
type decoder struct {
	m           *Module
	funcExports []funcExport
	seen        bitset.BitSet // IDs of decoded sections
}

// funcExport is a function export awaiting resolution.
type funcExport struct {
	name   string
	index  uint32
	offset int
}

// Decode decodes the header and the Type, Function and Export sections of a
// WebAssembly binary module and resolves every exported function to its
// signature. Other sections are skipped without being inspected.
//
// On failure the returned error is an *errors.Error and no Module is returned.
func Decode(data []byte) (*Module, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidHeader).
			Offset(0).
			Value(magic).
			Detail("magic 0x%08x, want 0x%08x", magic, Magic).
			Build()
	}

	version, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupportedVersion).
			Offset(4).
			Value(version).
			Detail("version %d, want %d", version, Version).
			Build()
	}

	d := &decoder{m: &Module{}}
	for r.Len() > 0 {
		if err := d.readSection(r); err != nil {
			return nil, err
		}
	}

	d.m.ExportedFunctions, err = resolveExports(d.m.FunctionTypes, d.m.FunctionTypeIndices, d.funcExports)
	if err != nil {
		return nil, err
	}
	return d.m, nil
}

// readSection reads one section header and hands the section body to its
// decoder. The outer reader always ends up at the end of the section, no
// matter how much of the body the decoder consumed.
func (d *decoder) readSection(r *binary.Reader) error {
	start := r.Position()

	id, err := r.ReadByte()
	if err != nil {
		return err
	}
	size, err := r.ReadU32()
	if err != nil {
		return errors.InSection(err, sectionName(id))
	}
	if uint64(size) > uint64(r.Len()) {
		return errors.TruncatedSection(start, id, size, r.Len())
	}
	body, err := r.Sub(int(size))
	if err != nil {
		return err
	}

	var decode func(*binary.Reader) error
	switch id {
	case SectionType:
		decode = d.readTypeSection
	case SectionFunction:
		decode = d.readFunctionSection
	case SectionExport:
		decode = d.readExportSection
	default:
		return nil
	}

	if d.seen.Test(uint(id)) {
		return errors.DuplicateSection(start, sectionName(id))
	}
	d.seen.Set(uint(id))

	return errors.InSection(decode(body), sectionName(id))
}

func (d *decoder) readTypeSection(r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	types := make([]FunctionType, 0, initialCap(count, r))
	for i := uint32(0); i < count; i++ {
		off := r.Position()
		form, err := r.ReadByte()
		if err != nil {
			return err
		}
		if form != FuncTypeByte {
			return errors.New(errors.PhaseDecode, errors.KindInvalidTypeForm).
				Offset(off).
				Value(form).
				Detail("type %d: form 0x%02x, want 0x%02x", i, form, FuncTypeByte).
				Build()
		}
		params, err := readValueTypes(r)
		if err != nil {
			return err
		}
		results, err := readValueTypes(r)
		if err != nil {
			return err
		}
		types = append(types, FunctionType{Params: params, Results: results})
	}
	d.m.FunctionTypes = types
	return nil
}

func readValueTypes(r *binary.Reader) ([]ValueType, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	types := make([]ValueType, 0, initialCap(count, r))
	for i := uint32(0); i < count; i++ {
		off := r.Position()
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		vt, ok := valueTypeFromByte(b)
		if !ok {
			return nil, errors.New(errors.PhaseDecode, errors.KindUnknownValueType).
				Offset(off).
				Value(b).
				Detail("value type 0x%02x is not supported", b).
				Build()
		}
		types = append(types, vt)
	}
	return types, nil
}

// readFunctionSection records the type index of every module-defined
// function. Indices are range-checked during resolution.
func (d *decoder) readFunctionSection(r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	indices := make([]uint32, 0, initialCap(count, r))
	for i := uint32(0); i < count; i++ {
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}
		indices = append(indices, idx)
	}
	d.m.FunctionTypeIndices = indices
	return nil
}

func (d *decoder) readExportSection(r *binary.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	exports := make([]Export, 0, initialCap(count, r))
	for i := uint32(0); i < count; i++ {
		off := r.Position()
		name, err := r.ReadName()
		if err != nil {
			return err
		}
		kind, err := r.ReadByte()
		if err != nil {
			return err
		}
		idx, err := r.ReadU32()
		if err != nil {
			return err
		}

		exp := Export{Name: name, Kind: ExportKind(kind), Index: idx}
		exports = append(exports, exp)

		switch exp.Kind {
		case ExportFunc:
			d.funcExports = append(d.funcExports, funcExport{name: name, index: idx, offset: off})
		case ExportMemory:
			if !d.m.HasExportedMemory {
				d.m.MemoryName = name
			}
			d.m.HasExportedMemory = true
		case ExportTable, ExportGlobal:
			// No bindings are generated for tables and globals.
		default:
			// Kinds from later format revisions carry an index too, so the
			// entry is still fully consumed.
		}
	}
	d.m.Exports = exports
	return nil
}

// initialCap bounds a declared element count by the bytes left in r,
// since every element takes at least one byte.
func initialCap(count uint32, r *binary.Reader) int {
	if uint64(count) > uint64(r.Len()) {
		return r.Len()
	}
	return int(count)
}
