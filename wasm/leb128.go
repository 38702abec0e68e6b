package wasm

import (
	"bytes"

	"github.com/wippyai/wasm-types/internal/binary"
)

// LEB128 utilities for the unsigned 32-bit values used by the module format.

// DecodeLEB128u decodes an unsigned LEB128 value from the start of b and
// returns it with the number of bytes consumed.
func DecodeLEB128u(b []byte) (uint32, int, error) {
	r := binary.NewReader(b)
	v, err := r.ReadU32()
	if err != nil {
		return 0, 0, err
	}
	return v, r.Position(), nil
}

// WriteLEB128u writes an unsigned LEB128 value
func WriteLEB128u(w *bytes.Buffer, v uint32) {
	binary.NewBufferWriter(w).WriteU32(v)
}

// EncodeLEB128u encodes an unsigned 32-bit LEB128 value to bytes.
func EncodeLEB128u(v uint32) []byte {
	var buf bytes.Buffer
	WriteLEB128u(&buf, v)
	return buf.Bytes()
}
