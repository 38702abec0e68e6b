// Package binary implements the bounds-checked byte cursor used by the
// module decoder and the matching writer for the module format.
package binary

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/wippyai/wasm-types/errors"
)

// maxU32Bytes is the longest valid unsigned LEB128 encoding of a uint32.
const maxU32Bytes = 5

// Reader is a read position over an immutable byte slice.
// A failed read leaves the position where it was and reports the absolute
// offset at which the failed value starts. For a read that runs off the end
// that offset may equal the length of the input.
type Reader struct {
	data []byte
	pos  int
	base int // absolute offset of data[0]
}

// NewReader creates a new Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current absolute byte position.
func (r *Reader) Position() int {
	return r.base + r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errors.UnexpectedEOF(r.Position(), 1, 0)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes returns a view of the next n bytes and advances past them.
// The returned slice aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, errors.UnexpectedEOF(r.Position(), n, r.Len())
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// Sub returns a Reader over the next n bytes and advances past them.
// Offsets reported by the sub-reader stay absolute.
func (r *Reader) Sub(n int) (*Reader, error) {
	start := r.Position()
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return &Reader{data: b, base: start}, nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
func (r *Reader) ReadU32() (uint32, error) {
	start := r.pos
	var result uint32
	var shift uint
	for i := 0; ; i++ {
		if r.pos >= len(r.data) {
			have := r.pos - start
			r.pos = start
			return 0, errors.UnexpectedEOF(r.Position(), have+1, have)
		}
		b := r.data[r.pos]
		r.pos++

		if i == maxU32Bytes-1 && (b&0x80 != 0 || b&0x70 != 0) {
			r.pos = start
			return 0, errors.IntegerOverflow(r.Position(), 32)
		}

		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

// ReadName reads a UTF-8 encoded name (length-prefixed byte sequence).
func (r *Reader) ReadName() (string, error) {
	start := r.pos
	length, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		r.pos = start
		return "", err
	}
	if !utf8.Valid(data) {
		off := r.base + start
		r.pos = start
		return "", errors.InvalidUTF8(off, data)
	}
	return string(data), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}
