package runtime

import (
	"math"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-types/errors"
	"github.com/wippyai/wasm-types/wasm"
)

// GoType returns the Go type used for a value type in calls and generated
// bindings: int32, int64, float32 or float64.
func GoType(vt wasm.ValueType) string {
	switch vt {
	case wasm.ValI32:
		return "int32"
	case wasm.ValI64:
		return "int64"
	case wasm.ValF32:
		return "float32"
	case wasm.ValF64:
		return "float64"
	default:
		return "unknown"
	}
}

// encodeValue converts a Go argument to its stack encoding. Untyped
// integer constants arrive as int and are accepted for either integer type
// when they fit.
func encodeValue(vt wasm.ValueType, arg any) (uint64, bool) {
	switch vt {
	case wasm.ValI32:
		switch v := arg.(type) {
		case int32:
			return api.EncodeI32(v), true
		case uint32:
			return api.EncodeU32(v), true
		case int:
			if v >= math.MinInt32 && v <= math.MaxInt32 {
				return api.EncodeI32(int32(v)), true
			}
		}
	case wasm.ValI64:
		switch v := arg.(type) {
		case int64:
			return api.EncodeI64(v), true
		case uint64:
			return v, true
		case int:
			return api.EncodeI64(int64(v)), true
		}
	case wasm.ValF32:
		if v, ok := arg.(float32); ok {
			return api.EncodeF32(v), true
		}
	case wasm.ValF64:
		if v, ok := arg.(float64); ok {
			return api.EncodeF64(v), true
		}
	}
	return 0, false
}

func decodeValue(vt wasm.ValueType, v uint64) any {
	switch vt {
	case wasm.ValI32:
		return api.DecodeI32(v)
	case wasm.ValI64:
		return int64(v)
	case wasm.ValF32:
		return api.DecodeF32(v)
	case wasm.ValF64:
		return api.DecodeF64(v)
	default:
		return v
	}
}

// ParseValue parses text input into the Go value Call expects for vt.
func ParseValue(vt wasm.ValueType, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch vt {
	case wasm.ValI32:
		n, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "parse i32 "+strconv.Quote(s))
		}
		return int32(n), nil
	case wasm.ValI64:
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "parse i64 "+strconv.Quote(s))
		}
		return n, nil
	case wasm.ValF32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "parse f32 "+strconv.Quote(s))
		}
		return float32(f), nil
	case wasm.ValF64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "parse f64 "+strconv.Quote(s))
		}
		return f, nil
	default:
		return nil, errors.Unsupported(errors.PhaseRuntime, "value type "+vt.String())
	}
}
