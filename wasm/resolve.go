package wasm

import (
	"slices"
	"strconv"

	"github.com/wippyai/wasm-types/errors"
)

// resolveExports joins each function export with the function section and
// the type section. The function index space is module-relative: imported
// functions are not counted, so modules that import functions resolve
// exported indices against the wrong entries.
func resolveExports(types []FunctionType, indices []uint32, exports []funcExport) ([]ExportedFunction, error) {
	if len(exports) == 0 {
		return nil, nil
	}

	resolved := make([]ExportedFunction, 0, len(exports))
	for _, e := range exports {
		if uint64(e.index) >= uint64(len(indices)) {
			err := errors.OutOfRange(errors.KindInvalidFunctionIndex, e.offset, "function", e.index, len(indices))
			err.Section = "export"
			err.Detail = "export " + strconv.Quote(e.name) + ": " + err.Detail
			return nil, err
		}
		typeIdx := indices[e.index]
		if uint64(typeIdx) >= uint64(len(types)) {
			err := errors.OutOfRange(errors.KindInvalidTypeIndex, e.offset, "type", typeIdx, len(types))
			err.Section = "export"
			err.Detail = "export " + strconv.Quote(e.name) + ": " + err.Detail
			return nil, err
		}
		sig := types[typeIdx]
		resolved = append(resolved, ExportedFunction{
			Name:      e.name,
			TypeIndex: typeIdx,
			Signature: FunctionType{
				Params:  slices.Clone(sig.Params),
				Results: slices.Clone(sig.Results),
			},
		})
	}
	return resolved, nil
}
