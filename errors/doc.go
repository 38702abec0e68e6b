// Package errors provides structured error types for wasm-types.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the byte offset into the module where the failure was
// detected, the section being decoded, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindUnknownValueType).
//		Section("type").
//		Offset(23).
//		Value(0x7b).
//		Detail("value type 0x7b is not supported").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnexpectedEOF(offset, 4, 1)
//	err := errors.NotFound(errors.PhaseRuntime, "function", "add")
//
// All errors implement the standard error interface and support errors.Is/As.
// A target with an empty Phase matches any phase:
//
//	if errors.Is(err, &errors.Error{Kind: errors.KindTruncatedSection}) { ... }
package errors
