package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode   Phase = "decode"   // binary walk and section decoding
	PhaseResolve  Phase = "resolve"  // export -> function -> type resolution
	PhaseGenerate Phase = "generate" // binding generation
	PhaseOptimize Phase = "optimize" // external optimizer invocation
	PhaseLoad     Phase = "load"     // module file loading
	PhaseRuntime  Phase = "runtime"  // wazero runtime operations
	PhaseConfig   Phase = "config"   // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidHeader        Kind = "invalid_header"
	KindUnsupportedVersion   Kind = "unsupported_version"
	KindUnexpectedEOF        Kind = "unexpected_end_of_input"
	KindIntegerOverflow      Kind = "integer_overflow"
	KindTruncatedSection     Kind = "truncated_section"
	KindDuplicateSection     Kind = "duplicate_section"
	KindInvalidTypeForm      Kind = "invalid_type_form"
	KindUnknownValueType     Kind = "unknown_value_type"
	KindInvalidFunctionIndex Kind = "invalid_function_index"
	KindInvalidTypeIndex     Kind = "invalid_type_index"
	KindInvalidUTF8          Kind = "invalid_utf8"

	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindTypeMismatch  Kind = "type_mismatch"
	KindIO            Kind = "io"
	KindInstantiation Kind = "instantiation"
	KindTrap          Kind = "trap"
	KindUnsupported   Kind = "unsupported"
)

// NoOffset marks an error that is not tied to a byte position.
const NoOffset = -1

// Error is the structured error type used throughout wasm-types
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Section string
	Detail  string
	Offset  int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Section != "" {
		b.WriteString(" in ")
		b.WriteString(e.Section)
		b.WriteString(" section")
	}

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Kind must match; Phase
// must match only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// PhaseOf returns the Phase of the first *Error in err's chain, or "" if there is none.
func PhaseOf(err error) Phase {
	var e *Error
	if errors.As(err, &e) {
		return e.Phase
	}
	return ""
}

// InSection tags err with the section it occurred in, unless it already names one.
func InSection(err error, section string) error {
	var e *Error
	if errors.As(err, &e) && e.Section == "" {
		e.Section = section
	}
	return err
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: NoOffset,
		},
	}
}

// Section sets the section name
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Offset sets the byte offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Decode-phase constructors

// UnexpectedEOF creates an error for a read of want bytes at offset with only have remaining.
func UnexpectedEOF(offset, want, have int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnexpectedEOF,
		Offset: offset,
		Detail: fmt.Sprintf("need %d byte(s), %d remaining", want, have),
	}
}

// IntegerOverflow creates a LEB128 overflow error
func IntegerOverflow(offset int, bits int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindIntegerOverflow,
		Offset: offset,
		Detail: fmt.Sprintf("LEB128 value exceeds %d bits", bits),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(offset int, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidUTF8,
		Offset: offset,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// TruncatedSection creates an error for a section whose declared size runs past the input
func TruncatedSection(offset int, id byte, size uint32, remaining int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTruncatedSection,
		Offset: offset,
		Value:  id,
		Detail: fmt.Sprintf("section %d declares %d bytes, %d remaining", id, size, remaining),
	}
}

// DuplicateSection creates an error for a repeated known section
func DuplicateSection(offset int, name string) *Error {
	return &Error{
		Phase:   PhaseDecode,
		Kind:    KindDuplicateSection,
		Offset:  offset,
		Section: name,
		Detail:  "section appears more than once",
	}
}

// OutOfRange creates a resolve-phase index error of the given kind
func OutOfRange(kind Kind, offset int, what string, index uint32, length int) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   kind,
		Offset: offset,
		Value:  index,
		Detail: fmt.Sprintf("%s index %d out of range (length %d)", what, index, length),
	}
}

// Convenience constructors for the outer layers

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Offset: NoOffset,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: NoOffset,
		Detail: detail,
	}
}

// TypeMismatch creates a type mismatch error for an argument or result
func TypeMismatch(phase Phase, what string, want string, got any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Offset: NoOffset,
		Value:  got,
		Detail: fmt.Sprintf("%s: want %s, got %T", what, want, got),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: NoOffset,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: NoOffset,
		Detail: detail,
		Cause:  cause,
	}
}

// IO creates an I/O error for the given phase
func IO(phase Phase, detail string, cause error) *Error {
	return Wrap(phase, KindIO, cause, detail)
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Offset: NoOffset,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Trap creates an error for a guest function that aborted during a call
func Trap(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindTrap,
		Offset: NoOffset,
		Detail: fmt.Sprintf("call %q", name),
		Cause:  cause,
	}
}
