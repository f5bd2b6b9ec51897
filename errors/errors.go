package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode Phase = "decode" // bytes to tree
	PhaseEncode Phase = "encode" // tree to bytes
	PhaseVisit  Phase = "visit"  // tree traversal
	PhaseLoad   Phase = "load"   // reading input buffers
)

// Kind categorizes the error
type Kind string

const (
	KindUnexpectedEOF       Kind = "unexpected_eof"
	KindInvalidEncoding     Kind = "invalid_encoding"
	KindOverflow            Kind = "overflow"
	KindInvalidUTF8         Kind = "invalid_utf8"
	KindInvalidDiscriminant Kind = "invalid_discriminant"
	KindTrailingBytes       Kind = "trailing_bytes"
	KindInvalidMagic        Kind = "invalid_magic"
	KindInvalidVersion      Kind = "invalid_version"
	KindInvalidInput        Kind = "invalid_input"
)

// Sentinels for errors.Is. They match any error of the same phase and kind.
var (
	ErrUnexpectedEOF       = &Error{Phase: PhaseDecode, Kind: KindUnexpectedEOF}
	ErrInvalidEncoding     = &Error{Phase: PhaseDecode, Kind: KindInvalidEncoding}
	ErrOverflow            = &Error{Phase: PhaseDecode, Kind: KindOverflow}
	ErrInvalidUTF8         = &Error{Phase: PhaseDecode, Kind: KindInvalidUTF8}
	ErrInvalidDiscriminant = &Error{Phase: PhaseDecode, Kind: KindInvalidDiscriminant}
	ErrTrailingBytes       = &Error{Phase: PhaseDecode, Kind: KindTrailingBytes}
	ErrInvalidMagic        = &Error{Phase: PhaseDecode, Kind: KindInvalidMagic}
	ErrInvalidVersion      = &Error{Phase: PhaseDecode, Kind: KindInvalidVersion}
)

// Discriminant is the Value of an invalid_discriminant error.
type Discriminant struct {
	Context string
	Value   uint32
}

// Trailing is the Value of a trailing_bytes error.
type Trailing struct {
	Expected int
	Consumed int
}

// Error is the structured error type used throughout the codec.
//
// Path holds rendered segments from the root down (".field", "[3]",
// ":<variant>"). Segments are prepended as the error propagates upward,
// so the innermost segment is pushed first.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(e.PathString())
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Phase == PhaseDecode {
		b.WriteString(" (offset 0x")
		b.WriteString(strconv.FormatInt(int64(e.Offset), 16))
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// PathString renders the path from the root, e.g. "(root).sections[2]:<code>".
func (e *Error) PathString() string {
	return "(root)" + strings.Join(e.Path, "")
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Offset sets the absolute byte offset of the failure
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

// Path segment constructors.

// Field renders a record field segment.
func Field(name string) string { return "." + name }

// Index renders a sequence element segment.
func Index(i int) string { return "[" + strconv.Itoa(i) + "]" }

// Variant renders a union variant segment.
func Variant(name string) string { return ":<" + name + ">" }

// InPath prepends a path segment to the structured error inside err and
// returns err. Errors that carry no *Error are returned unchanged.
func InPath(err error, segment string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		e.Path = append([]string{segment}, e.Path...)
	}
	return err
}

// ElementError reports the first sequence element that failed to decode.
type ElementError struct {
	Cause error
	Index int
}

// Element wraps cause as the failure of element index, also recording the
// index in the structured error's path.
func Element(index int, cause error) *ElementError {
	return &ElementError{Index: index, Cause: InPath(cause, Index(index))}
}

func (e *ElementError) Error() string {
	return e.Cause.Error()
}

func (e *ElementError) Unwrap() error {
	return e.Cause
}

// Convenience constructors for decode failures

// UnexpectedEOF creates an error for a read past the current bound
func UnexpectedEOF(offset, want, have int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindUnexpectedEOF,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, %d remaining", want, have),
	}
}

// InvalidEncoding creates an error for a non-canonical variable length integer
func InvalidEncoding(offset int, typeName string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidEncoding,
		Offset: offset,
		Detail: fmt.Sprintf("non-canonical %s encoding", typeName),
	}
}

// Overflow creates an error for a variable length integer exceeding its width
func Overflow(offset int, typeName string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindOverflow,
		Offset: offset,
		Detail: fmt.Sprintf("value overflows %s", typeName),
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

// InvalidDiscriminant creates an error for a tag outside a closed table
func InvalidDiscriminant(offset int, context string, value uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidDiscriminant,
		Offset: offset,
		Detail: fmt.Sprintf("could not recognise discriminant 0x%X for %s", value, context),
		Value:  Discriminant{Context: context, Value: value},
	}
}

// TrailingBytes creates an error for a bounded payload that was not consumed exactly
func TrailingBytes(offset, expected, consumed int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTrailingBytes,
		Offset: offset,
		Detail: fmt.Sprintf("payload declared %d bytes, decoded %d", expected, consumed),
		Value:  Trailing{Expected: expected, Consumed: consumed},
	}
}

// Mismatch creates an error for a fixed byte signature that did not match
func Mismatch(offset int, kind Kind, want, got []byte) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   kind,
		Offset: offset,
		Detail: fmt.Sprintf("expected % X, got % X", want, got),
		Value:  got,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidInput,
		Detail: detail,
		Cause:  cause,
	}
}

// Is and As forward to the standard library so callers need a single import.

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }
