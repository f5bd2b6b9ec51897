// Package errors provides structured error types for the wasmbin codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Decode errors carry the absolute byte offset of the failure and a path of
// field, variant and element segments collected while the error propagated
// out of nested shapes.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindTrailingBytes).
//		Offset(0x2a).
//		Value(errors.Trailing{Expected: 10, Consumed: 8}).
//		Detail("payload declared %d bytes, decoded %d", 10, 8).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidDiscriminant(off, "ValueType", 0x42)
//	err := errors.UnexpectedEOF(off, 4, 1)
//
// Positional context is attached on the way up:
//
//	return errors.InPath(err, errors.Field("locals"))
//
// All errors implement the standard error interface and support errors.Is/As.
// The Err* sentinels match any error with the same phase and kind.
package errors
