// Package errs defines the codec's error kinds (spec §7) as sentinel
// values testable with errors.Is, plus a small wrapping helper that
// attaches descriptor-path or wire-position context so a failure can be
// traced back to the offending element without a debugger.
package errs

import "github.com/pkg/errors"

var (
	// ErrBufferUnderflow: decode attempted to read past the end of input.
	ErrBufferUnderflow = errors.New("thriftbin: buffer underflow")

	// ErrRangeError: a numeric value cannot be represented losslessly in
	// the declared width.
	ErrRangeError = errors.New("thriftbin: range error")

	// ErrParseError: i64-as-string input is empty, malformed, or has
	// trailing garbage, or a type tag byte read during decode is not an
	// assigned wire type.
	ErrParseError = errors.New("thriftbin: parse error")

	// ErrUnknownField: STRUCT decode encountered a field id absent from
	// a non-empty descriptor.
	ErrUnknownField = errors.New("thriftbin: unknown field")

	// ErrSchemaError: descriptor construction rejected a malformed spec,
	// or an encode/decode exceeded the maximum recursion depth.
	ErrSchemaError = errors.New("thriftbin: schema error")

	// ErrTypeMismatch: host value does not provide the capability the
	// descriptor requires of it, or a type tag read during decode differs
	// from the declared type.
	ErrTypeMismatch = errors.New("thriftbin: type mismatch")
)

// Wrapf attaches path/position context to one of the sentinel errors
// above without losing errors.Is/As compatibility with it.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}
