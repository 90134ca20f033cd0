// Package codec implements the bounds-checked byte-cursor primitives shared
// by the wire protocol client and the binlog event parser: fixed-width
// little-endian integers, length-encoded integers, and null-terminated /
// length-prefixed byte runs.
package codec

import "fmt"

// Kind classifies a decode failure the way spec.md §7 enumerates them.
// It intentionally stays a small closed set so callers can switch on it
// without reaching for errors.As.
type Kind int

const (
	// NotEnoughData means the cursor ran out of bytes mid-field.
	NotEnoughData Kind = iota
	// InvalidUTF8 means a string field's bytes failed UTF-8 validation.
	InvalidUTF8
	// MissingNullTerminator means a NUL-terminated field reached the end
	// of the buffer without finding its terminator.
	MissingNullTerminator
	// InvalidData means a structurally impossible value was encountered
	// (forbidden length-encoded marker, unknown required enum value, ...).
	InvalidData
)

func (k Kind) String() string {
	switch k {
	case NotEnoughData:
		return "NotEnoughData"
	case InvalidUTF8:
		return "InvalidUtf8"
	case MissingNullTerminator:
		return "MissingNullTerminator"
	case InvalidData:
		return "InvalidData"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by every primitive in this package.
// Field is a short breadcrumb ("event_size", "schema name", ...) naming
// what the cursor was trying to read, so a failure in a 30-decoder
// dispatch table doesn't read as an anonymous "not enough data".
type Error struct {
	Kind  Kind
	Field string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Field)
}

// Is lets errors.Is(err, codec.NotEnoughData) work against the Kind alone,
// ignoring Field, by comparing against the sentinel errors below.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newErr(kind Kind, field string) error {
	return &Error{Kind: kind, Field: field}
}

// Sentinels for errors.Is comparisons; their Field is irrelevant to Is.
var (
	ErrNotEnoughData         = &Error{Kind: NotEnoughData}
	ErrInvalidUTF8           = &Error{Kind: InvalidUTF8}
	ErrMissingNullTerminator = &Error{Kind: MissingNullTerminator}
	ErrInvalidData           = &Error{Kind: InvalidData}
)
