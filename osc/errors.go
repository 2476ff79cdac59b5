package osc

import (
	"github.com/pkg/errors"
)

// Error kinds. Errors caused by packet data, patterns or arguments wrap one
// of these; check them with errors.Is.
var (
	// ErrMalformed is returned for input that doesn't follow the OSC wire
	// format: bad magic strings, truncated fields, unknown type tags,
	// truncated bundle records or trailing bytes.
	ErrMalformed = errors.New("osc: malformed packet")

	// ErrOverflow is returned when an Int argument doesn't fit in 32 bits.
	ErrOverflow = errors.New("osc: integer overflow")

	// ErrInvalidPattern is returned for address parts containing reserved
	// characters and for unterminated wildcard groups.
	ErrInvalidPattern = errors.New("osc: invalid address pattern")

	// ErrNotFound is returned when removing a method or traversing an
	// address part that isn't registered.
	ErrNotFound = errors.New("osc: not found")

	// ErrUnsupportedType is returned when no argument type exists for a Go value.
	ErrUnsupportedType = errors.New("osc: no argument type for value")

	// ErrUncomparableMethod is returned when registering a Method that can't
	// be used as a set member (e.g. a bare MethodFunc).
	ErrUncomparableMethod = errors.New("osc: method is not comparable")

	// ErrFrameTooLarge is returned by stream transports for records bigger
	// than MaxFrameSize.
	ErrFrameTooLarge = errors.New("osc: stream frame too large")
)

func malformedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}
