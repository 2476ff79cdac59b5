package osc

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// Message is an address pattern with an ordered list of arguments.
type Message struct {
	Address   string
	Arguments []Argument
}

var _ Packet = (*Message)(nil)

// NewMessage returns a Message for addr holding args.
func NewMessage(addr string, args ...Argument) *Message {
	return &Message{Address: addr, Arguments: args}
}

// Clear resets m to an empty message, keeping the argument slice.
func (m *Message) Clear() {
	m.Address = ""
	m.Arguments = m.Arguments[:0]
}

// Append converts the given values with NewArgument and appends them to the
// arguments list. Nothing is appended if any value has no argument type.
func (m *Message) Append(values ...interface{}) error {
	args := make([]Argument, 0, len(values))
	for _, v := range values {
		a, err := NewArgument(v)
		if err != nil {
			return errors.WithMessage(err, "Append")
		}
		args = append(args, a)
	}
	m.Arguments = append(m.Arguments, args...)
	return nil
}

// Match reports whether the address pattern of m matches addr. Matching is
// case sensitive.
func (m *Message) Match(addr string) bool {
	pattern, path := SplitAddress(m.Address), SplitAddress(addr)
	if len(pattern) != len(path) {
		return false
	}
	for i := range pattern {
		ok, err := MatchesWildcard(path[i], pattern[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// TypeTags returns the type tags of the arguments, without the leading ','.
func (m *Message) TypeTags() string {
	if m == nil {
		return ""
	}
	tags := make([]byte, 0, len(m.Arguments))
	for _, a := range m.Arguments {
		tags = append(tags, byte(a.TypeTag()))
	}
	return string(tags)
}

// Equal reports whether m and o have the same address, type tags and
// argument values.
func (m *Message) Equal(o *Message) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Address != o.Address || len(m.Arguments) != len(o.Arguments) {
		return false
	}
	for i, a := range m.Arguments {
		if !argumentsEqual(a, o.Arguments[i]) {
			return false
		}
	}
	return true
}

func argumentsEqual(a, b Argument) bool {
	if a.TypeTag() != b.TypeTag() {
		return false
	}
	if ab, ok := a.(Blob); ok {
		bb, ok := b.(Blob)
		return ok && bytes.Equal(ab, bb)
	}
	return a == b
}

// String implements the fmt.Stringer interface. The format is
// "<address> ,<typetags> <tag>:<value> <tag>:<value> ...".
func (m *Message) String() string {
	if m == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.Address)
	if len(m.Arguments) == 0 {
		return sb.String()
	}

	sb.WriteString(" ,")
	sb.WriteString(m.TypeTags())
	sb.WriteByte(' ')

	for _, a := range m.Arguments {
		sb.WriteByte(byte(a.TypeTag()))
		sb.WriteByte(':')
		sb.WriteString(a.String())
		sb.WriteByte(' ')
	}

	return sb.String()
}

// CountArguments returns the number of arguments.
func (m *Message) CountArguments() int {
	return len(m.Arguments)
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (m *Message) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(nil)
}

// AppendBinary implements the encoding.BinaryAppender interface. On error b
// is returned unchanged.
func (m *Message) AppendBinary(b []byte) ([]byte, error) {
	if m == nil {
		return b, errors.Wrap(ErrUnsupportedType, "nil message")
	}
	if !strings.HasPrefix(m.Address, "/") {
		return b, errors.Wrapf(ErrInvalidPattern, "address %q must start with '/'", m.Address)
	}
	if strings.IndexByte(m.Address, 0) >= 0 {
		return b, errors.Wrapf(ErrInvalidPattern, "address %q contains a null byte", m.Address)
	}

	start := len(b)
	b = writePaddedString(m.Address, b)

	tags := writeTypeTags(m.Arguments, make([]byte, 0, len(m.Arguments)+1))
	b = writePaddedString(string(tags), b)

	var err error
	for _, a := range m.Arguments {
		if b, err = a.appendArgument(b); err != nil {
			return b[:start], errors.WithMessagef(err, "argument %s", a.TypeTag())
		}
	}

	return b, nil
}

// NewMessageFromData decodes data, which must hold exactly one message.
func NewMessageFromData(data []byte) (*Message, error) {
	m := &Message{}
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. All
// of data must be consumed.
func (m *Message) UnmarshalBinary(data []byte) error {
	msg, rest, err := DecodeMessage(data)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return malformedf("%d trailing bytes after message", len(rest))
	}
	*m = *msg
	return nil
}

// DecodeMessage decodes a message from the front of data and returns it
// together with the remaining bytes.
func DecodeMessage(data []byte) (*Message, []byte, error) {
	if len(data) == 0 || data[0] != '/' {
		return nil, nil, malformedf("message must start with '/'")
	}

	addr, data, err := parsePaddedString(data)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "address")
	}

	typetags, data, err := parsePaddedString(data)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "type tags")
	}

	if len(typetags) == 0 || typetags[0] != ',' {
		return nil, nil, malformedf("invalid type tag string %q", typetags)
	}

	m := &Message{Address: addr}
	if len(typetags) > 1 {
		m.Arguments = make([]Argument, 0, len(typetags)-1)
	}

	for i := 1; i < len(typetags); i++ {
		var a Argument
		if a, data, err = DecodeArgument(TypeTag(typetags[i]), data); err != nil {
			return nil, nil, errors.WithMessagef(err, "argument %d", i-1)
		}
		m.Arguments = append(m.Arguments, a)
	}

	return m, data, nil
}
