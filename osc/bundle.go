package osc

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/pkg/errors"
)

const (
	bundleTagString = "#bundle"
)

// Bundle groups messages and nested bundles under one time tag. On the wire
// it is "#bundle", the time tag, then each element prefixed by its size.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

var _ Packet = (*Bundle)(nil)

// NewBundle returns a Bundle holding elems, to be processed immediately.
func NewBundle(elems ...Packet) *Bundle {
	return &Bundle{Timetag: Immediately, Elements: elems}
}

// NewBundleWithTime returns a Bundle holding elems, to be processed at t.
func NewBundleWithTime(t time.Time, elems ...Packet) *Bundle {
	return &Bundle{Timetag: NewTimetagFromTime(t), Elements: elems}
}

// Append adds a Message or Bundle to the end of b.
func (b *Bundle) Append(p Packet) error {
	switch p.(type) {
	case *Bundle, *Message:
		b.Elements = append(b.Elements, p)
		return nil
	}
	return errors.Wrapf(ErrUnsupportedType, "bundle element %T", p)
}

// Messages returns every Message in the bundle and its nested bundles.
// Equal messages are only returned once.
func (b *Bundle) Messages() []*Message {
	var msgs []*Message
	b.collectMessages(&msgs)
	return msgs
}

func (b *Bundle) collectMessages(msgs *[]*Message) {
	for _, e := range b.Elements {
		switch e := e.(type) {
		case *Bundle:
			e.collectMessages(msgs)
		case *Message:
			if !containsMessage(*msgs, e) {
				*msgs = append(*msgs, e)
			}
		}
	}
}

func containsMessage(msgs []*Message, m *Message) bool {
	for _, o := range msgs {
		if o.Equal(m) {
			return true
		}
	}
	return false
}

// Equal reports whether b and o have the same time tag and equal elements in
// the same order.
func (b *Bundle) Equal(o *Bundle) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Timetag != o.Timetag || len(b.Elements) != len(o.Elements) {
		return false
	}
	for i, e := range b.Elements {
		if !packetsEqual(e, o.Elements[i]) {
			return false
		}
	}
	return true
}

func packetsEqual(a, b Packet) bool {
	switch a := a.(type) {
	case *Message:
		bm, ok := b.(*Message)
		return ok && a.Equal(bm)
	case *Bundle:
		bb, ok := b.(*Bundle)
		return ok && a.Equal(bb)
	}
	return false
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(nil)
}

// AppendBinary implements the encoding.BinaryAppender interface.
func (b *Bundle) AppendBinary(data []byte) ([]byte, error) {
	if b == nil {
		return data, errors.Wrap(ErrUnsupportedType, "nil bundle")
	}
	start := len(data)

	data = writePaddedString(bundleTagString, data)
	data = binary.BigEndian.AppendUint64(data, uint64(b.Timetag))

	for i, e := range b.Elements {
		if e == nil {
			return data[:start], errors.Wrapf(ErrUnsupportedType, "nil bundle element %d", i)
		}

		// Reserve the size of the element, filled in once it's written
		sizeAt := len(data)
		data = append(data, 0, 0, 0, 0)

		var err error
		if data, err = e.AppendBinary(data); err != nil {
			return data[:start], errors.WithMessagef(err, "bundle element %d", i)
		}

		size := len(data) - sizeAt - bit32Size
		if size > math.MaxInt32 {
			return data[:start], errors.Wrapf(ErrOverflow, "bundle element %d is %d bytes", i, size)
		}
		binary.BigEndian.PutUint32(data[sizeAt:], uint32(size))
	}

	return data, nil
}

// NewBundleFromData decodes data as a bundle.
func NewBundleFromData(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	bundle, _, err := DecodeBundle(data)
	if err != nil {
		return err
	}
	*b = *bundle
	return nil
}

// DecodeBundle decodes a bundle from data. A bundle extends to the end of
// its buffer, so the returned remainder is always empty.
func DecodeBundle(data []byte) (*Bundle, []byte, error) {
	startTag, data, err := parsePaddedString(data)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "bundle tag")
	}

	if startTag != bundleTagString {
		return nil, nil, malformedf("invalid bundle start tag %q", startTag)
	}

	tt, data, err := DecodeArgument(TypeTimeTag, data)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "bundle time tag")
	}
	b := &Bundle{Timetag: tt.(Timetag)}

	for len(data) > 0 {
		if len(data) < bit32Size {
			return nil, nil, malformedf("dangling %d bytes at end of bundle", len(data))
		}
		length := int64(binary.BigEndian.Uint32(data))
		data = data[bit32Size:]

		if int64(len(data)) < length {
			return nil, nil, malformedf("bundle element needs %d bytes, have %d", length, len(data))
		}

		p, err := ParsePacket(data[:length])
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "bundle element %d", len(b.Elements))
		}
		b.Elements = append(b.Elements, p)
		data = data[length:]
	}

	return b, data, nil
}
