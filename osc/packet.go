package osc

import (
	"encoding"
)

// Packet is the interface for Message and Bundle.
type Packet interface {
	encoding.BinaryMarshaler
	encoding.BinaryAppender
}

// ParsePacket parses the given data as a Message or a Bundle, chosen by its
// first byte ('/' or '#'). All of data must be consumed.
func ParsePacket(data []byte) (Packet, error) {
	if len(data) == 0 {
		return nil, malformedf("empty packet")
	}

	var (
		p    Packet
		rest []byte
		err  error
	)
	switch data[0] {
	case '/':
		p, rest, err = DecodeMessage(data)
	case '#':
		p, rest, err = DecodeBundle(data)
	default:
		return nil, malformedf("packet starts with %q", data[0])
	}
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, malformedf("%d trailing bytes after packet", len(rest))
	}

	return p, nil
}

// Encode returns the wire encoding of p.
func Encode(p Packet) ([]byte, error) {
	return p.MarshalBinary()
}
