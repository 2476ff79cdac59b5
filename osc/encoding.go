package osc

import (
	"bytes"
	"encoding/binary"
)

const (
	bit32Size = 4
	bit64Size = 8
)

// parseBlob parses an OSC blob from data. It returns the blob contents and
// the rest of data after the padding bytes.
func parseBlob(data []byte) ([]byte, []byte, error) {
	if len(data) < bit32Size {
		return nil, nil, malformedf("blob size needs %d bytes, have %d", bit32Size, len(data))
	}

	blobLen := int64(binary.BigEndian.Uint32(data[:bit32Size]))
	data = data[bit32Size:]

	n := blobLen + int64(padBytesNeeded(int(blobLen)))
	if n > int64(len(data)) {
		return nil, nil, malformedf("blob of %d bytes needs %d bytes, have %d", blobLen, n, len(data))
	}

	blob := make([]byte, blobLen)
	copy(blob, data[:blobLen])

	return blob, data[n:], nil
}

// writeBlob appends the size prefix, data and padding to b.
func writeBlob(data []byte, b []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
	b = append(b, data...)
	return appendPadding(b, len(data))
}

// parsePaddedString reads a padded string from data and returns the string
// and the rest of data after the padding bytes.
func parsePaddedString(data []byte) (string, []byte, error) {
	pos := bytes.IndexByte(data, 0)
	if pos == -1 {
		return "", nil, malformedf("string is not null terminated")
	}

	n := pos + 1 + padBytesNeeded(pos+1)
	if n > len(data) {
		return "", nil, malformedf("string padding needs %d bytes, have %d", n, len(data))
	}

	return string(data[:pos]), data[n:], nil
}

// writePaddedString appends str, its null terminator and padding bytes to b.
func writePaddedString(str string, b []byte) []byte {
	b = append(b, str...)
	b = append(b, 0)

	return appendPadding(b, len(str)+1)
}

// appendPadding appends the zero bytes needed to align an element of
// elementLen bytes.
func appendPadding(b []byte, elementLen int) []byte {
	for i := padBytesNeeded(elementLen); i > 0; i-- {
		b = append(b, 0)
	}
	return b
}

// padBytesNeeded returns the number of zero bytes that align elementLen to 4.
func padBytesNeeded(elementLen int) int {
	return (4 - (elementLen % 4)) % 4
}
