package osc

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/pkg/errors"
)

// MaxFrameSize is the largest stream frame ReadFrame accepts.
const MaxFrameSize = 1 << 24

// StreamConn carries OSC packets over a reliable byte stream, each packet
// prefixed with its size as a big-endian int32. It is the Origin of the
// packets it receives, so replies go back over the same stream.
type StreamConn struct {
	r      *bufio.Reader
	w      io.Writer
	wmu    sync.Mutex
	remote net.Addr
	closer io.Closer
}

var _ Origin = (*StreamConn)(nil)

// NewStreamConn wraps rwc. remote is reported by RemoteAddr and may be nil.
func NewStreamConn(rwc io.ReadWriteCloser, remote net.Addr) *StreamConn {
	return &StreamConn{
		r:      bufio.NewReader(rwc),
		w:      rwc,
		remote: remote,
		closer: rwc,
	}
}

// RemoteAddr returns the address of the peer.
func (c *StreamConn) RemoteAddr() net.Addr {
	return c.remote
}

// Send writes p as a single frame. It is safe to call from several goroutines.
func (c *StreamConn) Send(p Packet) error {
	b := make([]byte, bit32Size, 64)
	b, err := p.AppendBinary(b)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	return writeFrame(c.w, b)
}

// ReadPacket reads the next frame and parses it. Empty frames are skipped.
func (c *StreamConn) ReadPacket() (Packet, error) {
	for {
		data, err := ReadFrame(c.r)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			continue
		}
		return ParsePacket(data)
	}
}

// Serve reads packets until the stream ends and dispatches them to d. It
// returns nil on a clean end of stream. A malformed packet or an oversized
// frame closes the connection.
func (c *StreamConn) Serve(d Dispatcher) error {
	if d == nil {
		d = NewReceiver()
	}
	for {
		p, err := c.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, ErrMalformed) || errors.Is(err, ErrFrameTooLarge) {
				log().Warningf("closing stream from %s: %s", originString(c), err)
				c.Close()
			}
			return err
		}
		dispatchPacket(d, p, c)
	}
}

// Close closes the underlying stream.
func (c *StreamConn) Close() error {
	return c.closer.Close()
}

// WriteFrame writes data to w prefixed with its size.
func WriteFrame(w io.Writer, data []byte) error {
	b := make([]byte, bit32Size, bit32Size+len(data))
	return writeFrame(w, append(b, data...))
}

// writeFrame fills in the size prefix reserved at the start of b and writes it
// in one call.
func writeFrame(w io.Writer, b []byte) error {
	n := len(b) - bit32Size
	if n > MaxFrameSize {
		return errors.Wrapf(ErrFrameTooLarge, "%d bytes", n)
	}
	binary.BigEndian.PutUint32(b, uint32(n))
	_, err := w.Write(b)
	return err
}

// ReadFrame reads one size-prefixed frame from r. A stream ending cleanly
// before a frame starts returns io.EOF; one ending inside a frame returns
// io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var size [bit32Size]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	n := int32(binary.BigEndian.Uint32(size[:]))
	if n < 0 {
		return nil, malformedf("negative frame size %d", n)
	}
	if n > MaxFrameSize {
		return nil, errors.Wrapf(ErrFrameTooLarge, "%d bytes", n)
	}

	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return data, nil
}
