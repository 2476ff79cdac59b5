package osc

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

// Server receives OSC packets over UDP on Addr and hands them to Dispatcher.
type Server struct {
	Addr       string
	Dispatcher Dispatcher
	// ReadTimeout bounds each read. Serve keeps going after a timeout;
	// ReceivePacket returns it.
	ReadTimeout time.Duration
	// ScheduleBundles delays bundles with a future time tag until that time.
	ScheduleBundles bool
}

// ListenAndServe listens on addr and dispatches the retrieved OSC packets to d.
func ListenAndServe(addr string, d Dispatcher) error {
	s := &Server{Addr: addr, Dispatcher: d}
	return s.ListenAndServe()
}

// ListenAndServe listens on s.Addr and calls Serve.
func (s *Server) ListenAndServe() error {
	ln, err := net.ListenPacket("udp", s.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	return s.Serve(ln)
}

// Serve reads packets from c and dispatches each one on its own goroutine.
// Malformed packets are logged and dropped. Serve returns when reading from
// c fails, e.g. because c was closed.
func (s *Server) Serve(c net.PacketConn) error {
	d := s.Dispatcher
	if d == nil {
		d = NewReceiver()
	}
	log().Infof("serving OSC over %s on %s", c.LocalAddr().Network(), c.LocalAddr())

	for {
		p, addr, err := s.ReceivePacket(c)
		if err != nil {
			if errors.Is(err, ErrMalformed) {
				log().Warningf("dropping packet from %v: %s", addr, err)
				continue
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return err
		}
		go scheduleDispatch(d, p, &packetOrigin{conn: c, addr: addr}, s.ScheduleBundles)
	}
}

// ReceivePacket reads and parses a single datagram from c.
func (s *Server) ReceivePacket(c net.PacketConn) (Packet, net.Addr, error) {
	if s.ReadTimeout != 0 {
		if err := c.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return nil, nil, err
		}
	}

	b := bPool.Get().(*[]byte)
	defer bPool.Put(b)

	n, a, err := c.ReadFrom(*b)
	if err != nil {
		return nil, a, err
	}
	bb := make([]byte, n)
	copy(bb, *b)

	p, err := ParsePacket(bb)
	return p, a, err
}

// packetOrigin is the Origin of a datagram; replies go back to the sender's
// address from the receiving socket.
type packetOrigin struct {
	conn net.PacketConn
	addr net.Addr
}

func (o *packetOrigin) RemoteAddr() net.Addr {
	return o.addr
}

func (o *packetOrigin) Send(p Packet) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = o.conn.WriteTo(data, o.addr)
	return err
}
