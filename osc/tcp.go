package osc

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

// StreamServer serves OSC over TCP, one size-prefixed packet per frame.
type StreamServer struct {
	Addr       string
	Dispatcher Dispatcher
}

// ListenAndServe listens on the TCP address s.Addr and serves each
// connection it accepts.
func (s *StreamServer) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	return s.Serve(ln)
}

// Serve accepts connections on ln and serves each in its own goroutine.
// It returns when ln is closed.
func (s *StreamServer) Serve(ln net.Listener) error {
	d := s.Dispatcher
	if d == nil {
		d = NewReceiver()
	}
	log().Infof("serving OSC over tcp on %s", ln.Addr())

	var tempDelay time.Duration
	for {
		c, err := ln.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if maxDelay := time.Second; tempDelay > maxDelay {
					tempDelay = maxDelay
				}
				log().Warningf("accept error: %s; retrying in %v", err, tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0
		go serveStream(c, d)
	}
}

func serveStream(c net.Conn, d Dispatcher) {
	sc := NewStreamConn(c, c.RemoteAddr())
	defer sc.Close()

	log().Infof("stream from %s opened", c.RemoteAddr())
	if err := sc.Serve(d); err != nil && !errors.Is(err, net.ErrClosed) {
		log().Warningf("stream from %s: %s", c.RemoteAddr(), err)
	}
	log().Infof("stream from %s closed", c.RemoteAddr())
}

// DialTCP connects to an OSC stream server. Call Serve on the returned
// connection to receive replies.
func DialTCP(addr string) (*StreamConn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewStreamConn(c, c.RemoteAddr()), nil
}
