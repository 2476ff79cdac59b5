package osc

import (
	"context"
	"crypto/tls"
	"io"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
)

// QUICProtocol is the ALPN protocol name negotiated for OSC over QUIC.
const QUICProtocol = "osc"

// QUICServer serves OSC over QUIC. Every stream a peer opens is framed like
// a TCP connection.
type QUICServer struct {
	Addr       string
	TLSConfig  *tls.Config
	QUICConfig *quic.Config
	Dispatcher Dispatcher
}

// ListenAndServe listens on the UDP address s.Addr and serves QUIC
// connections until ctx is done.
func (s *QUICServer) ListenAndServe(ctx context.Context) error {
	if s.TLSConfig == nil {
		return errors.New("osc: QUICServer needs a TLS config")
	}
	ln, err := quic.ListenAddr(s.Addr, quicTLSConfig(s.TLSConfig), s.QUICConfig)
	if err != nil {
		return err
	}
	defer ln.Close()

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or ln is closed.
func (s *QUICServer) Serve(ctx context.Context, ln *quic.Listener) error {
	d := s.Dispatcher
	if d == nil {
		d = NewReceiver()
	}
	log().Infof("serving OSC over quic on %s", ln.Addr())

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go serveQUICConn(ctx, conn, d)
	}
}

func serveQUICConn(ctx context.Context, conn *quic.Conn, d Dispatcher) {
	defer conn.CloseWithError(0, "")
	log().Infof("quic connection from %s opened", conn.RemoteAddr())

	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			log().Infof("quic connection from %s closed: %s", conn.RemoteAddr(), err)
			return
		}
		go func() {
			sc := NewStreamConn(quicStream{stream}, conn.RemoteAddr())
			defer sc.Close()
			if err := sc.Serve(d); err != nil {
				log().Warningf("quic stream from %s: %s", conn.RemoteAddr(), err)
			}
		}()
	}
}

// DialQUIC connects to an OSC QUIC server and opens a stream to it. Closing
// the returned StreamConn closes the whole connection.
func DialQUIC(ctx context.Context, addr string, tlsConf *tls.Config) (*StreamConn, error) {
	conn, err := quic.DialAddr(ctx, addr, quicTLSConfig(tlsConf), nil)
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		conn.CloseWithError(0, "")
		return nil, err
	}

	sc := NewStreamConn(quicStream{stream}, conn.RemoteAddr())
	sc.closer = closerFunc(func() error {
		stream.Close()
		return conn.CloseWithError(0, "")
	})
	return sc, nil
}

func quicTLSConfig(c *tls.Config) *tls.Config {
	if c == nil {
		c = &tls.Config{}
	} else {
		c = c.Clone()
	}
	if len(c.NextProtos) == 0 {
		c.NextProtos = []string{QUICProtocol}
	}
	return c
}

// quicStream closes both directions of a stream; quic.Stream.Close only
// closes the send side.
type quicStream struct {
	*quic.Stream
}

func (s quicStream) Close() error {
	s.CancelRead(0)
	return s.Stream.Close()
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

var _ io.ReadWriteCloser = quicStream{}
