package osc

import (
	"context"
	"net"
	"strconv"
	"time"
)

// Client enables you to send OSC Packets to a specified server over UDP,
// one packet per datagram.
type Client struct {
	conn net.PacketConn
	addr net.Addr
}

// Dial creates a new OSC Client sending to the specified server.
func Dial(addr string) (*Client, error) {
	a, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, addr: a}, nil
}

// DialBroadcast creates a Client sending to port on the IPv4 broadcast address.
func DialBroadcast(port int) (*Client, error) {
	lc := net.ListenConfig{Control: broadcastControl}
	conn, err := lc.ListenPacket(context.Background(), "udp4", ":0")
	if err != nil {
		return nil, err
	}
	a, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(net.IPv4bcast.String(), strconv.Itoa(port)))
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, addr: a}, nil
}

// Send sends an OSC Packet to the server.
func (c *Client) Send(packet Packet) error {
	data, err := packet.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = c.conn.WriteTo(data, c.addr)
	return err
}

// ReceivePacket waits up to timeout for a packet sent back to the client,
// e.g. a reply. A zero timeout waits forever.
func (c *Client) ReceivePacket(timeout time.Duration) (Packet, net.Addr, error) {
	s := &Server{ReadTimeout: timeout}
	return s.ReceivePacket(c.conn)
}

// RemoteAddr returns the address packets are sent to.
func (c *Client) RemoteAddr() net.Addr {
	return c.addr
}

// LocalAddr returns the address packets are sent from.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Close closes the connection to the server.
func (c *Client) Close() error {
	return c.conn.Close()
}
