package osc

import (
	"context"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"
)

// ListenMulticast opens a UDP socket on the port of group ("239.0.0.1:7000")
// and joins the multicast group on ifi, or on the system default interface if
// ifi is nil. Several processes on one host may listen to the same group.
func ListenMulticast(group string, ifi *net.Interface) (net.PacketConn, error) {
	gaddr, err := net.ResolveUDPAddr("udp4", group)
	if err != nil {
		return nil, err
	}
	if !gaddr.IP.IsMulticast() {
		return nil, errors.Errorf("%s is not a multicast address", gaddr.IP)
	}

	lc := net.ListenConfig{Control: reuseAddrControl}
	c, err := lc.ListenPacket(context.Background(), "udp4", net.JoinHostPort("", strconv.Itoa(gaddr.Port)))
	if err != nil {
		return nil, err
	}

	p := ipv4.NewPacketConn(c)
	if err := p.JoinGroup(ifi, &net.UDPAddr{IP: gaddr.IP}); err != nil {
		c.Close()
		return nil, errors.Wrapf(err, "joining %s", gaddr.IP)
	}
	if err := p.SetMulticastLoopback(true); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// ListenAndServeMulticast joins group and dispatches the packets sent to it.
func (s *Server) ListenAndServeMulticast(group string, ifi *net.Interface) error {
	c, err := ListenMulticast(group, ifi)
	if err != nil {
		return err
	}
	defer c.Close()

	return s.Serve(c)
}

// DialMulticast creates a Client sending to the multicast group with the
// given TTL (hop limit).
func DialMulticast(group string, ttl int) (*Client, error) {
	gaddr, err := net.ResolveUDPAddr("udp4", group)
	if err != nil {
		return nil, err
	}
	if !gaddr.IP.IsMulticast() {
		return nil, errors.Errorf("%s is not a multicast address", gaddr.IP)
	}

	c, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, err
	}

	p := ipv4.NewPacketConn(c)
	if err := p.SetMulticastTTL(ttl); err != nil {
		c.Close()
		return nil, err
	}
	if err := p.SetMulticastLoopback(true); err != nil {
		c.Close()
		return nil, err
	}
	return &Client{conn: c, addr: gaddr}, nil
}
