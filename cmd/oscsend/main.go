// Command oscsend sends a single OSC message.
//
//	oscsend [flags] /address [arg ...]
//
// Arguments are written tag:value (i:1 f:0.5 s:hello b:bytes t:1.5) or as a
// bare tag for T, F, N and I. Untagged values are sent as int, float or
// string, whichever parses first.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/chabad360/oscnode/internal/tlsconf"
	"github.com/chabad360/oscnode/osc"
)

func main() {
	var (
		addr  = flag.String("addr", "127.0.0.1:8765", "destination address (group address for multicast)")
		proto = flag.String("proto", "udp", "transport: udp, tcp, quic, broadcast or multicast")
		wait  = flag.Duration("wait", 0, "wait this long for a reply and print it")
		ttl   = flag.Int("ttl", 1, "multicast TTL")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: oscsend [flags] /address [arg ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	msg, err := parseMessage(flag.Arg(0), flag.Args()[1:])
	if err != nil {
		fail(err)
	}

	reply, err := send(*proto, *addr, *ttl, msg, *wait)
	if err != nil {
		fail(err)
	}
	color.Green("sent %s", msg)
	if reply != nil {
		fmt.Println(reply)
	}
}

func fail(err error) {
	color.Red("oscsend: %s", err)
	os.Exit(1)
}

func parseMessage(addr string, args []string) (*osc.Message, error) {
	msg := osc.NewMessage(addr)
	for _, s := range args {
		a, err := parseArgument(s)
		if err != nil {
			return nil, errors.WithMessagef(err, "argument %q", s)
		}
		msg.Arguments = append(msg.Arguments, a)
	}
	return msg, nil
}

// parseArgument parses one command line argument.
func parseArgument(s string) (osc.Argument, error) {
	switch {
	case len(s) == 1 && strings.ContainsRune("TFNI", rune(s[0])):
		return osc.NewArgumentWithTag(osc.TypeTag(s[0]), nil)
	case len(s) >= 2 && s[1] == ':':
		return osc.NewArgumentWithTag(osc.TypeTag(s[0]), s[2:])
	}

	if i, err := strconv.ParseInt(s, 0, 32); err == nil {
		return osc.Int(i), nil
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return osc.Float(f), nil
	}
	return osc.String(s), nil
}

func send(proto, addr string, ttl int, msg *osc.Message, wait time.Duration) (osc.Packet, error) {
	switch proto {
	case "udp", "broadcast", "multicast":
		c, err := dialPacket(proto, addr, ttl)
		if err != nil {
			return nil, err
		}
		defer c.Close()

		if err := c.Send(msg); err != nil {
			return nil, err
		}
		if wait == 0 {
			return nil, nil
		}
		p, _, err := c.ReceivePacket(wait)
		return p, err

	case "tcp", "quic":
		c, err := dialStream(proto, addr)
		if err != nil {
			return nil, err
		}
		defer c.Close()

		if err := c.Send(msg); err != nil {
			return nil, err
		}
		if wait == 0 {
			return nil, nil
		}
		return readWithTimeout(c, wait)
	}

	return nil, errors.Errorf("unknown transport %q", proto)
}

func dialPacket(proto, addr string, ttl int) (*osc.Client, error) {
	switch proto {
	case "broadcast":
		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid port in %q", addr)
		}
		return osc.DialBroadcast(n)
	case "multicast":
		return osc.DialMulticast(addr, ttl)
	}
	return osc.Dial(addr)
}

func dialStream(proto, addr string) (*osc.StreamConn, error) {
	if proto == "quic" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return osc.DialQUIC(ctx, addr, tlsconf.Client(true))
	}
	return osc.DialTCP(addr)
}

func readWithTimeout(c *osc.StreamConn, wait time.Duration) (osc.Packet, error) {
	type result struct {
		p   osc.Packet
		err error
	}
	ch := make(chan result, 1)
	go func() {
		p, err := c.ReadPacket()
		ch <- result{p, err}
	}()

	select {
	case r := <-ch:
		return r.p, r.err
	case <-time.After(wait):
		return nil, errors.Errorf("no reply within %v", wait)
	}
}
