//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package osc

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseAddrControl lets several sockets bind the same multicast port.
func reuseAddrControl(_, _ string, c syscall.RawConn) error {
	return setSockopts(c, unix.SO_REUSEADDR, unix.SO_REUSEPORT)
}

func broadcastControl(_, _ string, c syscall.RawConn) error {
	return setSockopts(c, unix.SO_BROADCAST)
}

func setSockopts(c syscall.RawConn, opts ...int) error {
	var serr error
	err := c.Control(func(fd uintptr) {
		for _, opt := range opts {
			if serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, opt, 1); serr != nil {
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return serr
}
