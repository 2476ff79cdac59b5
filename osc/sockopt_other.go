//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package osc

import (
	"syscall"
)

func reuseAddrControl(_, _ string, _ syscall.RawConn) error {
	return nil
}

func broadcastControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
