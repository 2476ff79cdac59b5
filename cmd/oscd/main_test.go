package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/chabad360/oscnode/internal/config"
	"github.com/chabad360/oscnode/osc"
)

func init() {
	color.NoColor = true
}

type syncBuffer struct {
	ch chan string
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.ch <- string(p)
	return len(p), nil
}

func TestPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	printMessage(&buf, osc.NewMessage("/a", osc.Int(1), osc.String("x")), nil)
	if got, want := buf.String(), "/a i:1 s:x\n"; got != want {
		t.Errorf("printMessage() = %q, want %q", got, want)
	}
}

func TestRun(t *testing.T) {
	// Reserve a free port for the daemon
	probe, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := probe.LocalAddr().String()
	probe.Close()

	cfg := config.Default()
	cfg.UDP.Listen = addr

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{ch: make(chan string, 64)}
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, out) }()

	client, err := osc.Dial(addr)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()

	// The listener may not be up yet; resend until the message shows up
	deadline := time.After(5 * time.Second)
	var line string
	for line == "" {
		if err := client.Send(osc.NewMessage("/hello", osc.Int(5))); err != nil {
			t.Fatal(err)
		}
		select {
		case line = <-out.ch:
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("timed out")
		}
	}
	if !strings.HasSuffix(line, "/hello i:5\n") {
		t.Errorf("output = %q", line)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run() didn't return after cancel")
	}
}
