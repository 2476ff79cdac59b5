// Command oscd receives OSC packets over UDP, TCP, QUIC and multicast and
// prints every message. It answers /ping with /pong.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"golang.org/x/sync/errgroup"

	"github.com/chabad360/oscnode/internal/config"
	"github.com/chabad360/oscnode/internal/tlsconf"
	"github.com/chabad360/oscnode/osc"
)

var log = commonlog.GetLogger("oscd")

func main() {
	var (
		configPath = flag.String("config", "", "path to oscd.toml")
		udpAddr    = flag.String("udp", "", "UDP listen address (overrides config)")
		tcpAddr    = flag.String("tcp", "", "TCP listen address (overrides config)")
		verbose    = flag.Int("v", -1, "log verbosity (overrides config)")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if *udpAddr != "" {
		cfg.UDP.Listen = *udpAddr
	}
	if *tcpAddr != "" {
		cfg.TCP.Listen = *tcpAddr
	}
	if *verbose >= 0 {
		cfg.Log.Verbosity = *verbose
	}

	var logPath *string
	if cfg.Log.File != "" {
		logPath = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, logPath)
	color.NoColor = color.NoColor || !cfg.Log.Color

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}

// run starts every configured listener and blocks until ctx is done or one
// of them fails.
func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	r := newReceiver(out)
	g, ctx := errgroup.WithContext(ctx)

	if cfg.UDP.Listen != "" {
		c, err := net.ListenPacket("udp", cfg.UDP.Listen)
		if err != nil {
			return err
		}
		s := &osc.Server{Dispatcher: r, ScheduleBundles: cfg.UDP.ScheduleBundles}
		g.Go(func() error { return serveUntilDone(ctx, c, func() error { return s.Serve(c) }) })
	}

	if cfg.Multicast.Group != "" {
		var ifi *net.Interface
		if cfg.Multicast.Interface != "" {
			var err error
			if ifi, err = net.InterfaceByName(cfg.Multicast.Interface); err != nil {
				return err
			}
		}
		c, err := osc.ListenMulticast(cfg.Multicast.Group, ifi)
		if err != nil {
			return err
		}
		s := &osc.Server{Dispatcher: r, ScheduleBundles: cfg.UDP.ScheduleBundles}
		g.Go(func() error { return serveUntilDone(ctx, c, func() error { return s.Serve(c) }) })
	}

	if cfg.TCP.Listen != "" {
		ln, err := net.Listen("tcp", cfg.TCP.Listen)
		if err != nil {
			return err
		}
		s := &osc.StreamServer{Dispatcher: r}
		g.Go(func() error { return serveUntilDone(ctx, ln, func() error { return s.Serve(ln) }) })
	}

	if cfg.QUIC.Listen != "" {
		tlsConf, err := tlsconf.Server(cfg.QUIC.Cert, cfg.QUIC.Key)
		if err != nil {
			return err
		}
		s := &osc.QUICServer{Addr: cfg.QUIC.Listen, TLSConfig: tlsConf, Dispatcher: r}
		g.Go(func() error { return s.ListenAndServe(ctx) })
	}

	return g.Wait()
}

// serveUntilDone runs serve until it fails or ctx is done, in which case c
// is closed and nil returned.
func serveUntilDone(ctx context.Context, c io.Closer, serve func() error) error {
	go func() {
		<-ctx.Done()
		c.Close()
	}()
	err := serve()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func newReceiver(out io.Writer) *osc.Receiver {
	r := osc.NewReceiver()
	r.Fallback = osc.NewMethod(func(msg *osc.Message, origin osc.Origin) {
		printMessage(out, msg, origin)
	})
	r.AddMethodFunc("/ping", func(msg *osc.Message, origin osc.Origin) {
		printMessage(out, msg, origin)
		if origin == nil {
			return
		}
		if err := origin.Send(osc.NewMessage("/pong", msg.Arguments...)); err != nil {
			log.Warningf("replying to %s: %s", origin.RemoteAddr(), err)
		}
	})
	return r
}

var (
	addrColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	tagColor  = color.New(color.FgYellow).SprintFunc()
	fromColor = color.New(color.Faint).SprintFunc()
)

func printMessage(out io.Writer, msg *osc.Message, origin osc.Origin) {
	var sb strings.Builder
	if origin != nil && origin.RemoteAddr() != nil {
		sb.WriteString(fromColor(origin.RemoteAddr().String()))
		sb.WriteByte(' ')
	}
	sb.WriteString(addrColor(msg.Address))
	for _, a := range msg.Arguments {
		sb.WriteByte(' ')
		sb.WriteString(tagColor(a.TypeTag().String() + ":"))
		sb.WriteString(a.String())
	}
	fmt.Fprintln(out, sb.String())
}
