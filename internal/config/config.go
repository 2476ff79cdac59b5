// Package config handles the oscd.toml daemon configuration.
package config

import (
	"net"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config represents an oscd.toml file.
type Config struct {
	UDP       UDP       `toml:"udp"`
	TCP       TCP       `toml:"tcp"`
	QUIC      QUIC      `toml:"quic"`
	Multicast Multicast `toml:"multicast"`
	Log       Log       `toml:"log"`
}

// UDP configures the datagram server.
type UDP struct {
	Listen string `toml:"listen"`
	// ScheduleBundles delays bundles until their time tag.
	ScheduleBundles bool `toml:"schedule-bundles"`
}

// TCP configures the stream server. It is disabled when Listen is empty.
type TCP struct {
	Listen string `toml:"listen"`
}

// QUIC configures the QUIC server. Without Cert and Key a self-signed
// certificate is generated at startup.
type QUIC struct {
	Listen string `toml:"listen"`
	Cert   string `toml:"cert"`
	Key    string `toml:"key"`
}

// Multicast configures joining a multicast group.
type Multicast struct {
	Group     string `toml:"group"`
	Interface string `toml:"interface"`
}

// Log configures logging and message output.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
	Color     bool   `toml:"color"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		UDP: UDP{Listen: "127.0.0.1:8765"},
		Log: Log{Verbosity: 1, Color: true},
	}
}

// Load parses the file at path on top of the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	return Parse(data)
}

// Parse parses TOML data on top of the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the listen addresses and the multicast group.
func (c *Config) Validate() error {
	for name, addr := range map[string]string{
		"udp.listen":  c.UDP.Listen,
		"tcp.listen":  c.TCP.Listen,
		"quic.listen": c.QUIC.Listen,
	} {
		if addr == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return errors.Wrapf(err, "invalid %s", name)
		}
	}

	if (c.QUIC.Cert == "") != (c.QUIC.Key == "") {
		return errors.New("quic.cert and quic.key must be set together")
	}

	if c.Multicast.Group != "" {
		host, _, err := net.SplitHostPort(c.Multicast.Group)
		if err != nil {
			return errors.Wrap(err, "invalid multicast.group")
		}
		if ip := net.ParseIP(host); ip == nil || !ip.IsMulticast() {
			return errors.Errorf("multicast.group %q is not a multicast address", host)
		}
	}
	if c.Multicast.Interface != "" && c.Multicast.Group == "" {
		return errors.New("multicast.interface set without multicast.group")
	}

	if c.UDP.Listen == "" && c.TCP.Listen == "" && c.QUIC.Listen == "" && c.Multicast.Group == "" {
		return errors.New("no listeners configured")
	}
	return nil
}
