package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    *Config
		wantErr bool
	}{
		{
			name: "empty",
			data: "",
			want: Default(),
		},
		{
			name: "full",
			data: `
[udp]
listen = ":9000"
schedule-bundles = true

[tcp]
listen = ":9001"

[quic]
listen = ":9002"

[multicast]
group = "239.0.0.1:9003"
interface = "eth0"

[log]
verbosity = 2
file = "oscd.log"
color = false
`,
			want: &Config{
				UDP:       UDP{Listen: ":9000", ScheduleBundles: true},
				TCP:       TCP{Listen: ":9001"},
				QUIC:      QUIC{Listen: ":9002"},
				Multicast: Multicast{Group: "239.0.0.1:9003", Interface: "eth0"},
				Log:       Log{Verbosity: 2, File: "oscd.log"},
			},
		},
		{name: "syntax", data: "[udp", wantErr: true},
		{name: "unknown_key", data: "[udp]\nport = 1", wantErr: true},
		{name: "bad_address", data: "[tcp]\nlisten = \"nope\"", wantErr: true},
		{name: "unicast_group", data: "[multicast]\ngroup = \"10.0.0.1:9000\"", wantErr: true},
		{name: "interface_without_group", data: "[multicast]\ninterface = \"eth0\"", wantErr: true},
		{name: "cert_without_key", data: "[quic]\nlisten = \":1\"\ncert = \"a.crt\"", wantErr: true},
		{name: "no_listeners", data: "[udp]\nlisten = \"\"", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oscd.toml")
	if err := os.WriteFile(path, []byte("[tcp]\nlisten = \"127.0.0.1:0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.TCP.Listen != "127.0.0.1:0" || c.UDP.Listen != Default().UDP.Listen {
		t.Errorf("Load() = %+v", c)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
