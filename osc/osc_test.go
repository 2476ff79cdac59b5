package osc

import (
	"net"
	"sync"
)

const zero = string(byte(0))

// nulls returns a string of `i` nulls.
func nulls(i int) string {
	s := ""
	for j := 0; j < i; j++ {
		s += zero
	}
	return s
}

type testCase struct {
	name    string
	obj     Packet
	raw     []byte
	wantErr bool
}

var messageTestCases = []testCase{
	{
		"no_arguments",
		NewMessage("/foo"),
		[]byte("/foo" + nulls(4) + "," + nulls(3)),
		false,
	},
	{
		"int",
		NewMessage("/foo", Int(1)),
		[]byte("/foo" + nulls(4) + ",i" + nulls(2) + nulls(3) + "\x01"),
		false,
	},
	{
		"negative_int",
		NewMessage("/foo", Int(-2)),
		[]byte("/foo" + nulls(4) + ",i" + nulls(2) + "\xff\xff\xff\xfe"),
		false,
	},
	{
		"string_float_true",
		NewMessage("/a", String("hi"), Float(1), Bool(true)),
		[]byte("/a" + nulls(2) + ",sfT" + nulls(4) + "hi" + nulls(2) + "\x3f\x80" + nulls(2)),
		false,
	},
	{
		"empty_string",
		NewMessage("/a", String("")),
		[]byte("/a" + nulls(2) + ",s" + nulls(2) + nulls(4)),
		false,
	},
	{
		"empty_blob",
		NewMessage("/b", Blob{}),
		[]byte("/b" + nulls(2) + ",b" + nulls(2) + nulls(4)),
		false,
	},
	{
		"blob",
		NewMessage("/b", Blob{1, 2, 3}),
		[]byte("/b" + nulls(2) + ",b" + nulls(2) + nulls(3) + "\x03" + "\x01\x02\x03" + nulls(1)),
		false,
	},
	{
		"timetag",
		NewMessage("/t", Immediately),
		[]byte("/t" + nulls(2) + ",t" + nulls(2) + nulls(7) + "\x01"),
		false,
	},
	{
		"dataless",
		NewMessage("/n", Null{}, Impulse{}, Bool(false)),
		[]byte("/n" + nulls(2) + ",NIF" + nulls(4)),
		false,
	},
}

var bundleTestCases = []testCase{
	{
		"empty",
		NewBundle(),
		[]byte("#bundle" + zero + nulls(7) + "\x01"),
		false,
	},
	{
		"one_message",
		NewBundle(NewMessage("/foo", Int(1))),
		[]byte("#bundle" + zero + nulls(7) + "\x01" +
			nulls(3) + "\x10" + "/foo" + nulls(4) + ",i" + nulls(2) + nulls(3) + "\x01"),
		false,
	},
	{
		"nested",
		&Bundle{Timetag: Timetag(2), Elements: []Packet{
			NewBundle(NewMessage("/a")),
			NewMessage("/b"),
		}},
		[]byte("#bundle" + zero + nulls(7) + "\x02" +
			nulls(3) + "\x1c" + "#bundle" + zero + nulls(7) + "\x01" + nulls(3) + "\x08" + "/a" + nulls(2) + "," + nulls(3) +
			nulls(3) + "\x08" + "/b" + nulls(2) + "," + nulls(3)),
		false,
	},
}

// recorder is a Method that records the messages it handles.
type recorder struct {
	mu   sync.Mutex
	msgs []*Message
}

func (r *recorder) HandleMessage(msg *Message, _ Origin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

// localOrigin is an Origin collecting replies in memory.
type localOrigin struct {
	sent []Packet
}

func (o *localOrigin) RemoteAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
}

func (o *localOrigin) Send(p Packet) error {
	o.sent = append(o.sent, p)
	return nil
}
