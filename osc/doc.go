// Copyright 2013 - 2015 Sebastian Ruml <sebastian.ruml@gmail.com>
// Copyright 2021 - 2022 Mendel Greenberg <mendel@chabad360.me>

// Package osc encodes, decodes and routes Open Sound Control 1.1 packets.
//
// Open Sound Control (OSC) is a transport-independent, message-based protocol
// for communication among computers, sound synthesizers and other multimedia
// devices.
//
// # Arguments
//
// Message arguments are values of the Argument interface. The supported type
// tags are:
//
//	'i' Int (int32 on the wire)
//	'f' Float
//	's' String
//	'b' Blob
//	't' Timetag
//	'T', 'F' Bool
//	'N' Null
//	'I' Impulse
//
// NewArgument converts plain Go values; NewArgumentWithTag converts a value to
// the type of a given tag.
//
// # Packets
//
// A Packet is either a Message, an address pattern with zero or more
// arguments, or a Bundle, a time tag followed by zero or more Messages and
// Bundles. ParsePacket decodes either kind.
//
// # Dispatching
//
// A Receiver keeps Methods in a tree of AddressNodes, one node per part of
// an address. Both registered addresses and message addresses may contain
// the wildcards '*', '?', '[...]' and '{...}'.
//
//	r := osc.NewReceiver()
//	r.AddMethodFunc("/synth/*/freq", func(msg *osc.Message, origin osc.Origin) {
//		fmt.Println(msg)
//	})
//
//	s := &osc.Server{Addr: "127.0.0.1:8765", Dispatcher: r}
//	s.ListenAndServe()
//
// # Transports
//
// Server and Client send one packet per UDP datagram, including broadcast and
// multicast. StreamServer and DialTCP frame packets over TCP with a size
// prefix, and QUICServer and DialQUIC do the same over QUIC streams. Every
// transport passes an Origin along with each packet so methods can reply.
package osc
