package osc

import (
	"runtime"
	"sync"
	"time"
)

// MaxPacketSize is the largest datagram the servers read.
const MaxPacketSize = 65535

// bPool holds read buffers of MaxPacketSize bytes.
var bPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, MaxPacketSize)
		return &b
	},
}

// dispatchPacket dispatches p and logs any error or panic.
func dispatchPacket(d Dispatcher, p Packet, origin Origin) {
	defer func() {
		if err := recover(); err != nil {
			buf := make([]byte, 64<<10)
			buf = buf[:runtime.Stack(buf, false)]
			log().Errorf("panic handling packet from %s: %v\n%s", originString(origin), err, buf)
		}
	}()
	if err := d.Dispatch(p, origin); err != nil {
		log().Warningf("dispatching packet from %s: %s", originString(origin), err)
	}
}

// scheduleDispatch dispatches p, delaying bundles until their time tag when
// schedule is set.
func scheduleDispatch(d Dispatcher, p Packet, origin Origin, schedule bool) {
	if b, ok := p.(*Bundle); ok && schedule {
		if delay := b.Timetag.ExpiresIn(); delay > 0 {
			time.AfterFunc(delay, func() {
				dispatchPacket(d, p, origin)
			})
			return
		}
	}
	dispatchPacket(d, p, origin)
}
