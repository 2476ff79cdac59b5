package osc

import (
	"encoding/binary"
	"time"
)

const (
	// Immediately is the special time tag value meaning "now".
	Immediately = Timetag(1)

	secondsFrom1900To1970 = 2208988800
	nanosPerSecond        = 1e9
)

// Timetag is an NTP timestamp: 32 bits of seconds since 1900-01-01 followed
// by 32 bits of binary fraction. It is also the argument type for 't'.
// The value 1 is reserved for Immediately.
type Timetag uint64

// NewTimetagFromTime converts t to a time tag.
func NewTimetagFromTime(t time.Time) Timetag {
	return Timetag(timeToTimetag(t))
}

// NewImmediateTimetag returns the time tag meaning "immediately".
func NewImmediateTimetag() Timetag {
	return Immediately
}

// NewTimetag returns a time tag for the current time.
func NewTimetag() Timetag {
	return NewTimetagFromTime(time.Now())
}

// Time converts t back to a time.Time, losing sub-nanosecond precision.
func (t Timetag) Time() time.Time {
	return timetagToTime(t)
}

// IsImmediate reports whether t is the "immediately" sentinel.
func (t Timetag) IsImmediate() bool {
	return t == Immediately
}

// FractionalSecond returns the low 32 bits, in units of 2^-32 seconds.
func (t Timetag) FractionalSecond() uint32 {
	return uint32(t)
}

// SecondsSinceEpoch returns the high 32 bits, whole seconds since 1900.
func (t Timetag) SecondsSinceEpoch() uint32 {
	return uint32(t >> 32)
}

// TimeTag returns t as a raw uint64.
func (t Timetag) TimeTag() uint64 {
	return uint64(t)
}

// MarshalBinary returns the 8 byte big-endian encoding of t.
func (t Timetag) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint64(make([]byte, 0, bit64Size), uint64(t)), nil
}

// SetTime sets t to tm.
func (t *Timetag) SetTime(tm time.Time) {
	*t = Timetag(timeToTimetag(tm))
}

// ExpiresIn returns how long until t is reached, or 0 for Immediately and
// times in the past.
func (t Timetag) ExpiresIn() time.Duration {
	if t <= Immediately {
		return 0
	}
	if d := time.Until(timetagToTime(t)); d > 0 {
		return d
	}
	return 0
}

func timeToTimetag(t time.Time) uint64 {
	secs := uint64(secondsFrom1900To1970+t.Unix()) << 32
	frac := (uint64(t.Nanosecond()) << 32) / nanosPerSecond
	return secs | frac
}

func timetagToTime(timetag Timetag) time.Time {
	secs := int64(timetag.SecondsSinceEpoch()) - secondsFrom1900To1970
	nanos := (uint64(timetag.FractionalSecond()) * nanosPerSecond) >> 32
	return time.Unix(secs, int64(nanos))
}
