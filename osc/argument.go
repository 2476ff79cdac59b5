package osc

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Argument is a single typed OSC argument. The set of implementations is
// closed: Int, Float, String, Blob, Timetag, Bool, Null and Impulse.
type Argument interface {
	// TypeTag returns the argument's type tag.
	TypeTag() TypeTag
	// Value returns the argument as a plain Go value.
	Value() interface{}
	// String renders the value for diagnostics.
	String() string

	appendArgument(b []byte) ([]byte, error)
}

// Int is an OSC int32 argument. The value is range checked when encoded,
// not when constructed.
type Int int64

// Float is an OSC float32 argument.
type Float float32

// String is an OSC string argument.
type String string

// Blob is an OSC blob argument.
type Blob []byte

// Bool is an OSC True or False argument. It has no payload; the value is
// carried by the type tag.
type Bool bool

// Null is the OSC nil argument.
type Null struct{}

// Impulse is the OSC impulse ("bang") argument.
type Impulse struct{}

var (
	_ Argument = Int(0)
	_ Argument = Float(0)
	_ Argument = String("")
	_ Argument = Blob(nil)
	_ Argument = Timetag(0)
	_ Argument = Bool(false)
	_ Argument = Null{}
	_ Argument = Impulse{}
)

// NewInt returns an Int argument for any Go integer.
func NewInt[T constraints.Integer](i T) Int {
	return Int(i)
}

// NewFloat returns a Float argument for any Go float.
func NewFloat[T constraints.Float](f T) Float {
	return Float(f)
}

func (Int) TypeTag() TypeTag { return TypeInt32 }
func (i Int) Value() interface{} { return int64(i) }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (Float) TypeTag() TypeTag { return TypeFloat32 }
func (f Float) Value() interface{} { return float32(f) }
func (f Float) String() string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
func (String) TypeTag() TypeTag { return TypeString }
func (s String) Value() interface{} { return string(s) }
func (s String) String() string { return string(s) }
func (Blob) TypeTag() TypeTag { return TypeBlob }
func (b Blob) Value() interface{} { return []byte(b) }
func (b Blob) String() string { return fmt.Sprintf("blob(%d)", len(b)) }
func (Timetag) TypeTag() TypeTag { return TypeTimeTag }
func (t Timetag) Value() interface{} { return t }

func (t Timetag) String() string {
	if t.IsImmediate() {
		return "immediately"
	}
	return t.Time().UTC().Format(time.RFC3339Nano)
}

func (b Bool) TypeTag() TypeTag {
	if b {
		return TypeTrue
	}
	return TypeFalse
}
func (b Bool) Value() interface{} { return bool(b) }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (Null) TypeTag() TypeTag { return TypeNil }
func (Null) Value() interface{} { return nil }
func (Null) String() string { return "nil" }
func (Impulse) TypeTag() TypeTag { return TypeImpulse }
func (Impulse) Value() interface{} { return Impulse{} }
func (Impulse) String() string { return "bang" }

func (i Int) appendArgument(b []byte) ([]byte, error) {
	if i > math.MaxInt32 || i < math.MinInt32 {
		return b, errors.Wrapf(ErrOverflow, "%d does not fit in int32", int64(i))
	}
	return binary.BigEndian.AppendUint32(b, uint32(int32(i))), nil
}

func (f Float) appendArgument(b []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(float32(f))), nil
}

func (s String) appendArgument(b []byte) ([]byte, error) {
	if strings.IndexByte(string(s), 0) >= 0 {
		return b, errors.Wrapf(ErrUnsupportedType, "string %q contains a null byte", string(s))
	}
	return writePaddedString(string(s), b), nil
}

func (bl Blob) appendArgument(b []byte) ([]byte, error) {
	if int64(len(bl)) > math.MaxUint32 {
		return b, errors.Wrapf(ErrOverflow, "blob of %d bytes", len(bl))
	}
	return writeBlob(bl, b), nil
}

func (t Timetag) appendArgument(b []byte) ([]byte, error) {
	return binary.BigEndian.AppendUint64(b, uint64(t)), nil
}

func (Bool) appendArgument(b []byte) ([]byte, error) { return b, nil }
func (Null) appendArgument(b []byte) ([]byte, error) { return b, nil }
func (Impulse) appendArgument(b []byte) ([]byte, error) { return b, nil }

// EncodeArgument returns the wire encoding of a's payload. Dataless
// arguments encode to zero bytes.
func EncodeArgument(a Argument) ([]byte, error) {
	if a == nil {
		return nil, errors.Wrap(ErrUnsupportedType, "nil argument")
	}
	return a.appendArgument(nil)
}

// DecodeArgument decodes one argument of type tag from the front of data and
// returns it together with the remaining bytes.
func DecodeArgument(tag TypeTag, data []byte) (Argument, []byte, error) {
	switch tag {
	case TypeTrue:
		return Bool(true), data, nil
	case TypeFalse:
		return Bool(false), data, nil
	case TypeNil:
		return Null{}, data, nil
	case TypeImpulse:
		return Impulse{}, data, nil

	case TypeInt32:
		if len(data) < bit32Size {
			return nil, nil, malformedf("int32 needs %d bytes, have %d", bit32Size, len(data))
		}
		return Int(int32(binary.BigEndian.Uint32(data))), data[bit32Size:], nil

	case TypeFloat32:
		if len(data) < bit32Size {
			return nil, nil, malformedf("float32 needs %d bytes, have %d", bit32Size, len(data))
		}
		return Float(math.Float32frombits(binary.BigEndian.Uint32(data))), data[bit32Size:], nil

	case TypeTimeTag:
		if len(data) < bit64Size {
			return nil, nil, malformedf("time tag needs %d bytes, have %d", bit64Size, len(data))
		}
		return Timetag(binary.BigEndian.Uint64(data)), data[bit64Size:], nil

	case TypeString:
		s, rest, err := parsePaddedString(data)
		if err != nil {
			return nil, nil, err
		}
		return String(s), rest, nil

	case TypeBlob:
		b, rest, err := parseBlob(data)
		if err != nil {
			return nil, nil, err
		}
		return Blob(b), rest, nil
	}

	return nil, nil, malformedf("unsupported type tag %q", byte(tag))
}

// NewArgument creates an argument, choosing its type from the Go type of
// value: bool, nil, integers, floats, strings, []byte, Timetag and
// time.Time are supported. An Argument is returned as is.
func NewArgument(value interface{}) (Argument, error) {
	switch v := value.(type) {
	case Argument:
		return v, nil
	case nil:
		return Null{}, nil
	case bool:
		return Bool(v), nil
	case int:
		return NewInt(v), nil
	case int8:
		return NewInt(v), nil
	case int16:
		return NewInt(v), nil
	case int32:
		return NewInt(v), nil
	case int64:
		return NewInt(v), nil
	case uint:
		return NewInt(v), nil
	case uint8:
		return NewInt(v), nil
	case uint16:
		return NewInt(v), nil
	case uint32:
		return NewInt(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, errors.Wrapf(ErrOverflow, "%d does not fit in int64", v)
		}
		return NewInt(v), nil
	case float32:
		return NewFloat(v), nil
	case float64:
		return NewFloat(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Blob(v), nil
	case time.Time:
		return NewTimetagFromTime(v), nil
	}

	return nil, errors.Wrapf(ErrUnsupportedType, "%T (value = %v)", value, value)
}

// NewArgumentWithTag creates an argument of the type named by tag. value is
// only used as the payload; it is ignored for T, F, N and I.
func NewArgumentWithTag(tag TypeTag, value interface{}) (Argument, error) {
	if tag.dataless() {
		a, _, err := DecodeArgument(tag, nil)
		return a, err
	}
	if !tag.Valid() {
		return nil, errors.Wrapf(ErrUnsupportedType, "unknown type tag %q", byte(tag))
	}

	a, err := NewArgument(value)
	if err != nil {
		return nil, err
	}
	if a.TypeTag() == tag {
		return a, nil
	}

	switch tag {
	case TypeInt32:
		switch v := a.(type) {
		case Float:
			return Int(int64(v)), nil
		case Timetag:
			if v > math.MaxInt32 {
				return nil, errors.Wrapf(ErrOverflow, "time tag %d does not fit in int32", uint64(v))
			}
			return Int(v), nil
		case String:
			i, err := strconv.ParseInt(string(v), 0, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrUnsupportedType, "int from %q", string(v))
			}
			return Int(i), nil
		}
	case TypeFloat32:
		switch v := a.(type) {
		case Int:
			return Float(v), nil
		case String:
			f, err := strconv.ParseFloat(string(v), 32)
			if err != nil {
				return nil, errors.Wrapf(ErrUnsupportedType, "float from %q", string(v))
			}
			return Float(f), nil
		}
	case TypeString:
		return String(a.String()), nil
	case TypeBlob:
		if v, ok := a.(String); ok {
			return Blob(v), nil
		}
	case TypeTimeTag:
		switch v := a.(type) {
		case Int:
			return Timetag(uint64(v) << 32), nil
		case Float:
			return secondsTimetag(float64(v)), nil
		case String:
			f, err := strconv.ParseFloat(string(v), 64)
			if err != nil || f < 0 {
				return nil, errors.Wrapf(ErrUnsupportedType, "time tag from %q", string(v))
			}
			return secondsTimetag(f), nil
		}
	}

	return nil, errors.Wrapf(ErrUnsupportedType, "%T as type tag %q", value, byte(tag))
}

// secondsTimetag returns the time tag for secs seconds since 1900.
func secondsTimetag(secs float64) Timetag {
	whole, frac := math.Modf(secs)
	return Timetag(uint64(whole)<<32 | uint64(frac*(1<<32)))
}
