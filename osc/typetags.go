package osc

// TypeTag is the single character identifying an argument's wire type.
type TypeTag byte

const (
	TypeString  TypeTag = 's'
	TypeInt32   TypeTag = 'i'
	TypeFloat32 TypeTag = 'f'
	TypeBlob    TypeTag = 'b'
	TypeTimeTag TypeTag = 't'
	TypeNil     TypeTag = 'N'
	TypeTrue    TypeTag = 'T'
	TypeFalse   TypeTag = 'F'
	TypeImpulse TypeTag = 'I'
	TypeInvalid TypeTag = 0
)

// String implements the fmt.Stringer interface.
func (t TypeTag) String() string {
	return string(rune(t))
}

// Valid reports whether t is one of the supported type tags.
func (t TypeTag) Valid() bool {
	switch t {
	case TypeString, TypeInt32, TypeFloat32, TypeBlob, TypeTimeTag,
		TypeNil, TypeTrue, TypeFalse, TypeImpulse:
		return true
	}
	return false
}

// dataless reports whether arguments of type t carry no payload bytes.
func (t TypeTag) dataless() bool {
	switch t {
	case TypeNil, TypeTrue, TypeFalse, TypeImpulse:
		return true
	}
	return false
}

// writeTypeTags appends the type tag string for args, including the leading
// ',' but not the padding.
func writeTypeTags(args []Argument, b []byte) []byte {
	b = append(b, ',')
	for _, a := range args {
		b = append(b, byte(a.TypeTag()))
	}
	return b
}
