package tp

import "fmt"

type (
	Code int8

	// Type is a vector value type: scalar when Lanes == 1.
	// Accumulator widths (24, 48) are first-class bit widths.
	Type struct {
		Code  Code
		Bits  int16
		Lanes int16
	}
)

const (
	Int Code = iota
	UInt
	Float
	Handle
)

func Make(code Code, bits, lanes int) Type {
	return Type{Code: code, Bits: int16(bits), Lanes: int16(lanes)}
}

func IntT(bits, lanes int) Type   { return Make(Int, bits, lanes) }
func UIntT(bits, lanes int) Type  { return Make(UInt, bits, lanes) }
func FloatT(bits, lanes int) Type { return Make(Float, bits, lanes) }
func Bool(lanes int) Type         { return Make(UInt, 1, lanes) }
func HandleT() Type               { return Make(Handle, 64, 1) }

func (t Type) IsScalar() bool { return t.Lanes == 1 }
func (t Type) IsVector() bool { return t.Lanes > 1 }
func (t Type) IsInt() bool    { return t.Code == Int }
func (t Type) IsUInt() bool   { return t.Code == UInt }
func (t Type) IsFloat() bool  { return t.Code == Float }
func (t Type) IsHandle() bool { return t.Code == Handle }
func (t Type) IsBool() bool   { return t.Code == UInt && t.Bits == 1 }

func (t Type) IsIntOrUInt() bool { return t.Code == Int || t.Code == UInt }

func (t Type) WithLanes(lanes int) Type { t.Lanes = int16(lanes); return t }
func (t Type) WithBits(bits int) Type   { t.Bits = int16(bits); return t }
func (t Type) WithCode(code Code) Type  { t.Code = code; return t }

func (t Type) Element() Type { return t.WithLanes(1) }

func (t Type) Bytes() int {
	return (int(t.Bits) + 7) / 8
}

func (t Type) Size() int {
	return t.Bytes() * int(t.Lanes)
}

// CanRepresent reports if a signed value v fits the element type exactly.
func (t Type) CanRepresent(v int64) bool {
	switch t.Code {
	case Int:
		if t.Bits >= 64 {
			return true
		}

		lim := int64(1) << (t.Bits - 1)

		return v >= -lim && v < lim
	case UInt:
		if v < 0 {
			return false
		}

		if t.Bits >= 64 {
			return true
		}

		return v < int64(1)<<t.Bits
	default:
		return false
	}
}

func (t Type) String() string {
	var c string

	switch t.Code {
	case Int:
		c = "i"
	case UInt:
		c = "u"
	case Float:
		c = "f"
	case Handle:
		c = "h"
	default:
		panic(t.Code)
	}

	if t.Lanes == 1 {
		return fmt.Sprintf("%s%d", c, t.Bits)
	}

	return fmt.Sprintf("%s%dx%d", c, t.Bits, t.Lanes)
}
