package opt

import (
	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/tp"
)

// LosslessCast returns x expressed exactly at type t, or nil if the
// conversion could lose precision.
func LosslessCast(t tp.Type, x ir.Expr) ir.Expr {
	if x == nil {
		return nil
	}

	if x.Type() == t {
		return x
	}

	if int(t.Lanes) != int(x.Type().Lanes) {
		return nil
	}

	switch x := x.(type) {
	case *ir.IntImm:
		if t.CanRepresent(x.Value) {
			return ir.Imm(t, x.Value)
		}
	case *ir.Broadcast:
		if v := LosslessCast(t.Element(), x.Value); v != nil {
			return &ir.Broadcast{Value: v, Lanes: x.Lanes}
		}
	case *ir.Cast:
		// A widening cast can be peeled if the target still covers the
		// uncast operand.
		if !canRepresentAll(x.T.Element(), x.Value.Type().Element()) {
			return nil
		}

		if canRepresentAll(t.Element(), x.Value.Type().Element()) {
			if x.Value.Type() == t {
				return x.Value
			}

			return &ir.Cast{T: t, Value: x.Value}
		}

		return LosslessCast(t, x.Value)
	}

	return nil
}

// canRepresentAll reports whether every value of element type s fits in
// element type t.
func canRepresentAll(t, s tp.Type) bool {
	switch {
	case t.IsInt() && s.IsInt():
		return t.Bits >= s.Bits
	case t.IsInt() && s.IsUInt():
		return t.Bits > s.Bits
	case t.IsUInt() && s.IsUInt():
		return t.Bits >= s.Bits
	default:
		return false
	}
}
