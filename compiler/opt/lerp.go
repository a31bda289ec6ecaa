package opt

import (
	"github.com/vexlang/vex/compiler/ir"
)

// LowerLerp expands the lerp intrinsic into its arithmetic form:
// (zero * (wmax - w) + one * w + wmax/2) / wmax at doubled bit width,
// narrowed back to the operand type. The weight is unsigned fixed-point
// over its full bit range.
func LowerLerp(zero, one, weight ir.Expr) ir.Expr {
	t := zero.Type()

	wb := int(weight.Type().Bits)
	wmax := int64(1)<<wb - 1

	wide := t.WithBits(int(t.Bits) * 2)

	a := &ir.Cast{T: wide, Value: zero}
	b := &ir.Cast{T: wide, Value: one}
	w := &ir.Cast{T: wide, Value: weight}

	num := &ir.Add{
		L: &ir.Add{
			L: &ir.Mul{L: a, R: &ir.Sub{L: constOf(wide, wmax), R: w}},
			R: &ir.Mul{L: b, R: w},
		},
		R: constOf(wide, wmax/2),
	}

	return &ir.Cast{T: t, Value: &ir.Div{L: num, R: constOf(wide, wmax)}}
}
