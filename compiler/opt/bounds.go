package opt

import (
	"github.com/vexlang/vex/compiler/ir"
)

type (
	// Interval is a proven bound on an expression's scalar value.
	// A nil side is unbounded.
	Interval struct {
		Min ir.Expr
		Max ir.Expr
	}

	// Scope tracks variable bounds pushed around let bindings.
	Scope struct {
		m map[string][]Interval
	}
)

func (i Interval) IsBounded() bool { return i.Min != nil && i.Max != nil }

func (s *Scope) Push(name string, iv Interval) {
	if s.m == nil {
		s.m = map[string][]Interval{}
	}

	s.m[name] = append(s.m[name], iv)
}

func (s *Scope) Pop(name string) {
	l := s.m[name]
	if len(l) == 0 {
		panic(name)
	}

	s.m[name] = l[:len(l)-1]
}

func (s *Scope) Get(name string) (Interval, bool) {
	if s == nil || s.m == nil {
		return Interval{}, false
	}

	l := s.m[name]
	if len(l) == 0 {
		return Interval{}, false
	}

	return l[len(l)-1], true
}

// BoundsOfExprInScope returns the tightest known per-lane bound of x given
// the currently pushed variable bounds. Unknown sides are left nil.
func BoundsOfExprInScope(x ir.Expr, s *Scope) Interval {
	switch x := x.(type) {
	case *ir.IntImm:
		return Interval{Min: x, Max: x}
	case *ir.Var:
		if iv, ok := s.Get(x.Name); ok {
			return iv
		}

		return Interval{}
	case *ir.Broadcast:
		return BoundsOfExprInScope(x.Value, s)
	case *ir.Ramp:
		return boundsRamp(x, s)
	case *ir.Add:
		a := BoundsOfExprInScope(x.L, s)
		b := BoundsOfExprInScope(x.R, s)

		return Interval{
			Min: addBound(a.Min, b.Min),
			Max: addBound(a.Max, b.Max),
		}
	case *ir.Sub:
		a := BoundsOfExprInScope(x.L, s)
		b := BoundsOfExprInScope(x.R, s)

		return Interval{
			Min: subBound(a.Min, b.Max),
			Max: subBound(a.Max, b.Min),
		}
	case *ir.Mul:
		return boundsMul(x, s)
	case *ir.Mod:
		// x % c for positive const c is within [0, c-1] for non-negative x;
		// we only claim the bound when the divisor is a positive constant.
		if c, ok := ir.ConstValue(x.R); ok && c > 0 {
			t := x.Type().Element()

			return Interval{Min: ir.Imm(t, 0), Max: ir.Imm(t, c-1)}
		}

		return Interval{}
	case *ir.Min:
		a := BoundsOfExprInScope(x.L, s)
		b := BoundsOfExprInScope(x.R, s)

		return Interval{
			Min: meetMin(a.Min, b.Min),
			Max: pickMin(a.Max, b.Max),
		}
	case *ir.Max:
		a := BoundsOfExprInScope(x.L, s)
		b := BoundsOfExprInScope(x.R, s)

		return Interval{
			Min: pickMax(a.Min, b.Min),
			Max: meetMax(a.Max, b.Max),
		}
	case *ir.Cast:
		// Bounds survive a widening cast only.
		if !canRepresentAll(x.T.Element(), x.Value.Type().Element()) {
			return Interval{}
		}

		return BoundsOfExprInScope(x.Value, s)
	case *ir.Let:
		s.Push(x.Name, BoundsOfExprInScope(x.Value, s))
		iv := BoundsOfExprInScope(x.Body, s)
		s.Pop(x.Name)

		return iv
	default:
		return Interval{}
	}
}

func boundsRamp(x *ir.Ramp, s *Scope) Interval {
	b := BoundsOfExprInScope(x.Base, s)

	c, ok := ir.ConstValue(x.Stride)
	if !ok {
		return Interval{}
	}

	last := c * int64(x.Lanes-1)

	if c >= 0 {
		return Interval{
			Min: b.Min,
			Max: addBound(b.Max, immLike(x.Base, last)),
		}
	}

	return Interval{
		Min: addBound(b.Min, immLike(x.Base, last)),
		Max: b.Max,
	}
}

func boundsMul(x *ir.Mul, s *Scope) Interval {
	c, ok := ir.ConstValue(x.R)
	v := x.L

	if !ok {
		c, ok = ir.ConstValue(x.L)
		v = x.R
	}

	if !ok {
		return Interval{}
	}

	iv := BoundsOfExprInScope(v, s)
	k := immLike(v, c)

	if c >= 0 {
		return Interval{Min: mulBound(iv.Min, k), Max: mulBound(iv.Max, k)}
	}

	return Interval{Min: mulBound(iv.Max, k), Max: mulBound(iv.Min, k)}
}

func immLike(x ir.Expr, v int64) ir.Expr {
	return ir.Imm(x.Type(), v)
}

func addBound(a, b ir.Expr) ir.Expr {
	if a == nil || b == nil {
		return nil
	}

	return Simplify(&ir.Add{L: a, R: b})
}

func subBound(a, b ir.Expr) ir.Expr {
	if a == nil || b == nil {
		return nil
	}

	return Simplify(&ir.Sub{L: a, R: b})
}

func mulBound(a, b ir.Expr) ir.Expr {
	if a == nil || b == nil {
		return nil
	}

	return Simplify(&ir.Mul{L: a, R: b})
}

// meetMin: lower bound of min(a, b); unbounded if either side is.
func meetMin(a, b ir.Expr) ir.Expr {
	if a == nil || b == nil {
		return nil
	}

	return Simplify(&ir.Min{L: a, R: b})
}

// pickMin: upper bound of min(a, b); any defined side bounds the result.
func pickMin(a, b ir.Expr) ir.Expr {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}

	return Simplify(&ir.Min{L: a, R: b})
}

func pickMax(a, b ir.Expr) ir.Expr {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}

	return Simplify(&ir.Max{L: a, R: b})
}

func meetMax(a, b ir.Expr) ir.Expr {
	if a == nil || b == nil {
		return nil
	}

	return Simplify(&ir.Max{L: a, R: b})
}
