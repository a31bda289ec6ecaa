package opt

import (
	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/tp"
)

type simplifier struct {
	ir.Memo
}

// Simplify performs algebraic canonicalization: constant folding, identity
// elimination, broadcast folding. It preserves semantics and terminates.
func Simplify(x ir.Expr) ir.Expr {
	s := &simplifier{}
	return s.Expr(x)
}

func SimplifyStmt(st ir.Stmt) ir.Stmt {
	s := &simplifier{}
	return s.Stmt(st)
}

// CanProveLess reports whether x is provably less than limit.
// Conservative: only constant spans after simplification count as proof.
func CanProveLess(x ir.Expr, limit int64) bool {
	v, ok := ir.ConstValue(Simplify(x))
	return ok && v < limit
}

func (s *simplifier) Stmt(st ir.Stmt) ir.Stmt {
	return s.Memo.Stmt(st, func(st ir.Stmt) ir.Stmt {
		return ir.MutateStmtChildren(s, st)
	})
}

func (s *simplifier) Expr(x ir.Expr) ir.Expr {
	return s.Memo.Expr(x, s.expr)
}

func (s *simplifier) expr(x ir.Expr) ir.Expr {
	x = ir.MutateChildren(s, x)

	switch x := x.(type) {
	case *ir.Add:
		if l, r, ok := constPair(x.L, x.R); ok {
			return foldBin(x, l+r)
		}
		if isConstZero(x.R) {
			return x.L
		}
		if isConstZero(x.L) {
			return x.R
		}
	case *ir.Sub:
		if l, r, ok := constPair(x.L, x.R); ok {
			return foldBin(x, l-r)
		}
		if isConstZero(x.R) {
			return x.L
		}
		if ir.Equal(x.L, x.R) {
			return zeroOf(x.Type())
		}
	case *ir.Mul:
		if l, r, ok := constPair(x.L, x.R); ok {
			return foldBin(x, l*r)
		}
		if isConstOne(x.R) {
			return x.L
		}
		if isConstOne(x.L) {
			return x.R
		}
		if isConstZero(x.L) || isConstZero(x.R) {
			return zeroOf(x.Type())
		}
	case *ir.Div:
		if l, r, ok := constPair(x.L, x.R); ok && r != 0 {
			return foldBin(x, l/r)
		}
		if isConstOne(x.R) {
			return x.L
		}
	case *ir.Mod:
		if l, r, ok := constPair(x.L, x.R); ok && r != 0 {
			return foldBin(x, l%r)
		}
	case *ir.Shl:
		if l, r, ok := constPair(x.L, x.R); ok && r >= 0 && r < 64 {
			return foldBin(x, l<<r)
		}
		if isConstZero(x.R) {
			return x.L
		}
	case *ir.Shr:
		if l, r, ok := constPair(x.L, x.R); ok && r >= 0 && r < 64 {
			return foldBin(x, l>>r)
		}
		if isConstZero(x.R) {
			return x.L
		}
	case *ir.Min:
		if l, r, ok := constPair(x.L, x.R); ok {
			return foldBin(x, min64(l, r))
		}
		if ir.Equal(x.L, x.R) {
			return x.L
		}
	case *ir.Max:
		if l, r, ok := constPair(x.L, x.R); ok {
			return foldBin(x, max64(l, r))
		}
		if ir.Equal(x.L, x.R) {
			return x.L
		}
	case *ir.Cast:
		if x.T == x.Value.Type() {
			return x.Value
		}
		if v, ok := x.Value.(*ir.IntImm); ok && x.T.IsScalar() && x.T.CanRepresent(v.Value) {
			return ir.Imm(x.T, v.Value)
		}
	case *ir.Select:
		if c, ok := ir.ConstValue(x.Cond); ok {
			if c != 0 {
				return x.Then
			}
			return x.Else
		}
	}

	return x
}

// constPair extracts both operands as scalar constants, requiring matching
// shape (two imms, or two broadcasts of imms to the same lane count).
func constPair(l, r ir.Expr) (int64, int64, bool) {
	lv, ok := ir.ConstValue(l)
	if !ok {
		return 0, 0, false
	}

	rv, ok := ir.ConstValue(r)
	if !ok {
		return 0, 0, false
	}

	if l.Type().Lanes != r.Type().Lanes {
		return 0, 0, false
	}

	return lv, rv, true
}

// foldBin rebuilds a folded constant in the shape of x, unless the value
// does not fit the element type exactly.
func foldBin(x ir.Expr, v int64) ir.Expr {
	t := x.Type()

	if !t.Element().CanRepresent(v) {
		return x
	}

	return constOf(t, v)
}

func constOf(t tp.Type, v int64) ir.Expr {
	if t.IsScalar() {
		return ir.Imm(t, v)
	}

	return &ir.Broadcast{Value: ir.Imm(t, v), Lanes: int(t.Lanes)}
}

func zeroOf(t tp.Type) ir.Expr { return constOf(t, 0) }

func isConstZero(x ir.Expr) bool {
	v, ok := ir.ConstValue(x)
	return ok && v == 0
}

func isConstOne(x ir.Expr) bool {
	v, ok := ir.ConstValue(x)
	return ok && v == 1
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
