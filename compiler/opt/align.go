package opt

import (
	"github.com/vexlang/vex/compiler/ir"
)

type aligner struct {
	ir.Memo

	alignment int
}

// AlignLoads canonicalizes dense vector loads whose base offset is a known
// constant: the load is rebased to the previous aligned boundary and the
// requested lanes sliced back out. Loads with unknown bases are left alone.
func AlignLoads(st ir.Stmt, alignment int) ir.Stmt {
	a := &aligner{alignment: alignment}
	return a.Stmt(st)
}

func (a *aligner) Stmt(st ir.Stmt) ir.Stmt {
	return a.Memo.Stmt(st, func(st ir.Stmt) ir.Stmt {
		return ir.MutateStmtChildren(a, st)
	})
}

func (a *aligner) Expr(x ir.Expr) ir.Expr {
	return a.Memo.Expr(x, func(x ir.Expr) ir.Expr {
		ld, ok := x.(*ir.Load)
		if !ok || ld.Predicate != nil {
			return ir.MutateChildren(a, x)
		}

		ramp, ok := ld.Index.(*ir.Ramp)
		if !ok {
			return ir.MutateChildren(a, x)
		}

		if s, ok := ir.ConstValue(ramp.Stride); !ok || s != 1 {
			return ir.MutateChildren(a, x)
		}

		base, ok := ramp.Base.(*ir.IntImm)
		if !ok {
			return ir.MutateChildren(a, x)
		}

		elems := int64(a.alignment / ld.T.Bytes())
		if elems <= 1 || base.Value%elems == 0 {
			return ir.MutateChildren(a, x)
		}

		aligned := base.Value / elems * elems
		off := int(base.Value - aligned)

		wide := &ir.Load{
			T:     ld.T.WithLanes(ramp.Lanes + off),
			Name:  ld.Name,
			Index: &ir.Ramp{Base: ir.Imm(base.T, aligned), Stride: ramp.Stride, Lanes: ramp.Lanes + off},
			Align: a.alignment,
		}

		return ir.Slice(wide, off, 1, ramp.Lanes)
	})
}
