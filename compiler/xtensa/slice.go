package xtensa

import (
	"github.com/vexlang/vex/compiler/ir"
)

// sliceSimplifier cancels slice_to_native of a matching concat so the
// splitter's plumbing disappears wherever parts line up.
type sliceSimplifier struct {
	memo ir.Memo
}

func simplifySliceConcat(s ir.Stmt) ir.Stmt {
	ss := &sliceSimplifier{}
	return ss.Stmt(s)
}

func (ss *sliceSimplifier) Stmt(s ir.Stmt) ir.Stmt {
	return ss.memo.Stmt(s, func(s ir.Stmt) ir.Stmt { return ir.MutateStmtChildren(ss, s) })
}

func (ss *sliceSimplifier) Expr(x ir.Expr) ir.Expr { return ss.memo.Expr(x, ss.expr) }

func (ss *sliceSimplifier) expr(x ir.Expr) ir.Expr {
	c, ok := x.(*ir.Call)
	if !ok || c.Name != intrinSliceToNative {
		return ir.MutateChildren(ss, x)
	}

	first := ss.Expr(c.Args[0])
	sliceIndex := mustImm(c.Args[1])
	native := mustImm(c.Args[2])
	total := mustImm(c.Args[3])

	if cc, ok := first.(*ir.Call); ok && cc.Name == intrinConcatFromNative &&
		int(cc.Type().Lanes) == total && len(cc.Args) == total/native {
		return cc.Args[sliceIndex]
	}

	if sh, ok := first.(*ir.Shuffle); ok && sh.IsConcat() &&
		len(sh.Vectors) == total/native && int(sh.Vectors[sliceIndex].Type().Lanes) == native {
		return sh.Vectors[sliceIndex]
	}

	if t := first.Type(); t.IsBool() && t.IsScalar() {
		return first
	}

	return pc(c.T, c.Name, first, c.Args[1], c.Args[2], c.Args[3])
}

func mustImm(x ir.Expr) int {
	imm, ok := x.(*ir.IntImm)
	if !ok {
		panic(ir.String(x))
	}

	return int(imm.Value)
}
