package xtensa

import (
	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/tp"
)

// Vector types wider than a hardware register and the native width
// they split to.
var nativeWidths = map[tp.Type]int{
	tp.IntT(16, 64):  32,
	tp.UIntT(16, 64): 32,
	tp.IntT(32, 32):  16,
	tp.UIntT(32, 32): 16,
	tp.IntT(32, 64):  16,
	tp.UIntT(32, 64): 16,
	tp.IntT(48, 64):  32,
	tp.IntT(64, 32):  16,
	tp.IntT(64, 64):  16,
}

func nativeLanes(t tp.Type) int { return nativeWidths[t] }

type splitter struct{}

func splitToNative(s ir.Stmt) ir.Stmt {
	sp := &splitter{}
	return sp.Stmt(s)
}

func (sp *splitter) Stmt(s ir.Stmt) ir.Stmt { return ir.MutateStmtChildren(sp, s) }

func (sp *splitter) Expr(x ir.Expr) ir.Expr {
	switch x := x.(type) {
	case *ir.Broadcast:
		if native := nativeLanes(x.Type()); native > 0 {
			splitTo := x.Lanes / native
			v := sp.Expr(x.Value)

			parts := make([]ir.Expr, splitTo)
			for ix := range parts {
				parts[ix] = &ir.Broadcast{Value: v, Lanes: native}
			}

			return concatFromNative(x.Type(), parts...)
		}
	case *ir.Select:
		if native := nativeLanes(x.Type()); native > 0 {
			total := int(x.Type().Lanes)
			splitTo := total / native
			cond := sp.Expr(x.Cond)
			then := sp.Expr(x.Then)
			els := sp.Expr(x.Else)

			parts := make([]ir.Expr, splitTo)
			for ix := range parts {
				parts[ix] = &ir.Select{
					Cond: sliceNative(cond, ix, native, total),
					Then: sliceNative(then, ix, native, total),
					Else: sliceNative(els, ix, native, total),
				}
			}

			return concatFromNative(x.Type(), parts...)
		}
	case *ir.Call:
		if r, ok := sp.call(x); ok {
			return r
		}
	default:
		if l, r, mk, ok := binParts(x); ok {
			if y, ok := sp.binop(l, r, x.Type(), mk); ok {
				return y
			}
		}
	}

	return ir.MutateChildren(sp, x)
}

// binParts decomposes the binary ops the splitter handles.
func binParts(x ir.Expr) (l, r ir.Expr, mk func(a, b ir.Expr) ir.Expr, ok bool) {
	switch x := x.(type) {
	case *ir.Add:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.Add{L: a, R: b} }, true
	case *ir.Sub:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.Sub{L: a, R: b} }, true
	case *ir.Mul:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.Mul{L: a, R: b} }, true
	case *ir.Div:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.Div{L: a, R: b} }, true
	case *ir.Mod:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.Mod{L: a, R: b} }, true
	case *ir.Min:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.Min{L: a, R: b} }, true
	case *ir.Max:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.Max{L: a, R: b} }, true
	case *ir.EQ:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.EQ{L: a, R: b} }, true
	case *ir.NE:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.NE{L: a, R: b} }, true
	case *ir.LT:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.LT{L: a, R: b} }, true
	case *ir.LE:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.LE{L: a, R: b} }, true
	case *ir.GT:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.GT{L: a, R: b} }, true
	case *ir.GE:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.GE{L: a, R: b} }, true
	case *ir.Or:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.Or{L: a, R: b} }, true
	case *ir.And:
		return x.L, x.R, func(a, b ir.Expr) ir.Expr { return &ir.And{L: a, R: b} }, true
	}

	return nil, nil, nil, false
}

// binop splits by the operand type. For comparisons the result is a
// bool vector while the operands carry the wide type.
func (sp *splitter) binop(l, r ir.Expr, t tp.Type, mk func(a, b ir.Expr) ir.Expr) (ir.Expr, bool) {
	native := nativeLanes(l.Type())
	if native == 0 {
		return nil, false
	}

	total := int(t.Lanes)
	splitTo := total / native
	a := sp.Expr(l)
	b := sp.Expr(r)

	parts := make([]ir.Expr, splitTo)
	for ix := range parts {
		parts[ix] = mk(sliceNative(a, ix, native, total), sliceNative(b, ix, native, total))
	}

	return concatFromNative(t, parts...), true
}

func (sp *splitter) call(x *ir.Call) (ir.Expr, bool) {
	native := nativeLanes(x.Type())
	if native == 0 || x.Name == intrinInterleaveI16 {
		return nil, false
	}

	total := int(x.Type().Lanes)
	splitTo := total / native

	args := make([]ir.Expr, len(x.Args))
	for i, a := range x.Args {
		args[i] = sp.Expr(a)
	}

	parts := make([]ir.Expr, splitTo)
	for ix := range parts {
		sliced := make([]ir.Expr, len(args))

		for i, a := range args {
			if a.Type().IsScalar() {
				sliced[i] = a
			} else {
				sliced[i] = sliceNative(a, ix, native, total)
			}
		}

		parts[ix] = &ir.Call{T: x.Type().WithLanes(native), Name: x.Name, Args: sliced, CallType: x.CallType}
	}

	return concatFromNative(x.Type(), parts...), true
}

func sliceNative(v ir.Expr, ix, native, total int) ir.Expr {
	return sliceToNative(v.Type().WithLanes(native), v, ir.ImmI32(int64(ix)), ir.ImmI32(int64(native)), ir.ImmI32(int64(total)))
}
