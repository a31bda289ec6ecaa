package xtensa

import (
	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/opt"
	"github.com/vexlang/vex/compiler/tp"
)

// shuffleOpt replaces indirect loads with dense loads plus a
// dynamic_shuffle where the index range provably fits in a register.
type shuffleOpt struct {
	alignment int
	bounds    opt.Scope
}

func optimizeShuffles(s ir.Stmt, alignment int) ir.Stmt {
	o := &shuffleOpt{alignment: alignment}
	return o.Stmt(s)
}

// spanOfBounds finds an upper bound of max - min. Shared outer terms
// of the two sides cancel before the subtraction is formed.
func spanOfBounds(b opt.Interval) ir.Expr {
	if !b.IsBounded() {
		panic("unbounded interval")
	}

	switch mn := b.Min.(type) {
	case *ir.Min:
		if mx, ok := b.Max.(*ir.Min); ok && ir.Equal(mn.R, mx.R) {
			return spanOfBounds(opt.Interval{Min: mn.L, Max: mx.L})
		}
	case *ir.Max:
		if mx, ok := b.Max.(*ir.Max); ok && ir.Equal(mn.R, mx.R) {
			return spanOfBounds(opt.Interval{Min: mn.L, Max: mx.L})
		}
	case *ir.Add:
		if mx, ok := b.Max.(*ir.Add); ok && ir.Equal(mn.R, mx.R) {
			return spanOfBounds(opt.Interval{Min: mn.L, Max: mx.L})
		}
	case *ir.Sub:
		if mx, ok := b.Max.(*ir.Sub); ok && ir.Equal(mn.R, mx.R) {
			return spanOfBounds(opt.Interval{Min: mn.L, Max: mx.L})
		}
	}

	return &ir.Sub{L: b.Max, R: b.Min}
}

func (o *shuffleOpt) Expr(x ir.Expr) ir.Expr {
	switch x := x.(type) {
	case *ir.Let:
		if x.Value.Type().IsVector() {
			o.bounds.Push(x.Name, opt.BoundsOfExprInScope(x.Value, &o.bounds))
			defer o.bounds.Pop(x.Name)
		}
	case *ir.Load:
		return o.load(x)
	}

	return ir.MutateChildren(o, x)
}

func (o *shuffleOpt) Stmt(s ir.Stmt) ir.Stmt {
	if s, ok := s.(*ir.LetStmt); ok && s.Value.Type().IsVector() {
		o.bounds.Push(s.Name, opt.BoundsOfExprInScope(s.Value, &o.bounds))
		defer o.bounds.Pop(s.Name)
	}

	return ir.MutateStmtChildren(o, s)
}

func (o *shuffleOpt) load(x *ir.Load) ir.Expr {
	if x.Predicate != nil || !x.T.IsVector() {
		return ir.MutateChildren(o, x)
	}
	if _, ok := x.Index.(*ir.Ramp); ok {
		// Dense vector loads stay as they are.
		return ir.MutateChildren(o, x)
	}

	index := o.Expr(x.Index)

	unaligned := opt.BoundsOfExprInScope(index, &o.bounds)
	if unaligned.IsBounded() {
		align := int64(o.alignment / x.T.Bytes())
		a := ir.Imm(unaligned.Min.Type().Element(), align)

		// The unaligned bounds may fit in a register while the
		// aligned ones do not, so both are tried, aligned first.
		aligned := opt.Interval{
			Min: opt.Simplify(&ir.Mul{L: &ir.Div{L: unaligned.Min, R: a}, R: a}),
			Max: opt.Simplify(&ir.Sub{L: &ir.Mul{L: &ir.Div{L: &ir.Add{L: unaligned.Max, R: a}, R: a}, R: a}, R: ir.Imm(a.T, 1)}),
		}

		loadAlign := o.alignment

		for _, b := range []opt.Interval{aligned, unaligned} {
			span := spanOfBounds(b)
			span = opt.CSE(span)
			span = opt.Simplify(span)

			if opt.CanProveLess(span, 64) {
				extent := int64(64)
				if v, ok := ir.ConstValue(span); ok {
					extent = (v + align) / align * align
				}

				base := opt.Simplify(b.Min)

				// Load every index the table could use. For clamped
				// ramps this reads up to one vector past the max;
				// buffers are padded to a native vector for that.
				lut := &ir.Load{
					T:     x.T.WithLanes(int(extent)),
					Name:  x.Name,
					Index: &ir.Ramp{Base: base, Stride: ir.Imm(base.Type(), 1), Lanes: int(extent)},
					Align: loadAlign,
				}

				// The table is at most 64 wide so the index fits the
				// element type dynamic_shuffle wants.
				lanes := int(x.T.Lanes)
				it := tp.IntT(int(x.T.Bits), lanes)
				idx := opt.Simplify(&ir.Cast{T: it, Value: &ir.Sub{L: index, R: &ir.Broadcast{Value: base, Lanes: lanes}}})

				return pc(x.T, intrinDynamicShuffle, lut, idx)
			}

			loadAlign = 0
		}
	}

	if index != x.Index {
		return &ir.Load{T: x.T, Name: x.Name, Index: index, Predicate: x.Predicate, Align: x.Align}
	}

	return x
}
