package xtensa

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/tp"
)

func v(t tp.Type, name string) *ir.Var { return &ir.Var{T: t, Name: name} }

func TestScalarPassthrough(t *testing.T) {
	x := addp(v(tp.IntT(32, 1), "a"), v(tp.IntT(32, 1), "b"))

	if r := matchPatternsExpr(x); r != ir.Expr(x) {
		t.Errorf("scalar rewritten: %v", ir.String(r))
	}
}

func TestAverage(t *testing.T) {
	a := v(tp.IntT(16, 32), "a")
	b := v(tp.IntT(16, 32), "b")

	x := cst(tp.IntT(16, 32),
		divp(addp(cst(tp.IntT(32, 32), a), cst(tp.IntT(32, 32), b)),
			&ir.Broadcast{Value: ir.ImmI32(2), Lanes: 32}))

	r := matchPatternsExpr(x)
	t.Logf("%v", ir.String(r))

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a call: %v", ir.String(r))
	assert.Equal(t, "vex_avg_i16", c.Name)
	require.Len(t, c.Args, 2)
	assert.True(t, c.Args[0] == ir.Expr(a) && c.Args[1] == ir.Expr(b), "operands not unwrapped")
	assert.Equal(t, tp.IntT(16, 32), c.Type())
}

func TestSatAdd(t *testing.T) {
	a := v(tp.IntT(16, 32), "a")
	b := v(tp.IntT(16, 32), "b")

	x := satc(tp.IntT(16, 32), addp(cst(tp.IntT(32, 32), a), cst(tp.IntT(32, 32), b)))

	r := matchPatternsExpr(x)

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a call: %v", ir.String(r))
	assert.Equal(t, "vex_sat_add_i16", c.Name)
	require.Len(t, c.Args, 2)
	assert.True(t, c.Args[0] == ir.Expr(a) && c.Args[1] == ir.Expr(b))
}

func TestWidenAddCommutes(t *testing.T) {
	acc := v(tp.IntT(48, 32), "acc")
	a := v(tp.IntT(16, 32), "a")

	// Accumulator on the right only matches after the swap retry.
	x := addp(cst(tp.IntT(32, 32), a), cst(tp.IntT(32, 32), acc))

	r := matchPatternsExpr(x)
	t.Logf("%v", ir.String(r))

	cast, ok := r.(*ir.Cast)
	require.True(t, ok, "expected a cast back from the accumulator: %v", ir.String(r))
	assert.Equal(t, tp.IntT(32, 32), cast.T)

	c, ok := cast.Value.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "vex_widen_add_i48", c.Name)
	assert.Equal(t, tp.IntT(48, 32), c.Type())
	require.Len(t, c.Args, 2)
	assert.True(t, c.Args[0] == ir.Expr(acc) && c.Args[1] == ir.Expr(a))
}

func TestWidenPairMul(t *testing.T) {
	mk := func(n string) *ir.Cast { return cst(tp.IntT(32, 32), v(tp.IntT(16, 32), n)) }

	x := addp(mulp(mk("a"), mk("b")), mulp(mk("c"), mk("d")))

	r := matchPatternsExpr(x)

	cast, ok := r.(*ir.Cast)
	require.True(t, ok, "expected a cast back from the accumulator: %v", ir.String(r))

	c, ok := cast.Value.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "vex_widen_pair_mul_i48", c.Name)
	assert.Len(t, c.Args, 4)
	assert.Equal(t, tp.IntT(48, 32), c.Type())
}

func TestSatCastOfPairMul(t *testing.T) {
	mk := func(n string) *ir.Cast { return cst(tp.IntT(32, 32), v(tp.IntT(16, 32), n)) }

	x := satc(tp.IntT(16, 32), addp(mulp(mk("a"), mk("b")), mulp(mk("c"), mk("d"))))

	r := matchPatternsExpr(x)
	t.Logf("%v", ir.String(r))

	// sat_add_i16 fails its narrowing requirement on the products, so the
	// sum underneath is matched instead and the saturation stays on top.
	sat, ok := r.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, ir.IntrinSatCast, sat.Name)
	require.Len(t, sat.Args, 1)

	cast, ok := sat.Args[0].(*ir.Cast)
	require.True(t, ok, "expected a cast back from the accumulator: %v", ir.String(r))

	c, ok := cast.Value.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "vex_widen_pair_mul_i48", c.Name)
	assert.Len(t, c.Args, 4)
}

func TestAverageRound(t *testing.T) {
	a := v(tp.IntT(16, 32), "a")
	b := v(tp.IntT(16, 32), "b")

	sum := addp(cst(tp.IntT(32, 32), a), cst(tp.IntT(32, 32), b))

	// The plain average entry comes first and also matches this shape,
	// but its narrowing fails on the inner sum, falling through to the
	// rounding variant.
	x := cst(tp.IntT(16, 32),
		divp(addp(sum, &ir.Broadcast{Value: ir.ImmI32(1), Lanes: 32}),
			&ir.Broadcast{Value: ir.ImmI32(2), Lanes: 32}))

	r := matchPatternsExpr(x)

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a call: %v", ir.String(r))
	assert.Equal(t, "vex_avg_round_i16", c.Name)
	require.Len(t, c.Args, 2)
	assert.True(t, c.Args[0] == ir.Expr(a) && c.Args[1] == ir.Expr(b))
}

func TestWidenMulAddVu8Si16(t *testing.T) {
	acc := v(tp.IntT(24, 64), "acc")
	a := v(tp.UIntT(8, 64), "a")
	w := v(tp.IntT(16, 1), "w")

	x := addp(
		cst(tp.IntT(16, 64), acc),
		cst(tp.IntT(16, 64), pc(tp.IntT(24, 64), "vex_widen_mul_vu8_si16_i24", a, w)))

	r := matchPatternsExpr(x)

	cast, ok := r.(*ir.Cast)
	require.True(t, ok, "expected a cast back from the accumulator: %v", ir.String(r))
	assert.Equal(t, tp.IntT(16, 64), cast.T)

	c, ok := cast.Value.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "vex_widen_mul_add_vu8_si16_i24", c.Name)
	require.Len(t, c.Args, 3)
	assert.True(t, c.Args[0] == ir.Expr(acc) && c.Args[1] == ir.Expr(a) && c.Args[2] == ir.Expr(w))
}

func TestPatternPriority(t *testing.T) {
	a := v(tp.IntT(16, 32), "a")
	s := v(tp.IntT(16, 1), "s")

	// Both widening multiply entries match this shape and narrow
	// successfully; the broadcast-of-scalar entry is listed first and
	// must win, keeping the multiplier a scalar argument.
	x := mulp(
		cst(tp.IntT(32, 32), a),
		&ir.Broadcast{Value: cst(tp.IntT(32, 1), s), Lanes: 32})

	r := matchPatternsExpr(x)
	t.Logf("%v", ir.String(r))

	cast, ok := r.(*ir.Cast)
	require.True(t, ok, "expected a cast back from the accumulator: %v", ir.String(r))

	c, ok := cast.Value.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "vex_widen_mul_i48", c.Name)
	require.Len(t, c.Args, 2)
	assert.True(t, c.Args[0] == ir.Expr(a))
	assert.True(t, c.Args[1] == ir.Expr(s), "later vector entry won: %v", ir.String(c.Args[1]))
}

func TestChainedRewriteConverges(t *testing.T) {
	mk := func(n string) *ir.Cast { return cst(tp.IntT(32, 32), v(tp.IntT(16, 32), n)) }

	// The paired multiply and the trailing multiply fuse in the first
	// round; folding those into a multiply-add only becomes visible in
	// the second, and the third detects the fixed point.
	x := addp(
		addp(mulp(mk("a"), mk("b")), mulp(mk("c"), mk("d"))),
		mulp(mk("e"), mk("f")))

	s := ir.Stmt(&ir.Evaluate{Value: x})

	invocations := 0
	for i := 0; i < rewriteIterations; i++ {
		invocations++

		next := matchPatterns(s)
		if ir.EqualStmt(next, s) {
			break
		}

		s = next
	}

	q := ir.String(s.(*ir.Evaluate).Value)
	t.Logf("after %d rounds: %v", invocations, q)

	assert.Equal(t, 3, invocations)
	assert.Less(t, invocations, rewriteIterations)
	assert.Contains(t, q, "vex_widen_mul_add_i48")
	assert.Contains(t, q, "vex_widen_pair_mul_i48")
}

func TestNoLosslessNoMatch(t *testing.T) {
	// Plain 32-bit operands cannot be narrowed, so no widening applies.
	x := addp(v(tp.IntT(32, 32), "a"), v(tp.IntT(32, 32), "b"))

	if r := matchPatternsExpr(x); r != ir.Expr(x) {
		t.Errorf("rewritten without a lossless narrowing: %v", ir.String(r))
	}
}

func TestNarrowWithShiftByPowerOfTwo(t *testing.T) {
	a := v(tp.IntT(32, 32), "a")

	x := cst(tp.IntT(16, 32), divp(a, &ir.Broadcast{Value: ir.ImmI32(8), Lanes: 32}))

	r := matchPatternsExpr(x)

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a call: %v", ir.String(r))
	assert.Equal(t, "vex_narrow_with_shift_i16", c.Name)
	require.Len(t, c.Args, 2)

	sh, ok := c.Args[1].(*ir.IntImm)
	require.True(t, ok)
	assert.Equal(t, int64(3), sh.Value)
}

func TestInterleave(t *testing.T) {
	a := v(tp.IntT(16, 32), "a")
	b := v(tp.IntT(16, 32), "b")

	r := matchPatternsExpr(ir.Interleave(a, b))

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a call: %v", ir.String(r))
	assert.Equal(t, intrinInterleaveI16, c.Name)
	assert.Equal(t, tp.IntT(16, 64), c.Type())
}

func TestDeinterleave(t *testing.T) {
	a := v(tp.IntT(16, 64), "a")

	even := make([]int, 32)
	odd := make([]int, 32)
	for i := range even {
		even[i] = 2 * i
		odd[i] = 2*i + 1
	}

	for _, tc := range []struct {
		ind  []int
		name string
	}{
		{even, "vex_deinterleave_even_i16"},
		{odd, "vex_deinterleave_odd_i16"},
	} {
		r := matchPatternsExpr(&ir.Shuffle{Vectors: []ir.Expr{a}, Indices: tc.ind})

		c, ok := r.(*ir.Call)
		require.True(t, ok, "expected a call: %v", ir.String(r))
		assert.Equal(t, tc.name, c.Name)
	}
}

func TestSlice(t *testing.T) {
	a := v(tp.IntT(16, 64), "a")

	r := matchPatternsExpr(ir.Slice(a, 1, 1, 32))

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a call: %v", ir.String(r))
	assert.Equal(t, "vex_slice_start_1_i16", c.Name)
	assert.Len(t, c.Args, 1)

	r = matchPatternsExpr(ir.Slice(a, 8, 1, 32))

	c, ok = r.(*ir.Call)
	require.True(t, ok, "expected a call: %v", ir.String(r))
	assert.Equal(t, "vex_slice_i16", c.Name)
	require.Len(t, c.Args, 2)

	begin, ok := c.Args[1].(*ir.IntImm)
	require.True(t, ok)
	assert.Equal(t, int64(8), begin.Value)
}

func TestAbsDifference(t *testing.T) {
	a := v(tp.UIntT(16, 32), "a")
	b := v(tp.UIntT(16, 32), "b")

	x := &ir.Call{T: tp.UIntT(16, 32), Name: ir.IntrinAbsD, Args: []ir.Expr{a, b}, CallType: ir.Intrinsic}

	r := matchPatternsExpr(x)

	c, ok := r.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "vex_absd_i16", c.Name)
	assert.Equal(t, ir.PureExtern, c.CallType)
}

func TestLerpLowered(t *testing.T) {
	a := v(tp.UIntT(8, 32), "a")
	b := v(tp.UIntT(8, 32), "b")
	w := v(tp.UIntT(8, 32), "w")

	x := &ir.Call{T: tp.UIntT(8, 32), Name: ir.IntrinLerp, Args: []ir.Expr{a, b, w}, CallType: ir.Intrinsic}

	r := matchPatternsExpr(x)
	t.Logf("%v", ir.String(r))

	assert.Equal(t, tp.UIntT(8, 32), r.Type())
	assert.NotContains(t, ir.String(r), "lerp")
}

func TestFullReduce(t *testing.T) {
	a := v(tp.IntT(16, 32), "a")

	x := &ir.VectorReduce{Op: ir.ReduceAdd, Value: cst(tp.IntT(32, 32), a), Lanes: 1}

	r := matchPatternsExpr(x)

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a call: %v", ir.String(r))
	assert.Equal(t, "vex_full_reduce_i16", c.Name)
	require.Len(t, c.Args, 1)
	assert.True(t, c.Args[0] == ir.Expr(a))
	assert.True(t, c.Type().IsScalar())
}

func TestConvertAfterSlice(t *testing.T) {
	a := v(tp.UIntT(8, 64), "a")

	x := sliceToNative(tp.UIntT(16, 32), cst(tp.UIntT(16, 64), a),
		ir.ImmI32(0), ir.ImmI32(32), ir.ImmI32(64))

	r := matchPatternsExpr(x)

	c, ok := r.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, "vex_convert_u8_low_u16", c.Name)
	assert.True(t, c.Args[0] == ir.Expr(a))
}

func TestSplitBinop(t *testing.T) {
	a := v(tp.IntT(32, 32), "a")
	b := v(tp.IntT(32, 32), "b")

	s := splitToNative(&ir.Evaluate{Value: addp(a, b)})
	r := s.(*ir.Evaluate).Value
	t.Logf("%v", ir.String(r))

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a concat: %v", ir.String(r))
	assert.Equal(t, intrinConcatFromNative, c.Name)
	require.Len(t, c.Args, 2)
	assert.Equal(t, tp.IntT(32, 32), c.Type())

	for _, p := range c.Args {
		add, ok := p.(*ir.Add)
		require.True(t, ok)
		assert.Equal(t, tp.IntT(32, 16), add.Type())

		sl, ok := add.L.(*ir.Call)
		require.True(t, ok)
		assert.Equal(t, intrinSliceToNative, sl.Name)
	}
}

func TestSplitKeepsScalarCallArgs(t *testing.T) {
	a := v(tp.IntT(32, 32), "a")
	n := v(tp.IntT(32, 1), "n")

	s := splitToNative(&ir.Evaluate{Value: pc(tp.IntT(32, 32), "vex_some_op", a, n)})
	r := s.(*ir.Evaluate).Value

	c, ok := r.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, intrinConcatFromNative, c.Name)

	for _, p := range c.Args {
		pp, ok := p.(*ir.Call)
		require.True(t, ok)
		assert.Equal(t, "vex_some_op", pp.Name)
		assert.Equal(t, tp.IntT(32, 16), pp.Type())
		require.Len(t, pp.Args, 2)
		assert.True(t, pp.Args[1] == ir.Expr(n), "scalar arg must pass unsliced")
	}
}

func TestSliceConcatCancel(t *testing.T) {
	a1 := v(tp.IntT(32, 16), "a1")
	a2 := v(tp.IntT(32, 16), "a2")
	b1 := v(tp.IntT(32, 16), "b1")
	b2 := v(tp.IntT(32, 16), "b2")

	x := addp(ir.Concat(a1, a2), ir.Concat(b1, b2))

	s := splitToNative(&ir.Evaluate{Value: x})
	s = simplifySliceConcat(s)
	r := s.(*ir.Evaluate).Value
	t.Logf("%v", ir.String(r))

	c, ok := r.(*ir.Call)
	require.True(t, ok)
	assert.Equal(t, intrinConcatFromNative, c.Name)
	require.Len(t, c.Args, 2)

	p0, ok := c.Args[0].(*ir.Add)
	require.True(t, ok)
	assert.True(t, p0.L == ir.Expr(a1) && p0.R == ir.Expr(b1))

	p1, ok := c.Args[1].(*ir.Add)
	require.True(t, ok)
	assert.True(t, p1.L == ir.Expr(a2) && p1.R == ir.Expr(b2))
}

func TestDynamicShuffle(t *testing.T) {
	ix := v(tp.IntT(32, 64), "ix")

	clamped := &ir.Max{
		L: &ir.Min{L: ix, R: &ir.Broadcast{Value: ir.ImmI32(63), Lanes: 64}},
		R: &ir.Broadcast{Value: ir.ImmI32(0), Lanes: 64},
	}

	s := optimizeShuffles(&ir.Evaluate{Value: &ir.Load{T: tp.UIntT(8, 64), Name: "lut", Index: clamped}}, lutAlignment)
	r := s.(*ir.Evaluate).Value
	t.Logf("%v", ir.String(r))

	c, ok := r.(*ir.Call)
	require.True(t, ok, "expected a dynamic shuffle: %v", ir.String(r))
	assert.Equal(t, intrinDynamicShuffle, c.Name)
	require.Len(t, c.Args, 2)

	lut, ok := c.Args[0].(*ir.Load)
	require.True(t, ok)
	assert.Equal(t, "lut", lut.Name)
	assert.Equal(t, 64, int(lut.T.Lanes))
	assert.Equal(t, lutAlignment, lut.Align)

	assert.Equal(t, tp.IntT(8, 64), c.Args[1].Type())
}

func TestDynamicShuffleUnbounded(t *testing.T) {
	x := &ir.Load{T: tp.UIntT(8, 64), Name: "lut", Index: v(tp.IntT(32, 64), "ix")}

	s := optimizeShuffles(&ir.Evaluate{Value: x}, lutAlignment)

	if r := s.(*ir.Evaluate).Value; r != ir.Expr(x) {
		t.Errorf("unbounded load rewritten: %v", ir.String(r))
	}
}

func TestLetInliningInLoops(t *testing.T) {
	a := v(tp.IntT(16, 32), "a")
	b := v(tp.IntT(16, 32), "b")

	wide := addp(cst(tp.IntT(32, 32), a), cst(tp.IntT(32, 32), b))
	body := &ir.Evaluate{
		Value: cst(tp.IntT(16, 32), divp(v(tp.IntT(32, 32), "w"), &ir.Broadcast{Value: ir.ImmI32(2), Lanes: 32})),
	}

	loop := &ir.For{
		Name: "i", Min: ir.ImmI32(0), Extent: ir.ImmI32(4),
		Body: &ir.LetStmt{Name: "w", Value: wide, Body: body},
	}

	r := matchPatterns(loop)
	t.Logf("%v", ir.StringStmt(r))

	inner := r.(*ir.For).Body
	if _, ok := inner.(*ir.LetStmt); ok {
		t.Fatalf("wide let not inlined: %v", ir.StringStmt(r))
	}

	assert.Contains(t, ir.StringStmt(r), "vex_avg_i16")

	// Outside of loops lets are kept.
	top := &ir.LetStmt{Name: "w", Value: wide, Body: body}
	if _, ok := matchPatterns(top).(*ir.LetStmt); !ok {
		t.Errorf("top level let dropped")
	}
}

func TestLower(t *testing.T) {
	i32 := tp.IntT(32, 1)
	iv := &ir.Var{T: i32, Name: "i"}
	index := &ir.Ramp{Base: &ir.Mul{L: iv, R: ir.ImmI32(64)}, Stride: ir.ImmI32(1), Lanes: 64}

	la := &ir.Load{T: tp.IntT(16, 64), Name: "a", Index: index}
	lb := &ir.Load{T: tp.IntT(16, 64), Name: "b", Index: index}

	avg := cst(tp.IntT(16, 64),
		divp(addp(cst(tp.IntT(32, 64), la), cst(tp.IntT(32, 64), lb)),
			&ir.Broadcast{Value: ir.ImmI32(2), Lanes: 64}))

	loop := &ir.For{
		Name: "i", Min: ir.ImmI32(0), Extent: ir.ImmI32(4),
		Body: &ir.Store{Name: "out", Value: avg, Index: index},
	}

	r, err := Lower(context.Background(), loop)
	require.NoError(t, err)

	q := ir.StringStmt(r)
	t.Logf("%v", q)

	assert.Contains(t, q, "vex_avg_i16")
	assert.Contains(t, q, intrinConcatFromNative)
	assert.False(t, strings.Contains(q, "/"), "division survived lowering")
}
