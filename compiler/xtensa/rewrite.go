package xtensa

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/opt"
	"github.com/vexlang/vex/compiler/tp"
)

// Intrinsics shared between passes. The splitter produces slice and
// concat calls, the final matcher round folds them into converts.
const (
	intrinSliceToNative    = "vex_slice_to_native"
	intrinConcatFromNative = "vex_concat_from_native"
	intrinDynamicShuffle   = "vex_dynamic_shuffle"
	intrinInterleaveI16    = "vex_interleave_i16"
)

// Pattern-building shorthands. Types with lanes 0 match any width.
var (
	i8x0  = tp.IntT(8, 0)
	u8x0  = tp.UIntT(8, 0)
	i16x0 = tp.IntT(16, 0)
	u16x0 = tp.UIntT(16, 0)
	i24x0 = tp.IntT(24, 0)
	i32x0 = tp.IntT(32, 0)
	u32x0 = tp.UIntT(32, 0)
	i48x0 = tp.IntT(48, 0)
	i64x0 = tp.IntT(64, 0)
	u1x0  = tp.Bool(0)

	wildU1x = wild(u1x0)
)

func pc(t tp.Type, name string, args ...ir.Expr) *ir.Call {
	return &ir.Call{T: t, Name: name, Args: args, CallType: ir.PureExtern}
}

func cst(t tp.Type, x ir.Expr) *ir.Cast { return &ir.Cast{T: t, Value: x} }

func satc(t tp.Type, x ir.Expr) *ir.Call {
	return &ir.Call{T: t, Name: ir.IntrinSatCast, Args: []ir.Expr{x}, CallType: ir.Intrinsic}
}

func addp(a, b ir.Expr) *ir.Add { return &ir.Add{L: a, R: b} }
func subp(a, b ir.Expr) *ir.Sub { return &ir.Sub{L: a, R: b} }
func mulp(a, b ir.Expr) *ir.Mul { return &ir.Mul{L: a, R: b} }
func divp(a, b ir.Expr) *ir.Div { return &ir.Div{L: a, R: b} }
func shrp(a, b ir.Expr) *ir.Shr { return &ir.Shr{L: a, R: b} }
func bcp(v ir.Expr) *ir.Broadcast { return &ir.Broadcast{Value: v, Lanes: 0} }

func imm(t tp.Type, v int64) *ir.IntImm { return ir.Imm(t.Element(), v) }

func widenMulI48(a, b ir.Expr) *ir.Call  { return pc(i48x0, "vex_widen_mul_i48", a, b) }
func widenAddI48(a, b ir.Expr) *ir.Call  { return pc(i48x0, "vex_widen_add_i48", a, b) }
func widenAddU48(a, b ir.Expr) *ir.Call  { return pc(i48x0, "vex_widen_add_u48", a, b) }
func widenMulAddI48(a, b, c ir.Expr) *ir.Call {
	return pc(i48x0, "vex_widen_mul_add_i48", a, b, c)
}

func sliceToNative(t tp.Type, v, ix, native, total ir.Expr) *ir.Call {
	return pc(t, intrinSliceToNative, v, ix, native, total)
}

func concatFromNative(t tp.Type, vs ...ir.Expr) *ir.Call {
	return pc(t, intrinConcatFromNative, vs...)
}

// A fused 8-bit by 16-bit widening multiply-accumulate. Its shape does
// not generalize with the rest of the add table so it is tried first.
var widenMulAddVu8Si16 = []pattern{
	{"vex_widen_mul_add_vu8_si16_i24",
		addp(cst(i16x0, wildI24x), cst(i16x0, pc(i24x0, "vex_widen_mul_vu8_si16_i24", wildU8x, wildI16))),
		accumulatorOutput24},
}

var addPatterns = []pattern{
	{"vex_widen_pair_mul_i48", addp(mulp(wildI32x, wildI32x), mulp(wildI32x, wildI32x)), narrowOps | accumulatorOutput48},
	{"vex_widen_pair_mul_u48", addp(mulp(wildU32x, wildU32x), mulp(wildU32x, wildU32x)), narrowOps | accumulatorOutput48},

	// Multiply-add to accumulator type.
	{"vex_widen_pair_mul_add_i48",
		addp(cst(i32x0, widenMulAddI48(wildI48x, wildI16x, wildI16x)), cst(i32x0, widenMulI48(wildI16x, wildI16x))),
		accumulatorOutput48},
	{"vex_widen_mul_add_i48",
		addp(cst(i32x0, wildI48x), cst(i32x0, widenMulI48(wildI16x, wildI16x))),
		accumulatorOutput48},

	// Add to accumulator type, paired and single.
	{"vex_widen_pair_add_i48", addp(cst(i32x0, widenAddI48(wildI48x, wildI16x)), wildI16x), accumulatorOutput48},
	{"vex_widen_pair_add_i48", addp(cst(i32x0, widenAddI48(wildI48x, wildI16x)), wildI32x), accumulatorOutput48 | narrowOp2},
	{"vex_widen_pair_add_u48", addp(cst(u32x0, widenAddU48(wildI48x, wildU16x)), wildU16x), accumulatorOutput48},
	{"vex_widen_pair_add_u48", addp(cst(u32x0, widenAddU48(wildI48x, wildU16x)), wildU32x), accumulatorOutput48 | narrowUnsignedOp2},

	{"vex_widen_add_i48", addp(cst(i32x0, wildI48x), wildI16x), accumulatorOutput48},
	{"vex_widen_add_i48", addp(cst(i32x0, wildI48x), wildI32x), accumulatorOutput48 | narrowOp1},
	{"vex_widen_add_u48", addp(cst(u32x0, wildI48x), wildU16x), accumulatorOutput48},
	{"vex_widen_add_u48", addp(cst(u32x0, wildI48x), wildU32x), accumulatorOutput48 | narrowUnsignedOp1},

	{"vex_widen_add_i24", addp(cst(i16x0, wildI24x), wildI8x), accumulatorOutput24},
	{"vex_widen_add_i24", addp(cst(i16x0, wildI24x), wildI16x), accumulatorOutput24 | narrowOp1},

	// Widening addition.
	{"vex_widen_add_u48", addp(wildU32x, wildU32x), narrowUnsignedOps | accumulatorOutput48},
	{"vex_widen_add_i48", addp(wildI32x, wildI32x), narrowOps | accumulatorOutput48},

	{"vex_widen_mul_add_i64", addp(mulp(wildI64x, wildI64x), wildI64x), narrowOps | accumulatorOutput64},
}

var subPatterns = []pattern{}

var scalarMulPatterns = []pattern{}

var mulPatterns = []pattern{
	{"vex_widen_mul_vu8_si16_i24", mulp(wildI16x, bcp(wildI16)), narrowUnsignedOp0 | accumulatorOutput24},

	// Widening multiplication.
	{"vex_widen_mul_i48", mulp(wildI32x, bcp(wildI32)), narrowOps | accumulatorOutput48},
	{"vex_widen_mul_u48", mulp(wildU32x, wildU32x), narrowOps | accumulatorOutput48},
	{"vex_widen_mul_i48", mulp(wildI32x, wildI32x), narrowOps | accumulatorOutput48},

	{"vex_widen_mul_i64", mulp(wildI64x, wildI64x), narrowOps | accumulatorOutput64},
}

var divPatterns = []pattern{}

var castPatterns = []pattern{
	// Averaging.
	{"vex_avg_u16", cst(u16x0, divp(addp(wildU32x, wildU32x), imm(u32x0, 2))), narrowOps},
	{"vex_avg_i16", cst(i16x0, divp(addp(wildI32x, wildI32x), imm(i32x0, 2))), narrowOps},

	{"vex_avg_round_u16", cst(u16x0, divp(addp(addp(wildU32x, wildU32x), imm(u32x0, 1)), imm(u32x0, 2))), narrowOps},
	{"vex_avg_round_i16", cst(i16x0, divp(addp(addp(wildI32x, wildI32x), imm(i32x0, 1)), imm(i32x0, 2))), narrowOps},

	// Saturating add/subtract.
	{"vex_sat_add_i16", satc(i16x0, addp(wildI32x, wildI32x)), narrowOps},
	{"vex_sat_add_i32", satc(i32x0, addp(wildI64x, wildI64x)), narrowOps},
	{"vex_sat_sub_i16", satc(i16x0, subp(wildI32x, wildI32x)), narrowOps},

	// Narrowing with shifting.
	{"vex_narrow_i48_with_shift_i16", cst(i16x0, shrp(cst(i32x0, wildI48x), bcp(wildI32))), 0},
	{"vex_narrow_i48_with_shift_i16", cst(i16x0, divp(cst(i32x0, wildI48x), bcp(wildI32))), exactLog2Op1},

	{"vex_narrow_i48_with_shift_u16", cst(u16x0, shrp(cst(u32x0, wildI48x), bcp(wild(tp.UIntT(32, 1))))), 0},
	{"vex_narrow_i48_with_shift_u16", cst(u16x0, divp(cst(u32x0, wildI48x), bcp(wild(tp.UIntT(32, 1))))), exactLog2Op1},

	{"vex_narrow_with_shift_i16", cst(i16x0, shrp(wildI32x, bcp(wildI32))), 0},
	{"vex_narrow_with_shift_i16", cst(i16x0, divp(wildI32x, bcp(wildI32))), exactLog2Op1},

	{"vex_narrow_with_shift_u16", cst(u16x0, shrp(wildI32x, bcp(wildI32))), 0},
	{"vex_narrow_with_shift_u16", cst(u16x0, divp(wildI32x, bcp(wildI32))), exactLog2Op1},

	{"vex_narrow_high_i32", cst(i32x0, shrp(wildI64x, imm(i64x0, 32))), 0},
	{"vex_narrow_high_i32", cst(i32x0, divp(wildI64x, imm(i64x0, 1<<32))), 0},

	{"vex_sat_narrow_shift_i32", satc(i32x0, shrp(wildI64x, bcp(wildI64))), 0},
	{"vex_sat_narrow_shift_i32", satc(i32x0, divp(wildI64x, bcp(wildI64))), exactLog2Op1},

	{"vex_sat_narrow_i24x_with_shift_u8", satc(u8x0, shrp(cst(i16x0, wildI24x), bcp(wildI16))), 0},
	{"vex_sat_narrow_i24x_with_shift_u8", satc(u8x0, divp(cst(i16x0, wildI24x), bcp(wildI16))), exactLog2Op1},

	// Concat and cast.
	{"vex_convert_concat_i16_to_i8", cst(i8x0, concatFromNative(i16x0, wildI16x, wildI16x)), 0},
	{"vex_convert_concat_i16_to_u8", cst(u8x0, concatFromNative(i16x0, wildI16x, wildI16x)), 0},
	{"vex_convert_concat_u16_to_i8", cst(i8x0, concatFromNative(u16x0, wildU16x, wildU16x)), 0},
	{"vex_convert_concat_u16_to_u8", cst(u8x0, concatFromNative(u16x0, wildU16x, wildU16x)), 0},
	{"vex_convert_concat_i32_to_i16", cst(i16x0, concatFromNative(i32x0, wildI32x, wildI32x)), 0},
	{"vex_convert_concat_i32_to_u16", cst(u16x0, concatFromNative(i32x0, wildI32x, wildI32x)), 0},

	{"vex_convert_concat_u32_to_i16", cst(i16x0, concatFromNative(u32x0, wildU32x, wildU32x)), 0},
	{"vex_convert_concat_u32_to_u16", cst(u16x0, concatFromNative(u32x0, wildU32x, wildU32x)), 0},
}

var callPatterns = []pattern{
	// Slice and convert.
	{"vex_convert_u8_low_u16", sliceToNative(u16x0, cst(u16x0, wildU8x), imm(i32x0, 0), wildI32, wildI32), 0},
	{"vex_convert_u8_high_u16", sliceToNative(u16x0, cst(u16x0, wildU8x), imm(i32x0, 1), wildI32, wildI32), 0},
	{"vex_convert_u8_low_i16", sliceToNative(i16x0, cst(i16x0, wildU8x), imm(i32x0, 0), wildI32, wildI32), 0},
	{"vex_convert_u8_high_i16", sliceToNative(i16x0, cst(i16x0, wildU8x), imm(i32x0, 1), wildI32, wildI32), 0},
	{"vex_convert_i8_low_u16", sliceToNative(u16x0, cst(u16x0, wildI8x), imm(i32x0, 0), wildI32, wildI32), 0},
	{"vex_convert_i8_high_u16", sliceToNative(u16x0, cst(u16x0, wildI8x), imm(i32x0, 1), wildI32, wildI32), 0},
	{"vex_convert_i8_low_i16", sliceToNative(i16x0, cst(i16x0, wildI8x), imm(i32x0, 0), wildI32, wildI32), 0},
	{"vex_convert_i8_high_i16", sliceToNative(i16x0, cst(i16x0, wildI8x), imm(i32x0, 1), wildI32, wildI32), 0},

	{"vex_convert_i32_u16",
		sliceToNative(u16x0, cst(u16x0, concatFromNative(i32x0, wildI32x, wildI32x, wildI32x, wildI32x)), imm(i32x0, 0), imm(i32x0, 32), imm(i32x0, 64)),
		passOnlyOp0 | passOnlyOp1},
	{"vex_convert_i32_u16",
		sliceToNative(u16x0, cst(u16x0, concatFromNative(i32x0, wildI32x, wildI32x, wildI32x, wildI32x)), imm(i32x0, 1), imm(i32x0, 32), imm(i32x0, 64)),
		passOnlyOp2 | passOnlyOp3},

	{"vex_convert_i48_low_i32", sliceToNative(i32x0, cst(i32x0, wildI48x), imm(i32x0, 0), imm(i32x0, 16), imm(i32x0, 32)), 0},
	{"vex_convert_i48_high_i32", sliceToNative(i32x0, cst(i32x0, wildI48x), imm(i32x0, 1), imm(i32x0, 16), imm(i32x0, 32)), 0},
	{"vex_convert_i48_low_i32", sliceToNative(i32x0, cst(i32x0, concatFromNative(i48x0, wildI48x, wildI48x)), imm(i32x0, 0), imm(i32x0, 16), imm(i32x0, 64)), passOnlyOp0},
	{"vex_convert_i48_high_i32", sliceToNative(i32x0, cst(i32x0, concatFromNative(i48x0, wildI48x, wildI48x)), imm(i32x0, 1), imm(i32x0, 16), imm(i32x0, 64)), passOnlyOp0},
	{"vex_convert_i48_low_i32", sliceToNative(i32x0, cst(i32x0, concatFromNative(i48x0, wildI48x, wildI48x)), imm(i32x0, 2), imm(i32x0, 16), imm(i32x0, 64)), passOnlyOp1},
	{"vex_convert_i48_high_i32", sliceToNative(i32x0, cst(i32x0, concatFromNative(i48x0, wildI48x, wildI48x)), imm(i32x0, 3), imm(i32x0, 16), imm(i32x0, 64)), passOnlyOp1},
	{"vex_convert_i48_low_u32", sliceToNative(u32x0, cst(u32x0, wildI48x), imm(i32x0, 0), imm(i32x0, 16), imm(i32x0, 32)), 0},
	{"vex_convert_i48_high_u32", sliceToNative(u32x0, cst(u32x0, wildI48x), imm(i32x0, 1), imm(i32x0, 16), imm(i32x0, 32)), 0},
	{"vex_convert_i16_low_i32", sliceToNative(i32x0, cst(i32x0, wildI16x), imm(i32x0, 0), wildI32, wildI32), 0},
	{"vex_convert_i16_high_i32", sliceToNative(i32x0, cst(i32x0, wildI16x), imm(i32x0, 1), wildI32, wildI32), 0},

	{"vex_convert_u1x16_to_i32x16", sliceToNative(i32x0, cst(i32x0, concatFromNative(u1x0, wildU1x, wildU1x, wildU1x, wildU1x)), imm(i32x0, 0), imm(i32x0, 16), imm(i32x0, 64)), passOnlyOp0},
	{"vex_convert_u1x16_to_i32x16", sliceToNative(i32x0, cst(i32x0, concatFromNative(u1x0, wildU1x, wildU1x, wildU1x, wildU1x)), imm(i32x0, 1), imm(i32x0, 16), imm(i32x0, 64)), passOnlyOp1},
	{"vex_convert_u1x16_to_i32x16", sliceToNative(i32x0, cst(i32x0, concatFromNative(u1x0, wildU1x, wildU1x, wildU1x, wildU1x)), imm(i32x0, 2), imm(i32x0, 16), imm(i32x0, 64)), passOnlyOp2},
	{"vex_convert_u1x16_to_i32x16", sliceToNative(i32x0, cst(i32x0, concatFromNative(u1x0, wildU1x, wildU1x, wildU1x, wildU1x)), imm(i32x0, 3), imm(i32x0, 16), imm(i32x0, 64)), passOnlyOp3},
}

var reducePatterns = []pattern{
	{"vex_full_reduce_i16", &ir.VectorReduce{Op: ir.ReduceAdd, Value: wildI32x, Lanes: 0}, narrowOps},
}

type matcher struct {
	memo      ir.Memo
	loopDepth int
}

func matchPatterns(s ir.Stmt) ir.Stmt {
	m := &matcher{}
	return m.Stmt(s)
}

func matchPatternsExpr(x ir.Expr) ir.Expr {
	m := &matcher{}
	return m.Expr(x)
}

func (m *matcher) Expr(x ir.Expr) ir.Expr { return m.memo.Expr(x, m.expr) }

func (m *matcher) expr(x ir.Expr) ir.Expr {
	switch x := x.(type) {
	case *ir.Add:
		if !x.Type().IsVector() {
			break
		}

		if r := applyPatterns(x, widenMulAddVu8Si16, m); r != ir.Expr(x) {
			return r
		}
		if r := applyCommutativePatterns(x, addPatterns, m); r != ir.Expr(x) {
			return r
		}
	case *ir.Sub:
		if !x.Type().IsVector() {
			break
		}

		if r := applyPatterns(x, subPatterns, m); r != ir.Expr(x) {
			return r
		}
	case *ir.Mul:
		if !x.Type().IsVector() {
			break
		}

		if r := applyCommutativePatterns(x, scalarMulPatterns, m); r != ir.Expr(x) {
			return r
		}
		if r := applyCommutativePatterns(x, mulPatterns, m); r != ir.Expr(x) {
			return r
		}
	case *ir.Div:
		if !x.Type().IsVector() {
			break
		}

		if r := applyPatterns(x, divPatterns, m); r != ir.Expr(x) {
			return r
		}
	case *ir.Cast:
		if !x.Type().IsVector() {
			break
		}

		if r := applyPatterns(x, castPatterns, m); r != ir.Expr(x) {
			return r
		}
	case *ir.Shuffle:
		if r := m.shuffle(x); r != ir.Expr(x) {
			return r
		}
	case *ir.Call:
		if r, ok := m.call(x); ok {
			return r
		}

		if x.Type().IsVector() {
			// Saturating casts are intrinsic calls but their rewrites
			// live with the rest of the narrowing casts.
			if x.CallType == ir.Intrinsic && x.Name == ir.IntrinSatCast {
				if r := applyPatterns(x, castPatterns, m); r != ir.Expr(x) {
					return r
				}
			}

			if r := applyPatterns(x, callPatterns, m); r != ir.Expr(x) {
				return r
			}
		}
	case *ir.VectorReduce:
		if !x.Type().IsScalar() {
			break
		}

		if r := applyPatterns(x, reducePatterns, m); r != ir.Expr(x) {
			return r
		}
	}

	return ir.MutateChildren(m, x)
}

// call handles the intrinsics which need lowering or a direct mapping
// before the generic table is consulted.
func (m *matcher) call(x *ir.Call) (ir.Expr, bool) {
	if x.CallType != ir.Intrinsic {
		return nil, false
	}

	switch x.Name {
	case ir.IntrinLerp:
		// Lerps are lowered now so the arithmetic they produce can be
		// optimized by the remaining rounds.
		if len(x.Args) != 3 {
			panic(len(x.Args))
		}

		return m.Expr(opt.LowerLerp(x.Args[0], x.Args[1], x.Args[2])), true
	case ir.IntrinAbsD:
		t := x.Type()
		if !t.IsVector() || !t.IsUInt() || t.Bits != 16 {
			return nil, false
		}
		if len(x.Args) != 2 {
			panic(len(x.Args))
		}

		return pc(t, "vex_absd_i16", m.Expr(x.Args[0]), m.Expr(x.Args[1])), true
	}

	return nil, false
}

func (m *matcher) shuffle(x *ir.Shuffle) ir.Expr {
	t := x.Type()

	switch {
	case x.IsInterleave() && t.IsIntOrUInt() && t.Bits == 16 && t.Lanes == 64 && len(x.Vectors) == 2:
		name := intrinInterleaveI16
		if t.IsUInt() {
			name = "vex_interleave_u16"
		}

		return pc(t, name, m.Expr(x.Vectors[0]), m.Expr(x.Vectors[1]))
	case x.IsInterleave() && t.IsIntOrUInt() && t.Bits == 8 && t.Lanes == 128 && len(x.Vectors) == 2:
		name := "vex_interleave_i8"
		if t.IsUInt() {
			name = "vex_interleave_u8"
		}

		return pc(t, name, m.Expr(x.Vectors[0]), m.Expr(x.Vectors[1]))
	case x.IsSlice() && x.SliceStride() == 1 && t.IsIntOrUInt() && t.Bits == 16 && t.Lanes == 32:
		return m.slice(x, "i16", "u16")
	case x.IsSlice() && x.SliceStride() == 1 && t.IsUInt() && t.Bits == 8 && t.Lanes == 64:
		return m.slice(x, "", "u8")
	case x.IsSlice() && x.SliceStride() == 1 && t.IsFloat() && t.Bits == 32 && t.Lanes == 16:
		return pc(t, "vex_slice_f32", m.Expr(x.Vectors[0]), ir.ImmI32(int64(x.SliceBegin())))
	case t.IsIntOrUInt() && t.Bits == 16 && t.Lanes == 32 && len(x.Vectors) == 1 && x.InputLanes() == 64:
		return m.deinterleave(x, "i16", "u16")
	case t.IsIntOrUInt() && t.Bits == 8 && t.Lanes == 64 && len(x.Vectors) == 1 && x.InputLanes() == 128:
		return m.deinterleave(x, "i8", "u8")
	case t.IsIntOrUInt() && t.Bits == 8 && t.Lanes == 64 && len(x.Vectors) == 1 && x.InputLanes() == 192:
		if r, ok := m.extractOffThree(x); ok {
			return r
		}
	}

	return x
}

// slice maps dense slices to the dedicated intrinsics. Beginnings
// below 5 have their own variants.
func (m *matcher) slice(x *ir.Shuffle, signed, unsigned string) ir.Expr {
	suffix := signed
	if x.Type().IsUInt() {
		suffix = unsigned
	}

	begin := x.SliceBegin()
	if begin < 5 {
		name := hfmt.Appendf(nil, "vex_slice_start_%d_%s", begin, suffix)

		return pc(x.Type(), string(name), m.Expr(x.Vectors[0]))
	}

	return pc(x.Type(), "vex_slice_"+suffix, m.Expr(x.Vectors[0]), ir.ImmI32(int64(begin)))
}

func (m *matcher) deinterleave(x *ir.Shuffle, signed, unsigned string) ir.Expr {
	suffix := signed
	if x.Type().IsUInt() {
		suffix = unsigned
	}

	even, odd := true, true

	for i, ix := range x.Indices {
		even = even && ix == 2*i
		odd = odd && ix == 2*i+1
	}

	switch {
	case even:
		return pc(x.Type(), "vex_deinterleave_even_"+suffix, m.Expr(x.Vectors[0]))
	case odd:
		return pc(x.Type(), "vex_deinterleave_odd_"+suffix, m.Expr(x.Vectors[0]))
	}

	return x
}

// extractOffThree recognizes the stride-3 gather of every third lane
// out of a 192-lane input. A concat argument is splatted into the call
// so each part maps to its own register.
func (m *matcher) extractOffThree(x *ir.Shuffle) (ir.Expr, bool) {
	for i, ix := range x.Indices {
		if ix != 3*i {
			return nil, false
		}
	}

	v := m.Expr(x.Vectors[0])
	args := []ir.Expr{v}

	if sh, ok := v.(*ir.Shuffle); ok && sh.IsConcat() {
		args = sh.Vectors
	}

	name := "vex_extract_0_off_3_i8"
	if x.Type().IsUInt() {
		name = "vex_extract_0_off_3_u8"
	}

	return pc(x.Type(), name, args...), true
}

func (m *matcher) Stmt(s ir.Stmt) ir.Stmt {
	switch s := s.(type) {
	case *ir.For:
		m.loopDepth++
		r := ir.MutateStmtChildren(m, s)
		m.loopDepth--

		return r
	case *ir.LetStmt:
		t := s.Value.Type()
		if m.loopDepth < 1 || t.IsHandle() || t.IsScalar() {
			break
		}

		// Inlining wide lets inside loops exposes compound
		// expressions the tables can only see whole.
		return m.Stmt(opt.SubstituteStmt(s.Name, s.Value, s.Body))
	}

	return ir.MutateStmtChildren(m, s)
}
