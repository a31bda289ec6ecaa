package xtensa

import (
	"tlog.app/go/tlog"

	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/opt"
	"github.com/vexlang/vex/compiler/tp"
)

type (
	flags int

	pattern struct {
		intrin string
		pat    ir.Expr
		flags  flags
	}

	// mutator is the pass applying the patterns. Matched operands are
	// fed back through it so nested expressions keep rewriting.
	mutator interface {
		Expr(ir.Expr) ir.Expr
	}
)

const (
	interleaveResult flags = 1 << iota
	swapOps01
	swapOps12
	exactLog2Op1
	exactLog2Op2
)

const (
	// narrowOp0 << i narrows operand i by losslessly halving its bits.
	narrowOp0 flags = 1 << (iota + 10)
	narrowOp1
	narrowOp2
	narrowOp3
	narrowOp4

	narrowOps = narrowOp0 | narrowOp1 | narrowOp2 | narrowOp3 | narrowOp4
)

const (
	// narrowUnsignedOp0 << i narrows operand i to the unsigned half type.
	narrowUnsignedOp0 flags = 1 << (iota + 15)
	narrowUnsignedOp1
	narrowUnsignedOp2
	narrowUnsignedOp3
	narrowUnsignedOp4

	narrowUnsignedOps = narrowUnsignedOp0 | narrowUnsignedOp1 | narrowUnsignedOp2 | narrowUnsignedOp3 | narrowUnsignedOp4
)

const (
	accumulatorOutput24 flags = 1 << (iota + 20)
	accumulatorOutput48
	accumulatorOutput64

	passOnlyOp0
	passOnlyOp1
	passOnlyOp2
	passOnlyOp3

	sameOp01

	passOnlyOps = passOnlyOp0 | passOnlyOp1 | passOnlyOp2 | passOnlyOp3
)

// Wildcards. A Var named "*" matches any expression of a compatible
// type and appends it to the match list. Lanes 0 means any vector width.
func wild(t tp.Type) *ir.Var { return &ir.Var{T: t, Name: "*"} }

var (
	wildI8x  = wild(tp.IntT(8, 0))
	wildU8x  = wild(tp.UIntT(8, 0))
	wildI16x = wild(tp.IntT(16, 0))
	wildU16x = wild(tp.UIntT(16, 0))
	wildI24x = wild(tp.IntT(24, 0))
	wildI32x = wild(tp.IntT(32, 0))
	wildU32x = wild(tp.UIntT(32, 0))
	wildI48x = wild(tp.IntT(48, 0))
	wildI64x = wild(tp.IntT(64, 0))

	wildI16 = wild(tp.IntT(16, 1))
	wildI32 = wild(tp.IntT(32, 1))
	wildI64 = wild(tp.IntT(64, 1))
)

func typesMatch(p, x tp.Type) bool {
	if p.Code != x.Code || p.Bits != x.Bits {
		return false
	}
	if p.Lanes == 0 {
		return x.Lanes >= 1
	}

	return p.Lanes == x.Lanes
}

// exprMatch structurally matches x against a pattern, collecting
// wildcard bindings in order of occurrence. A repeated wildcard name
// other than "*" must bind graph-equal values.
func exprMatch(p, x ir.Expr, m *[]ir.Expr) bool {
	return matchState{m: m, named: map[string]ir.Expr{}}.match(p, x)
}

type matchState struct {
	m     *[]ir.Expr
	named map[string]ir.Expr
}

func (s matchState) match(p, x ir.Expr) bool {
	switch p := p.(type) {
	case *ir.Var:
		if !typesMatch(p.T, x.Type()) {
			return false
		}

		if p.Name != "*" {
			if prev, ok := s.named[p.Name]; ok {
				return ir.GraphEqual(prev, x)
			}

			s.named[p.Name] = x
		}

		*s.m = append(*s.m, x)

		return true
	case *ir.IntImm:
		v, ok := ir.ConstValue(x)
		return ok && v == p.Value
	case *ir.Broadcast:
		x, ok := x.(*ir.Broadcast)
		if !ok || p.Lanes != 0 && p.Lanes != x.Lanes {
			return false
		}

		return s.match(p.Value, x.Value)
	case *ir.Cast:
		x, ok := x.(*ir.Cast)
		return ok && typesMatch(p.T, x.T) && s.match(p.Value, x.Value)
	case *ir.Add:
		x, ok := x.(*ir.Add)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Sub:
		x, ok := x.(*ir.Sub)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Mul:
		x, ok := x.(*ir.Mul)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Div:
		x, ok := x.(*ir.Div)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Mod:
		x, ok := x.(*ir.Mod)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Min:
		x, ok := x.(*ir.Min)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Max:
		x, ok := x.(*ir.Max)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Shl:
		x, ok := x.(*ir.Shl)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Shr:
		x, ok := x.(*ir.Shr)
		return ok && s.match(p.L, x.L) && s.match(p.R, x.R)
	case *ir.Call:
		x, ok := x.(*ir.Call)
		if !ok || p.Name != x.Name || p.CallType != x.CallType || len(p.Args) != len(x.Args) {
			return false
		}
		if !typesMatch(p.T, x.T) {
			return false
		}

		for i := range p.Args {
			if !s.match(p.Args[i], x.Args[i]) {
				return false
			}
		}

		return true
	case *ir.VectorReduce:
		x, ok := x.(*ir.VectorReduce)
		if !ok || p.Op != x.Op || p.Lanes != 0 && p.Lanes != x.Lanes {
			return false
		}

		return s.match(p.Value, x.Value)
	default:
		return false
	}
}

// processMatchFlags adjusts matched operands per the pattern flags.
// It reports false when a required adjustment does not apply, in which
// case matching moves on to the next pattern.
func processMatchFlags(m []ir.Expr, f flags) ([]ir.Expr, bool) {
	for i := range m {
		t := m[i].Type()

		switch {
		case f&(narrowOp0<<i) != 0:
			t = t.WithBits(int(t.Bits) / 2)
		case f&(narrowUnsignedOp0<<i) != 0:
			t = t.WithBits(int(t.Bits) / 2).WithCode(tp.UInt)
		default:
			continue
		}

		n := opt.LosslessCast(t, m[i])
		if n == nil {
			return nil, false
		}

		m[i] = n
	}

	for i := 1; i <= 2; i++ {
		if f&(exactLog2Op1<<(i-1)) == 0 || i >= len(m) {
			continue
		}

		log2, ok := ir.IsConstPowerOfTwo(m[i])
		if !ok {
			return nil, false
		}

		m[i] = ir.Imm(m[i].Type().Element(), int64(log2))
	}

	if f&passOnlyOps != 0 {
		keep := m[:0:0]

		for i := 0; i < 4; i++ {
			if f&(passOnlyOp0<<i) != 0 && i < len(m) {
				keep = append(keep, m[i])
			}
		}

		m = keep
	}

	if f&swapOps01 != 0 {
		if len(m) < 2 {
			panic(len(m))
		}

		m[0], m[1] = m[1], m[0]
	}

	if f&swapOps12 != 0 {
		if len(m) < 3 {
			panic(len(m))
		}

		m[1], m[2] = m[2], m[1]
	}

	if f&sameOp01 != 0 {
		if len(m) != 2 {
			panic(len(m))
		}

		if !ir.GraphEqual(m[0], m[1]) {
			return nil, false
		}

		m = m[:1]
	}

	return m, true
}

// applyPatterns tries each pattern in order and rewrites x into the
// first matching intrinsic call. Matched operands are re-mutated so
// rewriting continues below the intrinsic boundary.
func applyPatterns(x ir.Expr, patterns []pattern, mut mutator) ir.Expr {
	var matches []ir.Expr

	for _, p := range patterns {
		matches = matches[:0]

		if !exprMatch(p.pat, x, &matches) {
			continue
		}

		m, ok := processMatchFlags(matches, p.flags)
		if !ok {
			continue
		}

		for i := range m {
			m[i] = mut.Expr(m[i])
		}

		t := x.Type()
		wide := t

		switch {
		case p.flags&accumulatorOutput24 != 0:
			wide = tp.IntT(24, int(t.Lanes))
		case p.flags&accumulatorOutput48 != 0:
			wide = tp.IntT(48, int(t.Lanes))
		case p.flags&accumulatorOutput64 != 0:
			wide = tp.IntT(64, int(t.Lanes))
		}

		var r ir.Expr = &ir.Call{T: wide, Name: p.intrin, Args: append([]ir.Expr{}, m...), CallType: ir.PureExtern}

		if wide != t {
			r = &ir.Cast{T: t, Value: r}
		}

		tlog.V("patterns").Printw("pattern applied", "intrin", p.intrin, "expr", ir.String(x))

		return r
	}

	return x
}

// applyCommutativePatterns retries the table with the operands of a
// commutative binary op swapped.
func applyCommutativePatterns(x ir.Expr, patterns []pattern, mut mutator) ir.Expr {
	r := applyPatterns(x, patterns, mut)
	if r != x {
		return r
	}

	sw := swapped(x)
	if sw == nil {
		return x
	}

	r = applyPatterns(sw, patterns, mut)
	if r != sw {
		return r
	}

	return x
}

func swapped(x ir.Expr) ir.Expr {
	switch x := x.(type) {
	case *ir.Add:
		return &ir.Add{L: x.R, R: x.L}
	case *ir.Mul:
		return &ir.Mul{L: x.R, R: x.L}
	case *ir.Min:
		return &ir.Min{L: x.R, R: x.L}
	case *ir.Max:
		return &ir.Max{L: x.R, R: x.L}
	default:
		return nil
	}
}
