// Package xtensa legalizes vector IR for the Xtensa DSP family.
//
// Lowering recognizes arithmetic shapes the hardware has fused
// instructions for, promotes bounded indirect loads to in-register
// table lookups, and splits vectors wider than a hardware register
// into native-width parts.
package xtensa

import (
	"context"

	"tlog.app/go/tlog"

	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/opt"
)

const (
	// lutAlignment is the alignment of dense table loads in bytes.
	lutAlignment = 64

	// maxCarryRegs caps the vector registers used for carrying
	// loop-invariant values.
	maxCarryRegs = 16

	// rewriteIterations bounds the pattern matching rounds. Chained
	// rewrites need several, convergence usually takes far fewer.
	rewriteIterations = 10
)

func Lower(ctx context.Context, s ir.Stmt) (_ ir.Stmt, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "xtensa: lower")
	defer tr.Finish("err", &err)

	s = optimizeShuffles(s, lutAlignment)
	s = opt.AlignLoads(s, lutAlignment)

	if tr.If("dump_shuffles") {
		tr.Printw("after shuffle opt", "stmt", ir.StringStmt(s))
	}

	s = opt.LoopCarry(s, maxCarryRegs)
	s = opt.SimplifyStmt(s)

	for i := 0; i < rewriteIterations; i++ {
		next := matchPatterns(s)
		if ir.EqualStmt(next, s) {
			tlog.V("rewrite").Printw("converged", "round", i)
			break
		}

		s = next
	}

	s = opt.SubstituteInAllLets(s)
	s = splitToNative(s)
	s = simplifySliceConcat(s)

	// Extra round to fold cast plus concat and the like.
	s = matchPatterns(s)
	s = opt.CSEStmt(s)

	if tr.If("dump_lowered") {
		tr.Printw("lowered", "stmt", ir.StringStmt(s))
	}

	return s, nil
}

// LowerExpr runs the pipeline over a single expression.
func LowerExpr(ctx context.Context, x ir.Expr) (ir.Expr, error) {
	s, err := Lower(ctx, &ir.Evaluate{Value: x})
	if err != nil {
		return nil, err
	}

	return s.(*ir.Evaluate).Value, nil
}
