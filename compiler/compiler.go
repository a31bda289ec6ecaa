package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/xtensa"
)

// Lower runs the backend lowering pipeline over a statement.
func Lower(ctx context.Context, s ir.Stmt) (ir.Stmt, error) {
	tlog.SpanFromContext(ctx).Printw("lower", "target", "xtensa")

	s, err := xtensa.Lower(ctx, s)
	if err != nil {
		return nil, errors.Wrap(err, "xtensa")
	}

	return s, nil
}

// LowerExpr lowers a standalone expression.
func LowerExpr(ctx context.Context, x ir.Expr) (ir.Expr, error) {
	x, err := xtensa.LowerExpr(ctx, x)
	if err != nil {
		return nil, errors.Wrap(err, "xtensa")
	}

	return x, nil
}
