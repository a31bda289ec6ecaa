package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/vexlang/vex/compiler"
	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/tp"
)

func main() {
	lowerCmd := &cli.Command{
		Name:   "lower",
		Action: lowerAct,
		Args:   cli.Args{},
	}

	app := &cli.Command{
		Name:        "vex",
		Description: "vex lowers vector IR for the xtensa dsp backend",
		Commands: []*cli.Command{
			lowerCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func lowerAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	s := demo()

	fmt.Printf("before:\n%s", ir.StringStmt(s))

	s, err = compiler.Lower(ctx, s)
	if err != nil {
		return errors.Wrap(err, "lower")
	}

	fmt.Printf("after:\n%s", ir.StringStmt(s))

	return nil
}

// demo is a small averaging kernel over two 16-bit buffers. It
// exercises widening arithmetic, fused pattern matching and the
// native-width splitter.
func demo() ir.Stmt {
	const lanes = 64

	i := &ir.Var{T: tp.IntT(32, 1), Name: "i"}
	idx := &ir.Ramp{
		Base:   &ir.Mul{L: i, R: ir.ImmI32(lanes)},
		Stride: ir.ImmI32(1),
		Lanes:  lanes,
	}

	a := &ir.Load{T: tp.IntT(16, lanes), Name: "a", Index: idx}
	b := &ir.Load{T: tp.IntT(16, lanes), Name: "b", Index: idx}

	w := tp.IntT(32, lanes)
	sum := &ir.Add{
		L: &ir.Cast{T: w, Value: a},
		R: &ir.Cast{T: w, Value: b},
	}
	avg := &ir.Cast{
		T:     tp.IntT(16, lanes),
		Value: &ir.Div{L: sum, R: &ir.Broadcast{Value: ir.ImmI32(2), Lanes: lanes}},
	}

	return &ir.For{
		Name:   "i",
		Min:    ir.ImmI32(0),
		Extent: ir.ImmI32(256),
		Body:   &ir.Store{Name: "out", Value: avg, Index: idx},
	}
}
