package ir

import (
	"testing"

	"github.com/vexlang/vex/compiler/tp"
)

func TestGraphEqual(t *testing.T) {
	a := &Var{T: tp.IntT(32, 16), Name: "a"}
	b := &Var{T: tp.IntT(32, 16), Name: "b"}

	x := &Add{L: a, R: &Mul{L: b, R: b}}
	y := &Add{L: &Var{T: tp.IntT(32, 16), Name: "a"}, R: &Mul{L: b, R: b}}

	if !GraphEqual(x, y) {
		t.Errorf("expected equal:\n%s\n%s", String(x), String(y))
	}

	z := &Add{L: b, R: &Mul{L: b, R: b}}
	if GraphEqual(x, z) {
		t.Errorf("expected not equal:\n%s\n%s", String(x), String(z))
	}
}

func TestMutateIdentity(t *testing.T) {
	a := &Var{T: tp.IntT(16, 32), Name: "a"}
	x := &Add{L: a, R: &Broadcast{Value: ImmI32(1), Lanes: 32}}

	id := identity{}

	if y := MutateChildren(id, x); y != Expr(x) {
		t.Errorf("identity mutation changed the node: %s -> %s", String(x), String(y))
	}
}

type identity struct{}

func (identity) Expr(x Expr) Expr { return x }
func (identity) Stmt(s Stmt) Stmt { return s }

func TestMutateFirstChild(t *testing.T) {
	a := &Var{T: tp.IntT(16, 32), Name: "a"}
	b := &Var{T: tp.IntT(16, 32), Name: "b"}
	z := &Var{T: tp.IntT(16, 32), Name: "z"}

	m := varSwap{from: a, to: z}

	c := MutateChildren(m, &Call{T: a.T, Name: "f", Args: []Expr{a, b}}).(*Call)
	if c.Args[0] != Expr(z) || c.Args[1] != Expr(b) {
		t.Errorf("call: %s", String(c))
	}

	sh := MutateChildren(m, Concat(a, b)).(*Shuffle)
	if sh.Vectors[0] != Expr(z) || sh.Vectors[1] != Expr(b) {
		t.Errorf("shuffle: %s", String(sh))
	}

	bl := MutateStmtChildren(m, &Block{Stmts: []Stmt{
		&Evaluate{Value: a},
		&Evaluate{Value: b},
	}}).(*Block)
	if bl.Stmts[0].(*Evaluate).Value != Expr(z) || bl.Stmts[1].(*Evaluate).Value != Expr(b) {
		t.Errorf("block:\n%s", StringStmt(bl))
	}
}

type varSwap struct {
	from *Var
	to   Expr
}

func (m varSwap) Expr(x Expr) Expr {
	if x == Expr(m.from) {
		return m.to
	}

	return MutateChildren(m, x)
}

func (m varSwap) Stmt(s Stmt) Stmt { return MutateStmtChildren(m, s) }

func TestShuffleShapes(t *testing.T) {
	a := &Var{T: tp.IntT(16, 32), Name: "a"}
	b := &Var{T: tp.IntT(16, 32), Name: "b"}

	in := Interleave(a, b)
	if !in.IsInterleave() || in.IsConcat() || in.IsSlice() {
		t.Errorf("interleave misclassified: %v", in.Indices)
	}
	if l := in.Type().Lanes; l != 64 {
		t.Errorf("interleave lanes: %v", l)
	}

	cc := Concat(a, b)
	if !cc.IsConcat() {
		t.Errorf("concat misclassified: %v", cc.Indices)
	}

	sl := Slice(Concat(a, b), 3, 1, 16)
	if !sl.IsSlice() || sl.SliceBegin() != 3 || sl.SliceStride() != 1 {
		t.Errorf("slice misclassified: %v", sl.Indices)
	}
}

func TestFormat(t *testing.T) {
	a := &Var{T: tp.IntT(16, 32), Name: "a"}

	x := &Cast{
		T:     tp.IntT(32, 32),
		Value: &Min{L: a, R: &Broadcast{Value: Imm(tp.IntT(16, 1), 7), Lanes: 32}},
	}

	t.Logf("expr: %s", String(x))

	s := &For{
		Name:   "i",
		Min:    ImmI32(0),
		Extent: ImmI32(10),
		Body:   &Evaluate{Value: x},
	}

	t.Logf("stmt:\n%s", StringStmt(s))
}
