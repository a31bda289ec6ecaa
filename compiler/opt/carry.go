package opt

import (
	"nikand.dev/go/heap"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/nikandfor/hacked/hfmt"
	"github.com/vexlang/vex/compiler/ir"
	"github.com/vexlang/vex/compiler/set"
)

type (
	carrier struct {
		ir.Memo

		regs *set.Bitmap
		max  int
		seq  int
	}

	carryCand struct {
		load *ir.Load
		uses int
	}

	loadReplacer struct {
		ir.Memo

		from *ir.Load
		to   ir.Expr
	}
)

// LoopCarry keeps loop-invariant vector loads in registers across
// iterations, using at most maxRegs registers. Best effort: only loads whose
// index is provably independent of the loop variable are carried; anything
// uncertain is left in place.
func LoopCarry(st ir.Stmt, maxRegs int) ir.Stmt {
	c := &carrier{
		regs: set.NewBitmap(maxRegs),
		max:  maxRegs,
	}

	return c.Stmt(st)
}

// Only statements are restructured, expressions pass through.
func (c *carrier) Expr(x ir.Expr) ir.Expr { return x }

func (c *carrier) Stmt(st ir.Stmt) ir.Stmt {
	return c.Memo.Stmt(st, func(st ir.Stmt) ir.Stmt {
		f, ok := st.(*ir.For)
		if !ok {
			return ir.MutateStmtChildren(c, st)
		}

		body := c.Stmt(f.Body)

		cands := invariantLoads(body, f.Name)

		h := heap.Heap[carryCand]{Less: carryLess}
		for _, cd := range cands {
			h.Push(cd)
		}

		res := ir.Stmt(&ir.For{Name: f.Name, Min: f.Min, Extent: f.Extent, Body: body})

		for h.Len() != 0 {
			cd := h.Pop()

			reg := c.alloc()
			if reg < 0 {
				break
			}

			name := string(hfmt.Appendf(nil, "carry%d", c.seq))
			c.seq++

			tlog.V("loop_carry").Printw("carry load", "loop", f.Name, "reg", reg, "regs", c.regs, "name", name, "load", ir.String(cd.load), "from", loc.Caller(1))

			v := &ir.Var{T: cd.load.Type(), Name: name}
			res = replaceLoadStmt(res, cd.load, v)
			res = &ir.LetStmt{Name: name, Value: cd.load, Body: res}
		}

		return res
	})
}

func (c *carrier) alloc() int {
	for i := 0; i < c.max; i++ {
		if !c.regs.IsSet(i) {
			c.regs.Set(i)
			return i
		}
	}

	return -1
}

func carryLess(d []carryCand, i, j int) bool {
	a, b := d[i], d[j]

	if a.uses != b.uses {
		return a.uses > b.uses
	}

	return a.load.Type().Size() > b.load.Type().Size()
}

// invariantLoads collects unpredicated vector loads in s whose index does
// not mention the loop variable, with use counts.
func invariantLoads(s ir.Stmt, loopVar string) []carryCand {
	byKey := map[string]*carryCand{}
	var order []string

	w := &loadWalker{
		visit: func(ld *ir.Load) {
			if ld.Predicate != nil || !ld.T.IsVector() || usesVar(ld.Index, loopVar) {
				return
			}

			k := ir.String(ld)

			if c, ok := byKey[k]; ok {
				c.uses++
				return
			}

			byKey[k] = &carryCand{load: ld, uses: 1}
			order = append(order, k)
		},
	}
	w.Stmt(s)

	var r []carryCand
	for _, k := range order {
		r = append(r, *byKey[k])
	}

	return r
}

type loadWalker struct {
	ir.Memo

	visit func(*ir.Load)
}

func (w *loadWalker) Expr(x ir.Expr) ir.Expr {
	return w.Memo.Expr(x, func(x ir.Expr) ir.Expr {
		if ld, ok := x.(*ir.Load); ok {
			w.visit(ld)
		}

		return ir.MutateChildren(w, x)
	})
}

func (w *loadWalker) Stmt(s ir.Stmt) ir.Stmt {
	return w.Memo.Stmt(s, func(s ir.Stmt) ir.Stmt {
		return ir.MutateStmtChildren(w, s)
	})
}

func usesVar(x ir.Expr, name string) bool {
	found := false

	w := &varWalker{name: name, found: &found}
	w.Expr(x)

	return found
}

type varWalker struct {
	ir.Memo

	name  string
	found *bool
}

func (w *varWalker) Expr(x ir.Expr) ir.Expr {
	return w.Memo.Expr(x, func(x ir.Expr) ir.Expr {
		if v, ok := x.(*ir.Var); ok && v.Name == w.name {
			*w.found = true
		}

		return ir.MutateChildren(w, x)
	})
}

func (w *varWalker) Stmt(s ir.Stmt) ir.Stmt { return s }

func replaceLoadStmt(s ir.Stmt, from *ir.Load, to ir.Expr) ir.Stmt {
	r := &loadReplacer{from: from, to: to}
	return r.Stmt(s)
}

func (r *loadReplacer) Expr(x ir.Expr) ir.Expr {
	return r.Memo.Expr(x, func(x ir.Expr) ir.Expr {
		if ld, ok := x.(*ir.Load); ok && ir.Equal(ld, r.from) {
			return r.to
		}

		return ir.MutateChildren(r, x)
	})
}

func (r *loadReplacer) Stmt(s ir.Stmt) ir.Stmt {
	return r.Memo.Stmt(s, func(s ir.Stmt) ir.Stmt {
		return ir.MutateStmtChildren(r, s)
	})
}
