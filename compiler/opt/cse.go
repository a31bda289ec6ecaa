package opt

import (
	"github.com/nikandfor/hacked/hfmt"

	"github.com/vexlang/vex/compiler/ir"
)

type (
	cse struct {
		count map[string]int
		first map[string]ir.Expr
		order []string
	}

	cseReplacer struct {
		ir.Memo

		names map[string]string
	}
)

// CSE binds subexpressions that occur more than once to fresh lets, by
// structural equality. Loads and impure calls are not deduplicated.
func CSE(x ir.Expr) ir.Expr {
	c := &cse{
		count: map[string]int{},
		first: map[string]ir.Expr{},
	}

	c.scan(x)

	names := map[string][]byte{}
	seq := 0

	for _, k := range c.order {
		if c.count[k] < 2 {
			continue
		}

		names[k] = hfmt.Appendf(nil, "t%d", seq)
		seq++
	}

	if len(names) == 0 {
		return x
	}

	r := &cseReplacer{names: nameStrings(names)}
	body := r.Expr(x)

	// Scan order is parents-before-children; children must end up bound
	// outermost so parent values can refer to them.
	for i := 0; i < len(c.order); i++ {
		k := c.order[i]

		n, ok := r.names[k]
		if !ok {
			continue
		}

		v := c.first[k]
		body = &ir.Let{Name: n, Value: r.valueOf(v), Body: body}
	}

	return body
}

// CSEStmt applies CSE to every expression rooted in a statement.
func CSEStmt(st ir.Stmt) ir.Stmt {
	switch st := st.(type) {
	case *ir.LetStmt:
		return &ir.LetStmt{Name: st.Name, Value: CSE(st.Value), Body: CSEStmt(st.Body)}
	case *ir.For:
		return &ir.For{Name: st.Name, Min: st.Min, Extent: st.Extent, Body: CSEStmt(st.Body)}
	case *ir.Store:
		return &ir.Store{Name: st.Name, Value: CSE(st.Value), Index: CSE(st.Index), Predicate: st.Predicate, Align: st.Align}
	case *ir.Block:
		l := make([]ir.Stmt, len(st.Stmts))
		for i, c := range st.Stmts {
			l[i] = CSEStmt(c)
		}
		return &ir.Block{Stmts: l}
	case *ir.Evaluate:
		return &ir.Evaluate{Value: CSE(st.Value)}
	default:
		panic(st)
	}
}

func (c *cse) scan(x ir.Expr) {
	if trivial(x) {
		return
	}

	k := ir.String(x)

	c.count[k]++
	if c.count[k] > 1 {
		// Children were already counted on the first visit; counting them
		// again would over-report shared leaves.
		return
	}

	c.first[k] = x
	c.order = append(c.order, k)

	c.children(x)
}

func (c *cse) children(x ir.Expr) {
	m := scanMutator{c: c}
	ir.MutateChildren(&m, x)
}

type scanMutator struct{ c *cse }

func (m *scanMutator) Expr(x ir.Expr) ir.Expr {
	m.c.scan(x)
	return x
}

func (m *scanMutator) Stmt(s ir.Stmt) ir.Stmt { return s }

func trivial(x ir.Expr) bool {
	switch x := x.(type) {
	case *ir.IntImm, *ir.Var:
		return true
	case *ir.Broadcast:
		return trivial(x.Value)
	case *ir.Load:
		return true
	}

	return false
}

func (r *cseReplacer) Expr(x ir.Expr) ir.Expr {
	return r.Memo.Expr(x, func(x ir.Expr) ir.Expr {
		if trivial(x) {
			return x
		}

		if n, ok := r.names[ir.String(x)]; ok {
			return &ir.Var{T: x.Type(), Name: n}
		}

		return ir.MutateChildren(r, x)
	})
}

func (r *cseReplacer) Stmt(s ir.Stmt) ir.Stmt { return s }

// valueOf rewrites a bound value so nested repeated subtrees refer to their
// own bindings, excluding the value's own name.
func (r *cseReplacer) valueOf(v ir.Expr) ir.Expr {
	k := ir.String(v)

	n := r.names[k]
	delete(r.names, k)

	inner := &cseReplacer{names: r.names}
	w := inner.Expr(v)

	r.names[k] = n

	return w
}

func nameStrings(m map[string][]byte) map[string]string {
	r := make(map[string]string, len(m))

	for k, v := range m {
		r[k] = string(v)
	}

	return r
}
