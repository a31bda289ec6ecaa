package opt

import (
	"github.com/vexlang/vex/compiler/ir"
)

type (
	substitutor struct {
		ir.Memo

		name  string
		value ir.Expr
	}

	letFlattener struct {
		ir.Memo
	}
)

// Substitute replaces free occurrences of the named variable with value.
func Substitute(name string, value ir.Expr, x ir.Expr) ir.Expr {
	s := &substitutor{name: name, value: value}
	return s.Expr(x)
}

func SubstituteStmt(name string, value ir.Expr, st ir.Stmt) ir.Stmt {
	s := &substitutor{name: name, value: value}
	return s.Stmt(st)
}

func (s *substitutor) Expr(x ir.Expr) ir.Expr {
	return s.Memo.Expr(x, func(x ir.Expr) ir.Expr {
		if v, ok := x.(*ir.Var); ok && v.Name == s.name {
			return s.value
		}

		if l, ok := x.(*ir.Let); ok && l.Name == s.name {
			// Shadowed below this point.
			if v := s.Expr(l.Value); v != l.Value {
				return &ir.Let{Name: l.Name, Value: v, Body: l.Body}
			}

			return l
		}

		return ir.MutateChildren(s, x)
	})
}

func (s *substitutor) Stmt(st ir.Stmt) ir.Stmt {
	return s.Memo.Stmt(st, func(st ir.Stmt) ir.Stmt {
		if l, ok := st.(*ir.LetStmt); ok && l.Name == s.name {
			if v := s.Expr(l.Value); v != l.Value {
				return &ir.LetStmt{Name: l.Name, Value: v, Body: l.Body}
			}

			return l
		}

		return ir.MutateStmtChildren(s, st)
	})
}

// SubstituteInAllLets substitutes every let binding into its body and drops
// the binding, fully flattening the tree.
func SubstituteInAllLets(st ir.Stmt) ir.Stmt {
	f := &letFlattener{}
	return f.Stmt(st)
}

func SubstituteInAllLetsExpr(x ir.Expr) ir.Expr {
	f := &letFlattener{}
	return f.Expr(x)
}

func (f *letFlattener) Expr(x ir.Expr) ir.Expr {
	return f.Memo.Expr(x, func(x ir.Expr) ir.Expr {
		if l, ok := x.(*ir.Let); ok {
			v := f.Expr(l.Value)
			return f.Expr(Substitute(l.Name, v, l.Body))
		}

		return ir.MutateChildren(f, x)
	})
}

func (f *letFlattener) Stmt(st ir.Stmt) ir.Stmt {
	return f.Memo.Stmt(st, func(st ir.Stmt) ir.Stmt {
		if l, ok := st.(*ir.LetStmt); ok {
			v := f.Expr(l.Value)
			return f.Stmt(SubstituteStmt(l.Name, v, l.Body))
		}

		return ir.MutateStmtChildren(f, st)
	})
}
