package ir

import (
	"github.com/nikandfor/hacked/hfmt"
)

// Append renders x in a compact single-line form, for logs and test dumps.
func Append(b []byte, x Expr) []byte {
	switch x := x.(type) {
	case *IntImm:
		return hfmt.Appendf(b, "(%v)%d", x.T, x.Value)
	case *Var:
		return hfmt.Appendf(b, "%s:%v", x.Name, x.T)
	case *Broadcast:
		b = append(b, "bc<"...)
		b = hfmt.Appendf(b, "%d", x.Lanes)
		b = append(b, ">("...)
		b = Append(b, x.Value)
		return append(b, ')')
	case *Ramp:
		b = append(b, "ramp("...)
		b = Append(b, x.Base)
		b = append(b, ", "...)
		b = Append(b, x.Stride)
		return hfmt.Appendf(b, ", %d)", x.Lanes)
	case *Add:
		return binop(b, "+", x.L, x.R)
	case *Sub:
		return binop(b, "-", x.L, x.R)
	case *Mul:
		return binop(b, "*", x.L, x.R)
	case *Div:
		return binop(b, "/", x.L, x.R)
	case *Mod:
		return binop(b, "%", x.L, x.R)
	case *Min:
		return fn2(b, "min", x.L, x.R)
	case *Max:
		return fn2(b, "max", x.L, x.R)
	case *Shl:
		return binop(b, "<<", x.L, x.R)
	case *Shr:
		return binop(b, ">>", x.L, x.R)
	case *EQ:
		return binop(b, "==", x.L, x.R)
	case *NE:
		return binop(b, "!=", x.L, x.R)
	case *LT:
		return binop(b, "<", x.L, x.R)
	case *LE:
		return binop(b, "<=", x.L, x.R)
	case *GT:
		return binop(b, ">", x.L, x.R)
	case *GE:
		return binop(b, ">=", x.L, x.R)
	case *And:
		return binop(b, "&&", x.L, x.R)
	case *Or:
		return binop(b, "||", x.L, x.R)
	case *Not:
		b = append(b, '!')
		return Append(b, x.V)
	case *Select:
		b = append(b, "select("...)
		b = Append(b, x.Cond)
		b = append(b, ", "...)
		b = Append(b, x.Then)
		b = append(b, ", "...)
		b = Append(b, x.Else)
		return append(b, ')')
	case *Cast:
		b = hfmt.Appendf(b, "%v(", x.T)
		b = Append(b, x.Value)
		return append(b, ')')
	case *Load:
		b = hfmt.Appendf(b, "%s[", x.Name)
		b = Append(b, x.Index)
		return append(b, ']')
	case *Let:
		b = hfmt.Appendf(b, "(let %s = ", x.Name)
		b = Append(b, x.Value)
		b = append(b, " in "...)
		b = Append(b, x.Body)
		return append(b, ')')
	case *Shuffle:
		b = append(b, "shuffle("...)
		for i, v := range x.Vectors {
			if i != 0 {
				b = append(b, ", "...)
			}
			b = Append(b, v)
		}
		b = append(b, "; "...)
		for i, ix := range x.Indices {
			if i != 0 {
				b = append(b, ',')
			}
			b = hfmt.Appendf(b, "%d", ix)
		}
		return append(b, ')')
	case *Call:
		b = hfmt.Appendf(b, "%s:%v(", x.Name, x.T)
		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}
			b = Append(b, a)
		}
		return append(b, ')')
	case *VectorReduce:
		b = hfmt.Appendf(b, "reduce<%d,%d>(", x.Op, x.Lanes)
		b = Append(b, x.Value)
		return append(b, ')')
	default:
		panic(x)
	}
}

func AppendStmt(b []byte, s Stmt, d int) []byte {
	switch s := s.(type) {
	case *LetStmt:
		b = ind(b, d)
		b = hfmt.Appendf(b, "let %s = ", s.Name)
		b = Append(b, s.Value)
		b = append(b, '\n')
		return AppendStmt(b, s.Body, d)
	case *For:
		b = ind(b, d)
		b = hfmt.Appendf(b, "for %s in [", s.Name)
		b = Append(b, s.Min)
		b = append(b, ", "...)
		b = Append(b, s.Extent)
		b = append(b, ") {\n"...)
		b = AppendStmt(b, s.Body, d+1)
		b = ind(b, d)
		return append(b, "}\n"...)
	case *Store:
		b = ind(b, d)
		b = hfmt.Appendf(b, "%s[", s.Name)
		b = Append(b, s.Index)
		b = append(b, "] = "...)
		b = Append(b, s.Value)
		return append(b, '\n')
	case *Block:
		for _, c := range s.Stmts {
			b = AppendStmt(b, c, d)
		}
		return b
	case *Evaluate:
		b = ind(b, d)
		b = Append(b, s.Value)
		return append(b, '\n')
	default:
		panic(s)
	}
}

func String(x Expr) string     { return string(Append(nil, x)) }
func StringStmt(s Stmt) string { return string(AppendStmt(nil, s, 0)) }

func binop(b []byte, op string, l, r Expr) []byte {
	b = append(b, '(')
	b = Append(b, l)
	b = append(b, ' ')
	b = append(b, op...)
	b = append(b, ' ')
	b = Append(b, r)
	return append(b, ')')
}

func fn2(b []byte, name string, l, r Expr) []byte {
	b = append(b, name...)
	b = append(b, '(')
	b = Append(b, l)
	b = append(b, ", "...)
	b = Append(b, r)
	return append(b, ')')
}

func ind(b []byte, d int) []byte {
	for i := 0; i < d; i++ {
		b = append(b, '\t')
	}

	return b
}
