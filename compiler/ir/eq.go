package ir

type (
	eqKey struct{ a, b Expr }

	grapheq struct {
		seen map[eqKey]struct{}
	}
)

// Equal is deep structural equality.
func Equal(a, b Expr) bool {
	g := grapheq{}
	return g.expr(a, b)
}

// GraphEqual is Equal with already-compared shared node pairs skipped,
// keeping comparison linear in DAG size.
func GraphEqual(a, b Expr) bool {
	g := grapheq{seen: map[eqKey]struct{}{}}
	return g.expr(a, b)
}

func EqualStmt(a, b Stmt) bool {
	g := grapheq{seen: map[eqKey]struct{}{}}
	return g.stmt(a, b)
}

func (g *grapheq) expr(a, b Expr) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	if g.seen != nil {
		if _, ok := g.seen[eqKey{a, b}]; ok {
			return true
		}
	}

	if !g.exprCmp(a, b) {
		return false
	}

	if g.seen != nil {
		g.seen[eqKey{a, b}] = struct{}{}
	}

	return true
}

func (g *grapheq) exprCmp(a, b Expr) bool {
	switch a := a.(type) {
	case *IntImm:
		b, ok := b.(*IntImm)
		return ok && a.T == b.T && a.Value == b.Value
	case *Var:
		b, ok := b.(*Var)
		return ok && a.T == b.T && a.Name == b.Name
	case *Broadcast:
		b, ok := b.(*Broadcast)
		return ok && a.Lanes == b.Lanes && g.expr(a.Value, b.Value)
	case *Ramp:
		b, ok := b.(*Ramp)
		return ok && a.Lanes == b.Lanes && g.expr(a.Base, b.Base) && g.expr(a.Stride, b.Stride)
	case *Add:
		b, ok := b.(*Add)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Sub:
		b, ok := b.(*Sub)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Mul:
		b, ok := b.(*Mul)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Div:
		b, ok := b.(*Div)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Mod:
		b, ok := b.(*Mod)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Min:
		b, ok := b.(*Min)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Max:
		b, ok := b.(*Max)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Shl:
		b, ok := b.(*Shl)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Shr:
		b, ok := b.(*Shr)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *EQ:
		b, ok := b.(*EQ)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *NE:
		b, ok := b.(*NE)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *LT:
		b, ok := b.(*LT)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *LE:
		b, ok := b.(*LE)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *GT:
		b, ok := b.(*GT)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *GE:
		b, ok := b.(*GE)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *And:
		b, ok := b.(*And)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Or:
		b, ok := b.(*Or)
		return ok && g.expr(a.L, b.L) && g.expr(a.R, b.R)
	case *Not:
		b, ok := b.(*Not)
		return ok && g.expr(a.V, b.V)
	case *Select:
		b, ok := b.(*Select)
		return ok && g.expr(a.Cond, b.Cond) && g.expr(a.Then, b.Then) && g.expr(a.Else, b.Else)
	case *Cast:
		b, ok := b.(*Cast)
		return ok && a.T == b.T && g.expr(a.Value, b.Value)
	case *Load:
		b, ok := b.(*Load)
		return ok && a.T == b.T && a.Name == b.Name && a.Align == b.Align &&
			g.expr(a.Index, b.Index) && g.expr(a.Predicate, b.Predicate)
	case *Let:
		b, ok := b.(*Let)
		return ok && a.Name == b.Name && g.expr(a.Value, b.Value) && g.expr(a.Body, b.Body)
	case *Shuffle:
		b, ok := b.(*Shuffle)
		if !ok || len(a.Vectors) != len(b.Vectors) || len(a.Indices) != len(b.Indices) {
			return false
		}
		for i := range a.Indices {
			if a.Indices[i] != b.Indices[i] {
				return false
			}
		}
		for i := range a.Vectors {
			if !g.expr(a.Vectors[i], b.Vectors[i]) {
				return false
			}
		}
		return true
	case *Call:
		b, ok := b.(*Call)
		if !ok || a.T != b.T || a.Name != b.Name || a.CallType != b.CallType || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if !g.expr(a.Args[i], b.Args[i]) {
				return false
			}
		}
		return true
	case *VectorReduce:
		b, ok := b.(*VectorReduce)
		return ok && a.Op == b.Op && a.Lanes == b.Lanes && g.expr(a.Value, b.Value)
	default:
		panic(a)
	}
}

func (g *grapheq) stmt(a, b Stmt) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	switch a := a.(type) {
	case *LetStmt:
		b, ok := b.(*LetStmt)
		return ok && a.Name == b.Name && g.expr(a.Value, b.Value) && g.stmt(a.Body, b.Body)
	case *For:
		b, ok := b.(*For)
		return ok && a.Name == b.Name && g.expr(a.Min, b.Min) && g.expr(a.Extent, b.Extent) && g.stmt(a.Body, b.Body)
	case *Store:
		b, ok := b.(*Store)
		return ok && a.Name == b.Name && a.Align == b.Align &&
			g.expr(a.Value, b.Value) && g.expr(a.Index, b.Index) && g.expr(a.Predicate, b.Predicate)
	case *Block:
		b, ok := b.(*Block)
		if !ok || len(a.Stmts) != len(b.Stmts) {
			return false
		}
		for i := range a.Stmts {
			if !g.stmt(a.Stmts[i], b.Stmts[i]) {
				return false
			}
		}
		return true
	case *Evaluate:
		b, ok := b.(*Evaluate)
		return ok && g.expr(a.Value, b.Value)
	default:
		panic(a)
	}
}
