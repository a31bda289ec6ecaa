package ir

type (
	// Mutator rewrites trees bottom-up. Implementations handle the nodes they
	// care about and delegate the rest to MutateChildren/MutateStmtChildren.
	Mutator interface {
		Expr(x Expr) Expr
		Stmt(s Stmt) Stmt
	}

	// Memo caches rewrite results by node identity so shared sub-DAGs are
	// rewritten once per pass invocation. Owned by a single pass, never shared.
	Memo struct {
		e map[Expr]Expr
		s map[Stmt]Stmt
	}
)

func (m *Memo) Expr(x Expr, f func(Expr) Expr) Expr {
	if m.e == nil {
		m.e = map[Expr]Expr{}
	}

	if r, ok := m.e[x]; ok {
		return r
	}

	r := f(x)
	m.e[x] = r

	return r
}

func (m *Memo) Stmt(s Stmt, f func(Stmt) Stmt) Stmt {
	if m.s == nil {
		m.s = map[Stmt]Stmt{}
	}

	if r, ok := m.s[s]; ok {
		return r
	}

	r := f(s)
	m.s[s] = r

	return r
}

// MutateChildren rebuilds x with its children passed through m.
// The original node is returned unchanged if no child changed.
func MutateChildren(m Mutator, x Expr) Expr {
	switch x := x.(type) {
	case *IntImm, *Var:
		return x
	case *Broadcast:
		if v := m.Expr(x.Value); v != x.Value {
			return &Broadcast{Value: v, Lanes: x.Lanes}
		}
	case *Ramp:
		b, s := m.Expr(x.Base), m.Expr(x.Stride)
		if b != x.Base || s != x.Stride {
			return &Ramp{Base: b, Stride: s, Lanes: x.Lanes}
		}
	case *Add:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Add{L: l, R: r}
		}
	case *Sub:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Sub{L: l, R: r}
		}
	case *Mul:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Mul{L: l, R: r}
		}
	case *Div:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Div{L: l, R: r}
		}
	case *Mod:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Mod{L: l, R: r}
		}
	case *Min:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Min{L: l, R: r}
		}
	case *Max:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Max{L: l, R: r}
		}
	case *Shl:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Shl{L: l, R: r}
		}
	case *Shr:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Shr{L: l, R: r}
		}
	case *EQ:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &EQ{L: l, R: r}
		}
	case *NE:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &NE{L: l, R: r}
		}
	case *LT:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &LT{L: l, R: r}
		}
	case *LE:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &LE{L: l, R: r}
		}
	case *GT:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &GT{L: l, R: r}
		}
	case *GE:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &GE{L: l, R: r}
		}
	case *And:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &And{L: l, R: r}
		}
	case *Or:
		if l, r := m.Expr(x.L), m.Expr(x.R); l != x.L || r != x.R {
			return &Or{L: l, R: r}
		}
	case *Not:
		if v := m.Expr(x.V); v != x.V {
			return &Not{V: v}
		}
	case *Select:
		c, t, e := m.Expr(x.Cond), m.Expr(x.Then), m.Expr(x.Else)
		if c != x.Cond || t != x.Then || e != x.Else {
			return &Select{Cond: c, Then: t, Else: e}
		}
	case *Cast:
		if v := m.Expr(x.Value); v != x.Value {
			return &Cast{T: x.T, Value: v}
		}
	case *Load:
		i := m.Expr(x.Index)
		p := x.Predicate
		if p != nil {
			p = m.Expr(p)
		}
		if i != x.Index || p != x.Predicate {
			return &Load{T: x.T, Name: x.Name, Index: i, Predicate: p, Align: x.Align}
		}
	case *Let:
		v, b := m.Expr(x.Value), m.Expr(x.Body)
		if v != x.Value || b != x.Body {
			return &Let{Name: x.Name, Value: v, Body: b}
		}
	case *Shuffle:
		var vs []Expr
		for i, v := range x.Vectors {
			w := m.Expr(v)
			if vs == nil && w != v {
				vs = append(make([]Expr, 0, len(x.Vectors)), x.Vectors[:i]...)
			}
			if vs != nil {
				vs = append(vs, w)
			}
		}
		if vs != nil {
			return &Shuffle{Vectors: vs, Indices: x.Indices}
		}
	case *Call:
		var as []Expr
		for i, a := range x.Args {
			w := m.Expr(a)
			if as == nil && w != a {
				as = append(make([]Expr, 0, len(x.Args)), x.Args[:i]...)
			}
			if as != nil {
				as = append(as, w)
			}
		}
		if as != nil {
			return &Call{T: x.T, Name: x.Name, Args: as, CallType: x.CallType}
		}
	case *VectorReduce:
		if v := m.Expr(x.Value); v != x.Value {
			return &VectorReduce{Op: x.Op, Value: v, Lanes: x.Lanes}
		}
	default:
		panic(x)
	}

	return x
}

// MutateStmtChildren rebuilds s with its children passed through m.
func MutateStmtChildren(m Mutator, s Stmt) Stmt {
	switch s := s.(type) {
	case *LetStmt:
		v, b := m.Expr(s.Value), m.Stmt(s.Body)
		if v != s.Value || b != s.Body {
			return &LetStmt{Name: s.Name, Value: v, Body: b}
		}
	case *For:
		mn, ex, b := m.Expr(s.Min), m.Expr(s.Extent), m.Stmt(s.Body)
		if mn != s.Min || ex != s.Extent || b != s.Body {
			return &For{Name: s.Name, Min: mn, Extent: ex, Body: b}
		}
	case *Store:
		v, i := m.Expr(s.Value), m.Expr(s.Index)
		p := s.Predicate
		if p != nil {
			p = m.Expr(p)
		}
		if v != s.Value || i != s.Index || p != s.Predicate {
			return &Store{Name: s.Name, Value: v, Index: i, Predicate: p, Align: s.Align}
		}
	case *Block:
		var l []Stmt
		for i, c := range s.Stmts {
			w := m.Stmt(c)
			if l == nil && w != c {
				l = append(make([]Stmt, 0, len(s.Stmts)), s.Stmts[:i]...)
			}
			if l != nil {
				l = append(l, w)
			}
		}
		if l != nil {
			return &Block{Stmts: l}
		}
	case *Evaluate:
		if v := m.Expr(s.Value); v != s.Value {
			return &Evaluate{Value: v}
		}
	default:
		panic(s)
	}

	return s
}
