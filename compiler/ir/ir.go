package ir

import (
	"github.com/vexlang/vex/compiler/tp"
)

type (
	// Expr is an immutable expression tree node.
	// Identical subtrees may be shared; passes must not mutate nodes in place.
	Expr interface {
		Type() tp.Type
	}

	// Stmt is a statement tree node.
	Stmt interface {
		stmt()
	}

	CallType int

	ReduceOp int

	IntImm struct {
		T     tp.Type
		Value int64
	}

	Var struct {
		T    tp.Type
		Name string
	}

	// Broadcast replicates a scalar (or a narrower vector) across Lanes lanes.
	// Lanes == 0 is only legal inside patterns and means "any lane count".
	Broadcast struct {
		Value Expr
		Lanes int
	}

	Ramp struct {
		Base   Expr
		Stride Expr
		Lanes  int
	}

	Add struct{ L, R Expr }
	Sub struct{ L, R Expr }
	Mul struct{ L, R Expr }
	Div struct{ L, R Expr }
	Mod struct{ L, R Expr }
	Min struct{ L, R Expr }
	Max struct{ L, R Expr }
	Shl struct{ L, R Expr }
	Shr struct{ L, R Expr }

	EQ struct{ L, R Expr }
	NE struct{ L, R Expr }
	LT struct{ L, R Expr }
	LE struct{ L, R Expr }
	GT struct{ L, R Expr }
	GE struct{ L, R Expr }

	And struct{ L, R Expr }
	Or  struct{ L, R Expr }
	Not struct{ V Expr }

	Select struct {
		Cond Expr
		Then Expr
		Else Expr
	}

	Cast struct {
		T     tp.Type
		Value Expr
	}

	// Load reads Lanes(T) elements of buffer Name at Index.
	// Predicate == nil means all lanes active.
	Load struct {
		T         tp.Type
		Name      string
		Index     Expr
		Predicate Expr
		Align     int
	}

	Let struct {
		Name  string
		Value Expr
		Body  Expr
	}

	// Shuffle selects lanes from the concatenation of Vectors by index.
	Shuffle struct {
		Vectors []Expr
		Indices []int
	}

	// Call is either a target intrinsic handed to codegen by name (PureExtern)
	// or a generic IR intrinsic (Intrinsic).
	Call struct {
		T        tp.Type
		Name     string
		Args     []Expr
		CallType CallType
	}

	// VectorReduce reduces Value to Lanes lanes with Op.
	// Lanes == 0 is only legal inside patterns.
	VectorReduce struct {
		Op    ReduceOp
		Value Expr
		Lanes int
	}

	LetStmt struct {
		Name  string
		Value Expr
		Body  Stmt
	}

	For struct {
		Name   string
		Min    Expr
		Extent Expr
		Body   Stmt
	}

	Store struct {
		Name      string
		Value     Expr
		Index     Expr
		Predicate Expr
		Align     int
	}

	Block struct {
		Stmts []Stmt
	}

	Evaluate struct {
		Value Expr
	}
)

const (
	PureExtern CallType = iota
	Intrinsic
)

const (
	ReduceAdd ReduceOp = iota
	ReduceMin
	ReduceMax
)

// Generic IR intrinsic names (CallType == Intrinsic).
const (
	IntrinLerp    = "lerp"
	IntrinAbsD    = "absd"
	IntrinSatCast = "saturating_cast"
)

func (x *IntImm) Type() tp.Type { return x.T }
func (x *Var) Type() tp.Type    { return x.T }

func (x *Broadcast) Type() tp.Type {
	return x.Value.Type().Element().WithLanes(x.Lanes)
}

func (x *Ramp) Type() tp.Type {
	return x.Base.Type().WithLanes(x.Lanes)
}

func (x *Add) Type() tp.Type { return x.L.Type() }
func (x *Sub) Type() tp.Type { return x.L.Type() }
func (x *Mul) Type() tp.Type { return x.L.Type() }
func (x *Div) Type() tp.Type { return x.L.Type() }
func (x *Mod) Type() tp.Type { return x.L.Type() }
func (x *Min) Type() tp.Type { return x.L.Type() }
func (x *Max) Type() tp.Type { return x.L.Type() }
func (x *Shl) Type() tp.Type { return x.L.Type() }
func (x *Shr) Type() tp.Type { return x.L.Type() }

func (x *EQ) Type() tp.Type { return tp.Bool(int(x.L.Type().Lanes)) }
func (x *NE) Type() tp.Type { return tp.Bool(int(x.L.Type().Lanes)) }
func (x *LT) Type() tp.Type { return tp.Bool(int(x.L.Type().Lanes)) }
func (x *LE) Type() tp.Type { return tp.Bool(int(x.L.Type().Lanes)) }
func (x *GT) Type() tp.Type { return tp.Bool(int(x.L.Type().Lanes)) }
func (x *GE) Type() tp.Type { return tp.Bool(int(x.L.Type().Lanes)) }

func (x *And) Type() tp.Type { return x.L.Type() }
func (x *Or) Type() tp.Type  { return x.L.Type() }
func (x *Not) Type() tp.Type { return x.V.Type() }

func (x *Select) Type() tp.Type { return x.Then.Type() }
func (x *Cast) Type() tp.Type   { return x.T }
func (x *Load) Type() tp.Type   { return x.T }
func (x *Let) Type() tp.Type    { return x.Body.Type() }

func (x *Shuffle) Type() tp.Type {
	return x.Vectors[0].Type().Element().WithLanes(len(x.Indices))
}

func (x *Call) Type() tp.Type { return x.T }

func (x *VectorReduce) Type() tp.Type {
	return x.Value.Type().WithLanes(x.Lanes)
}

func (*LetStmt) stmt()  {}
func (*For) stmt()      {}
func (*Store) stmt()    {}
func (*Block) stmt()    {}
func (*Evaluate) stmt() {}

func Imm(t tp.Type, v int64) *IntImm {
	return &IntImm{T: t.Element(), Value: v}
}

func ImmI32(v int64) *IntImm { return Imm(tp.IntT(32, 1), v) }

func ConstValue(x Expr) (int64, bool) {
	switch x := x.(type) {
	case *IntImm:
		return x.Value, true
	case *Broadcast:
		return ConstValue(x.Value)
	}

	return 0, false
}

// IsConstPowerOfTwo returns the exponent if x is a positive power-of-two
// integer constant.
func IsConstPowerOfTwo(x Expr) (int, bool) {
	v, ok := ConstValue(x)
	if !ok || v <= 0 || v&(v-1) != 0 {
		return 0, false
	}

	n := 0
	for v > 1 {
		v >>= 1
		n++
	}

	return n, true
}
