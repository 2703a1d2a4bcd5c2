// Package core implements the canonical Core IR: typed,
// position-erased nodes produced by internal/lower, consumed by
// internal/analyze, internal/inline, internal/relational, and
// internal/compile. A closed sum of expression nodes plus the relational
// extension consumed by the relationalizer.
package core

import "github.com/mlcore-lang/mlcore/internal/types"

// Expr is any Core expression. Every node carries its resolved static
// type.
type Expr interface {
	exprNode()
	Type() types.Type
}

// Var references a binding by name. internal/lower does not rename
// user-written binders: a binder that shadows another keeps the same Core
// name, and a reference denotes the innermost enclosing binding of that
// name. Only names the lowering invents itself are fresh.
type Var struct {
	Name string
	Typ  types.Type
}

func (v *Var) exprNode()        {}
func (v *Var) Type() types.Type { return v.Typ }

// LitKind mirrors ast.LitKind at the Core level.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
	LitUnit
)

type Lit struct {
	Kind LitKind
	Val  interface{}
	Typ  types.Type
}

func (l *Lit) exprNode()        {}
func (l *Lit) Type() types.Type { return l.Typ }

// Lambda is a single-parameter closure; multi-parameter surface functions
// are curried into nested Lambdas during lowering.
type Lambda struct {
	Param     string
	ParamType types.Type
	Body      Expr
	Typ       types.Type
}

func (f *Lambda) exprNode()        {}
func (f *Lambda) Type() types.Type { return f.Typ }

// App is single-argument application; curried surface applications lower to
// nested Apps.
type App struct {
	Func, Arg Expr
	Typ       types.Type
}

func (a *App) exprNode()        {}
func (a *App) Type() types.Type { return a.Typ }

// Let is a non-recursive value binding.
type Let struct {
	Name  string
	Value Expr
	Body  Expr
	Typ   types.Type
}

func (l *Let) exprNode()        {}
func (l *Let) Type() types.Type { return l.Typ }

// LetRec is a recursive value binding; Value must be a Lambda (direct or
// reachable through one of the other generalisable shapes), the only
// position in which self-reference is legal.
type LetRec struct {
	Name  string
	Value Expr
	Body  Expr
	Typ   types.Type
}

func (l *LetRec) exprNode()        {}
func (l *LetRec) Type() types.Type { return l.Typ }

type If struct {
	Cond, Then, Else Expr
	Typ              types.Type
}

func (f *If) exprNode()        {}
func (f *If) Type() types.Type { return f.Typ }

// Match is the compiled form of every case/fn/let pattern with non-trivial
// refutability: a scrutinee plus a decision tree.
type Match struct {
	Scrut Expr
	Tree  DecisionTree
	Typ   types.Type
}

func (m *Match) exprNode()        {}
func (m *Match) Type() types.Type { return m.Typ }

// Tuple is a canonical n-ary (n >= 2) tuple construction.
type Tuple struct {
	Elems []Expr
	Typ   types.Type
}

func (t *Tuple) exprNode()        {}
func (t *Tuple) Type() types.Type { return t.Typ }

// Record is canonicalised during lowering: Labels holds the full,
// alphabetically sorted label set of the record's type, and Fields has
// exactly one entry per label.
type Record struct {
	Labels []string
	Fields map[string]Expr
	Typ    types.Type
}

func (r *Record) exprNode()        {}
func (r *Record) Type() types.Type { return r.Typ }

type RecordAccess struct {
	Rec   Expr
	Field string
	Typ   types.Type
}

func (r *RecordAccess) exprNode()        {}
func (r *RecordAccess) Type() types.Type { return r.Typ }

type ListLit struct {
	Elems []Expr
	Typ   types.Type
}

func (l *ListLit) exprNode()        {}
func (l *ListLit) Type() types.Type { return l.Typ }

// BinOp is a builtin overloaded binary operator application; kept as a
// dedicated node rather than an ordinary App so the compiler can emit a
// direct operation instead of a closure call.
type BinOp struct {
	Op          string
	Left, Right Expr
	Typ         types.Type
}

func (b *BinOp) exprNode()        {}
func (b *BinOp) Type() types.Type { return b.Typ }

type UnOp struct {
	Op      string
	Operand Expr
	Typ     types.Type
}

func (u *UnOp) exprNode()        {}
func (u *UnOp) Type() types.Type { return u.Typ }

// Con is a fully-applied data- or exception-constructor application.
// Partial or bare references to a constructor lower instead
// to a Var naming it; the evaluator's global environment seeds one curried
// primitive closure per declared constructor so partial application works
// without a separate Core shape.
type Con struct {
	Name string
	Args []Expr
	Typ  types.Type
}

func (c *Con) exprNode()        {}
func (c *Con) Type() types.Type { return c.Typ }

// Raise constructs and throws an exception packet; Typ is an unconstrained
// fresh variable at the type level (raise unifies with whatever context
// expects it) but concretely never produces a value.
type Raise struct {
	Ctor    string
	Payload Expr // nil for nullary exceptions
	Typ     types.Type
}

func (r *Raise) exprNode()        {}
func (r *Raise) Type() types.Type { return r.Typ }

// Handle evaluates Body; if it raises an exception, Tree is matched against
// the exception packet.
type Handle struct {
	Body Expr
	Tree DecisionTree
	Typ  types.Type
}

func (h *Handle) exprNode()        {}
func (h *Handle) Type() types.Type { return h.Typ }

// ---- Relational extension ----

// RelScan is a base relation: the element-wise enumeration of a row-typed
// list value.
type RelScan struct {
	Source Expr
	RowT   types.Type
}

func (s *RelScan) exprNode()        {}
func (s *RelScan) Type() types.Type { return s.RowT }

// RelFilter keeps rows from Source for which Pred (a Row -> bool Lambda)
// holds.
type RelFilter struct {
	Source Expr
	Pred   Expr
	RowT   types.Type
}

func (f *RelFilter) exprNode()        {}
func (f *RelFilter) Type() types.Type { return f.RowT }

// RelProject maps each row of Source through Proj (a Row -> T Lambda).
type RelProject struct {
	Source Expr
	Proj   Expr
	RowT   types.Type
}

func (p *RelProject) exprNode()        {}
func (p *RelProject) Type() types.Type { return p.RowT }

// RelJoin pairs rows from Left and Right for which Pred holds, binding both
// row variables in its scope.
type RelJoin struct {
	Left, Right Expr
	Pred        Expr
	RowT        types.Type
}

func (j *RelJoin) exprNode()        {}
func (j *RelJoin) Type() types.Type { return j.RowT }

// RelGroupBy partitions Source's rows by KeyFn, producing one row per
// distinct key with its grouped members.
type RelGroupBy struct {
	Source Expr
	KeyFn  Expr
	RowT   types.Type
}

func (g *RelGroupBy) exprNode()        {}
func (g *RelGroupBy) Type() types.Type { return g.RowT }

// RelUnion concatenates two same-schema relations.
type RelUnion struct {
	Left, Right Expr
	RowT        types.Type
}

func (u *RelUnion) exprNode()        {}
func (u *RelUnion) Type() types.Type { return u.RowT }

// RelAggregate reduces Source to a single row via AggFn.
type RelAggregate struct {
	Source Expr
	AggFn  Expr
	RowT   types.Type
}

func (a *RelAggregate) exprNode()        {}
func (a *RelAggregate) Type() types.Type { return a.RowT }
