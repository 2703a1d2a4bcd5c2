package ast

import (
	"fmt"
	"strings"
)

// Patterns. A pattern is refutable unless it is a wildcard, variable,
// tuple-of-irrefutable, or record-of-irrefutable.

type WildcardPattern struct {
	Pos Pos
}

func (w *WildcardPattern) patternNode()  {}
func (w *WildcardPattern) Position() Pos { return w.Pos }
func (w *WildcardPattern) String() string { return "_" }

type VarPattern struct {
	Pos  Pos
	Name string
}

func (v *VarPattern) patternNode()   {}
func (v *VarPattern) Position() Pos  { return v.Pos }
func (v *VarPattern) String() string { return v.Name }

type LitPattern struct {
	Pos  Pos
	Kind LitKind
	Val  interface{}
}

func (l *LitPattern) patternNode()   {}
func (l *LitPattern) Position() Pos  { return l.Pos }
func (l *LitPattern) String() string { return fmt.Sprintf("%v", l.Val) }

// ConPattern matches a data- or exception-constructor applied to
// sub-patterns: `Some x`, `Cons (h, t)`, `Nil`.
type ConPattern struct {
	Pos  Pos
	Name string
	Args []Pattern
}

func (c *ConPattern) patternNode()  {}
func (c *ConPattern) Position() Pos { return c.Pos }
func (c *ConPattern) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

type TuplePattern struct {
	Pos   Pos
	Elems []Pattern
}

func (t *TuplePattern) patternNode()  {}
func (t *TuplePattern) Position() Pos { return t.Pos }
func (t *TuplePattern) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// RecordPattern matches a subset of fields; Open=true means `{ a = x, ... }`
// (remaining fields are ignored rather than required to be absent).
type RecordPatternField struct {
	Label   string
	Pattern Pattern
}

type RecordPattern struct {
	Pos    Pos
	Fields []RecordPatternField
	Open   bool
}

func (r *RecordPattern) patternNode()  {}
func (r *RecordPattern) Position() Pos { return r.Pos }
func (r *RecordPattern) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Label, f.Pattern)
	}
	if r.Open {
		parts = append(parts, "...")
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type ListPattern struct {
	Pos   Pos
	Elems []Pattern
	Tail  Pattern // nil, or the `t` in `[a, b, ...t]`
}

func (l *ListPattern) patternNode()  {}
func (l *ListPattern) Position() Pos { return l.Pos }
func (l *ListPattern) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	s := "[" + strings.Join(parts, ", ")
	if l.Tail != nil {
		s += ", ..." + l.Tail.String()
	}
	return s + "]"
}

// AsPattern binds the whole matched value to Name in addition to matching
// Inner: `x as (a, b)`.
type AsPattern struct {
	Pos   Pos
	Name  string
	Inner Pattern
}

func (a *AsPattern) patternNode()  {}
func (a *AsPattern) Position() Pos { return a.Pos }
func (a *AsPattern) String() string {
	return fmt.Sprintf("%s as %s", a.Inner, a.Name)
}

// LayeredPattern is an explicit `x | p` alternation within a single arm's
// pattern (either p matches and binds the same names as x's branch, or x
// binds the whole value) -- used for multi-literal arms: `0 | 1 => ...`.
type LayeredPattern struct {
	Pos Pos
	Alt []Pattern
}

func (l *LayeredPattern) patternNode()  {}
func (l *LayeredPattern) Position() Pos { return l.Pos }
func (l *LayeredPattern) String() string {
	parts := make([]string, len(l.Alt))
	for i, p := range l.Alt {
		parts[i] = p.String()
	}
	return strings.Join(parts, " | ")
}

// AnnotPattern is a pattern with an explicit type annotation: `(x : T)`.
type AnnotPattern struct {
	Pos     Pos
	Inner   Pattern
	Type    TypeExpr
}

func (a *AnnotPattern) patternNode()  {}
func (a *AnnotPattern) Position() Pos { return a.Pos }
func (a *AnnotPattern) String() string {
	return fmt.Sprintf("(%s : %s)", a.Inner, a.Type)
}

// ---- Declarations ----

// ValDecl is `val pat = rhs` (possibly with patterns other than a bare name).
type ValDecl struct {
	Pos     Pos
	Pattern Pattern
	Rhs     Expr
}

func (v *ValDecl) declNode()   {}
func (v *ValDecl) Position() Pos { return v.Pos }
func (v *ValDecl) String() string { return fmt.Sprintf("val %s = %s", v.Pattern, v.Rhs) }

// FunDecl is `fun name p1 p2 ... = body`, sugar for `val name = fn p1 => fn p2 => ... => body`
// with Rec indicating the function may call itself.
type FunDecl struct {
	Pos    Pos
	Name   string
	Params []Pattern
	Body   Expr
	Rec    bool
}

func (f *FunDecl) declNode()    {}
func (f *FunDecl) Position() Pos { return f.Pos }
func (f *FunDecl) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	kw := "fun"
	if f.Rec {
		kw = "fun rec"
	}
	return fmt.Sprintf("%s %s %s = %s", kw, f.Name, strings.Join(parts, " "), f.Body)
}

// ConDef is one constructor in a `type` declaration.
type ConDef struct {
	Name string
	Args []TypeExpr
}

// TypeDecl declares an algebraic data type: `type Name a b = Ctor1 T | Ctor2 | ...`.
type TypeDecl struct {
	Pos    Pos
	Name   string
	Params []string
	Ctors  []ConDef
}

func (t *TypeDecl) declNode()   {}
func (t *TypeDecl) Position() Pos { return t.Pos }
func (t *TypeDecl) String() string {
	parts := make([]string, len(t.Ctors))
	for i, c := range t.Ctors {
		parts[i] = c.Name
	}
	return fmt.Sprintf("type %s = %s", t.Name, strings.Join(parts, " | "))
}

// ExceptionDecl declares an exception constructor: `exception Name [of T]`.
type ExceptionDecl struct {
	Pos  Pos
	Name string
	Arg  TypeExpr // nil for nullary exceptions
}

func (e *ExceptionDecl) declNode()    {}
func (e *ExceptionDecl) Position() Pos { return e.Pos }
func (e *ExceptionDecl) String() string { return "exception " + e.Name }

// ---- Surface type expressions (parsed, pre-inference) ----

type TypeExpr interface {
	Node
	typeExprNode()
}

type TypeName struct {
	Pos  Pos
	Name string
	Args []TypeExpr
}

func (t *TypeName) typeExprNode() {}
func (t *TypeName) Position() Pos { return t.Pos }
func (t *TypeName) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s) %s", strings.Join(parts, ", "), t.Name)
}

type TypeVarExpr struct {
	Pos  Pos
	Name string
}

func (t *TypeVarExpr) typeExprNode() {}
func (t *TypeVarExpr) Position() Pos { return t.Pos }
func (t *TypeVarExpr) String() string { return "'" + t.Name }

type TypeFunExpr struct {
	Pos         Pos
	From, To    TypeExpr
}

func (t *TypeFunExpr) typeExprNode() {}
func (t *TypeFunExpr) Position() Pos { return t.Pos }
func (t *TypeFunExpr) String() string { return fmt.Sprintf("%s -> %s", t.From, t.To) }

type TypeTupleExpr struct {
	Pos   Pos
	Elems []TypeExpr
}

func (t *TypeTupleExpr) typeExprNode() {}
func (t *TypeTupleExpr) Position() Pos { return t.Pos }
func (t *TypeTupleExpr) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return strings.Join(parts, " * ")
}

type TypeRecordField struct {
	Label string
	Type  TypeExpr
}

type TypeRecordExpr struct {
	Pos    Pos
	Fields []TypeRecordField
}

func (t *TypeRecordExpr) typeExprNode() {}
func (t *TypeRecordExpr) Position() Pos { return t.Pos }
func (t *TypeRecordExpr) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Label, f.Type)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type TypeListExpr struct {
	Pos  Pos
	Elem TypeExpr
}

func (t *TypeListExpr) typeExprNode() {}
func (t *TypeListExpr) Position() Pos { return t.Pos }
func (t *TypeListExpr) String() string { return t.Elem.String() + " list" }
