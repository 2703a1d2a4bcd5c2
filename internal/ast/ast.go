// Package ast defines the position-tagged surface syntax tree produced by
// the parser. Nodes are plain
// sum types matched with type switches rather than a visitor hierarchy.
package ast

import (
	"fmt"
	"strings"
)

// Pos identifies a location in a named source file.
type Pos struct {
	File      string
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Span is a half-open range between two positions.
type Span struct {
	Start, End Pos
}

// Node is the base interface implemented by every surface node.
type Node interface {
	Position() Pos
	String() string
}

// Expr is any surface expression node.
type Expr interface {
	Node
	exprNode()
}

// Decl is any top-level or let-bound declaration.
type Decl interface {
	Node
	declNode()
}

// Pattern is any surface pattern node.
type Pattern interface {
	Node
	patternNode()
}

// File is a parsed compilation unit: a sequence of top-level statements.
// The language has no module system; a File is
// simply an ordered list of declarations and expressions, exactly mirroring
// the REPL wire surface's "sequence of top-level statements".
type File struct {
	Path  string
	Stmts []Node // Decl or Expr
}

func (f *File) Position() Pos {
	if len(f.Stmts) == 0 {
		return Pos{File: f.Path, Line: 1, Col: 1}
	}
	return f.Stmts[0].Position()
}

func (f *File) String() string {
	parts := make([]string, len(f.Stmts))
	for i, s := range f.Stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, ";\n")
}

// ---- Literals ----

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
	Pos  Pos
	Kind LitKind
	Val  interface{}
}

func (l *Lit) exprNode()        {}
func (l *Lit) Position() Pos    { return l.Pos }
func (l *Lit) String() string   { return fmt.Sprintf("%v", l.Val) }

// ---- Identifier ----

type Ident struct {
	Pos  Pos
	Name string
}

func (i *Ident) exprNode()      {}
func (i *Ident) Position() Pos  { return i.Pos }
func (i *Ident) String() string { return i.Name }

// ---- Tuple / Record / List ----

type TupleExpr struct {
	Pos   Pos
	Elems []Expr
}

func (t *TupleExpr) exprNode()     {}
func (t *TupleExpr) Position() Pos { return t.Pos }
func (t *TupleExpr) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type RecordField struct {
	Label string
	Value Expr
}

type RecordExpr struct {
	Pos    Pos
	Fields []RecordField
}

func (r *RecordExpr) exprNode()     {}
func (r *RecordExpr) Position() Pos { return r.Pos }
func (r *RecordExpr) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s = %s", f.Label, f.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type ListExpr struct {
	Pos   Pos
	Elems []Expr
}

func (l *ListExpr) exprNode()     {}
func (l *ListExpr) Position() Pos { return l.Pos }
func (l *ListExpr) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ---- Application / Infix ----

type AppExpr struct {
	Pos  Pos
	Func Expr
	Args []Expr
}

func (a *AppExpr) exprNode()     {}
func (a *AppExpr) Position() Pos { return a.Pos }
func (a *AppExpr) String() string {
	parts := make([]string, len(a.Args))
	for i, e := range a.Args {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s %s)", a.Func, strings.Join(parts, " "))
}

type InfixExpr struct {
	Pos         Pos
	Op          string
	Left, Right Expr
}

func (o *InfixExpr) exprNode()      {}
func (o *InfixExpr) Position() Pos  { return o.Pos }
func (o *InfixExpr) String() string { return fmt.Sprintf("(%s %s %s)", o.Left, o.Op, o.Right) }

// ---- let / fn / case / if ----

type LetExpr struct {
	Pos   Pos
	Decls []Decl
	Body  Expr
}

func (l *LetExpr) exprNode()     {}
func (l *LetExpr) Position() Pos { return l.Pos }
func (l *LetExpr) String() string {
	parts := make([]string, len(l.Decls))
	for i, d := range l.Decls {
		parts[i] = d.String()
	}
	return fmt.Sprintf("let %s in %s end", strings.Join(parts, "; "), l.Body)
}

type FnExpr struct {
	Pos    Pos
	Params []Pattern
	Body   Expr
}

func (f *FnExpr) exprNode()     {}
func (f *FnExpr) Position() Pos { return f.Pos }
func (f *FnExpr) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn %s => %s", strings.Join(parts, " "), f.Body)
}

type CaseArm struct {
	Pattern Pattern
	Guard   Expr // optional
	Body    Expr
}

type CaseExpr struct {
	Pos    Pos
	Scrut  Expr
	Arms   []CaseArm
}

func (c *CaseExpr) exprNode()     {}
func (c *CaseExpr) Position() Pos { return c.Pos }
func (c *CaseExpr) String() string {
	parts := make([]string, len(c.Arms))
	for i, a := range c.Arms {
		parts[i] = fmt.Sprintf("%s => %s", a.Pattern, a.Body)
	}
	return fmt.Sprintf("case %s of %s", c.Scrut, strings.Join(parts, " | "))
}

type IfExpr struct {
	Pos               Pos
	Cond, Then, Else  Expr
}

func (f *IfExpr) exprNode()     {}
func (f *IfExpr) Position() Pos { return f.Pos }
func (f *IfExpr) String() string {
	return fmt.Sprintf("if %s then %s else %s", f.Cond, f.Then, f.Else)
}

// HandleExpr implements `e handle pat => h | ...`: catches user exceptions
// raised while evaluating e and dispatches by exception-constructor
// pattern.
type HandleExpr struct {
	Pos  Pos
	Body Expr
	Arms []CaseArm
}

func (h *HandleExpr) exprNode()     {}
func (h *HandleExpr) Position() Pos { return h.Pos }
func (h *HandleExpr) String() string {
	parts := make([]string, len(h.Arms))
	for i, a := range h.Arms {
		parts[i] = fmt.Sprintf("%s => %s", a.Pattern, a.Body)
	}
	return fmt.Sprintf("%s handle %s", h.Body, strings.Join(parts, " | "))
}

// RaiseExpr raises a user exception: `raise Ctor expr?`.
type RaiseExpr struct {
	Pos     Pos
	Ctor    string
	Payload Expr // nil for nullary exceptions
}

func (r *RaiseExpr) exprNode()     {}
func (r *RaiseExpr) Position() Pos { return r.Pos }
func (r *RaiseExpr) String() string {
	if r.Payload == nil {
		return "raise " + r.Ctor
	}
	return fmt.Sprintf("raise %s %s", r.Ctor, r.Payload)
}

// QueryExpr is the set-builder/comprehension surface form the relationalizer
// targets: `from x in coll [where pred] yield expr`.
type QueryClause struct {
	Var        string
	Source     Expr
	Where      Expr // optional filter, may be nil
}

type QueryExpr struct {
	Pos     Pos
	Clauses []QueryClause
	Yield   Expr
}

func (q *QueryExpr) exprNode()     {}
func (q *QueryExpr) Position() Pos { return q.Pos }
func (q *QueryExpr) String() string {
	var b strings.Builder
	for _, c := range q.Clauses {
		fmt.Fprintf(&b, "from %s in %s ", c.Var, c.Source)
		if c.Where != nil {
			fmt.Fprintf(&b, "where %s ", c.Where)
		}
	}
	fmt.Fprintf(&b, "yield %s", q.Yield)
	return b.String()
}

// RecordAccessExpr projects a single field: `e.field`.
type RecordAccessExpr struct {
	Pos   Pos
	Expr  Expr
	Field string
}

func (r *RecordAccessExpr) exprNode()     {}
func (r *RecordAccessExpr) Position() Pos { return r.Pos }
func (r *RecordAccessExpr) String() string {
	return fmt.Sprintf("%s.%s", r.Expr, r.Field)
}

// AnnotExpr is an explicit type annotation: `(e : T)`.
type AnnotExpr struct {
	Pos  Pos
	Expr Expr
	Type TypeExpr
}

func (a *AnnotExpr) exprNode()     {}
func (a *AnnotExpr) Position() Pos { return a.Pos }
func (a *AnnotExpr) String() string {
	return fmt.Sprintf("(%s : %s)", a.Expr, a.Type)
}
