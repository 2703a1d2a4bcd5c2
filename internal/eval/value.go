// Package eval implements the evaluator and its environments: a runtime
// Value sum, a persistent lexical Environment, and the tree-walking
// machinery (decision-tree matching, exception propagation, relational
// fallback) that internal/compile's Code closures call into. Values are a
// closed Go interface switched on by type, closures capture an Environment
// snapshot, and exceptions are modelled as an explicit result rather than
// a host panic.
package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mlcore-lang/mlcore/internal/core"
)

// Value is any runtime value.
type Value interface {
	valueNode()
	String() string
}

type VUnit struct{}

func (VUnit) valueNode()     {}
func (VUnit) String() string { return "()" }

type VInt int64

func (VInt) valueNode()        {}
func (v VInt) String() string  { return fmt.Sprintf("%d", int64(v)) }

type VReal float64

func (VReal) valueNode()       {}
func (v VReal) String() string { return fmt.Sprintf("%g", float64(v)) }

type VString string

func (VString) valueNode()       {}
func (v VString) String() string { return string(v) }

type VChar rune

func (VChar) valueNode()       {}
func (v VChar) String() string { return string(rune(v)) }

type VBool bool

func (VBool) valueNode()       {}
func (v VBool) String() string { return fmt.Sprintf("%t", bool(v)) }

// VTuple is an ordered, n>=2 tuple value.
type VTuple struct {
	Elems []Value
}

func (*VTuple) valueNode() {}
func (t *VTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// VRecord is a label-ordered record value.
type VRecord struct {
	Fields map[string]Value
}

func (*VRecord) valueNode() {}
func (r *VRecord) String() string {
	labels := make([]string, 0, len(r.Fields))
	for l := range r.Fields {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s = %s", l, r.Fields[l])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// VCon is a data- or exception-constructor value, and also the uniform
// runtime shape of a list value: "[]" (arity 0) and "::" (arity 2, head then
// tail) are synthetic constructor names internal/dtree already uses during
// match compilation, so list values reuse the same Switch/Path projection
// machinery as ordinary ADT constructors instead of a second value shape.
type VCon struct {
	Name string
	Args []Value
}

func (*VCon) valueNode() {}
func (c *VCon) String() string {
	switch c.Name {
	case "[]", "::":
		elems, _ := ListElems(c)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	if len(c.Args) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

// VClosure is a Lambda value: Body is the Core body and Env is the
// environment captured at definition time.
type VClosure struct {
	Param string
	Body  core.Expr
	Env   *Environment
}

func (*VClosure) valueNode()     {}
func (c *VClosure) String() string { return "<fn>" }

// VBuiltin is a primitive function, accumulating curried arguments until
// Arity is reached. Constructors of arity > 0 are seeded as VBuiltins too
// (see core.Con's doc comment: the evaluator's global environment seeds
// one curried primitive closure per declared constructor).
type VBuiltin struct {
	Name  string
	Arity int
	Args  []Value
	Fn    func(args []Value) (Value, error)
}

func (*VBuiltin) valueNode()     {}
func (b *VBuiltin) String() string { return "<builtin:" + b.Name + ">" }

// VTail is the marker a compiled self-recursive tail call yields instead of
// re-entering the evaluator: the loop internal/compile wraps around the
// function body consumes it and rebinds the parameters. It never
// escapes that loop.
type VTail struct {
	Args []Value
}

func (*VTail) valueNode()       {}
func (t *VTail) String() string { return "<tail>" }

// NilList and Cons build/recognise the synthetic list representation.
func NilList() *VCon { return &VCon{Name: "[]"} }

func Cons(head, tail Value) *VCon { return &VCon{Name: "::", Args: []Value{head, tail}} }

// ListElems flattens a list value into a Go slice; ok is false if v is not a
// well-formed list value.
func ListElems(v Value) ([]Value, bool) {
	var out []Value
	for {
		c, ok := v.(*VCon)
		if !ok {
			return nil, false
		}
		switch c.Name {
		case "[]":
			return out, true
		case "::":
			out = append(out, c.Args[0])
			v = c.Args[1]
		default:
			return nil, false
		}
	}
}

// FromSlice builds a list value from a Go slice, tail first.
func FromSlice(elems []Value) Value {
	var v Value = NilList()
	for i := len(elems) - 1; i >= 0; i-- {
		v = Cons(elems[i], v)
	}
	return v
}

// AsBool returns false for any non-VBool; callers only invoke it on
// positions the type checker has already proven boolean.
func AsBool(v Value) bool {
	if b, ok := v.(VBool); ok {
		return bool(b)
	}
	return false
}
