// Package compile lowers Core to Code: closures over an Environment plus a
// textual plan string used by tests. Node dispatch is resolved ahead of
// time, not per call, and self-recursive tail calls inside a LetRec compile
// into a Go loop instead of a fresh evaluator call per recursive step.
package compile

import (
	"fmt"
	"strings"

	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/eval"
)

// Code is the compiled, evaluable form of a Core expression: a closure
// parameterised by an Environment (the Session a program runs under owns
// the Evaluator this Code was built against, so it need not be threaded
// through Run itself).
type Code struct {
	Run  func(env *eval.Environment) (eval.Value, error)
	Plan string
}

// Describe returns Code's textual plan, consumed by the test suite.
func (c *Code) Describe() string { return c.Plan }

// Compiler builds Code from Core, delegating leaf evaluation semantics to
// an Evaluator it owns so compile and eval never duplicate runtime logic.
type Compiler struct {
	Ev *eval.Evaluator
}

// New creates a Compiler over ev.
func New(ev *eval.Evaluator) *Compiler { return &Compiler{Ev: ev} }

// Compile lowers e to Code.
func (c *Compiler) Compile(e core.Expr) *Code {
	switch e := e.(type) {
	case *core.Lit:
		v := litCopy(e)
		return &Code{Plan: "lit", Run: func(*eval.Environment) (eval.Value, error) { return v, nil }}

	case *core.Var:
		name := e.Name
		return &Code{Plan: "var " + name, Run: func(env *eval.Environment) (eval.Value, error) {
			return c.Ev.Eval(env, e)
		}}

	case *core.Lambda:
		return &Code{Plan: "lambda " + e.Param, Run: func(env *eval.Environment) (eval.Value, error) {
			return c.Ev.Eval(env, e)
		}}

	case *core.App:
		funC := c.Compile(e.Func)
		argC := c.Compile(e.Arg)
		return &Code{
			Plan: fmt.Sprintf("app\n%s\n%s", indent(funC.Plan), indent(argC.Plan)),
			Run: func(env *eval.Environment) (eval.Value, error) {
				fn, err := funC.Run(env)
				if err != nil {
					return nil, err
				}
				arg, err := argC.Run(env)
				if err != nil {
					return nil, err
				}
				return c.Ev.Apply(fn, arg)
			},
		}

	case *core.Let:
		valC := c.Compile(e.Value)
		bodyC := c.Compile(e.Body)
		return &Code{
			Plan: fmt.Sprintf("let %s =\n%s\nin\n%s", e.Name, indent(valC.Plan), indent(bodyC.Plan)),
			Run: func(env *eval.Environment) (eval.Value, error) {
				v, err := valC.Run(env)
				if err != nil {
					return nil, err
				}
				return bodyC.Run(env.Extend(e.Name, v))
			},
		}

	case *core.LetRec:
		return c.compileLetRec(e)

	case *core.If:
		condC := c.Compile(e.Cond)
		thenC := c.Compile(e.Then)
		elseC := c.Compile(e.Else)
		return &Code{
			Plan: fmt.Sprintf("if\n%s\nthen\n%s\nelse\n%s", indent(condC.Plan), indent(thenC.Plan), indent(elseC.Plan)),
			Run: func(env *eval.Environment) (eval.Value, error) {
				cv, err := condC.Run(env)
				if err != nil {
					return nil, err
				}
				if eval.AsBool(cv) {
					return thenC.Run(env)
				}
				return elseC.Run(env)
			},
		}

	case *core.BinOp:
		leftC := c.Compile(e.Left)
		rightC := c.Compile(e.Right)
		op := e.Op
		return &Code{
			Plan: fmt.Sprintf("binop %s\n%s\n%s", op, indent(leftC.Plan), indent(rightC.Plan)),
			Run: func(env *eval.Environment) (eval.Value, error) {
				l, err := leftC.Run(env)
				if err != nil {
					return nil, err
				}
				r, err := rightC.Run(env)
				if err != nil {
					return nil, err
				}
				return eval.EvalBinOp(op, l, r)
			},
		}

	case *core.UnOp:
		operandC := c.Compile(e.Operand)
		op := e.Op
		return &Code{
			Plan: fmt.Sprintf("unop %s\n%s", op, indent(operandC.Plan)),
			Run: func(env *eval.Environment) (eval.Value, error) {
				v, err := operandC.Run(env)
				if err != nil {
					return nil, err
				}
				return eval.EvalUnOp(op, v)
			},
		}
	}

	// Tuple, Record, RecordAccess, ListLit, Con, Raise, Handle, Match and the
	// Rel* nodes gain nothing from ahead-of-time node-by-node compilation --
	// they are not the repeated hot path a tail-recursive loop runs through --
	// so they delegate to the Evaluator wholesale rather than duplicating its
	// traversal here.
	return &Code{
		Plan: describeDelegated(e),
		Run: func(env *eval.Environment) (eval.Value, error) {
			return c.Ev.Eval(env, e)
		},
	}
}

func describeDelegated(e core.Expr) string {
	switch e.(type) {
	case *core.Tuple:
		return "tuple"
	case *core.Record:
		return "record"
	case *core.RecordAccess:
		return "record-access"
	case *core.ListLit:
		return "list"
	case *core.Con:
		return "con"
	case *core.Raise:
		return "raise"
	case *core.Handle:
		return "handle"
	case *core.RelScan:
		return "rel-scan"
	case *core.RelFilter:
		return "rel-filter"
	case *core.RelProject:
		return "rel-project"
	case *core.RelJoin:
		return "rel-join"
	case *core.RelGroupBy:
		return "rel-group-by"
	case *core.RelUnion:
		return "rel-union"
	case *core.RelAggregate:
		return "rel-aggregate"
	case *core.Match:
		return "match"
	}
	return "expr"
}

func litCopy(l *core.Lit) eval.Value {
	switch l.Kind {
	case core.LitInt:
		return eval.VInt(l.Val.(int64))
	case core.LitFloat:
		return eval.VReal(l.Val.(float64))
	case core.LitString:
		return eval.VString(l.Val.(string))
	case core.LitChar:
		return eval.VChar(l.Val.(rune))
	case core.LitBool:
		return eval.VBool(l.Val.(bool))
	}
	return eval.VUnit{}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
