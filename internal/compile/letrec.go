package compile

import (
	"fmt"

	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/eval"
)

// compileLetRec lowers a recursive binding. When the bound value is a
// function whose body contains a self call in tail position (and the name is
// never shadowed inside the body), the function is compiled as a loop: tail
// calls yield an eval.VTail marker that rebinds the parameters instead of
// growing the Go stack. Anything else delegates to the
// evaluator's ordinary fixed-point closure.
func (c *Compiler) compileLetRec(e *core.LetRec) *Code {
	delegated := &Code{Plan: "letrec " + e.Name, Run: func(env *eval.Environment) (eval.Value, error) {
		return c.Ev.Eval(env, e)
	}}

	params, innerBody := peelParams(e.Value)
	if len(params) == 0 || rebindsName(e.Name, innerBody) {
		return delegated
	}
	n := len(params)
	if !hasTailCall(e.Name, n, innerBody) {
		return delegated
	}

	name := e.Name
	bodyC := c.compileTail(name, n, innerBody)
	contC := c.Compile(e.Body)
	plan := fmt.Sprintf("letrec-loop %s/%d =\n%s\nin\n%s", name, n, indent(bodyC.Plan), indent(contC.Plan))

	return &Code{Plan: plan, Run: func(env *eval.Environment) (eval.Value, error) {
		var fn *eval.VBuiltin
		fn = &eval.VBuiltin{Name: name, Arity: n, Fn: func(args []eval.Value) (eval.Value, error) {
			for {
				call := env.Extend(name, fn)
				for i, p := range params {
					call = call.Extend(p, args[i])
				}
				v, err := bodyC.Run(call)
				if err != nil {
					return nil, err
				}
				tail, ok := v.(*eval.VTail)
				if !ok {
					return v, nil
				}
				args = tail.Args
			}
		}}
		return contC.Run(env.Extend(name, fn))
	}}
}

// peelParams flattens a curried Lambda chain into its parameter list and
// innermost body.
func peelParams(e core.Expr) ([]string, core.Expr) {
	var params []string
	for {
		lam, ok := e.(*core.Lambda)
		if !ok {
			return params, e
		}
		params = append(params, lam.Param)
		e = lam.Body
	}
}

// selfCall recognises an exact-arity application spine `name a1 ... an`.
func selfCall(name string, n int, e core.Expr) ([]core.Expr, bool) {
	args := make([]core.Expr, 0, n)
	for i := 0; i < n; i++ {
		app, ok := e.(*core.App)
		if !ok {
			return nil, false
		}
		args = append(args, app.Arg)
		e = app.Func
	}
	v, ok := e.(*core.Var)
	if !ok || v.Name != name {
		return nil, false
	}
	// args were collected innermost-application-first; reverse to call order.
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return args, true
}

// hasTailCall reports whether a self call of the right arity appears in a
// tail position the compiler knows how to loop through (the body itself, an
// If branch, or a Let body).
func hasTailCall(name string, n int, e core.Expr) bool {
	if _, ok := selfCall(name, n, e); ok {
		return true
	}
	switch e := e.(type) {
	case *core.If:
		return hasTailCall(name, n, e.Then) || hasTailCall(name, n, e.Else)
	case *core.Let:
		return hasTailCall(name, n, e.Body)
	}
	return false
}

// rebindsName reports whether any binder inside e shadows name; the loop
// rewrite relies on every occurrence of the name meaning the function.
func rebindsName(name string, e core.Expr) bool {
	switch e := e.(type) {
	case *core.Lambda:
		if e.Param == name {
			return true
		}
	case *core.Let:
		if e.Name == name {
			return true
		}
	case *core.LetRec:
		if e.Name == name {
			return true
		}
	case *core.Match:
		if treeRebinds(name, e.Tree) {
			return true
		}
	case *core.Handle:
		if treeRebinds(name, e.Tree) {
			return true
		}
	}
	for _, c := range core.Children(e) {
		if rebindsName(name, c) {
			return true
		}
	}
	return false
}

func treeRebinds(name string, t core.DecisionTree) bool {
	switch t := t.(type) {
	case *core.Leaf:
		for _, b := range t.Bindings {
			if b.Name == name {
				return true
			}
		}
		return t.Fallback != nil && treeRebinds(name, t.Fallback)
	case *core.Switch:
		for _, c := range t.Cases {
			if treeRebinds(name, c.Next) {
				return true
			}
		}
		return t.Default != nil && treeRebinds(name, t.Default)
	}
	return false
}

// compileTail compiles e as a tail position of the looping function: a
// full-arity self call becomes a VTail yield, If/Let thread tailness through
// their tail subexpressions, and everything else compiles normally (inner
// self calls there re-enter the function value, which is still the loop).
func (c *Compiler) compileTail(name string, n int, e core.Expr) *Code {
	if args, ok := selfCall(name, n, e); ok {
		argCs := make([]*Code, len(args))
		for i, a := range args {
			argCs[i] = c.Compile(a)
		}
		return &Code{Plan: fmt.Sprintf("tailcall %s/%d", name, n), Run: func(env *eval.Environment) (eval.Value, error) {
			vals := make([]eval.Value, len(argCs))
			for i, ac := range argCs {
				v, err := ac.Run(env)
				if err != nil {
					return nil, err
				}
				vals[i] = v
			}
			return &eval.VTail{Args: vals}, nil
		}}
	}

	switch e := e.(type) {
	case *core.If:
		condC := c.Compile(e.Cond)
		thenC := c.compileTail(name, n, e.Then)
		elseC := c.compileTail(name, n, e.Else)
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

	case *core.Let:
		valC := c.Compile(e.Value)
		bodyC := c.compileTail(name, n, e.Body)
		boundName := e.Name
		return &Code{
			Plan: fmt.Sprintf("let %s =\n%s\nin\n%s", boundName, indent(valC.Plan), indent(bodyC.Plan)),
			Run: func(env *eval.Environment) (eval.Value, error) {
				v, err := valC.Run(env)
				if err != nil {
					return nil, err
				}
				return bodyC.Run(env.Extend(boundName, v))
			},
		}
	}
	return c.Compile(e)
}
