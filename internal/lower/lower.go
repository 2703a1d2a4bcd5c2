// Package lower implements the Resolver-to-Core translation: pattern
// elaboration through internal/dtree, record canonicalisation, and
// exception-constructor lowering. User-written binders keep their surface
// names (no disambiguation of shadowed names); only synthetic names are
// fresh. The translation is
// a recursive, type-directed, per-node-kind rewrite, including lowering
// short-circuiting `&&`/`||` into `if` to preserve evaluation order.
package lower

import (
	"fmt"

	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/dtree"
	"github.com/mlcore-lang/mlcore/internal/errs"
	"github.com/mlcore-lang/mlcore/internal/resolve"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// Lowerer carries the state needed across one file's translation: the
// TypeMap produced by resolve.Resolver, the constructor registry, the type
// system (to force-resolve any type variable left unbound since the
// statement that introduced it), and a counter for fresh identities.
type Lowerer struct {
	TS       *types.TypeSystem
	Data     *types.DataRegistry
	TypeMap  resolve.TypeMap
	Warnings *errs.Sink
	counter  int
}

// New creates a Lowerer. warnings may be nil to discard non-exhaustive-match
// warnings.
func New(ts *types.TypeSystem, dreg *types.DataRegistry, tm resolve.TypeMap, warnings *errs.Sink) *Lowerer {
	return &Lowerer{TS: ts, Data: dreg, TypeMap: tm, Warnings: warnings}
}

func (l *Lowerer) fresh(base string) string {
	l.counter++
	return fmt.Sprintf("%s~%d", base, l.counter)
}

func (l *Lowerer) typeOf(n ast.Node) types.Type {
	t, ok := l.TypeMap[n]
	if !ok {
		return l.TS.PrimUnit()
	}
	return l.TS.Apply(t)
}

// compileMatch wraps internal/dtree.Compile, turning a Redundant or
// NonExhaustiveAndRedundant verdict into a hard error and a NonExhaustive
// verdict into a warning on l.Warnings.
func (l *Lowerer) compileMatch(scrutT types.Type, arms []dtree.Arm) (core.DecisionTree, error) {
	if len(arms) == 0 {
		return &core.Fail{}, nil
	}
	tree, facts := dtree.Compile(scrutT, arms, l.Data)
	pos := arms[0].Pos
	switch facts.Verdict {
	case dtree.Redundant:
		return nil, errs.Wrap(errs.New(errs.PhaseMatch, errs.CompileMatchRedundant,
			"match has unreachable arm(s)", &pos).WithData("positions", facts.RedundantArm))
	case dtree.NonExhaustiveAndRedundant:
		return nil, errs.Wrap(errs.New(errs.PhaseMatch, errs.CompileMatchNonExhaustiveAndRedundant,
			"match is non-exhaustive and has unreachable arm(s)", &pos).WithData("positions", facts.RedundantArm))
	case dtree.NonExhaustive:
		if l.Warnings != nil {
			l.Warnings.Emit(errs.New(errs.PhaseMatch, errs.WarnMatchNonExhaustive, "match is not exhaustive", &pos))
		}
	}
	return tree, nil
}

// LowerExpr translates a surface expression under sc into Core.
func (l *Lowerer) LowerExpr(sc *Scope, e ast.Expr) (core.Expr, error) {
	switch e := e.(type) {
	case *ast.Lit:
		return &core.Lit{Kind: lowerLitKind(e.Kind), Val: e.Val, Typ: l.typeOf(e)}, nil

	case *ast.Ident:
		t := l.typeOf(e)
		if lowered, ok := sc.lookup(e.Name); ok {
			return &core.Var{Name: lowered, Typ: t}, nil
		}
		return &core.Var{Name: e.Name, Typ: t}, nil

	case *ast.TupleExpr:
		elems := make([]core.Expr, len(e.Elems))
		for i, el := range e.Elems {
			ce, err := l.LowerExpr(sc, el)
			if err != nil {
				return nil, err
			}
			elems[i] = ce
		}
		return &core.Tuple{Elems: elems, Typ: l.typeOf(e)}, nil

	case *ast.RecordExpr:
		rt, ok := l.typeOf(e).(*types.TRecord)
		var labels []string
		if ok {
			labels = rt.SortedLabels()
		}
		fields := map[string]core.Expr{}
		for _, f := range e.Fields {
			ce, err := l.LowerExpr(sc, f.Value)
			if err != nil {
				return nil, err
			}
			fields[f.Label] = ce
			if !ok {
				labels = append(labels, f.Label)
			}
		}
		return &core.Record{Labels: labels, Fields: fields, Typ: l.typeOf(e)}, nil

	case *ast.ListExpr:
		elems := make([]core.Expr, len(e.Elems))
		for i, el := range e.Elems {
			ce, err := l.LowerExpr(sc, el)
			if err != nil {
				return nil, err
			}
			elems[i] = ce
		}
		return &core.ListLit{Elems: elems, Typ: l.typeOf(e)}, nil

	case *ast.AppExpr:
		return l.lowerApp(sc, e)

	case *ast.InfixExpr:
		return l.lowerInfix(sc, e)

	case *ast.RecordAccessExpr:
		re, err := l.LowerExpr(sc, e.Expr)
		if err != nil {
			return nil, err
		}
		return &core.RecordAccess{Rec: re, Field: e.Field, Typ: l.typeOf(e)}, nil

	case *ast.FnExpr:
		return l.lowerCurriedFn(sc, e.Params, l.typeOf(e), func(nsc *Scope) (core.Expr, error) {
			return l.LowerExpr(nsc, e.Body)
		})

	case *ast.LetExpr:
		return l.lowerLetChain(sc, e.Decls, func(nsc *Scope) (core.Expr, error) {
			return l.LowerExpr(nsc, e.Body)
		})

	case *ast.CaseExpr:
		return l.lowerCase(sc, e)

	case *ast.IfExpr:
		c, err := l.LowerExpr(sc, e.Cond)
		if err != nil {
			return nil, err
		}
		th, err := l.LowerExpr(sc, e.Then)
		if err != nil {
			return nil, err
		}
		el, err := l.LowerExpr(sc, e.Else)
		if err != nil {
			return nil, err
		}
		return &core.If{Cond: c, Then: th, Else: el, Typ: l.typeOf(e)}, nil

	case *ast.HandleExpr:
		return l.lowerHandle(sc, e)

	case *ast.RaiseExpr:
		var payload core.Expr
		if e.Payload != nil {
			var err error
			payload, err = l.LowerExpr(sc, e.Payload)
			if err != nil {
				return nil, err
			}
		}
		return &core.Raise{Ctor: e.Ctor, Payload: payload, Typ: l.typeOf(e)}, nil

	case *ast.QueryExpr:
		return l.lowerQuery(sc, e.Clauses, e.Yield, l.typeOf(e))

	case *ast.AnnotExpr:
		return l.LowerExpr(sc, e.Expr)
	}
	return nil, fmt.Errorf("lower: unhandled expression %T", e)
}

func lowerLitKind(k ast.LitKind) core.LitKind {
	switch k {
	case ast.LitInt:
		return core.LitInt
	case ast.LitFloat:
		return core.LitFloat
	case ast.LitString:
		return core.LitString
	case ast.LitChar:
		return core.LitChar
	case ast.LitBool:
		return core.LitBool
	default:
		return core.LitUnit
	}
}

var arithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true,
	"<": true, "<=": true, ">": true, ">=": true, "==": true, "<>": true}

// lowerInfix lowers builtin binary operators to BinOp, except `&&`/`||`,
// which must preserve short-circuit
// evaluation order and so lower to If.
func (l *Lowerer) lowerInfix(sc *Scope, e *ast.InfixExpr) (core.Expr, error) {
	left, err := l.LowerExpr(sc, e.Left)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "&&":
		right, err := l.LowerExpr(sc, e.Right)
		if err != nil {
			return nil, err
		}
		return &core.If{Cond: left, Then: right, Else: &core.Lit{Kind: core.LitBool, Val: false, Typ: l.TS.PrimBool()}, Typ: l.typeOf(e)}, nil
	case "||":
		right, err := l.LowerExpr(sc, e.Right)
		if err != nil {
			return nil, err
		}
		return &core.If{Cond: left, Then: &core.Lit{Kind: core.LitBool, Val: true, Typ: l.TS.PrimBool()}, Else: right, Typ: l.typeOf(e)}, nil
	}
	right, err := l.LowerExpr(sc, e.Right)
	if err != nil {
		return nil, err
	}
	if arithOps[e.Op] {
		return &core.BinOp{Op: e.Op, Left: left, Right: right, Typ: l.typeOf(e)}, nil
	}
	// Unknown operators still reach here as ordinary two-argument
	// application against the overload table's bound name.
	return l.curryApp(&core.Var{Name: e.Op, Typ: nil}, []core.Expr{left, right}, l.typeOf(e)), nil
}

// lowerApp recognises a fully-applied data/exception constructor and lowers
// it to Con; every other application (including partial constructor use,
// which the evaluator resolves via its curried primitive closures) lowers to
// nested single-argument App nodes.
func (l *Lowerer) lowerApp(sc *Scope, e *ast.AppExpr) (core.Expr, error) {
	if id, isIdent := e.Func.(*ast.Ident); isIdent && len(e.Args) == 1 {
		if id.Name == "~" || id.Name == "not" {
			if _, shadowed := sc.lookup(id.Name); !shadowed {
				operand, err := l.LowerExpr(sc, e.Args[0])
				if err != nil {
					return nil, err
				}
				return &core.UnOp{Op: id.Name, Operand: operand, Typ: l.typeOf(e)}, nil
			}
		}
	}
	if id, isIdent := e.Func.(*ast.Ident); isIdent {
		if _, shadowed := sc.lookup(id.Name); !shadowed {
			if owner, ok := l.Data.OwnerOf(id.Name); ok {
				ctor := ctorNamed(owner, id.Name)
				if ctor != nil && len(ctor.Fields) == len(e.Args) {
					args := make([]core.Expr, len(e.Args))
					for i, a := range e.Args {
						ce, err := l.LowerExpr(sc, a)
						if err != nil {
							return nil, err
						}
						args[i] = ce
					}
					return &core.Con{Name: id.Name, Args: args, Typ: l.typeOf(e)}, nil
				}
			}
		}
	}
	fn, err := l.LowerExpr(sc, e.Func)
	if err != nil {
		return nil, err
	}
	args := make([]core.Expr, len(e.Args))
	for i, a := range e.Args {
		ce, err := l.LowerExpr(sc, a)
		if err != nil {
			return nil, err
		}
		args[i] = ce
	}
	return l.curryApp(fn, args, l.typeOf(e)), nil
}

func ctorNamed(owner *types.DataDef, name string) *types.CtorDef {
	for i := range owner.Ctors {
		if owner.Ctors[i].Name == name {
			return &owner.Ctors[i]
		}
	}
	return nil
}

// curryApp builds the nested single-argument App chain for fn applied to
// args, reconstructing each intermediate function type from the known
// argument types and the overall result type.
func (l *Lowerer) curryApp(fn core.Expr, args []core.Expr, resultT types.Type) core.Expr {
	n := len(args)
	typs := make([]types.Type, n+1)
	typs[n] = resultT
	for i := n - 1; i >= 0; i-- {
		typs[i] = &types.TFunc{From: args[i].Type(), To: typs[i+1]}
	}
	cur := fn
	for i := 0; i < n; i++ {
		cur = &core.App{Func: cur, Arg: args[i], Typ: typs[i+1]}
	}
	return cur
}
