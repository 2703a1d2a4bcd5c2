// Package session owns the per-evaluation context: the
// TypeSystem instance, the running type and value environments, the warnings
// sink, the configuration properties, and the in-flight evaluation flag. A
// Session drives one statement at a time through the full pipeline
// (resolve -> lower -> analyze/inline/relationalize -> compile -> evaluate)
// and accumulates the bindings each statement produces. Multiple sessions
// may coexist in one process; they share nothing mutable.
package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mlcore-lang/mlcore/internal/analyze"
	"github.com/mlcore-lang/mlcore/internal/ast"
	"github.com/mlcore-lang/mlcore/internal/catalog"
	"github.com/mlcore-lang/mlcore/internal/compile"
	"github.com/mlcore-lang/mlcore/internal/core"
	"github.com/mlcore-lang/mlcore/internal/errs"
	"github.com/mlcore-lang/mlcore/internal/eval"
	"github.com/mlcore-lang/mlcore/internal/inline"
	"github.com/mlcore-lang/mlcore/internal/lower"
	"github.com/mlcore-lang/mlcore/internal/parser"
	"github.com/mlcore-lang/mlcore/internal/relational"
	"github.com/mlcore-lang/mlcore/internal/resolve"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// Binding is one accumulated result of executing a statement: a
// (name, type, value) triple.
type Binding struct {
	Name  string
	Type  string
	Value eval.Value
}

// Session is the per-evaluation context. Zero statements have run on a
// fresh Session; every successful statement folds its bindings into TypeEnv
// and RunEnv, and a failed statement leaves both untouched.
type Session struct {
	ID       uuid.UUID
	Config   Config
	TS       *types.TypeSystem
	Data     *types.DataRegistry
	Resolver *resolve.Resolver
	Warnings *errs.Sink

	TypeEnv *types.Env
	RunEnv  *eval.Environment
	Ev      *eval.Evaluator

	scope    *lower.Scope
	inliner  *inline.Inliner
	inFlight bool
}

// New creates a Session with the given configuration and optional external
// catalog. Catalog datasets are bound immediately: the schema into the type
// environment, the (materialised) rows into the value environment.
func New(cfg Config, cat catalog.ExternalCatalog) *Session {
	ts := types.NewTypeSystem()
	dreg := types.NewDataRegistry()
	ev := eval.New()
	s := &Session{
		ID:       uuid.New(),
		Config:   cfg,
		TS:       ts,
		Data:     dreg,
		Resolver: resolve.New(ts, dreg),
		Warnings: &errs.Sink{},
		TypeEnv:  types.NewEnv(),
		RunEnv:   eval.GlobalEnv(ev, dreg),
		Ev:       ev,
		inliner:  inline.New(),
	}
	if cat != nil {
		for name, ds := range cat.Datasets() {
			s.TypeEnv = s.TypeEnv.Extend(name, types.Mono(ts.List(ds.Schema)))
			s.RunEnv = s.RunEnv.Extend(name, materialize(ds))
		}
	}
	return s
}

// SetRelBuilder installs an external relational backend; nil
// restores the evaluator's built-in row-list operators.
func (s *Session) SetRelBuilder(b relational.Builder) { s.Ev.Rel = b }

func materialize(ds catalog.Dataset) eval.Value {
	var rows []eval.Value
	it := ds.Rows()
	for {
		row, ok := it.Next()
		if !ok {
			break
		}
		fields := make(map[string]eval.Value, len(row))
		for k, v := range row {
			fields[k] = v
		}
		rows = append(rows, &eval.VRecord{Fields: fields})
	}
	return eval.FromSlice(rows)
}

// Execute parses src as a `;`-terminated statement sequence and runs each
// statement in order, returning every binding produced. On a statement
// failure the bindings of the preceding statements are still returned along
// with the error, and the session stays usable.
func (s *Session) Execute(file, src string) ([]Binding, error) {
	if s.inFlight {
		return nil, fmt.Errorf("session %s: evaluation already in flight", s.ID)
	}
	s.inFlight = true
	defer func() { s.inFlight = false }()
	s.Warnings.Reset()

	f, err := parser.ParseFile(file, []byte(src))
	if err != nil {
		return nil, err
	}
	var out []Binding
	for _, stmt := range f.Stmts {
		bs, err := s.executeStmt(file, stmt)
		out = append(out, bs...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

func (s *Session) executeStmt(file string, stmt ast.Node) ([]Binding, error) {
	one := &ast.File{Path: file, Stmts: []ast.Node{stmt}}
	resolved, typeEnv, err := s.Resolver.ResolveFile(s.TypeEnv, one)
	if err != nil {
		return nil, err
	}

	lw := lower.New(s.TS, s.Data, resolved[0].TypeMap, s.Warnings)
	stmts, nsc, err := lw.LowerFile(s.scope, one)
	if err != nil {
		return nil, err
	}
	st := stmts[0]

	// Pure declarations bind constructors, not computed values.
	switch d := stmt.(type) {
	case *ast.TypeDecl:
		s.commit(typeEnv, nsc)
		for _, c := range d.Ctors {
			s.RunEnv = s.RunEnv.Extend(c.Name, eval.CtorBuiltin(c.Name, len(c.Args)))
		}
		return nil, nil
	case *ast.ExceptionDecl:
		s.commit(typeEnv, nsc)
		arity := 0
		if d.Arg != nil {
			arity = 1
		}
		s.RunEnv = s.RunEnv.Extend(d.Name, eval.CtorBuiltin(d.Name, arity))
		return nil, nil
	}

	expr := s.optimize(st.Expr)
	code := compile.New(s.Ev).Compile(expr)
	v, err := code.Run(s.RunEnv)
	if err != nil {
		return nil, err
	}
	s.commit(typeEnv, nsc)

	if !st.Decl {
		// A bare expression binds `it`.
		t := s.TS.Apply(resolved[0].TypeMap[stmt])
		s.TypeEnv = s.TypeEnv.Extend("it", types.Mono(t))
		s.RunEnv = s.RunEnv.Extend("it", v)
		return []Binding{{Name: "it", Type: t.Moniker(), Value: v}}, nil
	}

	values := declValues(st.Names, v)
	bindings := make([]Binding, 0, len(st.Names))
	for i, name := range st.Names {
		s.RunEnv = s.RunEnv.Extend(name, values[i])
		bindings = append(bindings, Binding{Name: name, Type: s.typeOfName(name), Value: values[i]})
	}
	return bindings, nil
}

func (s *Session) commit(typeEnv *types.Env, sc *lower.Scope) {
	s.TypeEnv = typeEnv
	s.scope = sc
}

// declValues splits a declaration statement's computed value back into one
// value per bound name: a destructuring val evaluates to a tuple of its
// names in pattern order (internal/lower's destructureLeaf).
func declValues(names []string, v eval.Value) []eval.Value {
	if len(names) == 1 {
		return []eval.Value{v}
	}
	if t, ok := v.(*eval.VTuple); ok && len(t.Elems) == len(names) {
		return t.Elems
	}
	out := make([]eval.Value, len(names))
	for i := range out {
		out[i] = v
	}
	return out
}

func (s *Session) typeOfName(name string) string {
	if scheme, ok := s.TypeEnv.Lookup(name); ok {
		return s.TS.Apply(scheme.Body).Moniker()
	}
	return "unit"
}

// optimize runs the inliner to a bounded fixed point, interleaved with the
// relationalizer when HYBRID is on, and emits an
// UnusedBinding warning per dead user-written binding before the inliner
// drops it.
func (s *Session) optimize(e core.Expr) core.Expr {
	for _, name := range analyze.Analyze(e).Dead() {
		if synthetic(name) {
			continue
		}
		s.Warnings.Emit(errs.New(errs.PhaseAnalyze, errs.WarnUnusedBinding, "unused binding "+name, nil))
	}
	for i := 0; i < inline.MaxPasses; i++ {
		next := s.inliner.Pass(e)
		if s.Config.Hybrid {
			next = relational.Rewrite(next)
		}
		if core.Equal(next, e) {
			return next
		}
		e = next
	}
	return e
}

// synthetic reports whether a Core name was invented by the lowering pass
// (its fresh names carry a `~` separator no surface identifier can).
func synthetic(name string) bool {
	for _, r := range name {
		if r == '~' {
			return true
		}
	}
	return false
}
