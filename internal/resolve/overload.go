package resolve

import "github.com/mlcore-lang/mlcore/internal/types"

// OverloadTable is the small table of builtin polymorphic identifiers the
// resolver consults for operators: each entry is a scheme-building function
// invoked fresh per use site, so every occurrence gets its own constrained
// variables. Only the two builtin constraints (Num, Eq) exist; there are no
// user-declared classes.
type OverloadTable struct {
	entries map[string]func(ts *types.TypeSystem) types.Type
}

// NewOverloadTable builds the standard operator table.
func NewOverloadTable() *OverloadTable {
	t := &OverloadTable{entries: map[string]func(ts *types.TypeSystem) types.Type{}}

	arith := func(ts *types.TypeSystem) types.Type {
		a := ts.FreshNumVar()
		return ts.Func(ts.Func(a, a), a)
	}
	for _, op := range []string{"+", "-", "*", "/"} {
		t.entries[op] = arith
	}

	numCompare := func(ts *types.TypeSystem) types.Type {
		a := ts.FreshNumVar()
		return ts.Func(ts.Func(a, a), ts.PrimBool())
	}
	for _, op := range []string{"<", "<=", ">", ">="} {
		t.entries[op] = numCompare
	}

	eqCompare := func(ts *types.TypeSystem) types.Type {
		a := ts.FreshVar(true)
		return ts.Func(ts.Func(a, a), ts.PrimBool())
	}
	t.entries["=="] = eqCompare
	t.entries["<>"] = eqCompare

	t.entries["&&"] = func(ts *types.TypeSystem) types.Type {
		return ts.Func(ts.Func(ts.PrimBool(), ts.PrimBool()), ts.PrimBool())
	}
	t.entries["||"] = t.entries["&&"]

	t.entries["not"] = func(ts *types.TypeSystem) types.Type {
		return ts.Func(ts.PrimBool(), ts.PrimBool())
	}
	t.entries["~"] = func(ts *types.TypeSystem) types.Type {
		a := ts.FreshNumVar()
		return ts.Func(a, a)
	}
	return t
}

// Lookup returns a freshly instantiated type for a builtin overloaded
// identifier, if name names one.
func (t *OverloadTable) Lookup(ts *types.TypeSystem, name string) (types.Type, bool) {
	f, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	return f(ts), true
}
