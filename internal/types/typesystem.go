package types

// TypeSystem is the session-scoped owner of the type-variable arena and
// the interning table.
// It is passed explicitly rather than held as global state.
type TypeSystem struct {
	nextVarID int
	intern    map[string]Type
	Unifier   *Unifier
}

// NewTypeSystem creates a fresh, empty TypeSystem.
func NewTypeSystem() *TypeSystem {
	ts := &TypeSystem{intern: map[string]Type{}}
	ts.Unifier = NewUnifier(ts)
	return ts
}

// FreshVar allocates a new type variable with a fresh identity. eq marks it
// as equality-admitting.
func (ts *TypeSystem) FreshVar(eq bool) *TVar {
	ts.nextVarID++
	return &TVar{ID: ts.nextVarID, Eq: eq}
}

// FreshNumVar allocates a fresh numeric-constrained variable.
func (ts *TypeSystem) FreshNumVar() *TVar {
	ts.nextVarID++
	return &TVar{ID: ts.nextVarID, Num: true}
}

// Intern returns the canonical instance for a type, so that reference
// equality implies structural equality for any two interned composites with
// the same moniker.
func (ts *TypeSystem) Intern(t Type) Type {
	m := t.Moniker()
	if existing, ok := ts.intern[m]; ok {
		return existing
	}
	ts.intern[m] = t
	return t
}

// Built-in primitive constructors (interned).
func (ts *TypeSystem) PrimInt() Type    { return ts.Intern(&TPrim{Name: Int}) }
func (ts *TypeSystem) PrimReal() Type   { return ts.Intern(&TPrim{Name: Real}) }
func (ts *TypeSystem) PrimString() Type { return ts.Intern(&TPrim{Name: String}) }
func (ts *TypeSystem) PrimChar() Type   { return ts.Intern(&TPrim{Name: Char}) }
func (ts *TypeSystem) PrimBool() Type   { return ts.Intern(&TPrim{Name: Bool}) }
func (ts *TypeSystem) PrimUnit() Type   { return ts.Intern(&TPrim{Name: Unit}) }

// Func interns a function type.
func (ts *TypeSystem) Func(from, to Type) Type { return ts.Intern(&TFunc{From: from, To: to}) }

// Tuple interns a tuple type (n >= 2).
func (ts *TypeSystem) Tuple(elems ...Type) Type { return ts.Intern(&TTuple{Elems: elems}) }

// Record interns a record type.
func (ts *TypeSystem) Record(fields map[string]Type) Type { return ts.Intern(&TRecord{Fields: fields}) }

// List interns a list type.
func (ts *TypeSystem) List(elem Type) Type { return ts.Intern(&TList{Elem: elem}) }

// Data interns an algebraic data type instance.
func (ts *TypeSystem) Data(name string, args ...Type) Type { return ts.Intern(&TData{Name: name, Args: args}) }

// Apply substitutes variables in t per the unifier's current bindings.
func (ts *TypeSystem) Apply(t Type) Type { return ts.Unifier.Apply(t) }

// substMap maps a quantified-variable ID to its instantiation.
type substMap map[int]Type

// substitute replaces quantified variables per sub, leaving free variables
// (and all composite structure) otherwise intact. Used by Instantiate.
func substitute(t Type, sub substMap) Type {
	switch t := t.(type) {
	case *TVar:
		if r, ok := sub[t.ID]; ok {
			return r
		}
		return t
	case *TFunc:
		return &TFunc{From: substitute(t.From, sub), To: substitute(t.To, sub)}
	case *TTuple:
		elems := make([]Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = substitute(e, sub)
		}
		return &TTuple{Elems: elems}
	case *TRecord:
		fields := make(map[string]Type, len(t.Fields))
		for k, v := range t.Fields {
			fields[k] = substitute(v, sub)
		}
		return &TRecord{Fields: fields}
	case *TList:
		return &TList{Elem: substitute(t.Elem, sub)}
	case *TData:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = substitute(a, sub)
		}
		return &TData{Name: t.Name, Args: args}
	default:
		return t
	}
}

// Instantiate replaces each variable quantified by s with a fresh variable,
// preserving each variable's equality flag.
func (ts *TypeSystem) Instantiate(s *Scheme) Type {
	if len(s.Vars) == 0 {
		return s.Body
	}
	sub := substMap{}
	seedFlags := varFlagsOf(s.Body)
	for _, v := range s.Vars {
		flags := seedFlags[v]
		sub[v] = &TVar{ID: ts.allocID(), Eq: flags.eq, Num: flags.num}
	}
	return substitute(s.Body, sub)
}

func (ts *TypeSystem) allocID() int {
	ts.nextVarID++
	return ts.nextVarID
}

type varFlags struct{ eq, num bool }

// varFlagsOf walks t and records, for every TVar id found, its eq/num
// flags — used so Instantiate can seed fresh variables with the same
// flags as the scheme's bound variable.
func varFlagsOf(t Type) map[int]varFlags {
	out := map[int]varFlags{}
	var walk func(Type)
	walk = func(t Type) {
		switch t := t.(type) {
		case *TVar:
			out[t.ID] = varFlags{eq: t.Eq, num: t.Num}
		case *TFunc:
			walk(t.From)
			walk(t.To)
		case *TTuple:
			for _, e := range t.Elems {
				walk(e)
			}
		case *TRecord:
			for _, v := range t.Fields {
				walk(v)
			}
		case *TList:
			walk(t.Elem)
		case *TData:
			for _, a := range t.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

// Generalize quantifies exactly the free variables of t that are not free in
// any type bound in env.
func (ts *TypeSystem) Generalize(env *Env, t Type) *Scheme {
	t = ts.Apply(t)
	tFree := FreeVars(t)
	envFree := env.FreeVars(ts)
	var vars []int
	for id := range tFree {
		if !envFree[id] {
			vars = append(vars, id)
		}
	}
	return &Scheme{Vars: vars, Body: t}
}
