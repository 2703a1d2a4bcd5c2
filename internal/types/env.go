package types

// Env is the compile-time type environment used by the resolver: a
// persistent, layered map from identifier to scheme.
type Env struct {
	name   string
	scheme *Scheme
	parent *Env
}

// NewEnv creates an empty root environment.
func NewEnv() *Env { return nil }

// Extend returns a new environment with one additional binding, shadowing
// any existing binding of the same name.
func (e *Env) Extend(name string, s *Scheme) *Env {
	return &Env{name: name, scheme: s, parent: e}
}

// Lookup finds the innermost binding for name, if any.
func (e *Env) Lookup(name string) (*Scheme, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.scheme, true
		}
	}
	return nil, false
}

// FreeVars returns the union of free variables across every scheme
// reachable in this environment chain (used by Generalize).
func (e *Env) FreeVars(ts *TypeSystem) map[int]bool {
	seen := map[string]bool{}
	out := map[int]bool{}
	for cur := e; cur != nil; cur = cur.parent {
		if seen[cur.name] {
			continue // innermost binding of this name already counted
		}
		seen[cur.name] = true
		applied := &Scheme{Vars: cur.scheme.Vars, Body: ts.Apply(cur.scheme.Body)}
		for id := range SchemeFreeVars(applied) {
			out[id] = true
		}
	}
	return out
}
