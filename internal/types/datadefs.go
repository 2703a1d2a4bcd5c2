package types

// CtorDef describes one constructor of a declared algebraic data type or
// exception: its name, field types (in terms of the owning DataDef's type
// parameters), and owning type name.
type CtorDef struct {
	Name     string
	Fields   []Type
	DataName string
}

// DataDef is a user- or builtin-declared data type: a name, its type
// parameters, and its constructors in declaration order. Exceptions are
// modelled as constructors
// of the single builtin DataDef named "exn".
type DataDef struct {
	Name    string
	Params  []int // fresh TVar ids standing for the type's parameters
	Ctors   []CtorDef
}

// DataRegistry holds every DataDef known to a Session, keyed by name, plus
// a constructor-name -> owning-type index for quick pattern-compiler
// lookups.
type DataRegistry struct {
	defs      map[string]*DataDef
	ctorOwner map[string]*DataDef
}

// NewDataRegistry creates a registry pre-seeded with the builtin exn data
// type (bool is a primitive type, not a DataDef).
func NewDataRegistry() *DataRegistry {
	r := &DataRegistry{defs: map[string]*DataDef{}, ctorOwner: map[string]*DataDef{}}
	r.Register(&DataDef{Name: "exn", Ctors: nil})
	return r
}

// Register adds a DataDef (and indexes its constructors).
func (r *DataRegistry) Register(d *DataDef) {
	r.defs[d.Name] = d
	for _, c := range d.Ctors {
		r.ctorOwner[c.Name] = d
	}
}

// Lookup returns the DataDef by type name.
func (r *DataRegistry) Lookup(name string) (*DataDef, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// OwnerOf returns the DataDef owning a constructor name.
func (r *DataRegistry) OwnerOf(ctor string) (*DataDef, bool) {
	d, ok := r.ctorOwner[ctor]
	return d, ok
}

// All returns every registered DataDef in no particular order, used by the
// evaluator to seed one constructor binding per declared data/exception
// constructor into the global environment.
func (r *DataRegistry) All() []*DataDef {
	out := make([]*DataDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// AddException registers a new constructor of "exn", optionally carrying a
// payload type.
func (r *DataRegistry) AddException(name string, payload Type) {
	exn := r.defs["exn"]
	var fields []Type
	if payload != nil {
		fields = []Type{payload}
	}
	exn.Ctors = append(exn.Ctors, CtorDef{Name: name, Fields: fields, DataName: "exn"})
	r.ctorOwner[name] = exn
}
