package core

// Path locates a component reachable from a match's scrutinee by following
// a sequence of constructor-argument/tuple/record-field projections.
type Path []PathStep

// PathStep is one projection step: either a positional argument/tuple index
// (Field == "") or a record field label (Field != "").
type PathStep struct {
	Index int
	Field string
}

// DecisionTree is the compiled form of a pattern match: a tree of tag
// tests whose leaves are
// branch bodies or a default `Match` raise.
type DecisionTree interface {
	treeNode()
}

// Switch tests the value reached by following Path from the match's
// scrutinee against each Case in turn, falling through to Default if none
// match (a nil Default is only legal when the match was proven exhaustive).
type Switch struct {
	Path    Path
	Cases   []Case
	Default DecisionTree
}

func (s *Switch) treeNode() {}

// Case is one arm of a Switch: matches either a named constructor tag
// (IsLit == false) or a literal value (IsLit == true). Arity is the
// constructor's field count, used by the compiler to bind sub-paths.
type Case struct {
	Ctor   string
	Lit    interface{}
	IsLit  bool
	Arity  int
	Next   DecisionTree
}

// Leaf is a successful match: Bindings names every pattern variable bound
// along the way (as a path from the scrutinee), and Body is the arm's
// (possibly guard-wrapped) expression.
type Leaf struct {
	Bindings []Bind
	Guard    Expr // optional; if non-nil and false at runtime, falls through to Fallback
	Fallback DecisionTree
	Body     Expr
}

func (l *Leaf) treeNode() {}

// Bind names one pattern variable bound at Path within the scrutinee.
type Bind struct {
	Name string
	Path Path
}

// Fail is the default leaf of a non-exhaustive match: raises the builtin
// `Match` evaluation error.
type Fail struct{}

func (f *Fail) treeNode() {}
