package core

// Children returns e's immediate Core sub-expressions in evaluation order,
// replacing a class-hierarchy visitor with a single pattern-matching
// function.
func Children(e Expr) []Expr {
	switch e := e.(type) {
	case *Var, *Lit:
		return nil
	case *Lambda:
		return []Expr{e.Body}
	case *App:
		return []Expr{e.Func, e.Arg}
	case *Let:
		return []Expr{e.Value, e.Body}
	case *LetRec:
		return []Expr{e.Value, e.Body}
	case *If:
		return []Expr{e.Cond, e.Then, e.Else}
	case *Match:
		out := []Expr{e.Scrut}
		return append(out, treeExprs(e.Tree)...)
	case *Tuple:
		return e.Elems
	case *Record:
		out := make([]Expr, 0, len(e.Labels))
		for _, l := range e.Labels {
			out = append(out, e.Fields[l])
		}
		return out
	case *RecordAccess:
		return []Expr{e.Rec}
	case *ListLit:
		return e.Elems
	case *BinOp:
		return []Expr{e.Left, e.Right}
	case *UnOp:
		return []Expr{e.Operand}
	case *Con:
		return e.Args
	case *Raise:
		if e.Payload == nil {
			return nil
		}
		return []Expr{e.Payload}
	case *Handle:
		out := []Expr{e.Body}
		return append(out, treeExprs(e.Tree)...)
	case *RelScan:
		return []Expr{e.Source}
	case *RelFilter:
		return []Expr{e.Source, e.Pred}
	case *RelProject:
		return []Expr{e.Source, e.Proj}
	case *RelJoin:
		return []Expr{e.Left, e.Right, e.Pred}
	case *RelGroupBy:
		return []Expr{e.Source, e.KeyFn}
	case *RelUnion:
		return []Expr{e.Left, e.Right}
	case *RelAggregate:
		return []Expr{e.Source, e.AggFn}
	}
	return nil
}

func treeExprs(t DecisionTree) []Expr {
	switch t := t.(type) {
	case *Leaf:
		out := []Expr{t.Body}
		if t.Guard != nil {
			out = append(out, t.Guard)
		}
		if t.Fallback != nil {
			out = append(out, treeExprs(t.Fallback)...)
		}
		return out
	case *Switch:
		var out []Expr
		for _, c := range t.Cases {
			out = append(out, treeExprs(c.Next)...)
		}
		if t.Default != nil {
			out = append(out, treeExprs(t.Default)...)
		}
		return out
	}
	return nil
}

// MapChildren rebuilds e with each immediate child replaced by f(child),
// preserving e's own shape and type. It is the structural half of the Fold
// pattern: callers combine it with their own per-variant hook.
func MapChildren(e Expr, f func(Expr) Expr) Expr {
	switch e := e.(type) {
	case *Var, *Lit:
		return e
	case *Lambda:
		return &Lambda{Param: e.Param, ParamType: e.ParamType, Body: f(e.Body), Typ: e.Typ}
	case *App:
		return &App{Func: f(e.Func), Arg: f(e.Arg), Typ: e.Typ}
	case *Let:
		return &Let{Name: e.Name, Value: f(e.Value), Body: f(e.Body), Typ: e.Typ}
	case *LetRec:
		return &LetRec{Name: e.Name, Value: f(e.Value), Body: f(e.Body), Typ: e.Typ}
	case *If:
		return &If{Cond: f(e.Cond), Then: f(e.Then), Else: f(e.Else), Typ: e.Typ}
	case *Match:
		return &Match{Scrut: f(e.Scrut), Tree: mapTree(e.Tree, f), Typ: e.Typ}
	case *Tuple:
		elems := make([]Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = f(el)
		}
		return &Tuple{Elems: elems, Typ: e.Typ}
	case *Record:
		fields := make(map[string]Expr, len(e.Fields))
		for k, v := range e.Fields {
			fields[k] = f(v)
		}
		return &Record{Labels: e.Labels, Fields: fields, Typ: e.Typ}
	case *RecordAccess:
		return &RecordAccess{Rec: f(e.Rec), Field: e.Field, Typ: e.Typ}
	case *ListLit:
		elems := make([]Expr, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = f(el)
		}
		return &ListLit{Elems: elems, Typ: e.Typ}
	case *BinOp:
		return &BinOp{Op: e.Op, Left: f(e.Left), Right: f(e.Right), Typ: e.Typ}
	case *UnOp:
		return &UnOp{Op: e.Op, Operand: f(e.Operand), Typ: e.Typ}
	case *Con:
		args := make([]Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = f(a)
		}
		return &Con{Name: e.Name, Args: args, Typ: e.Typ}
	case *Raise:
		var p Expr
		if e.Payload != nil {
			p = f(e.Payload)
		}
		return &Raise{Ctor: e.Ctor, Payload: p, Typ: e.Typ}
	case *Handle:
		return &Handle{Body: f(e.Body), Tree: mapTree(e.Tree, f), Typ: e.Typ}
	case *RelScan:
		return &RelScan{Source: f(e.Source), RowT: e.RowT}
	case *RelFilter:
		return &RelFilter{Source: f(e.Source), Pred: f(e.Pred), RowT: e.RowT}
	case *RelProject:
		return &RelProject{Source: f(e.Source), Proj: f(e.Proj), RowT: e.RowT}
	case *RelJoin:
		return &RelJoin{Left: f(e.Left), Right: f(e.Right), Pred: f(e.Pred), RowT: e.RowT}
	case *RelGroupBy:
		return &RelGroupBy{Source: f(e.Source), KeyFn: f(e.KeyFn), RowT: e.RowT}
	case *RelUnion:
		return &RelUnion{Left: f(e.Left), Right: f(e.Right), RowT: e.RowT}
	case *RelAggregate:
		return &RelAggregate{Source: f(e.Source), AggFn: f(e.AggFn), RowT: e.RowT}
	}
	return e
}

func mapTree(t DecisionTree, f func(Expr) Expr) DecisionTree {
	switch t := t.(type) {
	case *Leaf:
		var guard Expr
		if t.Guard != nil {
			guard = f(t.Guard)
		}
		var fallback DecisionTree
		if t.Fallback != nil {
			fallback = mapTree(t.Fallback, f)
		}
		return &Leaf{Bindings: t.Bindings, Guard: guard, Fallback: fallback, Body: f(t.Body)}
	case *Switch:
		cases := make([]Case, len(t.Cases))
		for i, c := range t.Cases {
			cases[i] = Case{Ctor: c.Ctor, Lit: c.Lit, IsLit: c.IsLit, Arity: c.Arity, Next: mapTree(c.Next, f)}
		}
		var def DecisionTree
		if t.Default != nil {
			def = mapTree(t.Default, f)
		}
		return &Switch{Path: t.Path, Cases: cases, Default: def}
	case *Fail:
		return t
	}
	return t
}

// Fold walks e bottom-up: every child is folded first via this same
// function, then combine is called with e and its immediate children
// (Children(e), unchanged). Fold builds no new tree and returns nothing;
// callers needing an accumulated result close over their own state.
func Fold(e Expr, combine func(Expr, []Expr)) {
	children := Children(e)
	for _, c := range children {
		Fold(c, combine)
	}
	combine(e, children)
}
