package core

// Equal reports structural equality of two Core expressions, ignoring the
// attached types (two passes over the same tree never disagree on a node's
// type, only on its shape). internal/inline and internal/session use
// it for fixed-point detection, and the test suite for the inliner's
// idempotence invariant.
func Equal(a, b Expr) bool {
	switch a := a.(type) {
	case *Var:
		bb, ok := b.(*Var)
		return ok && a.Name == bb.Name
	case *Lit:
		bb, ok := b.(*Lit)
		return ok && a.Kind == bb.Kind && a.Val == bb.Val
	case *Lambda:
		bb, ok := b.(*Lambda)
		return ok && a.Param == bb.Param && Equal(a.Body, bb.Body)
	case *App:
		bb, ok := b.(*App)
		return ok && Equal(a.Func, bb.Func) && Equal(a.Arg, bb.Arg)
	case *Let:
		bb, ok := b.(*Let)
		return ok && a.Name == bb.Name && Equal(a.Value, bb.Value) && Equal(a.Body, bb.Body)
	case *LetRec:
		bb, ok := b.(*LetRec)
		return ok && a.Name == bb.Name && Equal(a.Value, bb.Value) && Equal(a.Body, bb.Body)
	case *If:
		bb, ok := b.(*If)
		return ok && Equal(a.Cond, bb.Cond) && Equal(a.Then, bb.Then) && Equal(a.Else, bb.Else)
	case *Match:
		bb, ok := b.(*Match)
		return ok && Equal(a.Scrut, bb.Scrut) && treeEqual(a.Tree, bb.Tree)
	case *Tuple:
		bb, ok := b.(*Tuple)
		return ok && exprsEqual(a.Elems, bb.Elems)
	case *Record:
		bb, ok := b.(*Record)
		if !ok || len(a.Labels) != len(bb.Labels) {
			return false
		}
		for i, l := range a.Labels {
			if l != bb.Labels[i] || !Equal(a.Fields[l], bb.Fields[l]) {
				return false
			}
		}
		return true
	case *RecordAccess:
		bb, ok := b.(*RecordAccess)
		return ok && a.Field == bb.Field && Equal(a.Rec, bb.Rec)
	case *ListLit:
		bb, ok := b.(*ListLit)
		return ok && exprsEqual(a.Elems, bb.Elems)
	case *BinOp:
		bb, ok := b.(*BinOp)
		return ok && a.Op == bb.Op && Equal(a.Left, bb.Left) && Equal(a.Right, bb.Right)
	case *UnOp:
		bb, ok := b.(*UnOp)
		return ok && a.Op == bb.Op && Equal(a.Operand, bb.Operand)
	case *Con:
		bb, ok := b.(*Con)
		return ok && a.Name == bb.Name && exprsEqual(a.Args, bb.Args)
	case *Raise:
		bb, ok := b.(*Raise)
		if !ok || a.Ctor != bb.Ctor {
			return false
		}
		if a.Payload == nil || bb.Payload == nil {
			return a.Payload == nil && bb.Payload == nil
		}
		return Equal(a.Payload, bb.Payload)
	case *Handle:
		bb, ok := b.(*Handle)
		return ok && Equal(a.Body, bb.Body) && treeEqual(a.Tree, bb.Tree)
	case *RelScan:
		bb, ok := b.(*RelScan)
		return ok && Equal(a.Source, bb.Source)
	case *RelFilter:
		bb, ok := b.(*RelFilter)
		return ok && Equal(a.Source, bb.Source) && Equal(a.Pred, bb.Pred)
	case *RelProject:
		bb, ok := b.(*RelProject)
		return ok && Equal(a.Source, bb.Source) && Equal(a.Proj, bb.Proj)
	case *RelJoin:
		bb, ok := b.(*RelJoin)
		return ok && Equal(a.Left, bb.Left) && Equal(a.Right, bb.Right) && Equal(a.Pred, bb.Pred)
	case *RelGroupBy:
		bb, ok := b.(*RelGroupBy)
		return ok && Equal(a.Source, bb.Source) && Equal(a.KeyFn, bb.KeyFn)
	case *RelUnion:
		bb, ok := b.(*RelUnion)
		return ok && Equal(a.Left, bb.Left) && Equal(a.Right, bb.Right)
	case *RelAggregate:
		bb, ok := b.(*RelAggregate)
		return ok && Equal(a.Source, bb.Source) && Equal(a.AggFn, bb.AggFn)
	}
	return false
}

func exprsEqual(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func treeEqual(a, b DecisionTree) bool {
	switch a := a.(type) {
	case *Fail:
		_, ok := b.(*Fail)
		return ok
	case *Leaf:
		bb, ok := b.(*Leaf)
		if !ok || len(a.Bindings) != len(bb.Bindings) {
			return false
		}
		for i, bind := range a.Bindings {
			if bind.Name != bb.Bindings[i].Name || !pathEqual(bind.Path, bb.Bindings[i].Path) {
				return false
			}
		}
		if (a.Guard == nil) != (bb.Guard == nil) || (a.Fallback == nil) != (bb.Fallback == nil) {
			return false
		}
		if a.Guard != nil && !Equal(a.Guard, bb.Guard) {
			return false
		}
		if a.Fallback != nil && !treeEqual(a.Fallback, bb.Fallback) {
			return false
		}
		return Equal(a.Body, bb.Body)
	case *Switch:
		bb, ok := b.(*Switch)
		if !ok || !pathEqual(a.Path, bb.Path) || len(a.Cases) != len(bb.Cases) {
			return false
		}
		for i, c := range a.Cases {
			d := bb.Cases[i]
			if c.Ctor != d.Ctor || c.IsLit != d.IsLit || c.Lit != d.Lit || c.Arity != d.Arity || !treeEqual(c.Next, d.Next) {
				return false
			}
		}
		if (a.Default == nil) != (bb.Default == nil) {
			return false
		}
		return a.Default == nil || treeEqual(a.Default, bb.Default)
	}
	return false
}

func pathEqual(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
