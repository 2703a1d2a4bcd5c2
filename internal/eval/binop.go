package eval

import (
	"math"

	"github.com/mlcore-lang/mlcore/internal/errs"
)

// EvalBinOp and EvalUnOp expose the overloaded operator table to callers
// outside this package (internal/compile pre-resolves a BinOp/UnOp node to
// one of these at compile time instead of re-dispatching on e.Op per call).
func EvalBinOp(op string, l, r Value) (Value, error) { return evalBinOp(op, l, r) }

func EvalUnOp(op string, v Value) (Value, error) { return evalUnOp(op, v) }

func evalBinOp(op string, l, r Value) (Value, error) {
	switch op {
	case "+", "-", "*", "/":
		return arith(op, l, r)
	case "<", "<=", ">", ">=":
		return numCompare(op, l, r)
	case "==":
		return VBool(equalValues(l, r)), nil
	case "<>":
		return VBool(!equalValues(l, r)), nil
	}
	return nil, evalErr(errs.EvalBind, "unknown operator "+op)
}

func evalUnOp(op string, v Value) (Value, error) {
	switch op {
	case "~":
		switch v := v.(type) {
		case VInt:
			return VInt(-v), nil
		case VReal:
			return VReal(-v), nil
		}
	case "not":
		return VBool(!AsBool(v)), nil
	}
	return nil, evalErr(errs.EvalBind, "unknown operator "+op)
}

func arith(op string, l, r Value) (Value, error) {
	if li, ok := l.(VInt); ok {
		ri, ok := r.(VInt)
		if !ok {
			return nil, evalErr(errs.EvalBind, "arithmetic operand type mismatch")
		}
		a, b := int64(li), int64(ri)
		switch op {
		case "+":
			sum := a + b
			if (b > 0 && sum < a) || (b < 0 && sum > a) {
				return nil, evalErr(errs.EvalOverflow, "integer addition overflow")
			}
			return VInt(sum), nil
		case "-":
			diff := a - b
			if (b < 0 && diff < a) || (b > 0 && diff > a) {
				return nil, evalErr(errs.EvalOverflow, "integer subtraction overflow")
			}
			return VInt(diff), nil
		case "*":
			prod := a * b
			if a != 0 && prod/a != b {
				return nil, evalErr(errs.EvalOverflow, "integer multiplication overflow")
			}
			return VInt(prod), nil
		case "/":
			if b == 0 {
				return nil, evalErr(errs.EvalDiv, "division by zero")
			}
			return VInt(a / b), nil
		}
	}
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, evalErr(errs.EvalBind, "arithmetic operand type mismatch")
	}
	switch op {
	case "+":
		return VReal(lf + rf), nil
	case "-":
		return VReal(lf - rf), nil
	case "*":
		return VReal(lf * rf), nil
	case "/":
		if rf == 0 {
			return nil, evalErr(errs.EvalDiv, "division by zero")
		}
		return VReal(lf / rf), nil
	}
	return nil, evalErr(errs.EvalBind, "unknown arithmetic operator "+op)
}

func toFloat(v Value) (float64, bool) {
	switch v := v.(type) {
	case VReal:
		return float64(v), true
	case VInt:
		return float64(v), true
	}
	return 0, false
}

func numCompare(op string, l, r Value) (Value, error) {
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, evalErr(errs.EvalBind, "comparison operand type mismatch")
	}
	switch op {
	case "<":
		return VBool(lf < rf), nil
	case "<=":
		return VBool(lf <= rf), nil
	case ">":
		return VBool(lf > rf), nil
	case ">=":
		return VBool(lf >= rf), nil
	}
	return nil, evalErr(errs.EvalBind, "unknown comparison operator "+op)
}

// equalValues implements structural equality over equality-admitting
// types.
func equalValues(a, b Value) bool {
	switch a := a.(type) {
	case VUnit:
		_, ok := b.(VUnit)
		return ok
	case VInt:
		bi, ok := b.(VInt)
		return ok && a == bi
	case VReal:
		br, ok := b.(VReal)
		return ok && (a == br || (math.IsNaN(float64(a)) && math.IsNaN(float64(br))))
	case VString:
		bs, ok := b.(VString)
		return ok && a == bs
	case VChar:
		bc, ok := b.(VChar)
		return ok && a == bc
	case VBool:
		bb, ok := b.(VBool)
		return ok && a == bb
	case *VTuple:
		bt, ok := b.(*VTuple)
		if !ok || len(a.Elems) != len(bt.Elems) {
			return false
		}
		for i := range a.Elems {
			if !equalValues(a.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case *VRecord:
		br, ok := b.(*VRecord)
		if !ok || len(a.Fields) != len(br.Fields) {
			return false
		}
		for k, v := range a.Fields {
			bv, ok := br.Fields[k]
			if !ok || !equalValues(v, bv) {
				return false
			}
		}
		return true
	case *VCon:
		bc, ok := b.(*VCon)
		if !ok || a.Name != bc.Name || len(a.Args) != len(bc.Args) {
			return false
		}
		for i := range a.Args {
			if !equalValues(a.Args[i], bc.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}
