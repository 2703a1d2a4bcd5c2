package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/catalog"
	"github.com/mlcore-lang/mlcore/internal/errs"
	"github.com/mlcore-lang/mlcore/internal/eval"
	"github.com/mlcore-lang/mlcore/internal/types"
)

func run(t *testing.T, src string) []Binding {
	t.Helper()
	s := New(Config{}, nil)
	bs, err := s.Execute("test.ml", src)
	require.NoError(t, err)
	return bs
}

func lastBinding(t *testing.T, src string) Binding {
	t.Helper()
	bs := run(t, src)
	require.NotEmpty(t, bs)
	return bs[len(bs)-1]
}

func TestScenarios(t *testing.T) {
	cases := []struct {
		src, value, typ string
	}{
		{"1;", "1", "int"},
		{"~2;", "-2", "int"},
		{"~10.25;", "-10.25", "real"},
		{"2 + 3;", "5", "int"},
		{"let val x = 1 in x + 2 end;", "3", "int"},
		{"let val x = 1 in let val x = 2 in x * 3 end + x end;", "7", "int"},
		{`"hi";`, "hi", "string"},
		{"if 1 < 2 then 10 else 20;", "10", "int"},
		{"(1, true);", "(1, true)", "(int * bool)"},
		{"[1, 2, 3];", "[1, 2, 3]", "int list"},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			b := lastBinding(t, c.src)
			assert.Equal(t, "it", b.Name)
			assert.Equal(t, c.value, b.Value.String())
			assert.Equal(t, c.typ, b.Type)
		})
	}
}

func TestValBindsAndItChains(t *testing.T) {
	bs := run(t, "val x = 5;\nx;\nit + 1;")
	require.Len(t, bs, 3)
	assert.Equal(t, Binding{Name: "x", Type: "int", Value: eval.VInt(5)}, bs[0])
	assert.Equal(t, Binding{Name: "it", Type: "int", Value: eval.VInt(5)}, bs[1])
	assert.Equal(t, Binding{Name: "it", Type: "int", Value: eval.VInt(6)}, bs[2])
}

func TestDestructuringVal(t *testing.T) {
	bs := run(t, "val (a, b) = (1, true);")
	require.Len(t, bs, 2)
	assert.Equal(t, "a", bs[0].Name)
	assert.Equal(t, eval.VInt(1), bs[0].Value)
	assert.Equal(t, "b", bs[1].Name)
	assert.Equal(t, eval.VBool(true), bs[1].Value)
}

func TestRecursiveFunction(t *testing.T) {
	b := lastBinding(t, "fun rec fact n = if n <= 1 then 1 else n * fact (n - 1);\nfact 5;")
	assert.Equal(t, "120", b.Value.String())
}

func TestDatatypeAndMatch(t *testing.T) {
	src := `type Shape = Circle int | Square int;
case Circle 3 of Circle r => r * r | Square s => s;`
	b := lastBinding(t, src)
	assert.Equal(t, "9", b.Value.String())
}

func TestExceptionRaiseAndHandle(t *testing.T) {
	src := `exception Boom of int;
(raise Boom 7) handle Boom n => n + 1;`
	b := lastBinding(t, src)
	assert.Equal(t, "8", b.Value.String())
}

func TestUncaughtExceptionLeavesSessionUsable(t *testing.T) {
	s := New(Config{}, nil)
	bs, err := s.Execute("test.ml", "exception Boom;\nval x = 1;\nraise Boom;")
	require.Error(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, "x", bs[0].Name)

	// Partial bindings from earlier statements are preserved.
	bs, err = s.Execute("test.ml", "x + 1;")
	require.NoError(t, err)
	require.Len(t, bs, 1)
	assert.Equal(t, eval.VInt(2), bs[0].Value)
}

func TestTypeErrorAborted(t *testing.T) {
	s := New(Config{}, nil)
	_, err := s.Execute("test.ml", "1 + true;")
	require.Error(t, err)
	rep, ok := errs.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errs.PhaseTypecheck, rep.Phase)
}

func TestNonExhaustiveMatchWarnsAndRaises(t *testing.T) {
	s := New(Config{}, nil)
	_, err := s.Execute("test.ml", `type Ans = Yes | No;
case No of Yes => 1;`)
	require.Error(t, err)
	rep, ok := errs.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errs.EvalMatch, rep.Code)

	warned := false
	for _, w := range s.Warnings.Warnings() {
		if w.Code == errs.WarnMatchNonExhaustive {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRedundantMatchRejected(t *testing.T) {
	s := New(Config{}, nil)
	_, err := s.Execute("test.ml", `type Ans = Yes | No;
case No of Yes => 1 | No => 2 | Yes => 3;`)
	require.Error(t, err)
	rep, ok := errs.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, errs.CompileMatchRedundant, rep.Code)
}

func peopleCatalog() catalog.StaticCatalog {
	t := types.NewTypeSystem()
	schema := t.Record(map[string]types.Type{
		"age":  t.PrimInt(),
		"name": t.PrimString(),
	})
	rows := []catalog.Row{
		{"age": eval.VInt(25), "name": eval.VString("alice")},
		{"age": eval.VInt(17), "name": eval.VString("bob")},
		{"age": eval.VInt(31), "name": eval.VString("carol")},
	}
	return catalog.StaticCatalog{"people": {Schema: schema, Rows: catalog.SliceRows(rows)}}
}

func TestQueryOverCatalog(t *testing.T) {
	for _, hybrid := range []bool{false, true} {
		s := New(Config{Hybrid: hybrid}, peopleCatalog())
		bs, err := s.Execute("test.ml", "from p in people where p.age > 18 yield p.name;")
		require.NoError(t, err)
		require.Len(t, bs, 1)
		assert.Equal(t, "[alice, carol]", bs[0].Value.String(), "hybrid=%v", hybrid)
		assert.Equal(t, "string list", bs[0].Type)
	}
}

func TestHybridAndTreeWalkAgree(t *testing.T) {
	src := "from p in people where p.age > 20 yield (p.name, p.age);"
	plain := New(Config{}, peopleCatalog())
	hybrid := New(Config{Hybrid: true}, peopleCatalog())

	pb, err := plain.Execute("test.ml", src)
	require.NoError(t, err)
	hb, err := hybrid.Execute("test.ml", src)
	require.NoError(t, err)
	assert.Equal(t, pb[0].Value.String(), hb[0].Value.String())
}

// TestDeterminism pins spec invariant 8: a pure program evaluates to equal
// values on repeated runs.
func TestDeterminism(t *testing.T) {
	src := "let val xs = [3, 1, 2] in from x in xs where x > 1 yield x * 10 end;"
	first := lastBinding(t, src).Value.String()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, lastBinding(t, src).Value.String())
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := New(Config{}, nil)
	b := New(Config{}, nil)
	assert.NotEqual(t, a.ID, b.ID)

	_, err := a.Execute("test.ml", "val x = 1;")
	require.NoError(t, err)
	_, err = b.Execute("test.ml", "x;")
	require.Error(t, err, "bindings must not leak across sessions")
}
