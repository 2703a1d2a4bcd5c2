package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlcore-lang/mlcore/internal/eval"
	"github.com/mlcore-lang/mlcore/internal/types"
)

func TestStaticCatalogDatasets(t *testing.T) {
	ts := types.NewTypeSystem()
	rows := []Row{
		{"id": eval.VInt(1)},
		{"id": eval.VInt(2)},
	}
	c := StaticCatalog{"items": {
		Schema: ts.Record(map[string]types.Type{"id": ts.PrimInt()}),
		Rows:   SliceRows(rows),
	}}

	ds, ok := c.Datasets()["items"]
	require.True(t, ok)
	assert.Equal(t, "{id: int}", ds.Schema.Moniker())

	// Each call to Rows yields a fresh scan.
	for i := 0; i < 2; i++ {
		it := ds.Rows()
		var got []Row
		for {
			r, ok := it.Next()
			if !ok {
				break
			}
			got = append(got, r)
		}
		require.Len(t, got, 2)
		assert.Equal(t, eval.VInt(1), got[0]["id"])
		assert.Equal(t, eval.VInt(2), got[1]["id"])
	}
}

func TestFromYAML(t *testing.T) {
	doc := `people:
  - {age: 25, name: alice}
  - {age: 17, name: bob}
`
	cat, err := FromYAML(strings.NewReader(doc))
	require.NoError(t, err)
	ds, ok := cat["people"]
	require.True(t, ok)
	assert.Equal(t, "{age: int, name: string}", ds.Schema.Moniker())

	it := ds.Rows()
	first, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, eval.VInt(25), first["age"])
	assert.Equal(t, eval.VString("alice"), first["name"])
}

func TestFromYAMLRejectsRaggedRows(t *testing.T) {
	_, err := FromYAML(strings.NewReader("xs:\n  - {a: 1}\n  - {a: 1, b: 2}\n"))
	require.Error(t, err)
}

func TestFromYAMLRejectsMixedFieldTypes(t *testing.T) {
	_, err := FromYAML(strings.NewReader("xs:\n  - {a: 1}\n  - {a: yes}\n"))
	require.Error(t, err)
}

func TestFromYAMLEmptyDocument(t *testing.T) {
	cat, err := FromYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, cat)
}
