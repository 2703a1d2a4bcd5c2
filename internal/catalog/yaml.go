package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mlcore-lang/mlcore/internal/eval"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// FromYAML builds a StaticCatalog from a YAML document of named datasets,
// the format behind the CLI's -fixtures flag:
//
//	people:
//	  - {age: 25, name: alice}
//	  - {age: 17, name: bob}
//
// Row schemas are inferred from the scalar shapes; every row of a dataset
// must carry the same fields at the same types.
func FromYAML(r io.Reader) (StaticCatalog, error) {
	var doc map[string][]map[string]any
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return StaticCatalog{}, nil
		}
		return nil, fmt.Errorf("catalog: %w", err)
	}

	ts := types.NewTypeSystem()
	out := StaticCatalog{}
	for name, rawRows := range doc {
		if len(rawRows) == 0 {
			return nil, fmt.Errorf("catalog: dataset %s has no rows to infer a schema from", name)
		}
		fields := map[string]types.Type{}
		rows := make([]Row, len(rawRows))
		for i, raw := range rawRows {
			if i > 0 && len(raw) != len(fields) {
				return nil, fmt.Errorf("catalog: dataset %s row %d does not match the first row's fields", name, i)
			}
			row := Row{}
			for k, v := range raw {
				val, t, err := scalar(ts, v)
				if err != nil {
					return nil, fmt.Errorf("catalog: dataset %s row %d field %s: %w", name, i, k, err)
				}
				prev, seen := fields[k]
				if i > 0 && !seen {
					return nil, fmt.Errorf("catalog: dataset %s row %d introduces new field %s", name, i, k)
				}
				if seen && prev.Moniker() != t.Moniker() {
					return nil, fmt.Errorf("catalog: dataset %s field %s is both %s and %s", name, k, prev.Moniker(), t.Moniker())
				}
				fields[k] = t
				row[k] = val
			}
			rows[i] = row
		}
		out[name] = Dataset{Schema: ts.Record(fields), Rows: SliceRows(rows)}
	}
	return out, nil
}

func scalar(ts *types.TypeSystem, v any) (eval.Value, types.Type, error) {
	switch v := v.(type) {
	case int:
		return eval.VInt(int64(v)), ts.PrimInt(), nil
	case int64:
		return eval.VInt(v), ts.PrimInt(), nil
	case float64:
		return eval.VReal(v), ts.PrimReal(), nil
	case bool:
		return eval.VBool(v), ts.PrimBool(), nil
	case string:
		return eval.VString(v), ts.PrimString(), nil
	}
	return nil, nil, fmt.Errorf("unsupported scalar %T", v)
}
