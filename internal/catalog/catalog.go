// Package catalog defines the ExternalCatalog boundary: the
// pluggable foreign-data-source subsystem that exposes external tables as
// row-typed values. The subsystem itself is an external collaborator; this
// package holds the contract plus StaticCatalog, the in-memory reference
// implementation tests and the CLI fixtures flag use. Schemas are read
// during type resolution, rows during evaluation, and never written.
package catalog

import (
	"github.com/mlcore-lang/mlcore/internal/eval"
	"github.com/mlcore-lang/mlcore/internal/types"
)

// Row is one record of an external dataset: field label -> value. Rows are
// immutable once handed to a session.
type Row map[string]eval.Value

// RowIter delivers a dataset's rows one at a time.
type RowIter interface {
	// Next returns the next row, or ok == false when the dataset is
	// exhausted.
	Next() (Row, bool)
}

// Dataset pairs a row schema (a record type) with its row source. Rows is a
// factory so a dataset can be scanned more than once.
type Dataset struct {
	Schema types.Type
	Rows   func() RowIter
}

// ExternalCatalog provides the datasets visible to a Session, keyed by the
// name they are bound under.
type ExternalCatalog interface {
	Datasets() map[string]Dataset
}

// StaticCatalog is a fixed in-memory catalog.
type StaticCatalog map[string]Dataset

func (c StaticCatalog) Datasets() map[string]Dataset { return c }

// SliceRows adapts a fixed slice of rows to the Rows factory contract.
func SliceRows(rows []Row) func() RowIter {
	return func() RowIter { return &sliceIter{rows: rows} }
}

type sliceIter struct {
	rows []Row
	i    int
}

func (it *sliceIter) Next() (Row, bool) {
	if it.i >= len(it.rows) {
		return nil, false
	}
	r := it.rows[it.i]
	it.i++
	return r, true
}
