// Package columnar provides the read path over finalized Parquet
// containers produced by the strap materializer. It is the contract
// consumed by downstream query layers: column access by name,
// predicate-filtered scans, and aggregate reduction. It does not
// implement queries itself.
package columnar

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"os"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/straptrack/pkg/errors"
)

// Column holds one materialized column. Valid[i] reports whether row i
// carries a measurement; Values[i] is meaningful only when Valid[i].
type Column struct {
	Values []float64
	Valid  []bool
}

// Row is a sparse view of one container row: absent keys were null.
type Row map[string]float64

// Reader provides keyed access to a finalized columnar container. All
// batches of a container share one schema, so the reader exposes a
// single flat column space.
type Reader struct {
	path    string
	numRows int
	columns map[string]*Column
}

// Open reads the Parquet container at path into memory. The container
// must be finalized; a partial file fails here.
func Open(path string) (*Reader, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: caller-controlled path
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Parquet file")
	}

	fr, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to open Parquet container")
	}
	defer fr.Close()

	mem := memory.NewGoAllocator()
	// arrow-go applies no default BatchSize; zero reads empty batches.
	// The value only sizes intermediate batches — Open flattens them all.
	arrowReader, err := pqarrow.NewFileReader(fr, pqarrow.ArrowReadProperties{BatchSize: 64 * 1024}, mem)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to create Arrow reader")
	}

	r := &Reader{
		path:    path,
		columns: make(map[string]*Column),
	}

	rr, err := arrowReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to read record batches")
	}
	defer rr.Release()

	for rr.Next() {
		rec := rr.Record()
		r.appendBatch(rec)
	}
	// The record reader reports io.EOF at normal end of stream.
	if err := rr.Err(); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to decode record batch")
	}

	return r, nil
}

// appendBatch copies one record batch into the flat column space.
func (r *Reader) appendBatch(rec arrow.Record) {
	rows := int(rec.NumRows())
	for i := 0; i < int(rec.NumCols()); i++ {
		name := rec.Schema().Field(i).Name
		col, ok := r.columns[name]
		if !ok {
			col = &Column{}
			r.columns[name] = col
		}

		switch arr := rec.Column(i).(type) {
		case *array.Float64:
			for j := 0; j < rows; j++ {
				col.Valid = append(col.Valid, !arr.IsNull(j))
				if arr.IsNull(j) {
					col.Values = append(col.Values, 0)
				} else {
					col.Values = append(col.Values, arr.Value(j))
				}
			}
		default:
			// Containers written by the materializer carry only
			// Float64 columns; anything else reads as all-null.
			for j := 0; j < rows; j++ {
				col.Valid = append(col.Valid, false)
				col.Values = append(col.Values, 0)
			}
		}
	}
	r.numRows += rows
}

// ColumnNames returns the container's column names, sorted.
func (r *Reader) ColumnNames() []string {
	names := make([]string, 0, len(r.columns))
	for name := range r.columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NumRows returns the container's row count.
func (r *Reader) NumRows() int {
	return r.numRows
}

// ReadColumn returns the column with the given name.
func (r *Reader) ReadColumn(name string) (*Column, error) {
	col, ok := r.columns[name]
	if !ok {
		return nil, errors.New(errors.ErrorTypeData, "unknown column").WithDetail("column", name)
	}
	return col, nil
}

// Scan visits rows in container order and returns those satisfying
// pred. Each row is presented sparsely: null cells are absent keys.
func (r *Reader) Scan(pred func(Row) bool) []Row {
	var results []Row
	for i := 0; i < r.numRows; i++ {
		row := Row{}
		for name, col := range r.columns {
			if col.Valid[i] {
				row[name] = col.Values[i]
			}
		}
		if pred(row) {
			results = append(results, row)
		}
	}
	return results
}

// Reduce folds the non-null values of one column in row order.
func Reduce[T any](r *Reader, name string, init T, fn func(T, float64) T) (T, error) {
	col, err := r.ReadColumn(name)
	if err != nil {
		var zero T
		return zero, err
	}

	acc := init
	for i, v := range col.Values {
		if col.Valid[i] {
			acc = fn(acc, v)
		}
	}
	return acc, nil
}
