// Package strap implements parsing and columnar materialization of
// STRAP telemetry logs: line-oriented files of whitespace-separated
// key/value numeric pairs, optionally tagged with an @strap marker.
//
// A Track is a lazy, streaming view over one log file. It keeps the
// file path, not an open handle: compressed and archived sources are
// not seekable, so every traversal reopens the source from the path.
//
// # Basic Usage
//
//	track, err := strap.NewTrack("combat.strap.gz")
//	if err != nil {
//	    return err
//	}
//
//	sum, err := strap.Aggregate(track, 0.0, func(acc float64, rec strap.Record) float64 {
//	    return acc + rec["damage"]
//	})
//
//	err = track.ToParquet("combat.parquet", nil)
package strap

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/ajitpratap0/straptrack/pkg/errors"
)

// telemetrySuffix marks files whose every line is telemetry. Such
// files are parsed in permissive mode: lines without a marker are
// still parsed as bare key/value pairs.
const telemetrySuffix = ".strap"

// Track is a lazy, streaming parser for one STRAP log file.
type Track struct {
	path       string
	permissive bool
}

// NewTrack creates a Track for the file at path. The file must exist
// and be readable; decoding problems still surface later, when a
// traversal opens the stream.
func NewTrack(path string) (*Track, error) {
	f, err := os.Open(path) //nolint:gosec // G304: caller-controlled path
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open STRAP file")
	}
	_ = f.Close()

	return &Track{
		path:       path,
		permissive: isPureTelemetry(path),
	}, nil
}

// Path returns the source file path.
func (t *Track) Path() string {
	return t.path
}

// Permissive reports whether lines without a marker are parsed as bare
// key/value pairs. Decided by file naming: a name that ends in .strap
// after stripping a recognized compression suffix is pure telemetry.
func (t *Track) Permissive() bool {
	return t.permissive
}

// isPureTelemetry applies the file naming convention.
func isPureTelemetry(path string) bool {
	return strings.HasSuffix(stripCompressionSuffix(strings.ToLower(path)), telemetrySuffix)
}

// Rows is a forward-only, non-restartable iterator over parsed records,
// one element per input line. A read failure yields an error element;
// the iterator does not self-terminate on error, the caller decides
// whether to keep polling.
type Rows struct {
	stream     io.ReadCloser
	reader     *bufio.Reader
	permissive bool

	record Record
	err    error
	done   bool
}

// Rows opens a fresh decoded stream and returns an iterator over it.
// The caller owns the iterator and must Close it on every exit path.
func (t *Track) Rows() (*Rows, error) {
	stream, err := OpenReader(t.path)
	if err != nil {
		return nil, err
	}

	return &Rows{
		stream:     stream,
		reader:     bufio.NewReader(stream),
		permissive: t.permissive,
	}, nil
}

// Next advances to the next element. It returns false only at end of
// stream; a mid-stream read failure still produces an element whose
// error is observable via Err.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}

	line, err := r.reader.ReadString('\n')
	if err == io.EOF {
		if len(line) == 0 {
			r.done = true
			return false
		}
		// Final line without a trailing newline
		err = nil
	}

	if err != nil {
		r.record, r.err = nil, err
		return true
	}

	r.record, r.err = ExtractLine(line, r.permissive), nil
	return true
}

// Record returns the record parsed from the current line. It is nil
// when Err is non-nil.
func (r *Rows) Record() Record {
	return r.record
}

// Err returns the read error of the current element, if any.
func (r *Rows) Err() error {
	return r.err
}

// Close releases the underlying stream and file handle.
func (r *Rows) Close() error {
	return r.stream.Close()
}

// ForEachRow streams records in input order, calling fn for each. fn
// returns false to stop early. The first read error aborts traversal
// and is returned.
func (t *Track) ForEachRow(fn func(Record) bool) error {
	rows, err := t.Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := rows.Err(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFile, "read failed")
		}
		if !fn(rows.Record()) {
			break
		}
	}
	return nil
}

// FilterRows returns every record satisfying pred, in input order.
// Memory grows with the match count.
func (t *Track) FilterRows(pred func(Record) bool) ([]Record, error) {
	var results []Record
	err := t.ForEachRow(func(rec Record) bool {
		if pred(rec) {
			results = append(results, rec)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Aggregate folds records in input order, short-circuiting only on a
// read error.
func Aggregate[T any](t *Track, init T, reducer func(T, Record) T) (T, error) {
	acc := init
	err := t.ForEachRow(func(rec Record) bool {
		acc = reducer(acc, rec)
		return true
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return acc, nil
}
