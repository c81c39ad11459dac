// Package straptrack converts STRAP telemetry logs into a sparse,
// schema-unified columnar representation for downstream analytics.
//
// STRAP records are append-only, line-oriented: whitespace-separated
// key/value numeric pairs, optionally prefixed by an @strap marker
// token. Files interleave free-text metadata lines with telemetry
// lines; extraction tolerates heterogeneous, partially malformed input
// without aborting.
//
// # Architecture
//
// The conversion pipeline is strictly sequential and path-identified:
//
//  1. Decoder selection: the file name suffix picks a transparent
//     decompression stream (gzip, zstd, zip first entry, lz4, s2,
//     snappy, or raw).
//  2. Record extraction: each line yields a sparse map of field name
//     to float64, applying the marker-detection heuristic.
//  3. Schema discovery: one full pass collects every field name ever
//     observed, sorted, producing a closed column schema.
//  4. Materialization: a second pass re-streams the source in bounded
//     chunks and appends each chunk as a batch of nullable Float64
//     columns to a Parquet container.
//
// Compressed sources are not seekable, so the two passes each reopen
// the source from its path; memory stays bounded by the chunk size
// regardless of input size.
//
// # Quick Start
//
//	import (
//	    "github.com/ajitpratap0/straptrack/pkg/strap"
//	)
//
//	track, err := strap.NewTrack("combat.strap.gz")
//	if err != nil {
//	    return err
//	}
//	if err := track.ToParquet("combat.parquet", nil); err != nil {
//	    return err
//	}
//
// The pkg/columnar package provides the read path over finalized
// containers for query layers, and pkg/stattrak is an independent
// hierarchical counter utility.
package straptrack
