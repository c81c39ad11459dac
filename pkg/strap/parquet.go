package strap

import (
	"context"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"go.uber.org/zap"

	"github.com/ajitpratap0/straptrack/pkg/config"
	"github.com/ajitpratap0/straptrack/pkg/errors"
	"github.com/ajitpratap0/straptrack/pkg/logger"
	"github.com/ajitpratap0/straptrack/pkg/metrics"
)

// ToParquet converts the source into a sparse Parquet file at outPath.
//
// The conversion makes two full passes over the source: one to discover
// the closed column schema (every field name ever observed, sorted),
// then a second that buffers records into chunks of cfg.ChunkSize rows
// and appends each chunk as a row group of nullable Float64 columns.
// A record's missing fields become nulls. Row order equals input line
// order and is independent of the chunk size.
//
// Any open, read, write, or finalize failure aborts the conversion and
// removes the partial output; there is no partial-success contract.
func (t *Track) ToParquet(outPath string, cfg *config.ConvertConfig) error {
	if cfg == nil {
		cfg = config.NewConvertConfig()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid conversion config")
	}

	ctx := context.WithValue(context.Background(), logger.SourceKey, t.path)

	var collector *metrics.Collector
	var schemaTimer, writeTimer *metrics.Timer
	if cfg.Observability.EnableMetrics {
		collector = metrics.NewCollector(t.path)
		schemaTimer = metrics.NewTimer(t.path, "schema_discovery")
	}

	names, err := t.ColumnNames()
	schemaTimer.Stop()
	if err != nil {
		return err
	}

	logger.WithContext(context.WithValue(ctx, logger.StageKey, "schema_discovery")).
		Debug("schema discovered",
			zap.Int("columns", len(names)),
			zap.Int("chunk_size", cfg.ChunkSize))

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{
			Name:     name,
			Type:     arrow.PrimitiveTypes.Float64,
			Nullable: true,
		}
	}
	schema := arrow.NewSchema(fields, nil)

	log := logger.WithContext(context.WithValue(ctx, logger.StageKey, "materialize"))

	out, err := os.Create(outPath) //nolint:gosec // G304: caller-controlled path
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWrite, "failed to create output file")
	}

	// On any failure the partial file is invalid; discard it.
	abort := func(cause *errors.Error) error {
		_ = out.Close()
		if err := os.Remove(outPath); err != nil {
			log.Warn("failed to remove partial output", zap.Error(err))
		}
		return cause
	}

	mem := memory.NewGoAllocator()
	props := parquet.NewWriterProperties(
		parquet.WithCompression(parquetCodec(cfg.Compression)),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(mem))

	writer, err := pqarrow.NewFileWriter(schema, out, props, arrowProps)
	if err != nil {
		return abort(errors.Wrap(err, errors.ErrorTypeWrite, "failed to create Parquet writer"))
	}

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	chunk := make([]Record, 0, cfg.ChunkSize)

	flush := func() *errors.Error {
		if len(chunk) == 0 {
			return nil
		}
		for i, name := range names {
			fb := builder.Field(i).(*array.Float64Builder)
			for _, rec := range chunk {
				if v, ok := rec[name]; ok {
					fb.Append(v)
				} else {
					fb.AppendNull()
				}
			}
		}
		batch := builder.NewRecord()
		defer batch.Release()

		if err := writer.Write(batch); err != nil {
			return errors.Wrap(err, errors.ErrorTypeWrite, "failed to write column batch")
		}
		if collector != nil {
			collector.RecordBatch(len(chunk))
		}
		chunk = chunk[:0]
		return nil
	}

	if collector != nil {
		writeTimer = metrics.NewTimer(t.path, "materialize")
	}
	rows, err := t.Rows()
	if err != nil {
		_ = writer.Close()
		return abort(errors.Wrap(err, errors.ErrorTypeFile, "failed to reopen source"))
	}
	defer rows.Close()

	for rows.Next() {
		if err := rows.Err(); err != nil {
			_ = writer.Close()
			return abort(errors.Wrap(err, errors.ErrorTypeFile, "read failed during materialization"))
		}
		rec := rows.Record()
		if collector != nil {
			collector.RecordLine(len(rec) > 0)
		}
		chunk = append(chunk, rec)
		if len(chunk) >= cfg.ChunkSize {
			if ferr := flush(); ferr != nil {
				_ = writer.Close()
				return abort(ferr)
			}
		}
	}

	if ferr := flush(); ferr != nil {
		_ = writer.Close()
		return abort(ferr)
	}

	// writer.Close finalizes the file and closes the underlying sink;
	// out must not be closed again here (abort still closes it on the
	// pre-writer error paths).
	if err := writer.Close(); err != nil {
		return abort(errors.Wrap(err, errors.ErrorTypeWrite, "failed to finalize Parquet file"))
	}
	writeTimer.Stop()

	if collector != nil {
		lines, parsed, batches, written := collector.Snapshot()
		log.Info("conversion completed",
			zap.Int64("lines_read", lines),
			zap.Int64("records_parsed", parsed),
			zap.Int64("batches_written", batches),
			zap.Int64("rows_written", written))
	}

	return nil
}

// parquetCodec maps a config codec name to a Parquet compression codec.
func parquetCodec(name string) compress.Compression {
	switch name {
	case "none":
		return compress.Codecs.Uncompressed
	case "gzip":
		return compress.Codecs.Gzip
	case "zstd":
		return compress.Codecs.Zstd
	default:
		return compress.Codecs.Snappy
	}
}
