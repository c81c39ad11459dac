// Package metrics provides Prometheus metrics for straptrack conversions.
// It tracks line throughput, dropped pairs, and column batch writes so a
// long-running ingest service can expose conversion health.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinesRead counts input lines read per source file.
	LinesRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "straptrack_lines_read_total",
			Help: "Total number of input lines read",
		},
		[]string{"source"},
	)

	// RecordsParsed counts lines that yielded at least one key/value pair.
	RecordsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "straptrack_records_parsed_total",
			Help: "Total number of lines that produced a non-empty record",
		},
		[]string{"source"},
	)

	// BatchesWritten counts column batches appended to Parquet output.
	BatchesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "straptrack_batches_written_total",
			Help: "Total number of column batches written",
		},
		[]string{"source"},
	)

	// RowsWritten counts rows materialized into Parquet output.
	RowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "straptrack_rows_written_total",
			Help: "Total number of rows written to columnar output",
		},
		[]string{"source"},
	)

	// PassDuration observes the duration of schema discovery and
	// materialization passes.
	PassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "straptrack_pass_duration_seconds",
			Help:    "Duration of conversion passes",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
		},
		[]string{"source", "pass"},
	)
)

// Timer measures the duration of a conversion pass.
type Timer struct {
	start  time.Time
	source string
	pass   string
}

// NewTimer starts a timer for the named pass.
func NewTimer(source, pass string) *Timer {
	return &Timer{
		start:  time.Now(),
		source: source,
		pass:   pass,
	}
}

// Stop records the elapsed duration and returns it. Stop on a nil
// Timer is a no-op, so callers can gate timer creation on config.
func (t *Timer) Stop() time.Duration {
	if t == nil {
		return 0
	}
	elapsed := time.Since(t.start)
	PassDuration.WithLabelValues(t.source, t.pass).Observe(elapsed.Seconds())
	return elapsed
}

// Collector tracks per-conversion counts for a single source file.
// It mirrors the counters into Prometheus and keeps local totals for
// end-of-run log summaries. Safe for concurrent use.
type Collector struct {
	source string

	mu             sync.Mutex
	linesRead      int64
	recordsParsed  int64
	batchesWritten int64
	rowsWritten    int64
}

// NewCollector creates a collector labeled with the source path.
func NewCollector(source string) *Collector {
	return &Collector{source: source}
}

// RecordLine records one input line, parsed reports whether it produced
// a non-empty record.
func (c *Collector) RecordLine(parsed bool) {
	c.mu.Lock()
	c.linesRead++
	if parsed {
		c.recordsParsed++
	}
	c.mu.Unlock()

	LinesRead.WithLabelValues(c.source).Inc()
	if parsed {
		RecordsParsed.WithLabelValues(c.source).Inc()
	}
}

// RecordBatch records one written column batch of the given row count.
func (c *Collector) RecordBatch(rows int) {
	c.mu.Lock()
	c.batchesWritten++
	c.rowsWritten += int64(rows)
	c.mu.Unlock()

	BatchesWritten.WithLabelValues(c.source).Inc()
	RowsWritten.WithLabelValues(c.source).Add(float64(rows))
}

// Snapshot returns the current totals.
func (c *Collector) Snapshot() (linesRead, recordsParsed, batchesWritten, rowsWritten int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.linesRead, c.recordsParsed, c.batchesWritten, c.rowsWritten
}
