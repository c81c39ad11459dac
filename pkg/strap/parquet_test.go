package strap_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/straptrack/pkg/columnar"
	"github.com/ajitpratap0/straptrack/pkg/config"
	"github.com/ajitpratap0/straptrack/pkg/metrics"
	"github.com/ajitpratap0/straptrack/pkg/strap"
)

func convertFixture(t *testing.T, content string, chunkSize int) *columnar.Reader {
	t.Helper()
	dir := t.TempDir()

	inPath := filepath.Join(dir, "test.strap")
	require.NoError(t, os.WriteFile(inPath, []byte(content), 0o644))

	track, err := strap.NewTrack(inPath)
	require.NoError(t, err)

	cfg := config.NewConvertConfig()
	cfg.ChunkSize = chunkSize

	outPath := filepath.Join(dir, "test.parquet")
	require.NoError(t, track.ToParquet(outPath, cfg))

	reader, err := columnar.Open(outPath)
	require.NoError(t, err)
	return reader
}

func TestToParquet_SparseSchema(t *testing.T) {
	content := "a 1.0 b 2.0\nc 3.0 d 4.0\na 5.0 e 6.0\n"
	reader := convertFixture(t, content, 1000)

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, reader.ColumnNames())
	assert.Equal(t, 3, reader.NumRows())

	// Row-by-row null pattern: missing fields are nulls, not zeros
	expected := []columnar.Row{
		{"a": 1.0, "b": 2.0},
		{"c": 3.0, "d": 4.0},
		{"a": 5.0, "e": 6.0},
	}
	rows := reader.Scan(func(columnar.Row) bool { return true })
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, expected[i], row, "row %d", i)
	}
}

func TestToParquet_ChunkSizeDoesNotChangeOutput(t *testing.T) {
	content := "a 1.0 b 2.0\nc 3.0 d 4.0\na 5.0 e 6.0\nb 7.0\n"

	baseline := convertFixture(t, content, 1000)
	baseRows := baseline.Scan(func(columnar.Row) bool { return true })

	for _, chunkSize := range []int{1, 2, 3, 100} {
		t.Run(fmt.Sprintf("chunk_size_%d", chunkSize), func(t *testing.T) {
			reader := convertFixture(t, content, chunkSize)
			assert.Equal(t, baseline.ColumnNames(), reader.ColumnNames())

			rows := reader.Scan(func(columnar.Row) bool { return true })
			assert.Equal(t, baseRows, rows)
		})
	}
}

func TestToParquet_AggregateMatchesColumnSum(t *testing.T) {
	const n = 57
	content := ""
	expected := 0.0
	for i := 0; i < n; i++ {
		content += fmt.Sprintf("k %d.5\n", i)
		expected += float64(i) + 0.5
	}

	dir := t.TempDir()
	inPath := filepath.Join(dir, "sum.strap")
	require.NoError(t, os.WriteFile(inPath, []byte(content), 0o644))

	track, err := strap.NewTrack(inPath)
	require.NoError(t, err)

	streamed, err := strap.Aggregate(track, 0.0, func(acc float64, rec strap.Record) float64 {
		return acc + rec["k"]
	})
	require.NoError(t, err)
	assert.InDelta(t, expected, streamed, 1e-9)

	outPath := filepath.Join(dir, "sum.parquet")
	require.NoError(t, track.ToParquet(outPath, nil))

	reader, err := columnar.Open(outPath)
	require.NoError(t, err)

	materialized, err := columnar.Reduce(reader, "k", 0.0, func(acc, v float64) float64 {
		return acc + v
	})
	require.NoError(t, err)
	assert.InDelta(t, streamed, materialized, 1e-9)
}

func TestToParquet_NoiseLinesBecomeAllNullRows(t *testing.T) {
	// Non-permissive source: unmarked lines still occupy a row so that
	// container row order equals input line order
	content := "metadata line without marker\n@strap hits 3.0\n"
	dir := t.TempDir()

	inPath := filepath.Join(dir, "test.log")
	require.NoError(t, os.WriteFile(inPath, []byte(content), 0o644))

	track, err := strap.NewTrack(inPath)
	require.NoError(t, err)

	outPath := filepath.Join(dir, "test.parquet")
	require.NoError(t, track.ToParquet(outPath, nil))

	reader, err := columnar.Open(outPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"hits"}, reader.ColumnNames())
	assert.Equal(t, 2, reader.NumRows())

	col, err := reader.ReadColumn("hits")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, col.Valid)
	assert.Equal(t, 3.0, col.Values[1])
}

func TestToParquet_Idempotent(t *testing.T) {
	content := "a 1.0 b 2.0\nc 3.0\n"
	dir := t.TempDir()

	inPath := filepath.Join(dir, "test.strap")
	require.NoError(t, os.WriteFile(inPath, []byte(content), 0o644))

	track, err := strap.NewTrack(inPath)
	require.NoError(t, err)

	out1 := filepath.Join(dir, "one.parquet")
	out2 := filepath.Join(dir, "two.parquet")
	require.NoError(t, track.ToParquet(out1, nil))
	require.NoError(t, track.ToParquet(out2, nil))

	data1, err := os.ReadFile(out1)
	require.NoError(t, err)
	data2, err := os.ReadFile(out2)
	require.NoError(t, err)
	assert.Equal(t, data1, data2)
}

func TestToParquet_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "test.strap")
	require.NoError(t, os.WriteFile(inPath, []byte("a 1.0\n"), 0o644))

	track, err := strap.NewTrack(inPath)
	require.NoError(t, err)

	cfg := config.NewConvertConfig()
	cfg.Compression = "brotli"

	err = track.ToParquet(filepath.Join(dir, "out.parquet"), cfg)
	assert.Error(t, err)
}

func TestToParquet_TruncatedSourceLeavesNoOutput(t *testing.T) {
	// A mid-stream decode failure must abort the conversion without
	// leaving a partial output file behind
	dir := t.TempDir()
	inPath := filepath.Join(dir, "test.strap.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for i := 0; i < 2000; i++ {
		fmt.Fprintf(gz, "k %d.0\n", i)
	}
	require.NoError(t, gz.Close())

	// Keep the header intact but cut the deflate stream in half
	compressed := buf.Bytes()
	require.NoError(t, os.WriteFile(inPath, compressed[:len(compressed)/2], 0o644))

	track, err := strap.NewTrack(inPath)
	require.NoError(t, err)

	outPath := filepath.Join(dir, "out.parquet")
	require.Error(t, track.ToParquet(outPath, nil))

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestToParquet_MetricsGatedByConfig(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "test.strap")
	require.NoError(t, os.WriteFile(inPath, []byte("a 1.0\n"), 0o644))

	track, err := strap.NewTrack(inPath)
	require.NoError(t, err)

	before := testutil.CollectAndCount(metrics.PassDuration)
	require.NoError(t, track.ToParquet(filepath.Join(dir, "off.parquet"), nil))
	assert.Equal(t, before, testutil.CollectAndCount(metrics.PassDuration),
		"disabled metrics must not observe pass durations")

	cfg := config.NewConvertConfig()
	cfg.Observability.EnableMetrics = true
	require.NoError(t, track.ToParquet(filepath.Join(dir, "on.parquet"), cfg))
	assert.Equal(t, before+2, testutil.CollectAndCount(metrics.PassDuration),
		"enabled metrics observe both conversion passes")
}

func TestToParquet_CompressedSource(t *testing.T) {
	// Two passes over a gzip source must both succeed via reopen
	dir := t.TempDir()
	inPath := filepath.Join(dir, "test.strap.gz")

	f, err := os.Create(inPath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("a 1.0\nb 2.0\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	track, err := strap.NewTrack(inPath)
	require.NoError(t, err)

	outPath := filepath.Join(dir, "out.parquet")
	require.NoError(t, track.ToParquet(outPath, nil))

	reader, err := columnar.Open(outPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, reader.ColumnNames())
	assert.Equal(t, 2, reader.NumRows())
}
