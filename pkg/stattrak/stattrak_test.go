package stattrak

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementAndGet(t *testing.T) {
	stats := New()
	stats.Increment([]string{"alice"}, 3)
	stats.Increment([]string{"alice", "sword"}, 2)
	stats.Increment([]string{"bob", "bow"}, 5)

	assert.Equal(t, int64(3), stats.Get("alice"))
	assert.Equal(t, int64(2), stats.Get("alice", "sword"))
	assert.Equal(t, int64(5), stats.Get("bob", "bow"))
	assert.Equal(t, int64(0), stats.Get("bob"))
	assert.Equal(t, int64(0), stats.Get("carol"))
	assert.Equal(t, int64(0), stats.Get("alice", "sword", "deep"))
}

func TestIncrementRoot(t *testing.T) {
	stats := New()
	stats.Increment(nil, 7)
	assert.Equal(t, int64(7), stats.Get())
}

func TestTotal(t *testing.T) {
	stats := New()
	stats.Increment([]string{"alice"}, 3)
	stats.Increment([]string{"alice", "sword"}, 2)
	stats.Increment([]string{"bob", "bow"}, 5)

	assert.Equal(t, int64(10), stats.Total())
	assert.Equal(t, int64(0), New().Total())
}

func TestMerge(t *testing.T) {
	a := New()
	a.Increment([]string{"alice", "sword"}, 2)
	a.Increment([]string{"bob"}, 1)

	b := New()
	b.Increment([]string{"alice", "sword"}, 3)
	b.Increment([]string{"carol"}, 4)

	a.Merge(b)

	assert.Equal(t, int64(5), a.Get("alice", "sword"))
	assert.Equal(t, int64(1), a.Get("bob"))
	assert.Equal(t, int64(4), a.Get("carol"))
}

func TestWalk(t *testing.T) {
	stats := New()
	stats.Increment([]string{"b", "y"}, 2)
	stats.Increment([]string{"a"}, 1)
	stats.Increment([]string{"b", "x"}, 3)

	var paths [][]string
	var counts []int64
	stats.Walk(func(path []string, count int64) {
		paths = append(paths, path)
		counts = append(counts, count)
	})

	assert.Equal(t, [][]string{{"a"}, {"b", "x"}, {"b", "y"}}, paths)
	assert.Equal(t, []int64{1, 3, 2}, counts)
}

func TestYAMLRoundTrip(t *testing.T) {
	stats := New()
	stats.Increment([]string{"alice"}, 3)
	stats.Increment([]string{"alice", "sword"}, 2)
	stats.Increment([]string{"bob", "bow"}, 5)

	data, err := stats.ToYAML()
	require.NoError(t, err)

	restored, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, stats, restored)
}

func TestJSONRoundTrip(t *testing.T) {
	stats := New()
	stats.Increment([]string{"alice", "sword"}, 2)
	stats.Increment([]string{"bob"}, 1)

	data, err := stats.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, stats, restored)
}

func TestBinRoundTrip(t *testing.T) {
	stats := New()
	stats.Increment([]string{"alice", "sword"}, 2)
	stats.Increment([]string{"bob", "bow"}, 5)

	path := filepath.Join(t.TempDir(), "stats.bin")
	require.NoError(t, stats.WriteBin(path))

	restored, err := ReadBin(path)
	require.NoError(t, err)
	assert.Equal(t, stats, restored)
}

func TestLinearBinner(t *testing.T) {
	binner := LinearBinner{Min: 0.0, Max: 1.0, Bins: 10}

	assert.Equal(t, 0, binner.Bin(-5.0))
	assert.Equal(t, 0, binner.Bin(0.0))
	assert.Equal(t, 1, binner.Bin(0.15))
	assert.Equal(t, 8, binner.Bin(0.85))
	assert.Equal(t, 9, binner.Bin(1.0))
	assert.Equal(t, 9, binner.Bin(42.0))

	assert.Equal(t, "1", binner.Key(0.15))
}

func TestHistogramCounter(t *testing.T) {
	binner := LinearBinner{Min: 0.0, Max: 1.0, Bins: 10}
	hist := New()

	for _, v := range []float64{0.1, 0.15, 0.8, 0.1} {
		hist.Increment([]string{binner.Key(v)}, 1)
	}

	assert.Equal(t, int64(3), hist.Get("1"))
	assert.Equal(t, int64(1), hist.Get("8"))
	assert.Equal(t, int64(4), hist.Total())
}
