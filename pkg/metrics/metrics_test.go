package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector("/tmp/test.strap")

	c.RecordLine(true)
	c.RecordLine(true)
	c.RecordLine(false)
	c.RecordBatch(2)
	c.RecordBatch(1)

	lines, parsed, batches, rows := c.Snapshot()
	assert.Equal(t, int64(3), lines)
	assert.Equal(t, int64(2), parsed)
	assert.Equal(t, int64(2), batches)
	assert.Equal(t, int64(3), rows)
}

func TestTimer(t *testing.T) {
	timer := NewTimer("/tmp/test.strap", "schema_discovery")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	assert.Greater(t, elapsed, time.Duration(0))
}

func TestTimer_NilStop(t *testing.T) {
	var timer *Timer
	assert.Equal(t, time.Duration(0), timer.Stop())
}
