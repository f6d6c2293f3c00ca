package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector()

	c.Committed(3)
	c.Committed(0)
	c.CommitFailed()
	c.Evicted()
	c.Evicted()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.commits))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.rowsAffected))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commitFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.evictions))
}

func TestCollector_Registers(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector()))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	c.Committed(1)
	c.CommitFailed()
	c.Evicted()
}
