package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.Correction("mute")
	c.Correction("mute")
	c.Correction("volume")
	c.Swap()
	c.SessionStarted()
	c.SessionStarted()
	c.SessionEnded()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.corrections.WithLabelValues("mute")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.corrections.WithLabelValues("volume")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.swaps))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeSessions))
}
