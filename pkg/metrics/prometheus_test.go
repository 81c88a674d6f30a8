package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordRun("PAPER", "COMPLETED", 0.02)
	r.RecordRun("PAPER", "COMPLETED", 0.03)
	r.RecordPauseEvent("PAUSE_REALITY_GAP")
	r.RecordRiskEvent("TRADE_STOP")
	r.RecordSizeFactor("gap_down", 0.42)
	r.RecordError("canary_run")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runsTotal.WithLabelValues("PAPER", "COMPLETED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pauseEvents.WithLabelValues("PAUSE_REALITY_GAP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.riskEvents.WithLabelValues("TRADE_STOP")))
	assert.Equal(t, 0.42, testutil.ToFloat64(r.sizeFactor.WithLabelValues("gap_down")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("canary_run")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))
}
