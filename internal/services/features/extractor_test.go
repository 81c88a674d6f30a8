package features

import (
	"testing"

	"TreasureEngine/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticks(ts []int64, prices ...float64) []models.PriceTick {
	out := make([]models.PriceTick, len(prices))
	for i, p := range prices {
		out[i] = models.PriceTick{TsMs: ts[i], Symbol: "BTCUSDT", Price: p}
	}
	return out
}

func minutes(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i) * 60_000
	}
	return out
}

func TestComputeSimpleReturns(t *testing.T) {
	r := ComputeSimpleReturns(ticks(minutes(3), 100, 110, 99))
	require.Len(t, r, 2)
	assert.InDelta(t, 0.10, r[0], 1e-12)
	assert.InDelta(t, -0.10, r[1], 1e-12)
	assert.Nil(t, ComputeSimpleReturns(ticks(minutes(1), 100)))
	assert.InDelta(t, 0.10, MeanAbsReturn(r), 1e-12)
	assert.Equal(t, 0.0, MeanAbsReturn(nil))
}

func TestClassifyRegime(t *testing.T) {
	assert.Equal(t, models.RegimeLow, ClassifyRegime(0.001))
	assert.Equal(t, models.RegimeMid, ClassifyRegime(0.01))
	assert.Equal(t, models.RegimeHigh, ClassifyRegime(0.02))
	assert.Equal(t, models.RegimeCrisis, ClassifyRegime(0.05))
}

func TestPathTrackerLossesAndDrawdown(t *testing.T) {
	tr := NewPathTracker()
	path := ticks(minutes(4), 100, 102, 97, 98)

	first := tr.Observe(path[0])
	assert.Equal(t, 0.0, first.TradeLoss)
	assert.Equal(t, 0.0, first.Drawdown)
	assert.Equal(t, models.RegimeLow, first.Regime)

	tr.Observe(path[1])
	third := tr.Observe(path[2])
	assert.InDelta(t, 1-97.0/102.0, third.TradeLoss, 1e-12)
	assert.InDelta(t, 0.03, third.DayLoss, 1e-12)
	assert.InDelta(t, 1-97.0/102.0, third.Drawdown, 1e-12)
	assert.InDelta(t, third.Drawdown, third.DrawdownSpeed, 1e-12)

	fourth := tr.Observe(path[3])
	assert.Equal(t, 0.0, fourth.TradeLoss)
	assert.Equal(t, 0.0, fourth.DrawdownSpeed)
	assert.InDelta(t, 0.02, fourth.DayLoss, 1e-12)
}

func TestPathTrackerDayRollover(t *testing.T) {
	tr := NewPathTracker()
	day := int64(24 * 60 * 60 * 1000)
	path := ticks([]int64{0, day - 1, day, day + 1}, 100, 95, 94, 96)
	for _, tk := range path[:2] {
		tr.Observe(tk)
	}
	next := tr.Observe(path[2])
	// New day opens at the previous close (95).
	assert.InDelta(t, 1-94.0/95.0, next.DayLoss, 1e-12)
	assert.InDelta(t, 0.06, next.WeekLoss, 1e-12)
}
