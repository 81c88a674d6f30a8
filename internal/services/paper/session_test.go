package paper

import (
	"testing"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bars(size float64, prices ...float64) []service.PaperBar {
	out := make([]service.PaperBar, len(prices))
	for i, p := range prices {
		out[i] = service.PaperBar{TsMs: int64(i) * 60_000, Symbol: "BTCUSDT", Price: p, SizeFactor: size}
	}
	return out
}

func TestSessionFrictionless(t *testing.T) {
	s := NewSession(Config{InitialBalanceUSD: 10000, BaseNotionalUSD: 1000})
	res, err := s.Run(service.PaperInput{Seed: 1, Bars: bars(1, 100, 110)})
	require.NoError(t, err)

	// Buys 10 units at 100, marks at 110; second bar rebalances back down to 1000.
	assert.Equal(t, 2, res.Metrics.PaperFills)
	assert.InDelta(t, 100.0, res.Metrics.RawNetPnL, 1e-6)
	assert.Equal(t, 0.0, res.Metrics.FeesPaid)
	assert.Equal(t, 0.0, res.Metrics.SlippageCost)
}

func TestSessionCostsReducePnL(t *testing.T) {
	calib := models.CalibrationParams{SlipMeanBps: 5, SlipStdBps: 1}
	free := NewSession(Config{BaseNotionalUSD: 1000})
	costly := NewSession(Config{BaseNotionalUSD: 1000, FeeBps: 10})

	a, err := free.Run(service.PaperInput{Seed: 9, Bars: bars(1, 100, 101, 99, 102)})
	require.NoError(t, err)
	b, err := costly.Run(service.PaperInput{Seed: 9, Calibration: calib, Bars: bars(1, 100, 101, 99, 102)})
	require.NoError(t, err)

	assert.Less(t, b.Metrics.RawNetPnL, a.Metrics.RawNetPnL)
	assert.Greater(t, b.Metrics.FeesPaid, 0.0)
	assert.Greater(t, b.Metrics.SlippageCost, 0.0)
}

func TestSessionZeroSizeNeverTrades(t *testing.T) {
	s := NewSession(Config{})
	res, err := s.Run(service.PaperInput{Seed: 3, Bars: bars(0, 100, 90, 80)})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Metrics.PaperFills)
	assert.Equal(t, 0.0, res.Metrics.RawNetPnL)
}

func TestSessionDeterministic(t *testing.T) {
	s := NewSession(Config{FeeBps: 2})
	in := service.PaperInput{Seed: 5201, Calibration: models.CalibrationParams{SlipMeanBps: 4.5, SlipStdBps: 0.8}, Bars: bars(0.7, 100, 100.4, 99.8, 100.9, 101.3)}
	a, err := s.Run(in)
	require.NoError(t, err)
	b, err := s.Run(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSessionRejectsBadPrice(t *testing.T) {
	s := NewSession(Config{})
	_, err := s.Run(service.PaperInput{Bars: bars(1, 100, 0)})
	assert.Equal(t, models.ErrCodePaperSessionFailed, models.CodeOf(err))
}

func TestSessionKeepsOnePositionPerSymbol(t *testing.T) {
	var in []service.PaperBar
	for i := 0; i < 10; i++ {
		in = append(in,
			service.PaperBar{TsMs: int64(i) * 60_000, Symbol: "BTCUSDT", Price: 100, SizeFactor: 1},
			service.PaperBar{TsMs: int64(i) * 60_000, Symbol: "ETHUSDT", Price: 10, SizeFactor: 1},
		)
	}
	s := NewSession(Config{InitialBalanceUSD: 10000, BaseNotionalUSD: 1000, FeeBps: 10})
	res, err := s.Run(service.PaperInput{Seed: 1, Bars: in})
	require.NoError(t, err)

	// flat prices: one opening fill per symbol, the only loss is the fees
	assert.Equal(t, 2, res.Metrics.PaperFills)
	assert.InDelta(t, 2000.0, res.Metrics.Volume, 1e-6)
	assert.InDelta(t, 2.0, res.Metrics.FeesPaid, 1e-6)
	assert.InDelta(t, -2.0, res.Metrics.RawNetPnL, 1e-6)
}
