package calibration

import (
	"testing"

	"TreasureEngine/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFills() *models.FillHistory {
	return &models.FillHistory{Records: []models.FillRecord{
		{FillID: "f-1", Qty: 10, Price: 50, Fee: 0.25, LatencyMs: 80},
		{FillID: "f-2", Qty: 5, Price: 200, Fee: 0.6, LatencyMs: 100},
		{FillID: "f-3", Qty: 2, Price: 1000, Fee: 1.2, LatencyMs: 90},
		{FillID: "f-4", Qty: 4, Price: 250, Fee: 0.4, LatencyMs: 110},
	}}
}

func TestCalibrateReal(t *testing.T) {
	res, err := Calibrate(sampleFills(), 7, true)
	require.NoError(t, err)

	assert.Equal(t, models.CalibrationReal, res.Mode)
	assert.Equal(t, 4, res.FillCount)
	assert.InDelta(t, 5.3, res.Params.SlipMeanBps, 1e-6)
	assert.InDelta(t, 0.825, res.Params.SlipStdBps, 1e-6)
	assert.Equal(t, 95.0, res.Params.LatencyMeanMs)
	assert.Equal(t, 19.0, res.Params.LatencyStdMs)
	assert.Len(t, res.InputsHash, 64)
	assert.Len(t, res.OutputsHash, 64)
}

func TestCalibrateProxy(t *testing.T) {
	res, err := Calibrate(nil, 7, false)
	require.NoError(t, err)

	assert.Equal(t, models.CalibrationProxy, res.Mode)
	assert.Equal(t, 3, res.FillCount)
	assert.Equal(t, 4.588107, res.Params.SlipMeanBps)
	assert.Equal(t, 0.80402, res.Params.SlipStdBps)
	assert.Equal(t, 135.0, res.Params.LatencyMeanMs)
	assert.Equal(t, 27.0, res.Params.LatencyStdMs)
}

func TestCalibrateShadowProxy(t *testing.T) {
	res, err := Calibrate(&models.FillHistory{}, 7, false)
	require.NoError(t, err)

	proxy, err := Calibrate(nil, 7, false)
	require.NoError(t, err)

	assert.Equal(t, models.CalibrationShadowProxy, res.Mode)
	assert.Equal(t, 0, res.FillCount)
	assert.Equal(t, proxy.Params, res.Params)
	assert.Equal(t, proxy.OutputsHash, res.OutputsHash)
	assert.NotEqual(t, proxy.InputsHash, res.InputsHash)
}

func TestCalibrateStrictErrors(t *testing.T) {
	_, err := Calibrate(nil, 1, true)
	assert.Equal(t, models.ErrCodeStrictFillsRequired, models.CodeOf(err))

	_, err = Calibrate(&models.FillHistory{}, 1, true)
	assert.Equal(t, models.ErrCodeStrictFillsRequired, models.CodeOf(err))

	fills := sampleFills()
	fills.Records[2].FillID = ""
	_, err = Calibrate(fills, 1, true)
	assert.Equal(t, models.ErrCodeStrictMissingID, models.CodeOf(err))

	// Without strict the missing id is tolerated.
	_, err = Calibrate(fills, 1, false)
	assert.NoError(t, err)
}

func TestCalibrateInvalidRecord(t *testing.T) {
	fills := sampleFills()
	fills.Records[0].Price = 0
	_, err := Calibrate(fills, 1, false)
	assert.Equal(t, models.ErrCodeInvalidFillRecord, models.CodeOf(err))
}

func TestCalibrateDeterministic(t *testing.T) {
	a, err := Calibrate(sampleFills(), 99, false)
	require.NoError(t, err)
	b, err := Calibrate(sampleFills(), 99, false)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Calibrate(sampleFills(), 100, false)
	require.NoError(t, err)
	assert.NotEqual(t, a.InputsHash, c.InputsHash)
	assert.Equal(t, a.OutputsHash, c.OutputsHash)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))

	xs := []float64{3, 1, 2}
	Median(xs)
	assert.Equal(t, []float64{3, 1, 2}, xs)
}
