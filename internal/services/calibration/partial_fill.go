package calibration

import (
	"math"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/pkg/fingerprint"
)

type liquidityBand struct {
	bucket  models.LiquidityBucket
	minADV  float64
	fillMin float64
	fillMax float64
}

// Bands are ordered from most to least liquid; both band edges rise with liquidity.
var liquidityBands = []liquidityBand{
	{bucket: models.BucketHigh, minADV: 1e9, fillMin: 0.85, fillMax: 1.00},
	{bucket: models.BucketMid, minADV: 1e8, fillMin: 0.60, fillMax: 0.95},
	{bucket: models.BucketLow, minADV: 1e7, fillMin: 0.35, fillMax: 0.80},
	{bucket: models.BucketMicro, minADV: 0, fillMin: 0.10, fillMax: 0.50},
}

func classifyLiquidity(adv float64) liquidityBand {
	for _, b := range liquidityBands {
		if adv >= b.minADV {
			return b
		}
	}
	return liquidityBands[len(liquidityBands)-1]
}

// DeterministicPartialFill estimates how much of an order fills given average daily volume.
func DeterministicPartialFill(orderNotional, adv float64) (models.PartialFill, error) {
	if !finite(orderNotional) || orderNotional <= 0 {
		return models.PartialFill{}, models.NewError(models.ErrCodeInvalidOrderSize,
			"order notional must be positive and finite, got %v", orderNotional)
	}
	if !finite(adv) || adv <= 0 {
		return models.PartialFill{}, models.NewError(models.ErrCodeInvalidADV,
			"average daily volume must be positive and finite, got %v", adv)
	}

	band := classifyLiquidity(adv)
	participation := math.Min(1, orderNotional/math.Max(1, 0.001*adv))
	ratio := clamp(band.fillMax-(band.fillMax-band.fillMin)*participation, band.fillMin, band.fillMax)

	filled := fingerprint.Round(orderNotional * ratio)
	if filled > orderNotional {
		filled = orderNotional
	}

	return models.PartialFill{
		Bucket:           band.bucket,
		Participation:    fingerprint.Round(participation),
		FillRatio:        fingerprint.Round(ratio),
		FilledNotional:   filled,
		UnfilledNotional: orderNotional - filled,
	}, nil
}
