// Package riskfortress decides how much capital a strategy may deploy on the current bar.
package riskfortress

import (
	"math"

	"TreasureEngine/internal/domain/models"
)

const (
	drawdownScale      = 0.35
	drawdownSpeedScale = 0.10
	drawdownWeight     = 0.65
	speedWeight        = 0.20
	pboMultiplier      = 0.65
	dsrMultiplier      = 0.75

	// DegradedBelow is the size factor under which a non-halted assessment is DEGRADED.
	DegradedBelow = 0.35
)

var regimeMultipliers = map[models.VolRegime]float64{
	models.RegimeLow:    1.0,
	models.RegimeMid:    0.8,
	models.RegimeHigh:   0.55,
	models.RegimeCrisis: 0.25,
}

// RegimeMultiplier returns the sizing multiplier of a regime. Unknown regimes size as CRISIS.
func RegimeMultiplier(r models.VolRegime) float64 {
	if m, ok := regimeMultipliers[r]; ok {
		return m
	}
	return regimeMultipliers[models.RegimeCrisis]
}

// SizingPolicy returns the continuous size factor in [0,1]. It never fails.
func SizingPolicy(drawdown, drawdownSpeed float64, regime models.VolRegime, pboFlag, dsrFlag bool) float64 {
	ddPenalty := penalty(drawdown / drawdownScale)
	speedPenalty := penalty(drawdownSpeed / drawdownSpeedScale)

	size := 1 - drawdownWeight*ddPenalty - speedWeight*speedPenalty
	size *= RegimeMultiplier(regime)
	if pboFlag {
		size *= pboMultiplier
	}
	if dsrFlag {
		size *= dsrMultiplier
	}
	return clampUnit(size)
}

// penalty clamps to [0,1]; NaN counts as the worst case.
func penalty(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return clampUnit(v)
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
