package usecase

import (
	"math"

	"TreasureEngine/internal/domain/models"
)

// ValidateRunConfig checks every field of cfg and resolves its scenario.
// It fails closed: the first invalid field aborts with a coded error.
func ValidateRunConfig(cfg models.CanaryRunConfig) (models.Scenario, error) {
	if !cfg.Mode.Valid() {
		return models.Scenario{}, models.NewError(models.ErrCodeInvalidMode, "unsupported mode %q", cfg.Mode)
	}
	sc, ok := models.LookupScenario(cfg.Scenario)
	if !ok {
		return models.Scenario{}, models.NewError(models.ErrCodeInvalidScenario, "unsupported scenario %q", cfg.Scenario)
	}

	th := cfg.Thresholds
	checks := []struct {
		key string
		v   float64
	}{
		{"max_reality_gap", th.MaxRealityGap},
		{"max_exposure_usd", th.MaxExposureUSD},
		{"max_dd_speed", th.MaxDDSpeed},
		{"max_vol_spike", th.MaxVolSpike},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return models.Scenario{}, models.NewError(models.ErrCodeInvalidThreshold, "%s must be finite", c.key)
		}
		if c.v < 0 {
			return models.Scenario{}, models.NewError(models.ErrCodeInvalidThreshold, "%s must be >= 0, got %v", c.key, c.v)
		}
	}
	if th.MaxRealityGap > 1 {
		return models.Scenario{}, models.NewError(models.ErrCodeInvalidThreshold, "max_reality_gap must be in [0,1], got %v", th.MaxRealityGap)
	}
	if th.MaxRiskEvents < 0 {
		return models.Scenario{}, models.NewError(models.ErrCodeInvalidThreshold, "max_risk_events must be >= 0, got %d", th.MaxRiskEvents)
	}
	if th.MaxDataGapCount < 0 {
		return models.Scenario{}, models.NewError(models.ErrCodeInvalidThreshold, "max_data_gap_count must be >= 0, got %d", th.MaxDataGapCount)
	}
	return sc, nil
}

// validateReplay enforces the replay contract: present, sorted by (ts_ms, fingerprint), positive prices.
func validateReplay(r *models.MarketReplay) error {
	if r == nil {
		return models.NewError(models.ErrCodeInvalidMarketData, "market replay is required")
	}
	for i, t := range r.Ticks {
		if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) || t.Price <= 0 {
			return models.NewError(models.ErrCodeInvalidMarketData, "tick %d has invalid price %v", i, t.Price)
		}
		if math.IsNaN(t.Volume) || math.IsInf(t.Volume, 0) || t.Volume < 0 {
			return models.NewError(models.ErrCodeInvalidMarketData, "tick %d has invalid volume %v", i, t.Volume)
		}
		if i == 0 {
			continue
		}
		prev := r.Ticks[i-1]
		if t.TsMs < prev.TsMs || (t.TsMs == prev.TsMs && t.Fingerprint < prev.Fingerprint) {
			return models.NewError(models.ErrCodeInvalidMarketData, "tick %d is out of order", i)
		}
	}
	return nil
}
