package usecase

import (
	"fmt"
	"math"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/internal/services/features"
	"TreasureEngine/internal/services/riskfortress"
	"TreasureEngine/pkg/fingerprint"
)

// evaluateMonitors runs the four run-level monitors once, at a single clock tick, before replay.
func (s *runState) evaluateMonitors() {
	cfg := s.in.Config
	th := cfg.Thresholds
	sc := s.scenario
	ts := s.in.Clock.Now()

	mar := meanAbsReturnBySymbol(s.in.Replay.Ticks)
	gap := realityGap(s.calib.Params.SlipMeanBps, mar, sc.Gap)

	s.monitors = models.Monitors{
		RealityGap:    gap,
		VolSpike:      sc.Vol,
		DDSpeed:       sc.DDSpeed,
		DataGapCount:  sc.DataGap,
		OverfitStatus: models.OverfitUnknown,
	}
	if s.in.Overfit.Known() {
		s.monitors.OverfitStatus = models.OverfitPresent
	}

	if gap > th.MaxRealityGap {
		s.pause(models.CodePauseRealityGap, "reality_gap", gap, th.MaxRealityGap, ts, map[string]interface{}{
			"mean_abs_return":          fingerprint.Round(mar),
			"slip_mean_bps":            s.calib.Params.SlipMeanBps,
			"gap_multiplier":           sc.Gap,
			"calibration_outputs_hash": s.calib.OutputsHash,
		})
	}
	if sc.DDSpeed > th.MaxDDSpeed {
		s.pause(models.CodePauseDDSpeed, "dd_speed", sc.DDSpeed, th.MaxDDSpeed, ts, map[string]interface{}{
			"scenario":            sc.Name,
			"dd_speed_multiplier": sc.DDSpeed,
		})
	}
	if sc.Vol > th.MaxVolSpike {
		s.pause(models.CodePauseVolSpike, "vol_spike", sc.Vol, th.MaxVolSpike, ts, map[string]interface{}{
			"scenario":       sc.Name,
			"vol_multiplier": sc.Vol,
		})
	}
	for i := th.MaxDataGapCount; i < sc.DataGap; i++ {
		s.pause(models.CodePauseDataGap, "data_gap_count", float64(sc.DataGap), float64(th.MaxDataGapCount), ts, map[string]interface{}{
			"scenario":  sc.Name,
			"gap_index": i,
		})
	}

	if cfg.CrisisMode && cfg.KillSwitch.AutoPauseOnCrisis {
		suite := riskfortress.GenerateDeterministicCrisisSuite(cfg.Seed)
		s.crisisFP = suite.Fingerprint
		s.pause(models.CodePauseVolSpike, "crisis_worst_drawdown", riskfortress.WorstDrawdown(suite), th.MaxVolSpike, ts, map[string]interface{}{
			"scenario":                 sc.Name,
			"vol_multiplier":           sc.Vol,
			"crisis_suite_fingerprint": suite.Fingerprint,
		})
	}

	if s.in.Replay.HeuristicDedupUsed {
		s.warnings = append(s.warnings, models.Warning{
			Code:    models.CodeWarnHeuristicDedupUse,
			Ts:      ts,
			Message: fmt.Sprintf("replay from %s was deduplicated heuristically", s.in.Replay.Source),
		})
	}

	s.log = append(s.log, models.StateLogEntry{
		TsMs:   ts,
		Event:  logMonitors,
		Detail: fmt.Sprintf("pause_events=%d", len(s.pauses)),
	})
}

func (s *runState) pause(code, metric string, value, threshold float64, ts int64, ctx map[string]interface{}) {
	s.pauses = append(s.pauses, models.PauseEvent{
		Code:               code,
		Metric:             metric,
		Value:              fingerprint.Round(value),
		Threshold:          threshold,
		Ts:                 ts,
		ContextFingerprint: contextFingerprint(ctx),
	})
}

// realityGap compares calibrated slippage to the typical per-bar move.
// With no measurable move the gap saturates at 1.
func realityGap(slipMeanBps, meanAbsReturn, gapMultiplier float64) float64 {
	if !(meanAbsReturn > 0) || math.IsInf(meanAbsReturn, 0) {
		return 1
	}
	v := slipMeanBps / 1e4 / meanAbsReturn * gapMultiplier
	switch {
	case math.IsNaN(v):
		return 1
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	return fingerprint.Round(v)
}

// meanAbsReturnBySymbol averages |r| over every symbol's own return series.
func meanAbsReturnBySymbol(ticks []models.PriceTick) float64 {
	bySymbol := map[string][]models.PriceTick{}
	order := []string{}
	for _, t := range ticks {
		if _, ok := bySymbol[t.Symbol]; !ok {
			order = append(order, t.Symbol)
		}
		bySymbol[t.Symbol] = append(bySymbol[t.Symbol], t)
	}
	var all []float64
	for _, sym := range order {
		all = append(all, features.ComputeSimpleReturns(bySymbol[sym])...)
	}
	return features.MeanAbsReturn(all)
}

func contextFingerprint(fields map[string]interface{}) string {
	fp, err := fingerprint.Of(fields)
	if err != nil {
		return ""
	}
	return fp
}
