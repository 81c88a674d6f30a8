package usecase

import (
	"fmt"
	"math"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/internal/services/calibration"
	"TreasureEngine/pkg/fingerprint"
)

const (
	// GuardedLiveCapUSD bounds every guarded-live intent regardless of max_exposure_usd.
	GuardedLiveCapUSD = 100.0
	maxIntents        = 3
	msPerDay          = int64(24 * 60 * 60 * 1000)
)

// buildSubmissionPlan lists what a guarded-live run would send. Nothing is ever submitted:
// Submitted and SubmittedActions are fixed at false and 0.
func (s *runState) buildSubmissionPlan() *models.SubmissionPlan {
	capUSD := math.Min(GuardedLiveCapUSD, s.in.Config.Thresholds.MaxExposureUSD)
	plan := &models.SubmissionPlan{
		Mode:    models.ModeGuardedLive,
		CapUSD:  fingerprint.Round(capUSD),
		Intents: []models.OrderIntent{},
	}

	switch {
	case s.status == models.StateStopped:
		plan.Withheld = true
		plan.WithheldReason = "run stopped by kill switch"
	case len(s.pauses) > 0:
		plan.Withheld = true
		plan.WithheldReason = fmt.Sprintf("%d pause event(s)", len(s.pauses))
	}
	if plan.Withheld {
		return plan
	}

	adv := averageDailyVolume(s.in.Replay.Ticks)
	for i := len(s.barOrder) - 1; i >= 0 && len(plan.Intents) < maxIntents; i-- {
		sym := s.barOrder[i]
		bar := s.lastBar[sym]
		notional := fingerprint.Round(capUSD * bar.SizeFactor)
		if notional <= 0 {
			continue
		}
		intent := models.OrderIntent{
			ID:          fmt.Sprintf("gl-%d-%d", s.in.Config.Seed, len(plan.Intents)),
			Symbol:      sym,
			Side:        "BUY",
			NotionalUSD: notional,
			RefPrice:    bar.Price,
			SizeFactor:  bar.SizeFactor,
		}
		if a := adv[sym]; a > 0 {
			if pf, err := calibration.DeterministicPartialFill(notional, a); err == nil {
				intent.ExpectedFill = &pf
			}
		}
		plan.Intents = append(plan.Intents, intent)
	}
	return plan
}

// averageDailyVolume is the traded notional per symbol divided by the number of days it spans.
func averageDailyVolume(ticks []models.PriceTick) map[string]float64 {
	notional := map[string]float64{}
	days := map[string]map[int64]struct{}{}
	for _, t := range ticks {
		notional[t.Symbol] += float64(t.Price * t.Volume)
		if days[t.Symbol] == nil {
			days[t.Symbol] = map[int64]struct{}{}
		}
		d := t.TsMs / msPerDay
		if t.TsMs < 0 && t.TsMs%msPerDay != 0 {
			d--
		}
		days[t.Symbol][d] = struct{}{}
	}
	out := make(map[string]float64, len(notional))
	for sym, n := range notional {
		out[sym] = fingerprint.Round(n / float64(len(days[sym])))
	}
	return out
}
