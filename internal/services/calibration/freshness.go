package calibration

import (
	"TreasureEngine/internal/domain/models"
	"TreasureEngine/pkg/clock"
	"TreasureEngine/pkg/fingerprint"
	"TreasureEngine/pkg/util"
)

var (
	defaultProfile = models.StalenessProfile{
		Name:           "DEFAULT",
		MaxStalenessMs: 15 * 60 * 1000,
		Threshold:      0.5,
		Mode:           models.ActionBlock,
	}

	stalenessProfiles = map[models.StrategyClass]models.StalenessProfile{
		models.StrategyHFT: {
			Name:           string(models.StrategyHFT),
			MaxStalenessMs: 1000,
			Threshold:      0.5,
			Mode:           models.ActionBlock,
		},
		models.StrategySwing: {
			Name:           string(models.StrategySwing),
			MaxStalenessMs: 4 * 60 * 60 * 1000,
			Threshold:      0.25,
			Mode:           models.ActionDownweight,
		},
		models.StrategyPosition: {
			Name:           string(models.StrategyPosition),
			MaxStalenessMs: 72 * 60 * 60 * 1000,
			Threshold:      0.1,
			Mode:           models.ActionDownweight,
		},
	}
)

// ProfileFor returns the staleness profile of a strategy class, falling back to DEFAULT.
func ProfileFor(class models.StrategyClass) models.StalenessProfile {
	if p, ok := stalenessProfiles[class]; ok {
		return p
	}
	return defaultProfile
}

// ScoreSignalFreshness scores a signal's age against its profile.
// The clock is mandatory; the system clock is never consulted.
func ScoreSignalFreshness(signal models.Signal, clk clock.Clock) (models.Freshness, error) {
	if clk == nil {
		return models.Freshness{}, models.NewError(models.ErrCodeMissingClock, "no clock injected")
	}
	ts, ok := util.ParseMillis(signal.Timestamp)
	if !ok {
		return models.Freshness{}, models.NewError(models.ErrCodeInvalidTimestamp,
			"signal %q has unparseable timestamp %q", signal.ID, signal.Timestamp)
	}

	profile := ProfileFor(signal.StrategyClass)
	age := clk.Now() - ts
	if age < 0 {
		age = 0
	}
	score := fingerprint.Round(clamp(1-float64(age)/float64(profile.MaxStalenessMs), 0, 1))

	out := models.Freshness{
		Profile:        profile.Name,
		AgeMs:          age,
		FreshnessScore: score,
		Action:         models.ActionAllow,
		Weight:         1,
	}
	if score < profile.Threshold {
		out.Action = profile.Mode
		switch profile.Mode {
		case models.ActionBlock:
			out.Weight = 0
		case models.ActionDownweight:
			out.Weight = score
		}
	}
	return out, nil
}
