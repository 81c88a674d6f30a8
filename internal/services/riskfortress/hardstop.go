package riskfortress

import (
	"math"

	"TreasureEngine/internal/domain/models"
)

// Limits are fixed; they are not configurable per run.
var Limits = models.HardStopLimits{Trade: 0.025, Day: 0.06, Week: 0.12}

// HardStopPolicy compares horizon losses to the fixed limits.
// A NaN loss triggers its horizon.
func HardStopPolicy(tradeLossPct, dayLossPct, weekLossPct float64) models.HardStop {
	triggered := models.HardStopTriggered{
		Trade: breached(tradeLossPct, Limits.Trade),
		Day:   breached(dayLossPct, Limits.Day),
		Week:  breached(weekLossPct, Limits.Week),
	}

	reason := models.StopNone
	switch {
	case triggered.Week:
		reason = models.StopWeek
	case triggered.Day:
		reason = models.StopDay
	case triggered.Trade:
		reason = models.StopTrade
	}

	return models.HardStop{
		Limits:    Limits,
		Triggered: triggered,
		Halt:      triggered.Trade || triggered.Day || triggered.Week,
		Reason:    reason,
	}
}

func breached(loss, limit float64) bool {
	return math.IsNaN(loss) || loss >= limit
}
