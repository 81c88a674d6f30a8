package riskfortress

import "TreasureEngine/internal/domain/models"

// ApplyRiskFortress is the only supported composition of sizing and hard stop.
// A halt always zeroes the size factor.
func ApplyRiskFortress(in models.RiskInput) models.RiskAssessment {
	stop := HardStopPolicy(in.TradeLossPct, in.DayLossPct, in.WeekLossPct)
	size := SizingPolicy(in.Drawdown, in.DrawdownSpeed, in.Regime, in.PBOFlag, in.DSRFlag)

	state := models.RiskActive
	switch {
	case stop.Halt:
		size = 0
		state = models.RiskHalted
	case size < DegradedBelow:
		state = models.RiskDegraded
	}

	return models.RiskAssessment{State: state, HardStop: stop, SizeFactor: size}
}
