package models

import "sort"

// Scenario names.
const (
	ScenarioBaseline        = "baseline"
	ScenarioGapDown         = "gap_down"
	ScenarioWhipsaw         = "whipsaw"
	ScenarioVolExpansion    = "vol_expansion"
	ScenarioLiquidityVacuum = "liquidity_vacuum"
)

// Scenario is a named stress profile applied to the run-level monitors.
type Scenario struct {
	Name    string  `json:"name"`
	Gap     float64 `json:"gap"`
	Vol     float64 `json:"vol"`
	DDSpeed float64 `json:"dd_speed"`
	DataGap int     `json:"data_gap"`
	PnL     float64 `json:"pnl"`
}

var scenarios = map[string]Scenario{
	ScenarioBaseline:        {Name: ScenarioBaseline, Gap: 1.0, Vol: 0.2, DDSpeed: 0.01, DataGap: 0, PnL: 1.0},
	ScenarioGapDown:         {Name: ScenarioGapDown, Gap: 2.5, Vol: 0.6, DDSpeed: 0.05, DataGap: 1, PnL: 0.7},
	ScenarioWhipsaw:         {Name: ScenarioWhipsaw, Gap: 1.5, Vol: 0.9, DDSpeed: 0.04, DataGap: 0, PnL: 0.8},
	ScenarioVolExpansion:    {Name: ScenarioVolExpansion, Gap: 1.3, Vol: 1.2, DDSpeed: 0.08, DataGap: 0, PnL: 0.6},
	ScenarioLiquidityVacuum: {Name: ScenarioLiquidityVacuum, Gap: 2.0, Vol: 0.8, DDSpeed: 0.07, DataGap: 2, PnL: 0.5},
}

// LookupScenario returns the named profile.
func LookupScenario(name string) (Scenario, bool) {
	s, ok := scenarios[name]
	return s, ok
}

// Scenarios lists every profile sorted by name.
func Scenarios() []Scenario {
	out := make([]Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
