package models

// StrategyClass selects a staleness profile.
type StrategyClass string

const (
	StrategyHFT      StrategyClass = "HFT"
	StrategySwing    StrategyClass = "SWING"
	StrategyPosition StrategyClass = "POSITION"
)

// FreshnessAction is what a consumer must do with a signal.
type FreshnessAction string

const (
	ActionAllow      FreshnessAction = "ALLOW"
	ActionBlock      FreshnessAction = "BLOCK"
	ActionDownweight FreshnessAction = "DOWNWEIGHT"
)

// Signal is a strategy signal stamped with the time it was produced.
// Timestamp accepts RFC3339 or epoch seconds / milliseconds.
type Signal struct {
	ID            string        `json:"id"`
	StrategyClass StrategyClass `json:"strategy_class"`
	Timestamp     string        `json:"timestamp"`
}

type StalenessProfile struct {
	Name           string          `json:"name"`
	MaxStalenessMs int64           `json:"max_staleness_ms"`
	Threshold      float64         `json:"threshold"`
	Mode           FreshnessAction `json:"mode"`
}

type Freshness struct {
	Profile        string          `json:"profile"`
	AgeMs          int64           `json:"age_ms"`
	FreshnessScore float64         `json:"freshness_score"`
	Action         FreshnessAction `json:"action"`
	Weight         float64         `json:"weight"`
}
