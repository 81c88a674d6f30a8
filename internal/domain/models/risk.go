package models

// VolRegime is the volatility regime of the current bar, ordered by severity.
type VolRegime string

const (
	RegimeLow    VolRegime = "LOW"
	RegimeMid    VolRegime = "MID"
	RegimeHigh   VolRegime = "HIGH"
	RegimeCrisis VolRegime = "CRISIS"
)

// RiskState is the composite state of the risk state machine.
type RiskState string

const (
	RiskActive   RiskState = "ACTIVE"
	RiskDegraded RiskState = "DEGRADED"
	RiskHalted   RiskState = "HALTED"
)

// HardStopReason, in priority order WEEK > DAY > TRADE > NONE.
type HardStopReason string

const (
	StopNone  HardStopReason = "NONE"
	StopTrade HardStopReason = "TRADE_STOP"
	StopDay   HardStopReason = "DAY_STOP"
	StopWeek  HardStopReason = "WEEK_STOP"
)

type HardStopLimits struct {
	Trade float64 `json:"trade"`
	Day   float64 `json:"day"`
	Week  float64 `json:"week"`
}

type HardStopTriggered struct {
	Trade bool `json:"trade"`
	Day   bool `json:"day"`
	Week  bool `json:"week"`
}

type HardStop struct {
	Limits    HardStopLimits    `json:"limits"`
	Triggered HardStopTriggered `json:"triggered"`
	Halt      bool              `json:"halt"`
	Reason    HardStopReason    `json:"reason"`
}

// RiskInput is the instantaneous view the fortress needs for one bar.
// Loss fields are positive fractions, e.g. 0.03 for a 3% loss.
type RiskInput struct {
	TradeLossPct  float64   `json:"trade_loss_pct"`
	DayLossPct    float64   `json:"day_loss_pct"`
	WeekLossPct   float64   `json:"week_loss_pct"`
	Drawdown      float64   `json:"drawdown"`
	DrawdownSpeed float64   `json:"drawdown_speed"`
	Regime        VolRegime `json:"regime"`
	PBOFlag       bool      `json:"pbo_flag"`
	DSRFlag       bool      `json:"dsr_flag"`
}

type RiskAssessment struct {
	State      RiskState `json:"state"`
	HardStop   HardStop  `json:"hard_stop"`
	SizeFactor float64   `json:"size_factor"`
}

// Crisis scenario identifiers, in generation order.
const (
	CrisisGapDown         = "gap_down"
	CrisisWhipsaw         = "whipsaw"
	CrisisVolExpansion    = "vol_expansion"
	CrisisLiquidityVacuum = "liquidity_vacuum"
)

type CrisisScenario struct {
	ID     string    `json:"id"`
	Seed   uint32    `json:"seed"`
	Points []float64 `json:"points"`
}

type CrisisSuite struct {
	Seed        uint32           `json:"seed"`
	Algorithm   string           `json:"algorithm"`
	Scenarios   []CrisisScenario `json:"scenarios"`
	Fingerprint string           `json:"fingerprint"`
}
