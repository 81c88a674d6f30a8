package models

// Mode is the deployment stage a canary run evaluates.
type Mode string

const (
	ModeShadow      Mode = "SHADOW"
	ModePaper       Mode = "PAPER"
	ModeGuardedLive Mode = "GUARDED_LIVE"
)

// Valid reports whether m is one of the three enumerated modes.
func (m Mode) Valid() bool {
	return m == ModeShadow || m == ModePaper || m == ModeGuardedLive
}

type Thresholds struct {
	MaxRealityGap   float64 `json:"max_reality_gap" yaml:"max_reality_gap"`
	MaxRiskEvents   int     `json:"max_risk_events" yaml:"max_risk_events"`
	MaxExposureUSD  float64 `json:"max_exposure_usd" yaml:"max_exposure_usd"`
	MaxDDSpeed      float64 `json:"max_dd_speed" yaml:"max_dd_speed"`
	MaxVolSpike     float64 `json:"max_vol_spike" yaml:"max_vol_spike"`
	MaxDataGapCount int     `json:"max_data_gap_count" yaml:"max_data_gap_count"`
}

type KillSwitch struct {
	Enabled           bool `json:"enabled" yaml:"enabled"`
	AutoPauseOnCrisis bool `json:"auto_pause_on_crisis" yaml:"auto_pause_on_crisis"`
}

// CanaryRunConfig enumerates every option a run recognizes.
type CanaryRunConfig struct {
	Mode       Mode       `json:"mode" yaml:"mode"`
	Scenario   string     `json:"scenario" yaml:"scenario"`
	Seed       uint32     `json:"seed" yaml:"seed"`
	Strict     bool       `json:"strict" yaml:"strict"`
	CrisisMode bool       `json:"crisis_mode" yaml:"crisis_mode"`
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`
	KillSwitch KillSwitch `json:"kill_switch" yaml:"kill_switch"`
}

// DefaultCanaryRunConfig returns the configuration used when a field is not supplied.
func DefaultCanaryRunConfig() CanaryRunConfig {
	return CanaryRunConfig{
		Mode:     ModeShadow,
		Scenario: ScenarioBaseline,
		Seed:     1,
		Thresholds: Thresholds{
			MaxRealityGap:   0.35,
			MaxRiskEvents:   3,
			MaxExposureUSD:  100,
			MaxDDSpeed:      0.06,
			MaxVolSpike:     0.75,
			MaxDataGapCount: 0,
		},
		KillSwitch: KillSwitch{Enabled: true, AutoPauseOnCrisis: true},
	}
}

// RunCapabilities are host-granted switches passed explicitly into every run.
type RunCapabilities struct {
	NetworkEnabled    bool `json:"network_enabled" yaml:"network_enabled"`
	KillSwitchEnabled bool `json:"kill_switch_enabled" yaml:"kill_switch_enabled"`
}

// DefaultCapabilities keeps the network off and the kill switch armed.
func DefaultCapabilities() RunCapabilities {
	return RunCapabilities{NetworkEnabled: false, KillSwitchEnabled: true}
}

// OverfitStatus is the tri-state presence signal of the external overfit report.
type OverfitStatus string

const (
	OverfitUnknown OverfitStatus = "unknown"
	OverfitPresent OverfitStatus = "present"
)

// OverfitReport is produced by the overfitting-defense module. Metrics are opaque.
type OverfitReport struct {
	Status  OverfitStatus      `json:"status"`
	PBOFail bool               `json:"pbo_fail"`
	DSRFail bool               `json:"dsr_fail"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// Known reports whether a usable report was found.
func (r OverfitReport) Known() bool { return r.Status == OverfitPresent }

// Normalized returns r with an empty status read as present: a document that carries
// flags is a report. Any status other than present or unknown is INVALID_REQUEST.
func (r OverfitReport) Normalized() (OverfitReport, error) {
	switch r.Status {
	case "":
		r.Status = OverfitPresent
	case OverfitPresent, OverfitUnknown:
	default:
		return OverfitReport{}, NewError(ErrCodeInvalidRequest, "unknown overfit status %q", r.Status)
	}
	return r, nil
}

type PauseEvent struct {
	Code               string  `json:"code"`
	Metric             string  `json:"metric"`
	Value              float64 `json:"value"`
	Threshold          float64 `json:"threshold"`
	Ts                 int64   `json:"ts"`
	ContextFingerprint string  `json:"context_fingerprint"`
}

type RiskEvent struct {
	Code            string         `json:"code"`
	Reason          HardStopReason `json:"reason"`
	StateTransition string         `json:"state_transition"`
	Ts              int64          `json:"ts"`
}

// TimelineEntry is one row of the merged pause/risk event trace.
type TimelineEntry struct {
	Ts   int64  `json:"ts"`
	Code string `json:"code"`
	Kind string `json:"kind"`
}

type Warning struct {
	Code    string `json:"code"`
	Ts      int64  `json:"ts"`
	Message string `json:"message"`
}

type Monitors struct {
	RealityGap    float64       `json:"reality_gap"`
	VolSpike      float64       `json:"vol_spike"`
	DDSpeed       float64       `json:"dd_speed"`
	DataGapCount  int           `json:"data_gap_count"`
	RiskEvents    int           `json:"risk_events"`
	OverfitStatus OverfitStatus `json:"overfit_status"`
}

type PaperMetrics struct {
	NetPnL        float64 `json:"net_pnl"`
	RawNetPnL     float64 `json:"raw_net_pnl"`
	PnLMultiplier float64 `json:"pnl_multiplier"`
	FeesPaid      float64 `json:"fees_paid"`
	SlippageCost  float64 `json:"slippage_cost"`
	PaperFills    int     `json:"paper_fills"`
	Volume        float64 `json:"volume"`
}

type RunMetrics struct {
	BarsTotal       int           `json:"bars_total"`
	BarsReplayed    int           `json:"bars_replayed"`
	HaltedBars      int           `json:"halted_bars"`
	DegradedBars    int           `json:"degraded_bars"`
	MinSizeFactor   float64       `json:"min_size_factor"`
	MeanSizeFactor  float64       `json:"mean_size_factor"`
	FinalSizeFactor float64       `json:"final_size_factor"`
	FinalRiskState  RiskState     `json:"final_risk_state"`
	MaxDrawdown     float64       `json:"max_drawdown"`
	MeanAbsReturn   float64       `json:"mean_abs_return"`
	Paper           *PaperMetrics `json:"paper,omitempty"`
}

type Invariants struct {
	NetworkGuard   bool `json:"network_guard"`
	Submitted      bool `json:"submitted"`
	LiveSubmitFuse bool `json:"live_submit_fuse"`
}

type OrderIntent struct {
	ID           string       `json:"id"`
	Symbol       string       `json:"symbol"`
	Side         string       `json:"side"`
	NotionalUSD  float64      `json:"notional_usd"`
	RefPrice     float64      `json:"ref_price"`
	SizeFactor   float64      `json:"size_factor"`
	ExpectedFill *PartialFill `json:"expected_fill,omitempty"`
}

// SubmissionPlan lists what a guarded-live run would do. It is never submitted.
type SubmissionPlan struct {
	Mode             Mode          `json:"mode"`
	CapUSD           float64       `json:"cap_usd"`
	Intents          []OrderIntent `json:"intents"`
	Withheld         bool          `json:"withheld"`
	WithheldReason   string        `json:"withheld_reason,omitempty"`
	Submitted        bool          `json:"submitted"`
	SubmittedActions int           `json:"submitted_actions"`
}

// ControllerState is the lifecycle state of one run.
type ControllerState string

const (
	StateInit      ControllerState = "INIT"
	StateReplaying ControllerState = "REPLAYING"
	StateStopped   ControllerState = "STOPPED"
	StateCompleted ControllerState = "COMPLETED"
)

// Verdict summarizes whether any pause fired.
type Verdict string

const (
	VerdictPass  Verdict = "PASS"
	VerdictPause Verdict = "PAUSE"
)

type BarLog struct {
	Index      int            `json:"index"`
	BarTsMs    int64          `json:"bar_ts_ms"`
	Symbol     string         `json:"symbol"`
	Price      float64        `json:"price"`
	State      RiskState      `json:"state"`
	SizeFactor float64        `json:"size_factor"`
	Reason     HardStopReason `json:"reason"`
	Latched    bool           `json:"latched"`
}

type StateLogEntry struct {
	TsMs   int64   `json:"ts_ms"`
	Event  string  `json:"event"`
	Bar    *BarLog `json:"bar,omitempty"`
	Detail string  `json:"detail,omitempty"`
}

type CanaryReport struct {
	Status      ControllerState   `json:"status"`
	Verdict     Verdict           `json:"verdict"`
	Mode        Mode              `json:"mode"`
	Scenario    string            `json:"scenario"`
	Seed        uint32            `json:"seed"`
	Calibration CalibrationResult `json:"calibration"`
	PauseEvents []PauseEvent      `json:"pause_events"`
	RiskEvents  []RiskEvent       `json:"risk_events"`
	Timeline    []TimelineEntry   `json:"timeline"`
	Warnings    []Warning         `json:"warnings"`
	Monitors    Monitors          `json:"monitors"`
	Metrics     RunMetrics        `json:"metrics"`
	Invariants  Invariants        `json:"invariants"`
	CrisisSuite string            `json:"crisis_suite_fingerprint,omitempty"`
	Fingerprint string            `json:"fingerprint"`
}

// CanaryRun is everything one run produces.
type CanaryRun struct {
	Config         CanaryRunConfig `json:"config"`
	Report         CanaryReport    `json:"report"`
	StateLog       []StateLogEntry `json:"state_log"`
	SubmissionPlan *SubmissionPlan `json:"submission_plan,omitempty"`
}

// ReportSummary is one row of the archive listing.
type ReportSummary struct {
	Fingerprint string          `json:"fingerprint"`
	Mode        Mode            `json:"mode"`
	Scenario    string          `json:"scenario"`
	Seed        uint32          `json:"seed"`
	Status      ControllerState `json:"status"`
	Verdict     Verdict         `json:"verdict"`
	PauseEvents int             `json:"pause_events"`
	RiskEvents  int             `json:"risk_events"`
}
