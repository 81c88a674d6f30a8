package models

// Severity of a reason code.
type Severity string

const (
	SeverityPause Severity = "PAUSE"
	SeverityFail  Severity = "FAIL"
	SeverityWarn  Severity = "WARN"
)

// Reason codes. This alphabet is a wire contract shared with report consumers.
const (
	CodePauseRealityGap       = "PAUSE_REALITY_GAP"
	CodePauseDDSpeed          = "PAUSE_DD_SPEED"
	CodePauseVolSpike         = "PAUSE_VOL_SPIKE"
	CodePauseDataGap          = "PAUSE_DATA_GAP"
	CodePauseRiskHardstop     = "PAUSE_RISK_HARDSTOP"
	CodeFailOverfitUnknown    = "FAIL_OVERFIT_UNKNOWN_STRICT"
	CodeWarnHeuristicDedupUse = "WARN_HEURISTIC_DEDUP_USED"
)

type ReasonCode struct {
	Code          string   `json:"code"`
	Metric        string   `json:"metric"`
	ThresholdKey  string   `json:"threshold_key"`
	Severity      Severity `json:"severity"`
	ContextFields []string `json:"context_fields"`
}

var reasonCodes = []ReasonCode{
	{
		Code:          CodePauseRealityGap,
		Metric:        "reality_gap",
		ThresholdKey:  "max_reality_gap",
		Severity:      SeverityPause,
		ContextFields: []string{"mean_abs_return", "slip_mean_bps", "gap_multiplier", "calibration_outputs_hash"},
	},
	{
		Code:          CodePauseDDSpeed,
		Metric:        "dd_speed",
		ThresholdKey:  "max_dd_speed",
		Severity:      SeverityPause,
		ContextFields: []string{"scenario", "dd_speed_multiplier"},
	},
	{
		Code:          CodePauseVolSpike,
		Metric:        "vol_spike",
		ThresholdKey:  "max_vol_spike",
		Severity:      SeverityPause,
		ContextFields: []string{"scenario", "vol_multiplier", "crisis_suite_fingerprint"},
	},
	{
		Code:          CodePauseDataGap,
		Metric:        "data_gap_count",
		ThresholdKey:  "max_data_gap_count",
		Severity:      SeverityPause,
		ContextFields: []string{"scenario", "gap_index"},
	},
	{
		Code:          CodePauseRiskHardstop,
		Metric:        "risk_events",
		ThresholdKey:  "max_risk_events",
		Severity:      SeverityPause,
		ContextFields: []string{"bar_index", "reason", "risk_events"},
	},
	{
		Code:          CodeFailOverfitUnknown,
		Metric:        "overfit_status",
		ThresholdKey:  "strict",
		Severity:      SeverityFail,
		ContextFields: []string{"overfit_status"},
	},
	{
		Code:          CodeWarnHeuristicDedupUse,
		Metric:        "heuristic_dedup_used",
		ThresholdKey:  "",
		Severity:      SeverityWarn,
		ContextFields: []string{"replay_source"},
	},
}

// ReasonCodes returns the full, ordered reason-code table.
func ReasonCodes() []ReasonCode {
	out := make([]ReasonCode, len(reasonCodes))
	for i, rc := range reasonCodes {
		rc.ContextFields = append([]string(nil), rc.ContextFields...)
		out[i] = rc
	}
	return out
}

// LookupReasonCode finds a code in the table.
func LookupReasonCode(code string) (ReasonCode, bool) {
	for _, rc := range reasonCodes {
		if rc.Code == code {
			return rc, true
		}
	}
	return ReasonCode{}, false
}
