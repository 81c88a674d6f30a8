package models

// CalibrationMode records the provenance of calibration parameters.
type CalibrationMode string

const (
	CalibrationReal        CalibrationMode = "REAL"
	CalibrationProxy       CalibrationMode = "PROXY"
	CalibrationShadowProxy CalibrationMode = "shadow-proxy"
)

type CalibrationParams struct {
	SlipMeanBps   float64 `json:"slip_mean_bps"`
	SlipStdBps    float64 `json:"slip_std_bps"`
	LatencyMeanMs float64 `json:"latency_mean_ms"`
	LatencyStdMs  float64 `json:"latency_std_ms"`
}

// CalibrationResult is computed once per run and never mutated.
type CalibrationResult struct {
	Mode        CalibrationMode   `json:"mode"`
	Params      CalibrationParams `json:"params"`
	Seed        uint32            `json:"seed"`
	FillCount   int               `json:"fill_count"`
	InputsHash  string            `json:"inputs_hash"`
	OutputsHash string            `json:"outputs_hash"`
}

// LiquidityBucket is a coarse classification of average daily volume.
type LiquidityBucket string

const (
	BucketHigh  LiquidityBucket = "HIGH"
	BucketMid   LiquidityBucket = "MID"
	BucketLow   LiquidityBucket = "LOW"
	BucketMicro LiquidityBucket = "MICRO"
)

type PartialFill struct {
	Bucket           LiquidityBucket `json:"bucket"`
	Participation    float64         `json:"participation"`
	FillRatio        float64         `json:"fill_ratio"`
	FilledNotional   float64         `json:"filled_notional"`
	UnfilledNotional float64         `json:"unfilled_notional"`
}
