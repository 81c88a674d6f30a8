package models

type ListRunsRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}

type CrisisSuiteRequest struct {
	Seed uint32 `query:"seed" json:"seed"`
}

type RiskAssessRequest struct {
	RiskInput
	Regime VolRegime `json:"regime" default:"LOW" validate:"oneof=LOW MID HIGH CRISIS"`
}

// Input merges the validated regime back into the embedded RiskInput.
func (r RiskAssessRequest) Input() RiskInput {
	in := r.RiskInput
	in.Regime = r.Regime
	return in
}

type PartialFillRequest struct {
	OrderNotional float64 `json:"order_notional"`
	ADV           float64 `json:"adv"`
}

// FreshnessRequest scores a signal against an explicit evaluation time.
type FreshnessRequest struct {
	Signal Signal `json:"signal"`
	NowMs  int64  `json:"now_ms" validate:"required,gt=0"`
}

type CalibrateRequest struct {
	Seed   uint32       `json:"seed"`
	Strict bool         `json:"strict"`
	Fills  *FillHistory `json:"fills,omitempty"`
}
