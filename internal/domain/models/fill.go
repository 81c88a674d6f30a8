package models

// FillRecord is one historical execution used for calibration.
type FillRecord struct {
	FillID    string  `json:"fill_id"`
	Qty       float64 `json:"qty"`
	Price     float64 `json:"price"`
	Fee       float64 `json:"fee"`
	LatencyMs float64 `json:"latency_ms"`
}

// FillHistory is a loaded set of fills. A nil *FillHistory means no source was supplied.
type FillHistory struct {
	Records []FillRecord `json:"records"`
}

// Len is nil-safe.
func (h *FillHistory) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Records)
}
