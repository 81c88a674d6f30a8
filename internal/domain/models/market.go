package models

// PriceTick is one bar of the market replay stream.
type PriceTick struct {
	TsMs        int64   `json:"ts_ms"`
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Volume      float64 `json:"volume,omitempty"`
	Fingerprint string  `json:"fingerprint,omitempty"`
}

// ReplaySource names where a replay came from. Networked sources are subject to the network gate.
type ReplaySource string

const (
	ReplaySourceInline     ReplaySource = "inline"
	ReplaySourceFile       ReplaySource = "file"
	ReplaySourceClickHouse ReplaySource = "clickhouse"
	ReplaySourceRecorder   ReplaySource = "recorder"
)

// Networked reports whether loading from this source requires network access.
func (s ReplaySource) Networked() bool {
	return s == ReplaySourceClickHouse || s == ReplaySourceRecorder
}

// MarketReplay is an already sorted, already deduplicated sequence of ticks.
type MarketReplay struct {
	Source             ReplaySource `json:"source"`
	Ticks              []PriceTick  `json:"ticks"`
	HeuristicDedupUsed bool         `json:"heuristic_dedup_used"`
}

// ReplayQuery selects a replay window from a store.
type ReplayQuery struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	FromMs int64  `json:"from_ms" yaml:"from_ms"`
	ToMs   int64  `json:"to_ms" yaml:"to_ms"`
	Limit  int    `json:"limit" yaml:"limit"`
}
