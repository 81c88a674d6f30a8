package repository

import (
	"sort"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/pkg/fingerprint"
)

type tickIdentity struct {
	TsMs   int64   `json:"ts_ms"`
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// TickFingerprint digests the identifying fields of a tick.
func TickFingerprint(t models.PriceTick) string {
	return fingerprint.MustOf(tickIdentity{TsMs: t.TsMs, Symbol: t.Symbol, Price: t.Price, Volume: t.Volume})
}

// SortReplay fills missing tick fingerprints and orders ticks by (ts_ms, fingerprint).
func SortReplay(ticks []models.PriceTick) {
	for i := range ticks {
		if ticks[i].Fingerprint == "" {
			ticks[i].Fingerprint = TickFingerprint(ticks[i])
		}
	}
	sort.SliceStable(ticks, func(i, j int) bool {
		if ticks[i].TsMs != ticks[j].TsMs {
			return ticks[i].TsMs < ticks[j].TsMs
		}
		return ticks[i].Fingerprint < ticks[j].Fingerprint
	})
}

// matchTick applies a ReplayQuery window. Zero bounds are open.
func matchTick(q models.ReplayQuery, t models.PriceTick) bool {
	if q.Symbol != "" && t.Symbol != q.Symbol {
		return false
	}
	if q.FromMs > 0 && t.TsMs < q.FromMs {
		return false
	}
	if q.ToMs > 0 && t.TsMs > q.ToMs {
		return false
	}
	return true
}
