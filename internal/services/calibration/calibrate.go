// Package calibration turns fill history into execution-cost parameters.
package calibration

import (
	"math"
	"sort"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/pkg/fingerprint"
)

// proxyFills is the built-in synthetic set used when no fill source is supplied.
var proxyFills = []models.FillRecord{
	{FillID: "proxy-1", Qty: 1.0, Price: 100.0, Fee: 0.05, LatencyMs: 120},
	{FillID: "proxy-2", Qty: 2.0, Price: 101.0, Fee: 0.11, LatencyMs: 150},
	{FillID: "proxy-3", Qty: 1.5, Price: 99.5, Fee: 0.08, LatencyMs: 135},
}

type calibrationInputs struct {
	Seed  uint32              `json:"seed"`
	Mode  string              `json:"mode"`
	Fills []models.FillRecord `json:"fills"`
}

// Calibrate derives slippage and latency parameters from fills.
//
// A nil history means no source was supplied. An empty, non-nil history means a source
// exists but carried nothing, which yields shadow-proxy parameters.
func Calibrate(fills *models.FillHistory, seed uint32, strict bool) (models.CalibrationResult, error) {
	var (
		mode    models.CalibrationMode
		records []models.FillRecord
		hashed  []models.FillRecord
	)

	switch {
	case fills != nil && len(fills.Records) > 0:
		mode = models.CalibrationReal
		records = fills.Records
		if strict {
			for i, f := range records {
				if f.FillID == "" {
					return models.CalibrationResult{}, models.NewError(models.ErrCodeStrictMissingID,
						"fill record %d has no fill_id", i)
				}
			}
		}
		hashed = records
	case strict:
		return models.CalibrationResult{}, models.NewError(models.ErrCodeStrictFillsRequired,
			"strict calibration requires a non-empty fill history")
	case fills == nil:
		mode = models.CalibrationProxy
		records = proxyFills
		hashed = proxyFills
	default:
		mode = models.CalibrationShadowProxy
		records = proxyFills
		hashed = []models.FillRecord{}
	}

	params, err := deriveParams(records)
	if err != nil {
		return models.CalibrationResult{}, err
	}

	inputsHash, err := fingerprint.Of(calibrationInputs{Seed: seed, Mode: string(mode), Fills: roundFills(hashed)})
	if err != nil {
		return models.CalibrationResult{}, models.WrapError(models.ErrCodeInvalidFillRecord, err, "hash fill inputs")
	}
	outputsHash, err := fingerprint.Of(params)
	if err != nil {
		return models.CalibrationResult{}, models.WrapError(models.ErrCodeInvalidFillRecord, err, "hash calibration outputs")
	}

	return models.CalibrationResult{
		Mode:        mode,
		Params:      params,
		Seed:        seed,
		FillCount:   len(hashed),
		InputsHash:  inputsHash,
		OutputsHash: outputsHash,
	}, nil
}

func deriveParams(records []models.FillRecord) (models.CalibrationParams, error) {
	feeBps := make([]float64, 0, len(records))
	qty := make([]float64, 0, len(records))
	latency := make([]float64, 0, len(records))

	for i, f := range records {
		if !finite(f.Qty) || f.Qty <= 0 || !finite(f.Price) || f.Price <= 0 {
			return models.CalibrationParams{}, models.NewError(models.ErrCodeInvalidFillRecord,
				"fill record %d: qty and price must be positive and finite", i)
		}
		if !finite(f.Fee) || f.Fee < 0 || !finite(f.LatencyMs) || f.LatencyMs < 0 {
			return models.CalibrationParams{}, models.NewError(models.ErrCodeInvalidFillRecord,
				"fill record %d: fee and latency must be non-negative and finite", i)
		}
		feeBps = append(feeBps, f.Fee/(f.Qty*f.Price)*10000)
		qty = append(qty, f.Qty)
		latency = append(latency, f.LatencyMs)
	}

	medFee := Median(feeBps)
	medLatency := Median(latency)

	return models.CalibrationParams{
		SlipMeanBps:   fingerprint.Round(float64(0.8*medFee) + float64(0.2*Median(qty))),
		SlipStdBps:    fingerprint.Round(math.Max(0.01, 0.15*medFee)),
		LatencyMeanMs: fingerprint.Round(medLatency),
		LatencyStdMs:  fingerprint.Round(math.Max(1, 0.2*medLatency)),
	}, nil
}

func roundFills(in []models.FillRecord) []models.FillRecord {
	out := make([]models.FillRecord, len(in))
	for i, f := range in {
		out[i] = models.FillRecord{
			FillID:    f.FillID,
			Qty:       fingerprint.Round(f.Qty),
			Price:     fingerprint.Round(f.Price),
			Fee:       fingerprint.Round(f.Fee),
			LatencyMs: fingerprint.Round(f.LatencyMs),
		}
	}
	return out
}

// Median returns the median of xs without modifying it. Empty input yields 0.
func Median(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
