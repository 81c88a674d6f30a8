package features

import (
	"math"

	"TreasureEngine/internal/domain/models"
)

const (
	msPerDay  = int64(24 * 60 * 60 * 1000)
	msPerWeek = 7 * msPerDay

	// RegimeWindow is the number of trailing returns used to classify volatility.
	RegimeWindow = 5
)

// ComputeSimpleReturns computes r_t = P_t / P_{t-1} - 1.
// It returns a slice of length len(ticks)-1, or nil if insufficient data.
func ComputeSimpleReturns(ticks []models.PriceTick) []float64 {
	if len(ticks) < 2 {
		return nil
	}
	out := make([]float64, 0, len(ticks)-1)
	for i := 1; i < len(ticks); i++ {
		prev := ticks[i-1].Price
		cur := ticks[i].Price
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, cur/prev-1)
	}
	return out
}

// MeanAbsReturn is the mean of |r| over returns, 0 when empty.
func MeanAbsReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range returns {
		sum += math.Abs(r)
	}
	return sum / float64(len(returns))
}

// ClassifyRegime maps a mean absolute per-bar move onto a volatility regime.
func ClassifyRegime(meanAbsMove float64) models.VolRegime {
	switch {
	case math.IsNaN(meanAbsMove):
		return models.RegimeCrisis
	case meanAbsMove < 0.005:
		return models.RegimeLow
	case meanAbsMove < 0.015:
		return models.RegimeMid
	case meanAbsMove < 0.03:
		return models.RegimeHigh
	default:
		return models.RegimeCrisis
	}
}

// BarState is the risk view of one bar derived from the price path so far.
type BarState struct {
	Return        float64
	TradeLoss     float64
	DayLoss       float64
	WeekLoss      float64
	Drawdown      float64
	DrawdownSpeed float64
	Regime        models.VolRegime
}

// PathTracker derives per-bar loss and drawdown inputs from a long-only unit exposure.
type PathTracker struct {
	bars       int
	prevPrice  float64
	peak       float64
	prevDD     float64
	day, week  int64
	dayOpen    float64
	weekOpen   float64
	absReturns []float64
}

func NewPathTracker() *PathTracker {
	return &PathTracker{}
}

// Observe consumes the next tick and returns its bar state.
func (p *PathTracker) Observe(tick models.PriceTick) BarState {
	price := tick.Price
	day := floorDiv(tick.TsMs, msPerDay)
	week := floorDiv(tick.TsMs, msPerWeek)

	if p.bars == 0 {
		p.peak = price
		p.prevPrice = price
		p.day, p.week = day, week
		p.dayOpen, p.weekOpen = price, price
	}
	if day != p.day {
		p.day = day
		p.dayOpen = p.prevPrice
	}
	if week != p.week {
		p.week = week
		p.weekOpen = p.prevPrice
	}

	ret := 0.0
	if p.bars > 0 && p.prevPrice > 0 {
		ret = price/p.prevPrice - 1
	}
	if price > p.peak {
		p.peak = price
	}
	dd := 0.0
	if p.peak > 0 {
		dd = 1 - price/p.peak
	}

	if p.bars > 0 {
		p.absReturns = append(p.absReturns, math.Abs(ret))
	}
	window := p.absReturns
	if len(window) > RegimeWindow {
		window = window[len(window)-RegimeWindow:]
	}

	st := BarState{
		Return:        ret,
		TradeLoss:     math.Max(0, -ret),
		DayLoss:       lossFrom(p.dayOpen, price),
		WeekLoss:      lossFrom(p.weekOpen, price),
		Drawdown:      dd,
		DrawdownSpeed: math.Max(0, dd-p.prevDD),
		Regime:        ClassifyRegime(MeanAbsReturn(window)),
	}

	p.prevDD = dd
	p.prevPrice = price
	p.bars++
	return st
}

func lossFrom(open, price float64) float64 {
	if open <= 0 {
		return 0
	}
	return math.Max(0, 1-price/open)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
