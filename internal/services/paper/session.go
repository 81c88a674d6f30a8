// Package paper simulates fills for PAPER canary runs.
package paper

import (
	"TreasureEngine/internal/domain/models"
	"TreasureEngine/internal/domain/service"
	"TreasureEngine/pkg/fingerprint"
	"TreasureEngine/pkg/prng"

	"github.com/shopspring/decimal"
)

type Config struct {
	InitialBalanceUSD float64 `yaml:"initial_balance_usd" json:"initial_balance_usd"`
	BaseNotionalUSD   float64 `yaml:"base_notional_usd" json:"base_notional_usd"`
	FeeBps            float64 `yaml:"fee_bps" json:"fee_bps"`
	MinTradeUSD       float64 `yaml:"min_trade_usd" json:"min_trade_usd"`
}

// Session keeps one long position per symbol and rebalances it toward
// base_notional * size_factor on each of that symbol's bars.
// Slippage is drawn around the calibrated mean from the run's seeded generator.
type Session struct {
	cfg Config
}

var _ service.PaperSession = (*Session)(nil)

func NewSession(cfg Config) *Session {
	if cfg.InitialBalanceUSD <= 0 {
		cfg.InitialBalanceUSD = 10000
	}
	if cfg.BaseNotionalUSD <= 0 {
		cfg.BaseNotionalUSD = 1000
	}
	if cfg.FeeBps < 0 {
		cfg.FeeBps = 0
	}
	if cfg.MinTradeUSD <= 0 {
		cfg.MinTradeUSD = 1
	}
	return &Session{cfg: cfg}
}

// Run replays bars and returns unscaled metrics. It holds no state between calls.
func (s *Session) Run(in service.PaperInput) (service.PaperResult, error) {
	gen := prng.New(in.Seed)
	bps := decimal.NewFromInt(10000)
	feeRate := decimal.NewFromFloat(s.cfg.FeeBps).Div(bps)

	cash := decimal.NewFromFloat(s.cfg.InitialBalanceUSD)
	units := make(map[string]decimal.Decimal)
	marks := make(map[string]decimal.Decimal)
	var symbols []string
	fees := decimal.Zero
	slipCost := decimal.Zero
	volume := decimal.Zero
	fills := 0

	for i, bar := range in.Bars {
		if bar.Price <= 0 {
			return service.PaperResult{}, models.NewError(models.ErrCodePaperSessionFailed,
				"bar %d has non-positive price %v", i, bar.Price)
		}
		price := decimal.NewFromFloat(bar.Price)
		if _, seen := marks[bar.Symbol]; !seen {
			symbols = append(symbols, bar.Symbol)
		}
		marks[bar.Symbol] = price
		held := units[bar.Symbol]

		target := decimal.NewFromFloat(float64(s.cfg.BaseNotionalUSD * bar.SizeFactor))
		delta := target.Sub(held.Mul(price))
		if delta.Abs().LessThan(decimal.NewFromFloat(s.cfg.MinTradeUSD)) {
			continue
		}

		jitter := gen.Float64()*2 - 1
		slipBps := in.Calibration.SlipMeanBps + jitter*in.Calibration.SlipStdBps
		if slipBps < 0 {
			slipBps = 0
		}
		slip := decimal.NewFromFloat(slipBps).Div(bps)

		var exec decimal.Decimal
		if delta.IsPositive() {
			exec = price.Mul(decimal.NewFromInt(1).Add(slip))
		} else {
			exec = price.Mul(decimal.NewFromInt(1).Sub(slip))
		}
		if !exec.IsPositive() {
			return service.PaperResult{}, models.NewError(models.ErrCodePaperSessionFailed,
				"bar %d: execution price collapsed with slippage %.4f bps", i, slipBps)
		}

		notional := delta.Abs()
		qty := notional.Div(exec)
		fee := notional.Mul(feeRate)
		if delta.IsPositive() {
			cash = cash.Sub(notional).Sub(fee)
			units[bar.Symbol] = held.Add(qty)
		} else {
			cash = cash.Add(notional).Sub(fee)
			units[bar.Symbol] = held.Sub(qty)
		}

		fees = fees.Add(fee)
		slipCost = slipCost.Add(exec.Sub(price).Abs().Mul(qty))
		volume = volume.Add(notional)
		fills++
	}

	// symbols in first-seen order keep the sum deterministic
	equity := cash
	for _, sym := range symbols {
		equity = equity.Add(units[sym].Mul(marks[sym]))
	}
	net := equity.Sub(decimal.NewFromFloat(s.cfg.InitialBalanceUSD))

	return service.PaperResult{Metrics: models.PaperMetrics{
		RawNetPnL:     round(net),
		NetPnL:        round(net),
		PnLMultiplier: 1,
		FeesPaid:      round(fees),
		SlippageCost:  round(slipCost),
		PaperFills:    fills,
		Volume:        round(volume),
	}}, nil
}

func round(d decimal.Decimal) float64 {
	return d.Round(fingerprint.Precision).InexactFloat64()
}

