package riskfortress

import (
	"TreasureEngine/internal/domain/models"
	"TreasureEngine/pkg/fingerprint"
	"TreasureEngine/pkg/prng"
)

const (
	crisisPoints     = 10
	crisisStartPrice = 100.0
)

// pathStep computes the next price. Products are wrapped in float64() so the compiler
// cannot fuse them into FMA instructions, which would change results across architectures.
type pathStep func(i int, price, u float64) float64

// Scenario order fixes the per-scenario seed offset (seed+0 .. seed+3).
var crisisPaths = []struct {
	id   string
	step pathStep
}{
	{models.CrisisGapDown, func(i int, p, u float64) float64 {
		if i == 3 {
			return p * 0.88
		}
		return p * (1 + float64((u-0.5)*0.01))
	}},
	{models.CrisisWhipsaw, func(i int, p, u float64) float64 {
		move := float64(0.03 * (0.5 + u))
		if i%2 == 1 {
			move = -move
		}
		return p * (1 + move)
	}},
	{models.CrisisVolExpansion, func(i int, p, u float64) float64 {
		return p * (1 + float64((u-0.5)*0.01*float64(i+1)))
	}},
	{models.CrisisLiquidityVacuum, func(i int, p, u float64) float64 {
		drop := float64(0.004 * u)
		if i >= 5 {
			drop += 0.02
		}
		return p * (1 - drop)
	}},
}

// GenerateDeterministicCrisisSuite builds the four synthetic stress paths for seed.
func GenerateDeterministicCrisisSuite(seed uint32) models.CrisisSuite {
	suite := models.CrisisSuite{
		Seed:      seed,
		Algorithm: prng.AlgorithmXorshift32V1,
		Scenarios: make([]models.CrisisScenario, 0, len(crisisPaths)),
	}

	for offset, path := range crisisPaths {
		scenarioSeed := seed + uint32(offset)
		gen := prng.New(scenarioSeed)

		points := make([]float64, crisisPoints)
		price := crisisStartPrice
		for i := 0; i < crisisPoints; i++ {
			price = path.step(i, price, gen.Float64())
			points[i] = fingerprint.Round(price)
		}
		suite.Scenarios = append(suite.Scenarios, models.CrisisScenario{
			ID:     path.id,
			Seed:   scenarioSeed,
			Points: points,
		})
	}

	suite.Fingerprint = fingerprint.MustOf(struct {
		Seed      uint32                  `json:"seed"`
		Algorithm string                  `json:"algorithm"`
		Scenarios []models.CrisisScenario `json:"scenarios"`
	}{suite.Seed, suite.Algorithm, suite.Scenarios})
	return suite
}

// WorstDrawdown is the deepest peak-to-trough decline across every scenario path.
func WorstDrawdown(suite models.CrisisSuite) float64 {
	worst := 0.0
	for _, sc := range suite.Scenarios {
		peak := crisisStartPrice
		for _, p := range sc.Points {
			if p > peak {
				peak = p
			}
			if dd := 1 - p/peak; dd > worst {
				worst = dd
			}
		}
	}
	return fingerprint.Round(worst)
}
