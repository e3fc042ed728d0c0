package scoring

import (
	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/perfmath"
)

// input bundles what every scorer reads.
type input struct {
	asset contracts.Asset
	m     contracts.Metrics
	val   contracts.ValuationResult
	macro contracts.MacroContext
}

func (in input) benchmarkYield() float64 {
	if in.macro.BenchmarkYield > 0 {
		return in.macro.BenchmarkYield
	}
	return fallbackBenchYld
}

func clampProfile(p contracts.RiskProfile, score float64) float64 {
	return perfmath.Normalize(perfmath.Clamp(score, p.Floor(), p.Ceiling()))
}

func clampStructural(score float64) float64 {
	return perfmath.Normalize(perfmath.Clamp(score, 0, 100))
}

// scoreDefensive rewards income, low leverage and a margin of safety.
// Callers apply the eligibility gate first.
func scoreDefensive(in input) float64 {
	m := in.m
	score := defensiveBase

	if m.DividendYield > in.benchmarkYield() {
		score += bonus
	}
	if m.DividendYield >= 8 {
		score += bonusSmall
	}
	if in.val.Upside >= 15 {
		score += bonus
	} else if in.val.Upside <= -10 {
		score += malus
	}

	if in.asset.IsFund() {
		if m.FundType != contracts.FundPaper && m.Vacancy <= lowVacancy {
			score += bonus
		}
		if m.UnitHolders >= bigFundHolders {
			score += bonusSmall
		}
		if m.PB > 0 && m.PB <= 0.95 {
			score += bonus
		}
		return clampProfile(contracts.ProfileDefensive, score)
	}

	if m.ROE >= highROE {
		score += bonus
	}
	if m.NetDebtToEBITDA <= lowLeverage {
		score += bonus
	} else if m.NetDebtToEBITDA > 2.5 {
		score += malus
	}
	if m.PB > 0 && m.PB <= 1 {
		score += bonusSmall
	}
	if m.MarketCap >= bigCap {
		score += bonusSmall
	}

	return clampProfile(contracts.ProfileDefensive, score)
}

// scoreModerate balances profitability, growth and a reasonable multiple.
func scoreModerate(in input) float64 {
	m := in.m
	score := moderateBase

	if in.asset.IsFund() {
		if m.DividendYield >= in.benchmarkYield() {
			score += bonus
		}
		if m.PB > 0 && m.PB < 1 {
			score += bonus
		} else if m.PB > 1.15 {
			score += malus
		}
		if m.FundType == contracts.FundHybrid {
			score += bonusSmall
		}
		if m.FundType != contracts.FundPaper && m.Vacancy > highVacancy {
			score += malus
		}
	} else {
		if m.ROE > highROE {
			score += bonus
		} else if m.ROE < lowROE {
			score += malus
		}
		if m.NetMargin >= highMargin {
			score += bonusSmall
		}
		if m.RevenueGrowth >= growth {
			score += bonus
		}
		if m.DividendYield >= 4 {
			score += bonusSmall
		}
		switch {
		case m.PE <= 0:
			score += malusLarge
		case m.PE <= fairPE:
			score += bonus
		case m.PE > expensivePE:
			score += malus
		}
		if m.DebtToEquity > highDebtToEquity {
			score += malus
		}
	}

	if in.val.Upside >= 20 {
		score += bonus
	}
	if m.Liquidity < thinLiquidity {
		score += malus
	}

	return clampProfile(contracts.ProfileModerate, score)
}

// scoreBold chases upside and growth and tolerates leverage up to a point.
func scoreBold(in input) float64 {
	m := in.m
	score := boldBase

	switch {
	case in.val.Upside >= 30:
		score += 20
	case in.val.Upside >= 15:
		score += bonus
	case in.val.Upside < 0:
		score += malus
	}

	if in.asset.IsFund() {
		if m.PB > 0 && m.PB < 0.85 {
			score += bonusLarge
		}
		if m.DividendYield >= 12 {
			score += bonus
		}
		return clampProfile(contracts.ProfileBold, score)
	}

	if m.RevenueGrowth >= strongGrowth {
		score += bonusLarge
	} else if m.RevenueGrowth >= growth {
		score += bonusSmall
	}
	if m.ROE >= veryHighROE {
		score += bonus
	}
	if m.EVToEBIT > 0 && m.EVToEBIT <= cheapEVToEBIT {
		score += bonus
	}
	if m.PE <= 0 {
		score += malus
	}
	if m.NetDebtToEBITDA > 4 {
		score += malus
	}

	return clampProfile(contracts.ProfileBold, score)
}
