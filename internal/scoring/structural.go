package scoring

import "github.com/wonny/quantengine/internal/contracts"

// scoreQuality measures business quality. 0-100, higher is better.
func scoreQuality(in input) float64 {
	m := in.m
	score := structBase

	if in.asset.IsFund() {
		if m.FundType != contracts.FundPaper {
			if m.Vacancy <= lowVacancy {
				score += bonusLarge
			} else if m.Vacancy > highVacancy {
				score += malusLarge
			}
		}
		if m.UnitHolders >= bigFundHolders {
			score += bonus
		}
		if m.Liquidity >= deepLiquidity {
			score += bonusSmall
		}
		return clampStructural(score)
	}

	switch {
	case m.ROE >= highROE:
		score += bonusLarge
	case m.ROE >= 10:
		score += bonusSmall
	case m.ROE < 0:
		score += malusStrong
	}
	if m.NetMargin >= highROE {
		score += bonus
	} else if m.NetMargin < 0 {
		score += malusLarge
	}
	if m.NetDebtToEBITDA <= lowLeverage {
		score += bonus
	} else if m.NetDebtToEBITDA > highLeverage {
		score += malusLarge
	}
	if m.RevenueGrowth >= growth {
		score += bonus
	} else if m.RevenueGrowth < 0 {
		score += malus
	}

	return clampStructural(score)
}

// scoreValuation measures cheapness. 0-100, higher is cheaper.
func scoreValuation(in input) float64 {
	m := in.m
	score := structBase

	if in.asset.IsFund() {
		if m.PB > 0 && m.PB < 1 {
			score += bonusLarge
		} else if m.PB > 1.1 {
			score += malusLarge
		}
		if m.DividendYield >= 10 {
			score += bonus
		}
	} else {
		switch {
		case m.PE <= 0:
			score += malus
		case m.PE <= cheapPE:
			score += bonusLarge
		case m.PE <= fairPE:
			score += bonusSmall
		case m.PE > expensivePE:
			score += malusLarge
		}
		if m.PB > 0 && m.PB <= 1 {
			score += bonus
		} else if m.PB > 3 {
			score += malus
		}
		if m.EVToEBIT > 0 && m.EVToEBIT <= cheapEVToEBIT {
			score += bonus
		}
	}

	if in.val.Upside >= 20 {
		score += bonusLarge
	} else if in.val.Upside <= -10 {
		score += malusLarge
	}

	return clampStructural(score)
}

// scoreRisk measures fragility. 0-100, higher is riskier.
func scoreRisk(in input) float64 {
	m := in.m
	score := structBase

	switch {
	case m.Liquidity < thinLiquidity:
		score += bonusLarge
	case m.Liquidity >= deepLiquidity:
		score -= bonus
	}

	if in.asset.IsFund() {
		if m.FundType != contracts.FundPaper && m.Vacancy > highVacancy {
			score += bonusLarge
		}
		if m.UnitHolders < 10_000 {
			score += bonus
		}
		return clampStructural(score)
	}

	if m.NetDebtToEBITDA > highLeverage {
		score += 20
	}
	if m.DebtToEquity > highDebtToEquity {
		score += bonus
	}
	if m.MarketCap >= bigCap {
		score -= bonus
	}
	if m.NetMargin < 0 {
		score += bonusLarge
	}
	if m.PE <= 0 {
		score += bonus
	}

	return clampStructural(score)
}
