package scoring

import (
	"github.com/wonny/quantengine/internal/contracts"
)

// Exclusion records why an instrument never reached scoring.
type Exclusion struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// checkConditions applies the pre-filter.
// Returns empty string if passed, otherwise the filter name.
func (e *Engine) checkConditions(asset contracts.Asset) string {
	m := asset.Metrics

	if asset.Metrics.Disqualified {
		return "disqualified"
	}
	if asset.Price <= e.config.MinPrice {
		return "price"
	}
	if m.Liquidity < e.config.MinLiquidity {
		return "liquidity"
	}
	if !asset.IsFund() && m.PE < e.config.MinPE {
		return "negative_earnings"
	}

	return ""
}

// defensiveGate returns the first failed eligibility condition, or "" when the
// instrument may carry a defensive score above the floor.
func (e *Engine) defensiveGate(asset contracts.Asset) string {
	if asset.IsFund() {
		return e.fundGate(asset.Metrics)
	}
	return e.equityGate(asset.Sector, asset.Metrics)
}

func (e *Engine) equityGate(sector string, m contracts.Metrics) string {
	g := e.config.Equity

	switch {
	case m.Liquidity < g.MinLiquidity:
		return "liquidity"
	case m.MarketCap < g.MinMarketCap:
		return "market_cap"
	case !e.perennial[sector]:
		return "sector"
	case m.NetMargin < g.MinNetMargin:
		return "net_margin"
	case m.NetDebtToEBITDA > g.MaxNetDebtToEBITDA:
		return "leverage"
	case m.DividendYield < g.MinDividendYield:
		return "dividend_yield"
	case m.PB < g.MinPB || m.PB > g.MaxPB:
		return "pb"
	}
	return ""
}

func (e *Engine) fundGate(m contracts.Metrics) string {
	g := e.config.Fund

	switch {
	case m.Liquidity < g.MinLiquidity:
		return "liquidity"
	case m.UnitHolders < g.MinUnitHolders:
		return "unit_holders"
	case m.FundType != contracts.FundPaper && m.Vacancy > g.MaxVacancy:
		return "vacancy"
	case m.DividendYield < g.MinDividendYield:
		return "dividend_yield"
	case m.PB < g.MinPVP || m.PB > g.MaxPVP:
		return "pvp"
	}
	return ""
}
