package contracts

import (
	"time"

	"github.com/wonny/quantengine/internal/perfmath"
)

// AssetClass distinguishes equities from real-estate income funds.
type AssetClass string

const (
	AssetEquity   AssetClass = "EQUITY"
	AssetREITFund AssetClass = "REIT_FUND"
)

// FundType classifies an income fund by what it holds.
type FundType string

const (
	FundPaper  FundType = "PAPER"  // receivables / mortgage paper
	FundBrick  FundType = "BRICK"  // physical properties
	FundHybrid FundType = "HYBRID" // both
)

// Instrument is immutable for one evaluation run.
type Instrument struct {
	Ticker     string     `json:"ticker"`
	AssetClass AssetClass `json:"asset_class"`
	Sector     string     `json:"sector"`
	Price      float64    `json:"price"`
	Currency   string     `json:"currency"`
}

// IsFund reports whether the instrument is a real-estate income fund.
func (i Instrument) IsFund() bool {
	return i.AssetClass == AssetREITFund
}

// Metrics is the typed metrics bag attached to an Instrument for one run.
// Percent-denominated fields hold percentage points (6.5 means 6.5%).
// Missing values are zero; call Normalize once at the boundary.
type Metrics struct {
	PE              float64 `json:"pe"`
	PB              float64 `json:"pb"` // P/VP for funds
	DividendYield   float64 `json:"dividend_yield"`
	ROE             float64 `json:"roe"`
	NetMargin       float64 `json:"net_margin"`
	NetDebtToEBITDA float64 `json:"net_debt_to_ebitda"`
	DebtToEquity    float64 `json:"debt_to_equity"`
	Liquidity       float64 `json:"liquidity"` // avg daily traded value
	MarketCap       float64 `json:"market_cap"`
	RevenueGrowth   float64 `json:"revenue_growth"` // 5y CAGR
	EVToEBIT        float64 `json:"ev_to_ebit"`

	// Funds
	BookValuePerUnit float64  `json:"book_value_per_unit"`
	UnitHolders      float64  `json:"unit_holders"`
	Vacancy          float64  `json:"vacancy"`
	FundType         FundType `json:"fund_type"`

	Disqualified bool `json:"disqualified"`
}

// Normalize replaces every NaN/±Inf field with 0.
func (m Metrics) Normalize() Metrics {
	fields := []*float64{
		&m.PE, &m.PB, &m.DividendYield, &m.ROE, &m.NetMargin, &m.NetDebtToEBITDA,
		&m.DebtToEquity, &m.Liquidity, &m.MarketCap, &m.RevenueGrowth, &m.EVToEBIT,
		&m.BookValuePerUnit, &m.UnitHolders, &m.Vacancy,
	}
	for _, f := range fields {
		*f = perfmath.Finite(*f)
	}
	return m
}

// Asset pairs an Instrument with its metrics for one evaluation run.
type Asset struct {
	Instrument
	Metrics Metrics `json:"metrics"`
}

// MacroContext carries the run-wide market references, all in percent.
type MacroContext struct {
	RiskFreeRate   float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	LongRealRate   float64 `json:"long_real_rate" yaml:"long_real_rate"`
	BenchmarkYield float64 `json:"benchmark_yield" yaml:"benchmark_yield"`
}

// Normalize replaces non-finite rates with 0.
func (m MacroContext) Normalize() MacroContext {
	m.RiskFreeRate = perfmath.Finite(m.RiskFreeRate)
	m.LongRealRate = perfmath.Finite(m.LongRealRate)
	m.BenchmarkYield = perfmath.Finite(m.BenchmarkYield)
	return m
}

// PricePoint is one close in an instrument's history, ordered oldest first.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Closes extracts the close column.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = perfmath.Finite(p.Close)
	}
	return out
}
