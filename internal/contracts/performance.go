package contracts

import "time"

// PerformanceSnapshot is one point of a portfolio's append-only quota series.
type PerformanceSnapshot struct {
	PortfolioID string    `json:"portfolio_id"`
	Date        time.Time `json:"date"`
	Equity      float64   `json:"equity"`   // mark-to-market at close
	Invested    float64   `json:"invested"` // cumulative net flows
	NetFlow     float64   `json:"net_flow"` // this period's deposits minus withdrawals
	DailyReturn float64   `json:"daily_return"`
	QuotaPrice  float64   `json:"quota_price"`
}

// PerformanceReport summarizes a quota series.
type PerformanceReport struct {
	PortfolioID string    `json:"portfolio_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Points      int       `json:"points"`

	TotalReturn float64 `json:"total_return"` // time-weighted, percent
	NominalPnL  float64 `json:"nominal_pnl"`  // equity minus invested
	Volatility  float64 `json:"volatility"`   // annualized, percent
	Sharpe      float64 `json:"sharpe"`
	Beta        float64 `json:"beta"`
	MaxDrawdown float64 `json:"max_drawdown"` // percent, non-positive
}
