package perfmath

import (
	"math"

	"github.com/montanaflynn/stats"
)

const (
	// TradingDaysPerYear annualizes daily statistics.
	TradingDaysPerYear = 252

	// MinObservations is the sample size below which Sharpe and beta fall back to neutral values.
	MinObservations = 10

	// QuotaBase is the starting value of every quota index.
	QuotaBase = 100.0
)

// ModifiedDietz returns the period return (v1 - v0 - flow) / (v0 + 0.5*flow),
// weighting the net flow at the midpoint of the period. A non-positive
// denominator yields a zero contribution.
func ModifiedDietz(v0, v1, flow float64) float64 {
	denominator := v0 + flow*0.5
	if denominator <= 0 || math.IsNaN(denominator) {
		return 0
	}
	return Finite((v1 - v0 - flow) / denominator)
}

// CompoundQuota advances a quota index by one period return.
func CompoundQuota(prev, r float64) float64 {
	return Finite(prev * (1 + r))
}

// Mean returns the arithmetic mean, 0 for an empty series.
func Mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return 0
	}
	return Finite(m)
}

// StdDev is the sample standard deviation; 0 with fewer than two points.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	sd, err := stats.StandardDeviationSample(xs)
	if err != nil {
		return 0
	}
	return Finite(sd)
}

// DailyRiskFree converts an annual rate (0.1075 for 10.75%) to its compounded daily equivalent.
func DailyRiskFree(annual float64) float64 {
	if annual <= -1 {
		return 0
	}
	return Finite(math.Pow(1+annual, 1.0/TradingDaysPerYear) - 1)
}

// Sharpe returns the annualized Sharpe ratio of daily returns against an annual
// risk-free rate: mean excess return over the sample stdev of raw returns, times sqrt(252).
// Fewer than MinObservations returns, or zero dispersion, yields 0.
func Sharpe(returns []float64, annualRiskFree float64) float64 {
	if len(returns) < MinObservations {
		return 0
	}

	sd := StdDev(returns)
	if sd == 0 {
		return 0
	}

	rf := DailyRiskFree(annualRiskFree)
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - rf
	}

	return Finite(Mean(excess) / sd * math.Sqrt(TradingDaysPerYear))
}

// Beta is cov(portfolio, benchmark) / var(benchmark) over the overlapping tail of
// both series. Insufficient overlap or a flat benchmark returns the neutral 1.0.
func Beta(portfolio, benchmark []float64) float64 {
	n := min(len(portfolio), len(benchmark))
	if n < MinObservations {
		return 1.0
	}

	p := portfolio[len(portfolio)-n:]
	b := benchmark[len(benchmark)-n:]

	variance, err := stats.SampleVariance(b)
	if err != nil || variance == 0 || math.IsNaN(variance) {
		return 1.0
	}

	covariance, err := stats.Covariance(p, b)
	if err != nil {
		return 1.0
	}

	beta := covariance / variance
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 1.0
	}
	return beta
}

// AnnualizedVolatility is the sample stdev of daily returns scaled by sqrt(252).
func AnnualizedVolatility(returns []float64) float64 {
	return Finite(StdDev(returns) * math.Sqrt(TradingDaysPerYear))
}

// MaxDrawdown returns the deepest peak-to-trough decline of a value series as a
// non-positive fraction (-0.25 for a 25% drawdown).
func MaxDrawdown(values []float64) float64 {
	peak := 0.0
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := v/peak - 1; dd < worst {
				worst = dd
			}
		}
	}
	return Finite(worst)
}
