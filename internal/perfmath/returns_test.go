package perfmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModifiedDietz(t *testing.T) {
	tests := []struct {
		name         string
		v0, v1, flow float64
		want         float64
	}{
		{"no flow gain", 100, 110, 0, 0.10},
		{"deposit only", 100, 150, 50, 0},
		{"deposit with gain", 100, 160, 50, 10.0 / 125.0},
		{"withdrawal", 200, 100, -100, 0},
		{"empty start with deposit", 0, 100, 100, 0},
		{"zero denominator", 0, 0, 0, 0},
		{"negative denominator", 10, 0, -50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ModifiedDietz(tt.v0, tt.v1, tt.flow), 1e-12)
		})
	}
}

func TestCompoundQuota(t *testing.T) {
	q := QuotaBase
	q = CompoundQuota(q, 0.10)
	q = CompoundQuota(q, -0.10)
	assert.InDelta(t, 99.0, q, 1e-9)
}

func TestDailyRiskFree(t *testing.T) {
	daily := DailyRiskFree(0.10)
	assert.InDelta(t, 0.10, math.Pow(1+daily, 252)-1, 1e-12)
	assert.Equal(t, 0.0, DailyRiskFree(0))
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{1}))
	// sample stdev of 2,4,4,4,5,5,7,9 = sqrt(32/7)
	assert.InDelta(t, math.Sqrt(32.0/7.0), StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestSharpe(t *testing.T) {
	t.Run("insufficient observations", func(t *testing.T) {
		assert.Equal(t, 0.0, Sharpe([]float64{0.01, 0.02, -0.01}, 0.1))
	})

	t.Run("flat returns", func(t *testing.T) {
		flat := make([]float64, 20)
		assert.Equal(t, 0.0, Sharpe(flat, 0.1))
	})

	t.Run("matches formula", func(t *testing.T) {
		returns := []float64{0.01, -0.005, 0.012, 0.003, -0.002, 0.007, 0.0, 0.011, -0.004, 0.006, 0.002}
		rf := DailyRiskFree(0.1075)

		excess := make([]float64, len(returns))
		for i, r := range returns {
			excess[i] = r - rf
		}
		want := Mean(excess) / StdDev(returns) * math.Sqrt(252)

		assert.InDelta(t, want, Sharpe(returns, 0.1075), 1e-12)
		assert.Greater(t, Sharpe(returns, 0), Sharpe(returns, 0.1075))
	})
}

func TestBeta(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.015, 0.003, -0.007, 0.012, -0.001, 0.004, 0.009, -0.011, 0.006}

	t.Run("double exposure", func(t *testing.T) {
		port := make([]float64, len(bench))
		for i, b := range bench {
			port[i] = 2 * b
		}
		assert.InDelta(t, 2.0, Beta(port, bench), 1e-9)
	})

	t.Run("uses overlapping tail", func(t *testing.T) {
		port := append([]float64{0.5, -0.5, 0.3}, bench...)
		assert.InDelta(t, 1.0, Beta(port, bench), 1e-9)
	})

	t.Run("insufficient data", func(t *testing.T) {
		assert.Equal(t, 1.0, Beta(bench[:5], bench[:5]))
	})

	t.Run("flat benchmark", func(t *testing.T) {
		flat := make([]float64, len(bench))
		assert.Equal(t, 1.0, Beta(bench, flat))
	})
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, -0.25, MaxDrawdown([]float64{100, 120, 90, 110, 130}), 1e-12)
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 101, 102}))
	assert.Equal(t, 0.0, MaxDrawdown(nil))
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.01, 0.01, -0.01}
	assert.InDelta(t, StdDev(returns)*math.Sqrt(252), AnnualizedVolatility(returns), 1e-12)
}
