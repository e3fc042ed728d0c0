package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/pkg/logger"
)

func newEngine() *Engine {
	return NewEngine(DefaultConfig(), logger.NewNop())
}

func equity(price float64, m contracts.Metrics) contracts.Asset {
	return contracts.Asset{
		Instrument: contracts.Instrument{Ticker: "TEST3", AssetClass: contracts.AssetEquity, Sector: "Industrials", Price: price, Currency: "BRL"},
		Metrics:    m,
	}
}

func fund(price float64, m contracts.Metrics) contracts.Asset {
	return contracts.Asset{
		Instrument: contracts.Instrument{Ticker: "TEST11", AssetClass: contracts.AssetREITFund, Sector: "Logistics", Price: price, Currency: "BRL"},
		Metrics:    m,
	}
}

func TestGraham_ExactFormula(t *testing.T) {
	// P=10, P/E=10, P/B=2 → sqrt(22.5 × 1 × 5)
	want := math.Sqrt(22.5 * (10.0 / 10) * (10.0 / 2))
	assert.InDelta(t, want, Graham(10, 10, 2), 1e-12)

	res := newEngine().Value(equity(10, contracts.Metrics{PE: 10, PB: 2}), contracts.MacroContext{})
	assert.Equal(t, MethodGraham, res.Method)
	assert.Equal(t, 10.61, res.FairPrice)
	assert.Equal(t, 10.61, res.Graham)
}

func TestValue_Equity(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		metrics    contracts.Metrics
		wantMethod string
		wantFair   float64
	}{
		{
			name:       "blend of graham and yield cap",
			price:      10,
			metrics:    contracts.Metrics{PE: 10, PB: 2, DividendYield: 6},
			wantMethod: MethodBlend,
			wantFair:   (math.Sqrt(112.5) + 10) / 2, // yield cap 10 × 0.06 / 0.06
		},
		{
			name:       "yield cap only, yield capped at 10%",
			price:      20,
			metrics:    contracts.Metrics{PE: -5, DividendYield: 15},
			wantMethod: MethodYieldCap,
			wantFair:   20 * 0.10 / 0.06,
		},
		{
			name:       "no fundamentals falls back to market",
			price:      33.3,
			metrics:    contracts.Metrics{},
			wantMethod: MethodMarket,
			wantFair:   33.3,
		},
		{
			name:       "extreme multiples capped at 2.5x",
			price:      10,
			metrics:    contracts.Metrics{PE: 0.5, PB: 0.1},
			wantMethod: MethodGraham,
			wantFair:   25,
		},
		{
			name:       "NaN metrics treated as missing",
			price:      12,
			metrics:    contracts.Metrics{PE: math.NaN(), PB: math.Inf(1), DividendYield: math.NaN()},
			wantMethod: MethodMarket,
			wantFair:   12,
		},
	}

	e := newEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Value(equity(tt.price, tt.metrics), contracts.MacroContext{})
			assert.Equal(t, tt.wantMethod, res.Method)
			assert.InDelta(t, tt.wantFair, res.FairPrice, 0.005)
			assert.False(t, math.IsNaN(res.Upside) || math.IsInf(res.Upside, 0))
		})
	}
}

func TestValue_Fund(t *testing.T) {
	macro := contracts.MacroContext{LongRealRate: 6}
	e := newEngine()

	t.Run("paper fund uses book value", func(t *testing.T) {
		res := e.Value(fund(95, contracts.Metrics{FundType: contracts.FundPaper, BookValuePerUnit: 100, DividendYield: 12}), macro)
		assert.Equal(t, MethodBookValue, res.Method)
		assert.Equal(t, 100.0, res.FairPrice)
		assert.InDelta(t, 5.26, res.Upside, 0.01)
		assert.InDelta(t, 95*0.10/0.06, res.YieldCap, 0.01)
	})

	t.Run("brick fund earns spread premium", func(t *testing.T) {
		// spread 9 - 6 = 3pp → premium 15%
		res := e.Value(fund(100, contracts.Metrics{FundType: contracts.FundBrick, BookValuePerUnit: 100, DividendYield: 9}), macro)
		assert.Equal(t, MethodBookSpread, res.Method)
		assert.InDelta(t, 115, res.FairPrice, 1e-9)
	})

	t.Run("negative spread discounts book value", func(t *testing.T) {
		res := e.Value(fund(100, contracts.Metrics{FundType: contracts.FundHybrid, BookValuePerUnit: 100, DividendYield: 4}), macro)
		assert.InDelta(t, 90, res.FairPrice, 1e-9)
	})

	t.Run("premium is bounded", func(t *testing.T) {
		res := e.Value(fund(100, contracts.Metrics{FundType: contracts.FundBrick, BookValuePerUnit: 100, DividendYield: 40}), macro)
		assert.InDelta(t, 150, res.FairPrice, 1e-9)
	})

	t.Run("missing book value falls back to market", func(t *testing.T) {
		res := e.Value(fund(88, contracts.Metrics{FundType: contracts.FundBrick, DividendYield: 9}), macro)
		assert.Equal(t, MethodMarket, res.Method)
		assert.Equal(t, 88.0, res.FairPrice)
	})
}

func TestValue_NeverNegativeOrNonFinite(t *testing.T) {
	e := newEngine()
	inputs := []contracts.Asset{
		equity(0, contracts.Metrics{PE: 10, PB: 2}),
		equity(-5, contracts.Metrics{DividendYield: 8}),
		equity(math.NaN(), contracts.Metrics{}),
		fund(math.Inf(1), contracts.Metrics{BookValuePerUnit: 10}),
	}
	for _, in := range inputs {
		res := e.Value(in, contracts.MacroContext{LongRealRate: math.NaN()})
		assert.GreaterOrEqual(t, res.FairPrice, 0.0)
		assert.False(t, math.IsNaN(res.FairPrice) || math.IsInf(res.FairPrice, 0))
		assert.False(t, math.IsNaN(res.Upside) || math.IsInf(res.Upside, 0))
	}
}
