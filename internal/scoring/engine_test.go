package scoring

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/valuation"
	"github.com/wonny/quantengine/pkg/logger"
)

func newEngine() *Engine {
	log := logger.NewNop()
	return NewEngine(DefaultConfig(), valuation.NewEngine(valuation.DefaultConfig(), log), log)
}

var macro = contracts.MacroContext{RiskFreeRate: 10.5, LongRealRate: 6, BenchmarkYield: 6}

func bank() contracts.Asset {
	return contracts.Asset{
		Instrument: contracts.Instrument{Ticker: "BANK4", AssetClass: contracts.AssetEquity, Sector: "Banks", Price: 30, Currency: "BRL"},
		Metrics: contracts.Metrics{
			PE: 7, PB: 1.2, DividendYield: 9, ROE: 18, NetMargin: 20,
			NetDebtToEBITDA: 0.5, Liquidity: 50_000_000, MarketCap: 80_000_000_000,
			RevenueGrowth: 8,
		},
	}
}

func brickFund() contracts.Asset {
	return contracts.Asset{
		Instrument: contracts.Instrument{Ticker: "LOGI11", AssetClass: contracts.AssetREITFund, Sector: "Logistics", Price: 95, Currency: "BRL"},
		Metrics: contracts.Metrics{
			PB: 0.92, DividendYield: 9.5, Liquidity: 3_000_000, UnitHolders: 150_000,
			Vacancy: 3, BookValuePerUnit: 103, FundType: contracts.FundBrick,
		},
	}
}

func TestScore_PreFilter(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name   string
		mutate func(a *contracts.Asset)
		reason string
	}{
		{"price at floor", func(a *contracts.Asset) { a.Price = 1.0 }, "price"},
		{"illiquid", func(a *contracts.Asset) { a.Metrics.Liquidity = 199_999 }, "liquidity"},
		{"disqualified", func(a *contracts.Asset) { a.Metrics.Disqualified = true }, "disqualified"},
		{"extreme negative PE", func(a *contracts.Asset) { a.Metrics.PE = -51 }, "negative_earnings"},
		{"NaN liquidity", func(a *contracts.Asset) { a.Metrics.Liquidity = math.NaN() }, "liquidity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := bank()
			tt.mutate(&a)
			_, reason, ok := e.Score(a, macro)
			assert.False(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}

	t.Run("fund PE is ignored", func(t *testing.T) {
		a := brickFund()
		a.Metrics.PE = -100
		_, _, ok := e.Score(a, macro)
		assert.True(t, ok)
	})
}

func TestScore_DefensiveGate(t *testing.T) {
	e := newEngine()

	s, _, ok := e.Score(bank(), macro)
	require.True(t, ok)
	assert.True(t, s.Scores.DefensiveEligible)
	assert.Greater(t, s.Scores.Defensive, 50.0)

	f, _, ok := e.Score(brickFund(), macro)
	require.True(t, ok)
	assert.True(t, f.Scores.DefensiveEligible)
	assert.Greater(t, f.Scores.Defensive, 50.0)

	tests := []struct {
		name   string
		asset  contracts.Asset
		mutate func(a *contracts.Asset)
	}{
		{"equity outside whitelist", bank(), func(a *contracts.Asset) { a.Sector = "Retail" }},
		{"equity small cap", bank(), func(a *contracts.Asset) { a.Metrics.MarketCap = 1_000_000_000 }},
		{"equity levered", bank(), func(a *contracts.Asset) { a.Metrics.NetDebtToEBITDA = 3.5 }},
		{"equity low yield", bank(), func(a *contracts.Asset) { a.Metrics.DividendYield = 4.9 }},
		{"equity PB too high", bank(), func(a *contracts.Asset) { a.Metrics.PB = 3.1 }},
		{"equity thin margin", bank(), func(a *contracts.Asset) { a.Metrics.NetMargin = 4 }},
		{"fund few holders", brickFund(), func(a *contracts.Asset) { a.Metrics.UnitHolders = 9_000 }},
		{"fund high vacancy", brickFund(), func(a *contracts.Asset) { a.Metrics.Vacancy = 16 }},
		{"fund premium to book", brickFund(), func(a *contracts.Asset) { a.Metrics.PB = 1.2 }},
		{"fund low yield", brickFund(), func(a *contracts.Asset) { a.Metrics.DividendYield = 7 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.asset
			tt.mutate(&a)
			s, _, ok := e.Score(a, macro)
			require.True(t, ok)
			assert.False(t, s.Scores.DefensiveEligible)
			assert.Equal(t, contracts.ScoreFloor, s.Scores.Defensive)
		})
	}

	t.Run("paper fund vacancy ignored", func(t *testing.T) {
		a := brickFund()
		a.Metrics.FundType = contracts.FundPaper
		a.Metrics.Vacancy = 40
		s, _, ok := e.Score(a, macro)
		require.True(t, ok)
		assert.True(t, s.Scores.DefensiveEligible)
	})
}

func TestScore_BoundsHoldForRandomUniverse(t *testing.T) {
	e := newEngine()
	rng := rand.New(rand.NewSource(42))

	pick := func(vals ...float64) float64 { return vals[rng.Intn(len(vals))] }
	sectors := append([]string{"Retail", "Mining", ""}, PerennialSectors...)
	fundTypes := []contracts.FundType{contracts.FundPaper, contracts.FundBrick, contracts.FundHybrid, ""}

	assets := make([]contracts.Asset, 0, 500)
	for i := 0; i < 500; i++ {
		class := contracts.AssetEquity
		if i%3 == 0 {
			class = contracts.AssetREITFund
		}
		assets = append(assets, contracts.Asset{
			Instrument: contracts.Instrument{
				Ticker:     fmt.Sprintf("T%03d", i),
				AssetClass: class,
				Sector:     sectors[rng.Intn(len(sectors))],
				Price:      pick(1.5, 10, 100, 1e6, math.NaN()),
			},
			Metrics: contracts.Metrics{
				PE:               pick(-40, 0, 3, 12, 80, math.Inf(1)),
				PB:               pick(-1, 0, 0.5, 0.9, 1.05, 4, math.NaN()),
				DividendYield:    pick(0, 3, 9, 25, 300),
				ROE:              pick(-50, 0, 12, 30),
				NetMargin:        pick(-30, 0, 8, 40),
				NetDebtToEBITDA:  pick(-2, 0, 2, 9),
				DebtToEquity:     pick(0, 1, 5),
				Liquidity:        pick(300_000, 5_000_000, 1e9),
				MarketCap:        pick(0, 5e9, 5e11),
				RevenueGrowth:    pick(-20, 0, 15, 60),
				EVToEBIT:         pick(-3, 0, 6, 30),
				BookValuePerUnit: pick(0, 50, 200),
				UnitHolders:      pick(0, 20_000, 500_000),
				Vacancy:          pick(0, 10, 60),
				FundType:         fundTypes[rng.Intn(len(fundTypes))],
			},
		})
	}

	res, err := e.ScoreAll(context.Background(), assets, macro)
	require.NoError(t, err)
	require.NotEmpty(t, res.Scored)
	assert.Equal(t, len(assets), len(res.Scored)+len(res.Excluded))

	for _, s := range res.Scored {
		for _, p := range contracts.Profiles {
			v := s.Scores.For(p)
			assert.GreaterOrEqual(t, v, p.Floor(), "%s %s", s.Ticker(), p)
			assert.LessOrEqual(t, v, p.Ceiling(), "%s %s", s.Ticker(), p)
		}
		for _, v := range []float64{s.Scores.Quality, s.Scores.Valuation, s.Scores.Risk, s.Valuation.FairPrice, s.Valuation.Upside} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), s.Ticker())
		}
		assert.GreaterOrEqual(t, s.Scores.Quality, 0.0)
		assert.LessOrEqual(t, s.Scores.Risk, 100.0)
	}
}

func TestScoreAll_PreservesInputOrderAndExcludes(t *testing.T) {
	e := newEngine()

	junk := bank()
	junk.Ticker = "JUNK3"
	junk.Metrics.Disqualified = true

	penny := brickFund()
	penny.Ticker = "PENY11"
	penny.Price = 0.8

	assets := []contracts.Asset{bank(), junk, brickFund(), penny}

	res, err := e.ScoreAll(context.Background(), assets, macro)
	require.NoError(t, err)

	tickers := make([]string, 0, len(res.Scored))
	for _, s := range res.Scored {
		tickers = append(tickers, s.Ticker())
	}
	assert.Equal(t, []string{"BANK4", "LOGI11"}, tickers)
	assert.Equal(t, []Exclusion{{Ticker: "JUNK3", Reason: "disqualified"}, {Ticker: "PENY11", Reason: "price"}}, res.Excluded)
}

func TestScoreAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine().ScoreAll(ctx, []contracts.Asset{bank()}, macro)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestThesis(t *testing.T) {
	e := newEngine()

	a := bank()
	a.Metrics.PE = 4 // deep discount → large upside
	s, _, ok := e.Score(a, macro)
	require.True(t, ok)

	require.NotEmpty(t, s.Bullish)
	assert.Contains(t, s.Bullish[0], "R$")
	assert.Contains(t, s.Bullish[0], "upside")
	assert.Contains(t, s.Bullish, "High return on equity (18.0%)")
	assert.Empty(t, s.Bearish)

	weak := bank()
	weak.Metrics.ROE = -5
	weak.Metrics.NetMargin = -3
	weak.Metrics.NetDebtToEBITDA = 5
	s, _, ok = e.Score(weak, macro)
	require.True(t, ok)
	assert.Contains(t, s.Bearish, "Negative return on equity (-5.0%)")
	assert.Contains(t, s.Bearish, "Leverage of 5.0x net debt/EBITDA")
	assert.Contains(t, s.Bearish, "Loss-making (net margin -3.0%)")
}

func TestFormatPrice_UnknownCurrencyFallsBack(t *testing.T) {
	assert.Equal(t, formatPrice(12.5, "BRL"), formatPrice(12.5, "???"))
	assert.Equal(t, formatPrice(12.5, "BRL"), formatPrice(12.5, ""))
}
