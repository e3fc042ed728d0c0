// Package valuation estimates an instrument's intrinsic fair price from its
// fundamentals. It never fails: missing inputs degrade to the market price.
package valuation

import (
	"math"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/perfmath"
	"github.com/wonny/quantengine/pkg/logger"
)

// Method labels
const (
	MethodBlend      = "GRAHAM_YIELD_BLEND"
	MethodGraham     = "GRAHAM"
	MethodYieldCap   = "YIELD_CAP"
	MethodBookValue  = "BOOK_VALUE"
	MethodBookSpread = "BOOK_SPREAD"
	MethodMarket     = "MARKET"
)

// Config holds the valuation constants.
type Config struct {
	MaxYield         float64 `yaml:"max_yield" default:"0.10" validate:"gt=0,lte=1"`          // yield cap input ceiling (fraction)
	RequiredYield    float64 `yaml:"required_yield" default:"0.06" validate:"gt=0,lte=1"`     // yield cap discount (fraction)
	MaxFairMultiple  float64 `yaml:"max_fair_multiple" default:"2.5" validate:"gt=1"`         // fair price ≤ multiple × price
	SpreadMultiplier float64 `yaml:"spread_multiplier" default:"0.05" validate:"gte=0"`       // premium per pp of yield spread
	MaxSpreadPremium float64 `yaml:"max_spread_premium" default:"0.5" validate:"gte=0,lte=1"` // |premium| bound (fraction)
}

// DefaultConfig returns the production valuation constants.
func DefaultConfig() Config {
	return Config{
		MaxYield:         0.10,
		RequiredYield:    0.06,
		MaxFairMultiple:  2.5,
		SpreadMultiplier: 0.05,
		MaxSpreadPremium: 0.5,
	}
}

// Engine computes ValuationResults.
type Engine struct {
	config Config
	logger *logger.Logger
}

// NewEngine creates a valuation engine
func NewEngine(config Config, log *logger.Logger) *Engine {
	return &Engine{
		config: config,
		logger: log.WithComponent("valuation"),
	}
}

// Value estimates the fair price of one asset.
func (e *Engine) Value(asset contracts.Asset, macro contracts.MacroContext) contracts.ValuationResult {
	price := perfmath.Finite(asset.Price)
	metrics := asset.Metrics.Normalize()
	macro = macro.Normalize()

	var result contracts.ValuationResult
	if asset.IsFund() {
		result = e.valueFund(price, metrics, macro)
	} else {
		result = e.valueEquity(price, metrics)
	}

	result.FairPrice = e.cap(result.FairPrice, price)
	result.Upside = perfmath.PercentChange(price, result.FairPrice)

	result.FairPrice = perfmath.Normalize(result.FairPrice)
	result.Graham = perfmath.Normalize(result.Graham)
	result.YieldCap = perfmath.Normalize(result.YieldCap)
	result.BookValue = perfmath.Normalize(result.BookValue)
	result.Upside = perfmath.Normalize(result.Upside)

	e.logger.WithFields(map[string]interface{}{
		"ticker":     asset.Ticker,
		"method":     result.Method,
		"fair_price": result.FairPrice,
		"upside":     result.Upside,
	}).Debug("Valued instrument")

	return result
}

func (e *Engine) valueEquity(price float64, m contracts.Metrics) contracts.ValuationResult {
	result := contracts.ValuationResult{
		Graham:   Graham(price, m.PE, m.PB),
		YieldCap: e.yieldCap(price, m.DividendYield),
	}

	switch {
	case result.Graham > 0 && result.YieldCap > 0:
		result.FairPrice = (result.Graham + result.YieldCap) / 2
		result.Method = MethodBlend
	case result.Graham > 0:
		result.FairPrice = result.Graham
		result.Method = MethodGraham
	case result.YieldCap > 0:
		result.FairPrice = result.YieldCap
		result.Method = MethodYieldCap
	default:
		result.FairPrice = price
		result.Method = MethodMarket
	}

	return result
}

func (e *Engine) valueFund(price float64, m contracts.Metrics, macro contracts.MacroContext) contracts.ValuationResult {
	result := contracts.ValuationResult{
		BookValue: m.BookValuePerUnit,
		YieldCap:  e.yieldCap(price, m.DividendYield),
	}

	if m.BookValuePerUnit <= 0 {
		result.FairPrice = price
		result.Method = MethodMarket
		return result
	}

	if m.FundType == contracts.FundPaper {
		result.FairPrice = m.BookValuePerUnit
		result.Method = MethodBookValue
		return result
	}

	// Physical-asset funds earn a premium (or discount) for yielding above (below)
	// the long real rate.
	spread := m.DividendYield - macro.LongRealRate
	premium := perfmath.Clamp(spread*e.config.SpreadMultiplier, -e.config.MaxSpreadPremium, e.config.MaxSpreadPremium)
	result.FairPrice = m.BookValuePerUnit * (1 + premium)
	result.Method = MethodBookSpread

	return result
}

// yieldCap is price × min(yield, MaxYield) / RequiredYield, with yield given in percent.
func (e *Engine) yieldCap(price, dividendYieldPct float64) float64 {
	if price <= 0 || dividendYieldPct <= 0 {
		return 0
	}
	y := math.Min(dividendYieldPct/100, e.config.MaxYield)
	return perfmath.SafeDiv(price*y, e.config.RequiredYield)
}

func (e *Engine) cap(fair, price float64) float64 {
	fair = perfmath.Finite(fair)
	if fair < 0 {
		fair = 0
	}
	if price > 0 {
		fair = math.Min(fair, price*e.config.MaxFairMultiple)
	}
	return fair
}

// Graham returns the Graham estimate sqrt(22.5 × EPS × BVPS) using the EPS and
// book value per share implied by price and the P/E and P/B multiples. Zero when
// either multiple is non-positive.
func Graham(price, pe, pb float64) float64 {
	if price <= 0 || pe <= 0 || pb <= 0 {
		return 0
	}
	return perfmath.GrahamNumber(price/pe, price/pb)
}
