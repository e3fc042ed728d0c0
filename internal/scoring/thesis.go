package scoring

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/wonny/quantengine/internal/contracts"
)

// DefaultCurrency is assumed when an instrument carries an unknown currency code.
const DefaultCurrency = money.BRL

type thesisRule struct {
	bullish bool
	when    func(in input) bool
	text    func(in input) string
}

// thesisRules are evaluated in order; every matching rule adds one bullet.
var thesisRules = []thesisRule{
	{
		bullish: true,
		when:    func(in input) bool { return in.val.Upside >= thesisUpside },
		text: func(in input) string {
			return fmt.Sprintf("Trades below its fair price of %s (%+.1f%% upside, %s)",
				formatPrice(in.val.FairPrice, in.asset.Currency), in.val.Upside, in.val.Method)
		},
	},
	{
		bullish: false,
		when:    func(in input) bool { return in.val.Upside <= thesisDownside },
		text: func(in input) string {
			return fmt.Sprintf("Trades above its fair price of %s (%.1f%% downside)",
				formatPrice(in.val.FairPrice, in.asset.Currency), in.val.Upside)
		},
	},
	{
		bullish: true,
		when:    func(in input) bool { return in.m.DividendYield > in.benchmarkYield() },
		text: func(in input) string {
			return fmt.Sprintf("Dividend yield of %.1f%% beats the %.1f%% benchmark", in.m.DividendYield, in.benchmarkYield())
		},
	},
	{
		bullish: true,
		when:    func(in input) bool { return !in.asset.IsFund() && in.m.ROE >= highROE },
		text:    func(in input) string { return fmt.Sprintf("High return on equity (%.1f%%)", in.m.ROE) },
	},
	{
		bullish: false,
		when:    func(in input) bool { return !in.asset.IsFund() && in.m.ROE < 0 },
		text:    func(in input) string { return fmt.Sprintf("Negative return on equity (%.1f%%)", in.m.ROE) },
	},
	{
		bullish: true,
		when:    func(in input) bool { return !in.asset.IsFund() && in.m.RevenueGrowth >= growth },
		text:    func(in input) string { return fmt.Sprintf("Revenue compounding at %.1f%% a year", in.m.RevenueGrowth) },
	},
	{
		bullish: false,
		when:    func(in input) bool { return !in.asset.IsFund() && in.m.NetDebtToEBITDA > highLeverage },
		text: func(in input) string {
			return fmt.Sprintf("Leverage of %.1fx net debt/EBITDA", in.m.NetDebtToEBITDA)
		},
	},
	{
		bullish: false,
		when:    func(in input) bool { return !in.asset.IsFund() && in.m.NetMargin < 0 },
		text:    func(in input) string { return fmt.Sprintf("Loss-making (net margin %.1f%%)", in.m.NetMargin) },
	},
	{
		bullish: true,
		when:    func(in input) bool { return in.asset.IsFund() && in.m.PB > 0 && in.m.PB < 1 },
		text:    func(in input) string { return fmt.Sprintf("Trades at %.2fx book value", in.m.PB) },
	},
	{
		bullish: false,
		when: func(in input) bool {
			return in.asset.IsFund() && in.m.FundType != contracts.FundPaper && in.m.Vacancy > highVacancy
		},
		text: func(in input) string { return fmt.Sprintf("Vacancy at %.1f%%", in.m.Vacancy) },
	},
	{
		bullish: false,
		when:    func(in input) bool { return in.m.Liquidity < thinLiquidity },
		text:    func(in input) string { return "Thin daily liquidity" },
	},
}

// buildThesis returns the bullish and bearish bullets. It never affects scores.
func buildThesis(in input) (bullish, bearish []string) {
	bullish = []string{}
	bearish = []string{}
	for _, rule := range thesisRules {
		if !rule.when(in) {
			continue
		}
		if rule.bullish {
			bullish = append(bullish, rule.text(in))
		} else {
			bearish = append(bearish, rule.text(in))
		}
	}
	return bullish, bearish
}

// formatPrice renders a price in the instrument's currency.
func formatPrice(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}

	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}
