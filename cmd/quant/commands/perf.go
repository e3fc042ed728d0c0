package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/dataset"
	"github.com/wonny/quantengine/internal/tracker"
)

var perfCmd = &cobra.Command{
	Use:   "perf",
	Short: "Build the quota series and performance report",
	Long: `Turns daily equity and net flows into a time-weighted quota series
(Modified Dietz per period, quota starting at 100) and reports total return,
nominal P&L, volatility, Sharpe, beta and max drawdown.

With --record each day after the last stored point is appended to the
snapshot store and the report is built from the stored history.

Example:
  go run ./cmd/quant perf --days data/equity.csv
  go run ./cmd/quant perf --days data/equity.csv --benchmark data/prices.csv --benchmark-ticker BOVA11
  go run ./cmd/quant perf --holdings data/holdings.csv
  go run ./cmd/quant perf --holdings data/holdings.csv --split ITUB4:2 --mark ITUB4:17.40`,
	RunE: runPerf,
}

var (
	perfDays            string
	perfHoldings        string
	perfBenchmark       string
	perfBenchmarkTicker string
	perfRecord          bool
	perfSplits          []string
	perfMarks           []string
)

func init() {
	rootCmd.AddCommand(perfCmd)

	perfCmd.Flags().StringVar(&perfDays, "days", "", "daily equity CSV (date,equity,net_flow)")
	perfCmd.Flags().StringVar(&perfHoldings, "holdings", "", "positions CSV (ticker,quantity,price) to mark to market")
	perfCmd.Flags().StringVar(&perfBenchmark, "benchmark", "", "price CSV holding the benchmark series")
	perfCmd.Flags().StringVar(&perfBenchmarkTicker, "benchmark-ticker", "BOVA11", "benchmark ticker inside --benchmark")
	perfCmd.Flags().BoolVar(&perfRecord, "record", false, "append new days to the snapshot store")
	perfCmd.Flags().StringArrayVar(&perfSplits, "split", nil, "apply a K-for-1 split to --holdings before marking (TICKER:K, repeatable)")
	perfCmd.Flags().StringArrayVar(&perfMarks, "mark", nil, "override a --holdings price (TICKER:PRICE, repeatable)")
	perfCmd.MarkFlagsOneRequired("days", "holdings")
}

func runPerf(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if perfHoldings != "" {
		holdings, err := dataset.LoadHoldings(perfHoldings)
		if err != nil {
			return err
		}
		if holdings, err = adjustHoldings(holdings, perfSplits, perfMarks); err != nil {
			return err
		}
		printHeader(out, "Holdings")
		rows := make([][]string, 0, len(holdings))
		for _, p := range holdings {
			rows = append(rows, []string{p.Ticker, fmt.Sprintf("%g", p.Quantity), fmt.Sprintf("%.2f", p.Price), p.Value().StringFixed(2)})
		}
		printTable(out, []string{"Ticker", "Quantity", "Price", "Value"}, rows)
		printKeyValue(out, "Equity", fmt.Sprintf("%.2f", holdings.Equity()))
	}

	if perfDays == "" {
		return nil
	}

	days, err := dataset.LoadDays(perfDays)
	if err != nil {
		return err
	}

	var benchmark []contracts.PricePoint
	if perfBenchmark != "" {
		prices, err := dataset.LoadPrices(perfBenchmark)
		if err != nil {
			return err
		}
		benchmark = prices.Series(perfBenchmarkTicker)
		if len(benchmark) < 2 {
			printWarning(out, fmt.Sprintf("benchmark %s has no returns, beta defaults to 1.0", perfBenchmarkTicker))
		}
	}

	t := a.tracker()
	series, err := buildSeries(cmd, t, days)
	if err != nil {
		return err
	}

	report := t.Report(series, benchmark, a.engine.Macro.RiskFreeRate/100)
	if n := len(series); n > 0 {
		a.metrics.RecordQuota(report.PortfolioID, series[n-1].QuotaPrice)
	}
	printReport(cmd, report, series)
	return nil
}

// adjustHoldings applies the --split adjustments, then the --mark prices.
func adjustHoldings(h tracker.Holdings, splits, marks []string) (tracker.Holdings, error) {
	for _, arg := range splits {
		ticker, k, err := parseTickerValue(arg)
		if err != nil {
			return nil, fmt.Errorf("--split: %w", err)
		}
		h = h.Split(ticker, k)
	}
	for _, arg := range marks {
		ticker, price, err := parseTickerValue(arg)
		if err != nil {
			return nil, fmt.Errorf("--mark: %w", err)
		}
		h = h.Mark(ticker, price)
	}
	return h, nil
}

// parseTickerValue reads "TICKER:VALUE" with a positive finite value.
func parseTickerValue(arg string) (string, float64, error) {
	ticker, raw, ok := strings.Cut(arg, ":")
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if !ok || ticker == "" {
		return "", 0, fmt.Errorf("%q: want TICKER:VALUE", arg)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return "", 0, fmt.Errorf("%q: value must be a positive number", arg)
	}
	return ticker, v, nil
}

// buildSeries replays days in memory, or with --record appends the days after
// the stored last point and reads the stored history back.
func buildSeries(cmd *cobra.Command, t *tracker.Tracker, days []tracker.Day) ([]contracts.PerformanceSnapshot, error) {
	if !perfRecord {
		return t.Replay(days), nil
	}

	ctx := cmd.Context()
	last, err := t.Last(ctx)
	if err != nil {
		return nil, err
	}

	recorded := 0
	for _, d := range days {
		if last != nil && !d.Date.After(last.Date) {
			continue
		}
		if _, err := t.Record(ctx, d); err != nil {
			return nil, err
		}
		recorded++
	}
	printKeyValue(cmd.OutOrStdout(), "Recorded", fmt.Sprintf("%d new day(s)", recorded))

	return t.History(ctx, time.Time{}, time.Now().UTC())
}

func printReport(cmd *cobra.Command, r contracts.PerformanceReport, series []contracts.PerformanceSnapshot) {
	out := cmd.OutOrStdout()

	printHeader(out, "Performance "+r.PortfolioID)
	if r.Points == 0 {
		printWarning(out, "no data points")
		return
	}
	printKeyValue(out, "Period", fmt.Sprintf("%s ~ %s (%d points)", r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"), r.Points))
	printKeyValue(out, "Total return", pct(r.TotalReturn))
	printKeyValue(out, "Nominal P&L", fmt.Sprintf("%.2f", r.NominalPnL))
	printKeyValue(out, "Volatility", pct(r.Volatility))
	printKeyValue(out, "Sharpe", fmt.Sprintf("%.2f", r.Sharpe))
	printKeyValue(out, "Beta", fmt.Sprintf("%.2f", r.Beta))
	printKeyValue(out, "Max drawdown", pct(r.MaxDrawdown))

	tail := series[max(len(series)-10, 0):]
	rows := make([][]string, 0, len(tail))
	for _, s := range tail {
		rows = append(rows, []string{
			s.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", s.Equity),
			fmt.Sprintf("%.2f", s.NetFlow),
			fmt.Sprintf("%.4f%%", s.DailyReturn*100),
			fmt.Sprintf("%.6f", s.QuotaPrice),
		})
	}
	fmt.Fprintln(out)
	printTable(out, []string{"Date", "Equity", "Net flow", "Return", "Quota"}, rows)
}
