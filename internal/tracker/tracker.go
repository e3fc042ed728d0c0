// Package tracker maintains a portfolio's time-weighted quota index from daily
// equity and cash flows.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/metrics"
	"github.com/wonny/quantengine/internal/perfmath"
	"github.com/wonny/quantengine/pkg/logger"
)

const (
	quotaPlaces  = 6
	returnPlaces = 8
)

// Day is one period's input: closing equity and the net flow of the period.
type Day struct {
	Date    time.Time `json:"date" csv:"date"`
	Equity  float64   `json:"equity" csv:"equity"`
	NetFlow float64   `json:"net_flow" csv:"net_flow"`
}

// Tracker advances quota series.
type Tracker struct {
	portfolioID string
	store       contracts.SnapshotStore
	metrics     *metrics.Recorder
	logger      *logger.Logger
}

// NewTracker creates a tracker. store and rec may be nil when only Next,
// Replay and Report are used.
func NewTracker(portfolioID string, store contracts.SnapshotStore, rec *metrics.Recorder, log *logger.Logger) *Tracker {
	return &Tracker{
		portfolioID: portfolioID,
		store:       store,
		metrics:     rec,
		logger:      log.WithComponent("tracker"),
	}
}

// Next derives the point for day from the previous one. The first point starts
// the quota at 100 with invested equal to its flow.
func (t *Tracker) Next(prev *contracts.PerformanceSnapshot, day Day) contracts.PerformanceSnapshot {
	equity := perfmath.Normalize(day.Equity)
	flow := perfmath.Normalize(day.NetFlow)

	snap := contracts.PerformanceSnapshot{
		PortfolioID: t.portfolioID,
		Date:        day.Date,
		Equity:      equity,
		NetFlow:     flow,
	}

	if prev == nil {
		snap.Invested = flow
		snap.QuotaPrice = perfmath.QuotaBase
		return snap
	}

	r := perfmath.ModifiedDietz(prev.Equity, equity, flow)
	snap.Invested = perfmath.Normalize(prev.Invested + flow)
	snap.DailyReturn = perfmath.Round(r, returnPlaces)
	snap.QuotaPrice = perfmath.Round(perfmath.CompoundQuota(prev.QuotaPrice, r), quotaPlaces)

	return snap
}

// Replay builds the full series for days in order.
func (t *Tracker) Replay(days []Day) []contracts.PerformanceSnapshot {
	series := make([]contracts.PerformanceSnapshot, 0, len(days))
	var prev *contracts.PerformanceSnapshot
	for _, d := range days {
		snap := t.Next(prev, d)
		series = append(series, snap)
		prev = &series[len(series)-1]
	}
	return series
}

// Record appends the point for day after the stored last point.
func (t *Tracker) Record(ctx context.Context, day Day) (*contracts.PerformanceSnapshot, error) {
	prev, err := t.Last(ctx)
	if err != nil {
		return nil, err
	}

	if prev != nil && !day.Date.After(prev.Date) {
		return nil, fmt.Errorf("snapshot for %s is not after last point %s",
			day.Date.Format("2006-01-02"), prev.Date.Format("2006-01-02"))
	}

	snap := t.Next(prev, day)
	if err := t.store.Append(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to append snapshot: %w", err)
	}

	t.metrics.RecordQuota(t.portfolioID, snap.QuotaPrice)
	t.logger.WithFields(map[string]interface{}{
		"portfolio":    t.portfolioID,
		"date":         snap.Date.Format("2006-01-02"),
		"equity":       snap.Equity,
		"daily_return": snap.DailyReturn,
		"quota":        snap.QuotaPrice,
	}).Info("Snapshot recorded")

	return &snap, nil
}

// Last returns the stored last point, nil when the series is empty.
func (t *Tracker) Last(ctx context.Context) (*contracts.PerformanceSnapshot, error) {
	if t.store == nil {
		return nil, errors.New("tracker has no snapshot store")
	}

	last, err := t.store.Last(ctx, t.portfolioID)
	if errors.Is(err, contracts.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load last snapshot: %w", err)
	}
	return last, nil
}

// History returns the stored points dated within [from, to], oldest first.
func (t *Tracker) History(ctx context.Context, from, to time.Time) ([]contracts.PerformanceSnapshot, error) {
	if t.store == nil {
		return nil, errors.New("tracker has no snapshot store")
	}

	series, err := t.store.History(ctx, t.portfolioID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot history: %w", err)
	}
	return series, nil
}

// Report summarizes a series. benchmark holds the benchmark closes; beta pairs
// each daily return with the benchmark move between the same two dates.
// annualRiskFree is a fraction (0.1075 for 10.75%).
func (t *Tracker) Report(series []contracts.PerformanceSnapshot, benchmark []contracts.PricePoint, annualRiskFree float64) contracts.PerformanceReport {
	report := contracts.PerformanceReport{PortfolioID: t.portfolioID, Points: len(series), Beta: 1.0}
	if len(series) == 0 {
		return report
	}

	first, last := series[0], series[len(series)-1]
	report.StartDate = first.Date
	report.EndDate = last.Date

	returns := make([]float64, 0, len(series)-1)
	quotas := make([]float64, 0, len(series))
	for i, s := range series {
		quotas = append(quotas, s.QuotaPrice)
		if i > 0 {
			returns = append(returns, s.DailyReturn)
		}
	}

	report.TotalReturn = perfmath.Normalize(perfmath.PercentChange(first.QuotaPrice, last.QuotaPrice))
	report.NominalPnL = perfmath.Normalize(last.Equity - last.Invested)
	report.Volatility = perfmath.Normalize(perfmath.AnnualizedVolatility(returns) * 100)
	report.Sharpe = perfmath.Normalize(perfmath.Sharpe(returns, annualRiskFree))
	paired, benchReturns := PairReturns(series, benchmark)
	report.Beta = perfmath.Normalize(perfmath.Beta(paired, benchReturns))
	report.MaxDrawdown = perfmath.Normalize(perfmath.MaxDrawdown(quotas) * 100)

	t.logger.WithFields(map[string]interface{}{
		"portfolio":    t.portfolioID,
		"points":       report.Points,
		"total_return": report.TotalReturn,
		"sharpe":       report.Sharpe,
		"max_drawdown": report.MaxDrawdown,
	}).Debug("Performance report built")

	return report
}

// PairReturns matches the series' daily returns with benchmark returns over
// the same dates. A day is kept only when the benchmark has a positive close on
// both that date and the previous series date; the two slices always have
// equal length.
func PairReturns(series []contracts.PerformanceSnapshot, benchmark []contracts.PricePoint) (portfolio, bench []float64) {
	closes := make(map[string]float64, len(benchmark))
	for _, p := range benchmark {
		if c := perfmath.Finite(p.Close); c > 0 {
			closes[dateKey(p.Date)] = c
		}
	}

	for i := 1; i < len(series); i++ {
		prev, okPrev := closes[dateKey(series[i-1].Date)]
		cur, okCur := closes[dateKey(series[i].Date)]
		if !okPrev || !okCur {
			continue
		}
		portfolio = append(portfolio, series[i].DailyReturn)
		bench = append(bench, perfmath.SafeDiv(cur-prev, prev))
	}
	return portfolio, bench
}

func dateKey(d time.Time) string {
	return d.Format(time.DateOnly)
}
