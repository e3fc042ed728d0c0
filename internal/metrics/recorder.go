// Package metrics exposes engine run outcomes as Prometheus collectors.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wonny/quantengine/internal/contracts"
)

const namespace = "quant_engine"

// Recorder records engine metrics.
type Recorder struct {
	runDuration    *prometheus.HistogramVec
	runFailures    *prometheus.CounterVec
	scored         prometheus.Gauge
	excluded       prometheus.Gauge
	rankingItems   *prometheus.GaugeVec
	signalsCreated *prometheus.CounterVec
	duplicates     prometheus.Counter
	scanFailures   prometheus.Counter
	auditOutcomes  *prometheus.CounterVec
	quotaPrice     *prometheus.GaugeVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of engine runs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"component"},
		),
		runFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "run_failures_total",
				Help:      "Engine runs that reported failure",
			},
			[]string{"component"},
		),
		scored: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scored_instruments",
			Help:      "Instruments scored in the last ranking run",
		}),
		excluded: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "excluded_instruments",
			Help:      "Instruments removed by the pre-filter in the last ranking run",
		}),
		rankingItems: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ranking_items",
				Help:      "Drafted items per profile in the last ranking",
			},
			[]string{"profile"},
		),
		signalsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "signals_created_total",
				Help:      "Signals created by the scanner",
			},
			[]string{"type"},
		),
		duplicates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signal_duplicates_total",
			Help:      "Signals rejected by the dedup window",
		}),
		scanFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_instrument_failures_total",
			Help:      "Instruments skipped by the scanner after an error",
		}),
		auditOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_outcomes_total",
				Help:      "Audited signals by outcome",
			},
			[]string{"status"},
		),
		quotaPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "quota_price",
				Help:      "Latest quota price per portfolio",
			},
			[]string{"portfolio"},
		),
	}
}

// ObserveRun records the duration of one component run.
func (r *Recorder) ObserveRun(component string, seconds float64) {
	if r == nil {
		return
	}
	r.runDuration.WithLabelValues(component).Observe(seconds)
}

// RecordFailure counts a failed component run.
func (r *Recorder) RecordFailure(component string) {
	if r == nil {
		return
	}
	r.runFailures.WithLabelValues(component).Inc()
}

// RecordRanking records the size of a ranking run.
func (r *Recorder) RecordRanking(scored, excluded int, ranking *contracts.Ranking) {
	if r == nil {
		return
	}
	r.scored.Set(float64(scored))
	r.excluded.Set(float64(excluded))
	for _, p := range contracts.Profiles {
		r.rankingItems.WithLabelValues(string(p)).Set(float64(len(ranking.ByProfile(p))))
	}
}

// RecordScan records a scanner outcome.
func (r *Recorder) RecordScan(result *contracts.ScanResult) {
	if r == nil {
		return
	}
	if !result.Success {
		r.runFailures.WithLabelValues("scanner").Inc()
	}
	for _, s := range result.Signals {
		r.signalsCreated.WithLabelValues(string(s.Type)).Inc()
	}
	r.duplicates.Add(float64(result.Duplicates))
	r.scanFailures.Add(float64(result.Failed))
}

// RecordAudit records an auditor outcome.
func (r *Recorder) RecordAudit(result *contracts.AuditResult) {
	if r == nil {
		return
	}
	if !result.Success {
		r.runFailures.WithLabelValues("auditor").Inc()
	}
	r.auditOutcomes.WithLabelValues(string(contracts.StatusHit)).Add(float64(result.Hits))
	r.auditOutcomes.WithLabelValues(string(contracts.StatusMiss)).Add(float64(result.Misses))
	r.auditOutcomes.WithLabelValues(string(contracts.StatusNeutral)).Add(float64(result.Neutrals))
}

// RecordQuota records the latest quota price of a portfolio.
func (r *Recorder) RecordQuota(portfolioID string, quota float64) {
	if r == nil {
		return
	}
	r.quotaPrice.WithLabelValues(portfolioID).Set(quota)
}
