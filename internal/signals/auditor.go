package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/metrics"
	"github.com/wonny/quantengine/internal/perfmath"
)

//go:generate mockgen -destination=mocks/mock_quote_source.go -package=mocks github.com/wonny/quantengine/internal/contracts QuoteSource

// Auditor resolves ACTIVE signals once their horizon has elapsed.
type Auditor struct {
	config  AuditorConfig
	store   contracts.SignalStore
	quotes  contracts.QuoteSource
	metrics *metrics.Recorder
	log     zerolog.Logger
}

// NewAuditor creates an auditor. rec may be nil.
func NewAuditor(config AuditorConfig, store contracts.SignalStore, quotes contracts.QuoteSource, rec *metrics.Recorder, log zerolog.Logger) *Auditor {
	return &Auditor{
		config:  config,
		store:   store,
		quotes:  quotes,
		metrics: rec,
		log:     log.With().Str("component", "signals.auditor").Logger(),
	}
}

// Window returns the creation-time bounds (after, before] of auditable signals.
func (a *Auditor) Window(now time.Time) (after, before time.Time) {
	return now.Add(-a.config.SafetyWindow), now.Add(-a.config.Horizon)
}

// Audit classifies every signal inside the audit window exactly once.
// Signals whose price cannot be fetched stay ACTIVE for the next pass.
func (a *Auditor) Audit(ctx context.Context) *contracts.AuditResult {
	start := time.Now()
	result := &contracts.AuditResult{Audited: make([]contracts.QuantSignal, 0)}

	now := a.config.now()
	after, before := a.Window(now)

	active, err := a.store.ListActive(ctx, after, before)
	if err != nil {
		result.Error = fmt.Sprintf("list active signals: %v", err)
		a.log.Error().Err(err).Msg("audit aborted")
		a.metrics.RecordAudit(result)
		return result
	}

	for _, sig := range active {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Sprintf("audit cancelled: %v", err)
			a.metrics.RecordAudit(result)
			return result
		}
		result.Checked++

		price, err := a.quotes.LatestPrice(ctx, sig.Ticker)
		if err != nil || perfmath.Finite(price) <= 0 {
			result.Failed++
			a.log.Warn().Err(err).
				Str("ticker", sig.Ticker).
				Float64("price", price).
				Msg("quote unavailable")
			continue
		}

		change := perfmath.Normalize(perfmath.PercentChange(sig.PriceAtSignal, price))
		status := contracts.Classify(change, a.config.HitThreshold, a.config.MissThreshold)

		if err := sig.Resolve(status, perfmath.Normalize(price), change, now); err != nil {
			a.log.Debug().Err(err).Str("id", sig.ID).Msg("signal already resolved")
			continue
		}

		if err := a.store.Resolve(ctx, sig); err != nil {
			if errors.Is(err, contracts.ErrAlreadyResolved) {
				a.log.Debug().Str("id", sig.ID).Msg("signal resolved concurrently")
				continue
			}
			result.Failed++
			a.log.Warn().Err(err).Str("id", sig.ID).Msg("failed to persist audit")
			continue
		}

		switch status {
		case contracts.StatusHit:
			result.Hits++
		case contracts.StatusMiss:
			result.Misses++
		default:
			result.Neutrals++
		}
		result.Audited = append(result.Audited, sig)
	}

	result.Success = true
	a.metrics.RecordAudit(result)
	a.metrics.ObserveRun("auditor", time.Since(start).Seconds())

	a.log.Info().
		Int("checked", result.Checked).
		Int("hits", result.Hits).
		Int("misses", result.Misses).
		Int("neutrals", result.Neutrals).
		Int("failed", result.Failed).
		Float64("hit_rate", result.HitRate()).
		Msg("audit completed")

	return result
}
