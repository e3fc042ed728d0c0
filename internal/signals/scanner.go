// Package signals detects anomaly signals over price history and later audits
// their outcome.
package signals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/metrics"
	"github.com/wonny/quantengine/internal/perfmath"
	"github.com/wonny/quantengine/internal/valuation"
	"github.com/wonny/quantengine/pkg/logger"
)

// ErrNoLiquidInstruments trips the circuit breaker.
var ErrNoLiquidInstruments = errors.New("no liquid instruments")

// Input is one instrument offered to the scanner.
type Input struct {
	Asset   contracts.Asset
	History []contracts.PricePoint // oldest first
}

// Scanner emits QuantSignals.
type Scanner struct {
	config  ScannerConfig
	store   contracts.SignalStore
	metrics *metrics.Recorder
	logger  *logger.Logger

	detector func(in Input, now time.Time) []contracts.QuantSignal
}

// NewScanner creates a scanner. rec may be nil.
func NewScanner(config ScannerConfig, store contracts.SignalStore, rec *metrics.Recorder, log *logger.Logger) *Scanner {
	s := &Scanner{
		config:  config,
		store:   store,
		metrics: rec,
		logger:  log.WithComponent("scanner"),
	}
	s.detector = s.detect
	return s
}

// Scan runs one pass. The result reports failure instead of returning an error.
func (s *Scanner) Scan(ctx context.Context, inputs []Input) *contracts.ScanResult {
	start := time.Now()
	result := &contracts.ScanResult{Signals: make([]contracts.QuantSignal, 0)}

	eligible := s.eligible(inputs)
	if len(eligible) < s.config.MinLiquidInstruments {
		result.Error = ErrNoLiquidInstruments.Error()
		s.logger.WithFields(map[string]interface{}{
			"total_input": len(inputs),
			"liquid":      len(eligible),
			"required":    s.config.MinLiquidInstruments,
		}).Error("Scan aborted: circuit breaker tripped")
		s.metrics.RecordScan(result)
		return result
	}

	now := s.config.now()
	for _, in := range eligible {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Sprintf("scan cancelled: %v", err)
			s.metrics.RecordScan(result)
			return result
		}

		result.Analyzed++
		if !usableHistory(in.History) {
			// Only the price-history detectors are dropped; DEEP_VALUE still runs.
			result.BadHistory++
			s.logger.WithField("ticker", in.Asset.Ticker).Warn("Price history has a missing or non-positive close, history detectors skipped")
			in.History = nil
		}

		detected, err := s.detectSafe(in, now)
		if err != nil {
			result.Failed++
			s.logger.WithError(err).WithField("ticker", in.Asset.Ticker).Warn("Instrument skipped")
			continue
		}

		for _, sig := range detected {
			err := s.store.Create(ctx, sig, s.config.DedupWindow)
			switch {
			case errors.Is(err, contracts.ErrDuplicateSignal):
				result.Duplicates++
			case err != nil:
				result.Failed++
				s.logger.WithError(err).WithFields(map[string]interface{}{
					"ticker": sig.Ticker,
					"type":   sig.Type,
				}).Warn("Failed to store signal")
			default:
				result.Created++
				result.Signals = append(result.Signals, sig)
			}
		}
	}

	result.Success = true
	s.metrics.RecordScan(result)
	s.metrics.ObserveRun("scanner", time.Since(start).Seconds())

	s.logger.WithFields(map[string]interface{}{
		"total_input": len(inputs),
		"analyzed":    result.Analyzed,
		"created":     result.Created,
		"duplicates":  result.Duplicates,
		"failed":      result.Failed,
		"bad_history": result.BadHistory,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Scan completed")

	return result
}

func (s *Scanner) eligible(inputs []Input) []Input {
	out := make([]Input, 0, len(inputs))
	for _, in := range inputs {
		m := in.Asset.Metrics.Normalize()
		if m.Disqualified || s.config.ignored(in.Asset.Ticker) {
			continue
		}
		if m.Liquidity < s.config.MinLiquidity {
			continue
		}
		out = append(out, in)
	}
	return out
}

// detectSafe isolates one instrument so a panic only skips it.
func (s *Scanner) detectSafe(in Input, now time.Time) (signals []contracts.QuantSignal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("detect %s: panic: %v", in.Asset.Ticker, r)
		}
	}()
	return s.detector(in, now), nil
}

func (s *Scanner) detect(in Input, now time.Time) []contracts.QuantSignal {
	asset := in.Asset
	m := asset.Metrics.Normalize()
	closes := contracts.Closes(in.History)

	price := perfmath.Finite(asset.Price)
	if price <= 0 && len(closes) > 0 {
		price = closes[len(closes)-1]
	}
	if price <= 0 {
		return nil
	}

	out := make([]contracts.QuantSignal, 0, 3)
	emit := func(t contracts.SignalType, value float64, msg string) {
		out = append(out, contracts.QuantSignal{
			ID:            uuid.NewString(),
			Ticker:        asset.Ticker,
			Type:          t,
			Profile:       t.Profile(),
			Sector:        asset.Sector,
			Value:         perfmath.Normalize(value),
			Message:       msg,
			PriceAtSignal: perfmath.Normalize(price),
			Status:        contracts.StatusActive,
			CreatedAt:     now,
		})
	}

	if len(closes) > s.config.RSIPeriod && m.NetMargin > s.config.MinMargin {
		rsi := perfmath.RSI(closes, s.config.RSIPeriod)
		if rsi < s.config.RSIOversold {
			emit(contracts.SignalRSIOversold, rsi,
				fmt.Sprintf("RSI(%d) at %.1f, below %.0f", s.config.RSIPeriod, rsi, s.config.RSIOversold))
		}
	}

	if !asset.IsFund() && m.PE > 0 && m.PB > 0 {
		graham := valuation.Graham(price, m.PE, m.PB)
		if graham > 0 && price < s.config.DeepValueRatio*graham {
			ratio := price / graham
			emit(contracts.SignalDeepValue, ratio,
				fmt.Sprintf("Price %.2f is %.0f%% of its Graham number %.2f", price, ratio*100, graham))
		}
	}

	if len(closes) >= s.config.SupportWindow && profitable(asset, m) && m.DividendYield > s.config.SupportMinYield {
		low := perfmath.LowestClose(closes, s.config.SupportWindow)
		if low > 0 && price <= low*(1+s.config.SupportProximity) {
			distance := perfmath.PercentChange(low, price)
			emit(contracts.SignalSupportZone, distance,
				fmt.Sprintf("Price %.2f within %.1f%% of the %d-day low %.2f", price, distance, s.config.SupportWindow, low))
		}
	}

	return out
}

// usableHistory rejects a series with any non-finite or non-positive close.
// Normalization would turn such a close into 0, which reads as a crash.
func usableHistory(points []contracts.PricePoint) bool {
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			return false
		}
	}
	return true
}

func profitable(asset contracts.Asset, m contracts.Metrics) bool {
	if asset.IsFund() {
		return m.DividendYield > 0
	}
	return m.NetMargin > 0
}
