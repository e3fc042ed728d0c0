package contracts

import (
	"errors"
	"time"
)

// SignalType enumerates the anomaly conditions the scanner detects.
type SignalType string

const (
	SignalRSIOversold SignalType = "RSI_OVERSOLD"
	SignalDeepValue   SignalType = "DEEP_VALUE"
	SignalSupportZone SignalType = "SUPPORT_ZONE"
)

// Profile maps a signal type to the risk profile it is published under.
func (t SignalType) Profile() RiskProfile {
	switch t {
	case SignalRSIOversold:
		return ProfileBold
	case SignalDeepValue:
		return ProfileModerate
	case SignalSupportZone:
		return ProfileDefensive
	default:
		return ProfileModerate
	}
}

// SignalStatus is the signal lifecycle: ACTIVE until audited, then terminal.
type SignalStatus string

const (
	StatusActive  SignalStatus = "ACTIVE"
	StatusHit     SignalStatus = "HIT"
	StatusMiss    SignalStatus = "MISS"
	StatusNeutral SignalStatus = "NEUTRAL"
)

// ErrAlreadyResolved is returned when a terminal signal is audited again.
var ErrAlreadyResolved = errors.New("signal already resolved")

// IsTerminal reports whether the status can no longer change.
func (s SignalStatus) IsTerminal() bool {
	return s == StatusHit || s == StatusMiss || s == StatusNeutral
}

// Classify maps a percentage change since the signal to its audit outcome.
func Classify(changePct, hitThreshold, missThreshold float64) SignalStatus {
	switch {
	case changePct >= hitThreshold:
		return StatusHit
	case changePct <= missThreshold:
		return StatusMiss
	default:
		return StatusNeutral
	}
}

// QuantSignal is a detected anomaly awaiting (or carrying) its audit outcome.
type QuantSignal struct {
	ID            string       `json:"id"`
	Ticker        string       `json:"ticker"`
	Type          SignalType   `json:"type"`
	Profile       RiskProfile  `json:"profile"`
	Sector        string       `json:"sector"`
	Value         float64      `json:"value"` // the metric that triggered it (RSI, ratio to Graham, distance to low)
	Message       string       `json:"message"`
	PriceAtSignal float64      `json:"price_at_signal"`
	Status        SignalStatus `json:"status"`
	FinalPrice    float64      `json:"final_price,omitempty"`
	ChangePct     float64      `json:"change_pct,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	AuditedAt     *time.Time   `json:"audited_at,omitempty"`
}

// Resolve records the audit outcome. It fails with ErrAlreadyResolved unless the signal is ACTIVE.
func (s *QuantSignal) Resolve(status SignalStatus, finalPrice, changePct float64, at time.Time) error {
	if s.Status != StatusActive {
		return ErrAlreadyResolved
	}
	if !status.IsTerminal() {
		return errors.New("audit outcome must be terminal")
	}
	s.Status = status
	s.FinalPrice = finalPrice
	s.ChangePct = changePct
	auditedAt := at
	s.AuditedAt = &auditedAt
	return nil
}

// ScanResult is the structured outcome of one scanner pass.
type ScanResult struct {
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	Analyzed   int           `json:"analyzed"`
	Created    int           `json:"created"`
	Duplicates int           `json:"duplicates"`
	Failed     int           `json:"failed"`
	BadHistory int           `json:"bad_history"` // history held a missing or non-positive close
	Signals    []QuantSignal `json:"signals"`
}

// AuditResult is the structured outcome of one auditor pass.
type AuditResult struct {
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Checked  int           `json:"checked"`
	Hits     int           `json:"hits"`
	Misses   int           `json:"misses"`
	Neutrals int           `json:"neutrals"`
	Failed   int           `json:"failed"`
	Audited  []QuantSignal `json:"audited"`
}

// HitRate is hits over classified signals, 0 when none were classified.
func (r *AuditResult) HitRate() float64 {
	total := r.Hits + r.Misses + r.Neutrals
	if total == 0 {
		return 0
	}
	return float64(r.Hits) / float64(total)
}
