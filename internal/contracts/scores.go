package contracts

import "slices"

// RiskProfile is the investor risk-tolerance bucket an instrument is scored and drafted for.
type RiskProfile string

const (
	ProfileDefensive RiskProfile = "DEFENSIVE"
	ProfileModerate  RiskProfile = "MODERATE"
	ProfileBold      RiskProfile = "BOLD"
)

// Profiles lists the profiles in draft order.
var Profiles = []RiskProfile{ProfileDefensive, ProfileModerate, ProfileBold}

// ScoreFloor is shared by every profile.
const ScoreFloor = 10.0

// Ceiling returns the profile's maximum score. The asymmetry keeps a single
// instrument from topping every profile at once.
func (p RiskProfile) Ceiling() float64 {
	switch p {
	case ProfileDefensive:
		return 100
	case ProfileModerate:
		return 89
	case ProfileBold:
		return 85
	default:
		return 100
	}
}

// Valid reports whether p is one of Profiles.
func (p RiskProfile) Valid() bool {
	return slices.Contains(Profiles, p)
}

// Floor returns the profile's minimum score.
func (p RiskProfile) Floor() float64 {
	return ScoreFloor
}

// ValuationResult is the fair-value estimate for one instrument.
type ValuationResult struct {
	FairPrice float64 `json:"fair_price"`
	Method    string  `json:"method"`
	Graham    float64 `json:"graham"`
	YieldCap  float64 `json:"yield_cap"`
	BookValue float64 `json:"book_value"`
	Upside    float64 `json:"upside"` // percent vs current price
}

// ScoreSet is recomputed wholesale every run.
type ScoreSet struct {
	Defensive float64 `json:"defensive"`
	Moderate  float64 `json:"moderate"`
	Bold      float64 `json:"bold"`

	// Structural scores, 0-100. Risk is higher for riskier instruments.
	Quality   float64 `json:"quality"`
	Valuation float64 `json:"valuation"`
	Risk      float64 `json:"risk"`

	DefensiveEligible bool `json:"defensive_eligible"`
}

// For returns the score of the given profile.
func (s ScoreSet) For(p RiskProfile) float64 {
	switch p {
	case ProfileDefensive:
		return s.Defensive
	case ProfileModerate:
		return s.Moderate
	case ProfileBold:
		return s.Bold
	default:
		return 0
	}
}

// ScoredInstrument is the scoring engine's output for one instrument.
type ScoredInstrument struct {
	Asset     Asset           `json:"asset"`
	Valuation ValuationResult `json:"valuation"`
	Scores    ScoreSet        `json:"scores"`
	Bullish   []string        `json:"bullish"`
	Bearish   []string        `json:"bearish"`
}

// Ticker is a shorthand for the underlying instrument ticker.
func (s *ScoredInstrument) Ticker() string {
	return s.Asset.Ticker
}
