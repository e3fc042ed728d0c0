package contracts

import (
	"math"
	"testing"
)

func TestMetrics_Normalize(t *testing.T) {
	m := Metrics{
		PE:            math.NaN(),
		PB:            math.Inf(1),
		DividendYield: 6.2,
		Vacancy:       math.Inf(-1),
		FundType:      FundBrick,
		Disqualified:  true,
	}

	got := m.Normalize()
	if got.PE != 0 || got.PB != 0 || got.Vacancy != 0 {
		t.Errorf("non-finite fields not zeroed: %+v", got)
	}
	if got.DividendYield != 6.2 || got.FundType != FundBrick || !got.Disqualified {
		t.Errorf("finite fields changed: %+v", got)
	}
	if !math.IsNaN(m.PE) {
		t.Error("Normalize must not mutate the receiver")
	}
}

func TestRiskProfile_Bounds(t *testing.T) {
	tests := []struct {
		profile RiskProfile
		ceiling float64
	}{
		{ProfileDefensive, 100},
		{ProfileModerate, 89},
		{ProfileBold, 85},
	}
	for _, tt := range tests {
		if got := tt.profile.Ceiling(); got != tt.ceiling {
			t.Errorf("%s.Ceiling() = %v, want %v", tt.profile, got, tt.ceiling)
		}
		if got := tt.profile.Floor(); got != ScoreFloor {
			t.Errorf("%s.Floor() = %v, want %v", tt.profile, got, ScoreFloor)
		}
		if !tt.profile.Valid() {
			t.Errorf("%s.Valid() = false", tt.profile)
		}
	}
	if RiskProfile("AGGRESSIVE").Valid() {
		t.Error("unknown profile reported valid")
	}
}

func TestScoreSet_For(t *testing.T) {
	s := ScoreSet{Defensive: 70, Moderate: 60, Bold: 55}
	if s.For(ProfileDefensive) != 70 || s.For(ProfileModerate) != 60 || s.For(ProfileBold) != 55 {
		t.Errorf("For() returned wrong profile score: %+v", s)
	}
}

func TestRanking_ByProfile(t *testing.T) {
	r := &Ranking{Items: []RankingItem{
		{Position: 1, Ticker: "ITSA4", Profile: ProfileDefensive},
		{Position: 2, Ticker: "WEGE3", Profile: ProfileModerate},
		{Position: 3, Ticker: "TAEE11", Profile: ProfileDefensive},
	}}

	def := r.ByProfile(ProfileDefensive)
	if len(def) != 2 || def[0].Ticker != "ITSA4" || def[1].Ticker != "TAEE11" {
		t.Errorf("ByProfile(DEFENSIVE) = %+v", def)
	}
	if !r.Contains("WEGE3") || r.Contains("PETR4") {
		t.Error("Contains() mismatch")
	}
}

func TestCloses(t *testing.T) {
	got := Closes([]PricePoint{{Close: 1}, {Close: math.NaN()}, {Close: 3}})
	if len(got) != 3 || got[0] != 1 || got[1] != 0 || got[2] != 3 {
		t.Errorf("Closes() = %v", got)
	}
}
